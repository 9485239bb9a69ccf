package domain

// IngestResult is the outcome of ingesting one raw cell grid.
type IngestResult struct {
	ReportID     string `json:"report_id"`
	SourceFile   string `json:"source_file,omitempty"`
	Items        []Item `json:"items"`
	TotalRows    int    `json:"total_rows"`
	ValidRows    int    `json:"valid_rows"`
	RejectedRows int    `json:"rejected_rows"`
}

// ItemPatch carries a partial update for a single cost item. Nil pointers
// mean "leave unchanged"; editing collaborators send one field per call.
type ItemPatch struct {
	Title               *string `json:"title,omitempty"`
	Vendor              *string `json:"vendor,omitempty"`
	Note                *string `json:"note,omitempty"`
	PONumber            *string `json:"po_number,omitempty"`
	BudgetAmount        *int64  `json:"budget_amount,omitempty" validate:"omitempty,gte=0"`
	ActualPlannedAmount *int64  `json:"actual_planned_amount,omitempty" validate:"omitempty,gte=0"`
	ConfirmedAmount     *int64  `json:"confirmed_amount,omitempty" validate:"omitempty,gte=0"`
	BudgetDate          *string `json:"budget_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ActualPlannedDate   *string `json:"actual_planned_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ConfirmedDate       *string `json:"confirmed_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PaymentDate         *string `json:"payment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DeliveryDate        *string `json:"delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Apply copies the patch's set fields onto a copy of the item and re-derives
// IsPaid. The original item is not modified.
func (p *ItemPatch) Apply(it Item) Item {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Vendor != nil {
		it.Vendor = *p.Vendor
	}
	if p.Note != nil {
		it.Note = *p.Note
	}
	if p.PONumber != nil {
		it.PONumber = *p.PONumber
	}
	if p.BudgetAmount != nil {
		it.BudgetAmount = p.BudgetAmount
	}
	if p.ActualPlannedAmount != nil {
		it.ActualPlannedAmount = p.ActualPlannedAmount
	}
	if p.ConfirmedAmount != nil {
		it.ConfirmedAmount = p.ConfirmedAmount
	}
	if p.BudgetDate != nil {
		it.BudgetDate = *p.BudgetDate
	}
	if p.ActualPlannedDate != nil {
		it.ActualPlannedDate = *p.ActualPlannedDate
	}
	if p.ConfirmedDate != nil {
		it.ConfirmedDate = *p.ConfirmedDate
	}
	if p.PaymentDate != nil {
		it.PaymentDate = *p.PaymentDate
	}
	if p.DeliveryDate != nil {
		it.DeliveryDate = *p.DeliveryDate
	}
	it.IsPaid = it.PaymentDate != ""
	return it
}
