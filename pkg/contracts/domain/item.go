package domain

import "strings"

// Field identifies one of the three monetary measures carried by a cost item.
type Field string

const (
	FieldBudget        Field = "budget"
	FieldActualPlanned Field = "actual_planned"
	FieldConfirmed     Field = "confirmed"
)

// Fields lists all monetary fields in canonical order.
var Fields = []Field{FieldBudget, FieldActualPlanned, FieldConfirmed}

// ParseField converts a wire-level field name to a Field.
func ParseField(s string) (Field, bool) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldBudget:
		return FieldBudget, true
	case FieldActualPlanned:
		return FieldActualPlanned, true
	case FieldConfirmed:
		return FieldConfirmed, true
	}
	return "", false
}

// Item represents one line of a cost report.
//
// Amounts are in whole yen. A nil amount means "not entered", which is
// distinct from an explicit zero. Dates are ISO YYYY-MM-DD strings with ""
// meaning "not entered"; an unparseable source value is carried through
// verbatim rather than dropped.
type Item struct {
	ID                  int    `json:"id"`
	Code                string `json:"code"`
	DisplayCode         string `json:"display_code,omitempty"`
	Title               string `json:"title"`
	Vendor              string `json:"vendor"`
	Note                string `json:"note"`
	PONumber            string `json:"po_number"`
	BudgetAmount        *int64 `json:"budget_amount"`
	ActualPlannedAmount *int64 `json:"actual_planned_amount"`
	ConfirmedAmount     *int64 `json:"confirmed_amount"`
	BudgetDate          string `json:"budget_date"`
	ActualPlannedDate   string `json:"actual_planned_date"`
	ConfirmedDate       string `json:"confirmed_date"`
	PaymentDate         string `json:"payment_date"`
	DeliveryDate        string `json:"delivery_date"`
	IsPaid              bool   `json:"is_paid"`
	IsAggregateRow      bool   `json:"is_aggregate_row,omitempty"`
}

// Amount returns the value of the given monetary field.
func (it *Item) Amount(f Field) *int64 {
	switch f {
	case FieldBudget:
		return it.BudgetAmount
	case FieldActualPlanned:
		return it.ActualPlannedAmount
	case FieldConfirmed:
		return it.ConfirmedAmount
	}
	return nil
}

// Date returns the date paired with the given monetary field.
func (it *Item) Date(f Field) string {
	switch f {
	case FieldBudget:
		return it.BudgetDate
	case FieldActualPlanned:
		return it.ActualPlannedDate
	case FieldConfirmed:
		return it.ConfirmedDate
	}
	return ""
}

// TopSection returns the first segment of the item code, by convention a
// single section letter (A = revenue, B = cost).
func (it *Item) TopSection() string {
	if i := strings.IndexByte(it.Code, '.'); i >= 0 {
		return it.Code[:i]
	}
	return it.Code
}

// IsDescendantOf reports whether the item sits strictly below the given code
// in the hierarchy. Ownership is purely string-prefix based; there are no
// explicit parent pointers on items.
func (it *Item) IsDescendantOf(code string) bool {
	return strings.HasPrefix(it.Code, code+".")
}

// InSubtree reports whether the item's code equals prefix or sits below it.
func (it *Item) InSubtree(prefix string) bool {
	return it.Code == prefix || it.IsDescendantOf(prefix)
}

// IsCostSummary reports whether the row is a textual subtotal/balance line.
// Such rows are display-only summaries in the source report and must never
// contribute to roll-ups.
func (it *Item) IsCostSummary() bool {
	text := it.Title + "|" + it.Vendor + "|" + it.Note
	if strings.Contains(text, "仕入") && strings.Contains(text, "合計") {
		return true
	}
	return strings.Contains(text, "収支")
}

// MonthOf extracts the YYYY-MM month from an ISO date string. Verbatim
// passthrough values such as free-text dates yield "", the same as an
// empty date.
func MonthOf(date string) string {
	if len(date) < 7 || date[4] != '-' {
		return ""
	}
	for i := 0; i < 7; i++ {
		if i == 4 {
			continue
		}
		if date[i] < '0' || date[i] > '9' {
			return ""
		}
	}
	if len(date) > 7 && date[7] != '-' {
		return ""
	}
	return date[:7]
}

// EffectiveMonth returns the YYYY-MM month the line item most concretely
// occurred in: the confirmed date if present, else the actual/planned date,
// else the budget date. A date carried through verbatim counts as unset, so
// the fallback continues past it. Returns "" when no date yields a month.
func (it *Item) EffectiveMonth() string {
	for _, d := range []string{it.ConfirmedDate, it.ActualPlannedDate, it.BudgetDate} {
		if m := MonthOf(d); m != "" {
			return m
		}
	}
	return ""
}

// MatchesMonth reports whether the item falls in the given YYYY-MM month.
// An empty month matches everything.
func (it *Item) MatchesMonth(month string) bool {
	if month == "" {
		return true
	}
	return it.EffectiveMonth() == month
}

// FilterMonth returns the items whose effective month matches the given
// YYYY-MM month. The input slice is not modified.
func FilterMonth(items []Item, month string) []Item {
	if month == "" {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.MatchesMonth(month) {
			out = append(out, it)
		}
	}
	return out
}
