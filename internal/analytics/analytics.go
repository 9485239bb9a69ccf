// Package analytics derives review-facing summaries from the cost item
// collection: variance by group, monthly cash flow, vendor totals and
// data-quality metrics. Everything is built on the aggregation tree's
// deepest-populated-value primitives; no separate de-duplication logic
// exists here.
package analytics

import (
	"math"
	"sort"
	"strings"

	"costlens/internal/aggregation"
	"costlens/pkg/contracts/domain"
)

// VarianceRow is the budget-versus-confirmed outcome for one two-segment
// code group.
type VarianceRow struct {
	Code      string `json:"code"`
	Title     string `json:"title"`
	Budget    int64  `json:"budget"`
	Confirmed int64  `json:"confirmed"`
	Variance  int64  `json:"variance"`
	Pct       int    `json:"pct"`
}

// CashflowRow is one month of the payment-date cash flow.
type CashflowRow struct {
	Month   string `json:"month"`
	Sales   int64  `json:"sales"`
	Cost    int64  `json:"cost"`
	Net     int64  `json:"net"`
	Balance int64  `json:"balance"`
}

// VendorRow summarizes one vendor's actual/planned and confirmed totals.
type VendorRow struct {
	Vendor    string `json:"vendor"`
	Actual    int64  `json:"actual"`
	Confirmed int64  `json:"confirmed"`
}

// DuplicateCode reports a raw code shared by more than one row.
type DuplicateCode struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// QualityReport collects the data-quality metrics surfaced to reviewers.
type QualityReport struct {
	MissingVendor        int             `json:"missing_vendor"`
	Duplicates           []DuplicateCode `json:"duplicates"`
	ActualNoDate         int             `json:"actual_no_date"`
	ConfirmedNoDate      int             `json:"confirmed_no_date"`
	SummaryRowCount      int             `json:"summary_row_count"`
	TopConfirmed         []domain.Item   `json:"top_confirmed"`
	PaidCount            int             `json:"paid_count"`
	PaidTotal            int64           `json:"paid_total"`
	UnpaidConfirmedCount int             `json:"unpaid_confirmed_count"`
	UnpaidConfirmedTotal int64           `json:"unpaid_confirmed_total"`
}

// Engine answers analytics queries over an item collection. Vendor
// normalization patterns fold corporate suffixes so 株式会社ABC and (株)ABC
// land in the same bucket; unspecifiedVendor labels blank vendors.
type Engine struct {
	vendorReplacer    *strings.Replacer
	unspecifiedVendor string
}

// NewEngine creates an analytics engine. vendorPatterns holds old/new
// replacement pairs; both arguments may be zero values for defaults.
func NewEngine(vendorPatterns []string, unspecifiedVendor string) *Engine {
	if unspecifiedVendor == "" {
		unspecifiedVendor = "unspecified"
	}
	if len(vendorPatterns) == 0 || len(vendorPatterns)%2 != 0 {
		vendorPatterns = []string{"　", " "}
	}
	return &Engine{
		vendorReplacer:    strings.NewReplacer(vendorPatterns...),
		unspecifiedVendor: unspecifiedVendor,
	}
}

// Variance computes confirmed-minus-budget per two-segment code group over
// the month-filtered pool, sorted by descending absolute variance.
// hideFullLoss drops groups that were budgeted but have nothing confirmed,
// the conventional -100% outcome.
func (e *Engine) Variance(items []domain.Item, month string, hideFullLoss bool) []VarianceRow {
	pool := domain.FilterMonth(items, month)
	tree := aggregation.NewTree(pool)
	titles := titleIndex(items)

	var rows []VarianceRow
	for _, prefix := range tree.Prefixes(2) {
		budget := tree.SumForPrefix(prefix, domain.FieldBudget)
		confirmed := tree.SumForPrefix(prefix, domain.FieldConfirmed)
		if hideFullLoss && budget > 0 && confirmed == 0 {
			continue
		}
		variance := confirmed - budget
		pct := 0
		if budget != 0 {
			pct = int(math.Round(float64(variance) / float64(budget) * 100))
		}
		rows = append(rows, VarianceRow{
			Code:      prefix,
			Title:     titles[prefix],
			Budget:    budget,
			Confirmed: confirmed,
			Variance:  variance,
			Pct:       pct,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return abs64(rows[i].Variance) > abs64(rows[j].Variance)
	})
	return rows
}

// MonthlyCashflow buckets the deepest actual/planned rows by payment-date
// month. Section A contributes to sales and section B to cost; the running
// balance starts from openingBalance and accumulates net month over month
// in chronological order.
func (e *Engine) MonthlyCashflow(items []domain.Item, openingBalance int64) []CashflowRow {
	tree := aggregation.NewTree(items)

	type bucket struct{ sales, cost int64 }
	buckets := make(map[string]*bucket)
	for _, it := range tree.DeepestRows(domain.FieldActualPlanned) {
		month := domain.MonthOf(it.PaymentDate)
		if month == "" {
			continue
		}
		b, ok := buckets[month]
		if !ok {
			b = &bucket{}
			buckets[month] = b
		}
		v := *it.ActualPlannedAmount
		switch it.TopSection() {
		case "A":
			b.sales += v
		case "B":
			b.cost += v
		}
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	rows := make([]CashflowRow, 0, len(months))
	balance := openingBalance
	for _, m := range months {
		b := buckets[m]
		net := b.sales - b.cost
		balance += net
		rows = append(rows, CashflowRow{
			Month:   m,
			Sales:   b.sales,
			Cost:    b.cost,
			Net:     net,
			Balance: balance,
		})
	}
	return rows
}

// VendorSummary groups deepest actual and confirmed sums by normalized
// vendor name over the month-filtered pool, sorted by descending confirmed
// total. The top 10 vendors are returned.
func (e *Engine) VendorSummary(items []domain.Item, month string) []VendorRow {
	pool := domain.FilterMonth(items, month)
	tree := aggregation.NewTree(pool)

	totals := make(map[string]*VendorRow)
	get := func(vendor string) *VendorRow {
		name := e.NormalizeVendor(vendor)
		row, ok := totals[name]
		if !ok {
			row = &VendorRow{Vendor: name}
			totals[name] = row
		}
		return row
	}

	for _, it := range tree.DeepestRows(domain.FieldActualPlanned) {
		get(it.Vendor).Actual += *it.ActualPlannedAmount
	}
	for _, it := range tree.DeepestRows(domain.FieldConfirmed) {
		get(it.Vendor).Confirmed += *it.ConfirmedAmount
	}

	rows := make([]VendorRow, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Confirmed != rows[j].Confirmed {
			return rows[i].Confirmed > rows[j].Confirmed
		}
		return rows[i].Vendor < rows[j].Vendor
	})
	if len(rows) > 10 {
		rows = rows[:10]
	}
	return rows
}

// NormalizeVendor folds corporate suffixes and whitespace; blank names map
// to the unspecified bucket.
func (e *Engine) NormalizeVendor(name string) string {
	n := strings.TrimSpace(e.vendorReplacer.Replace(name))
	n = strings.Join(strings.Fields(n), " ")
	if n == "" {
		return e.unspecifiedVendor
	}
	return n
}

// Quality computes the data-quality metrics over the full collection.
// Duplicate detection uses the raw source code (DisplayCode when present)
// rather than the resolved hierarchy, so synthesized codes do not mask
// source-level duplication.
func (e *Engine) Quality(items []domain.Item) QualityReport {
	var report QualityReport

	rawCounts := make(map[string]int)
	for _, it := range items {
		if it.IsCostSummary() {
			report.SummaryRowCount++
			continue
		}

		if strings.TrimSpace(it.Vendor) == "" {
			report.MissingVendor++
		}

		raw := it.DisplayCode
		if raw != "" {
			rawCounts[raw]++
		}

		if it.ActualPlannedAmount != nil && it.ActualPlannedDate == "" {
			report.ActualNoDate++
		}
		if it.ConfirmedAmount != nil && it.ConfirmedDate == "" {
			report.ConfirmedNoDate++
		}

		if it.IsPaid {
			report.PaidCount++
			if it.ConfirmedAmount != nil {
				report.PaidTotal += *it.ConfirmedAmount
			}
		} else if it.ConfirmedAmount != nil {
			report.UnpaidConfirmedCount++
			report.UnpaidConfirmedTotal += *it.ConfirmedAmount
		}
	}

	for code, n := range rawCounts {
		if n > 1 {
			report.Duplicates = append(report.Duplicates, DuplicateCode{Code: code, Count: n})
		}
	}
	sort.Slice(report.Duplicates, func(i, j int) bool {
		if report.Duplicates[i].Count != report.Duplicates[j].Count {
			return report.Duplicates[i].Count > report.Duplicates[j].Count
		}
		return report.Duplicates[i].Code < report.Duplicates[j].Code
	})

	confirmed := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if !it.IsCostSummary() && it.ConfirmedAmount != nil {
			confirmed = append(confirmed, it)
		}
	}
	sort.SliceStable(confirmed, func(i, j int) bool {
		return *confirmed[i].ConfirmedAmount > *confirmed[j].ConfirmedAmount
	})
	if len(confirmed) > 5 {
		confirmed = confirmed[:5]
	}
	report.TopConfirmed = confirmed

	return report
}

// titleIndex maps each code to its row title for labeling variance groups.
func titleIndex(items []domain.Item) map[string]string {
	idx := make(map[string]string)
	for _, it := range items {
		if _, ok := idx[it.Code]; !ok && it.Title != "" {
			idx[it.Code] = it.Title
		}
	}
	return idx
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
