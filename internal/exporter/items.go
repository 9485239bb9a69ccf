package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"costlens/internal/analytics"
	"costlens/pkg/contracts/domain"
)

// itemHeaders is the column order for item CSV exports.
var itemHeaders = []string{
	"id", "code", "display_code", "title", "vendor",
	"budget_amount", "budget_date",
	"actual_planned_amount", "actual_planned_date",
	"confirmed_amount", "confirmed_date",
	"payment_date", "delivery_date", "po_number", "note", "is_paid",
}

// ItemRecords returns the item CSV header row and data records.
func ItemRecords(items []domain.Item) ([]string, [][]string) {
	records := make([][]string, 0, len(items))
	for _, it := range items {
		records = append(records, []string{
			strconv.Itoa(it.ID),
			it.Code,
			it.DisplayCode,
			it.Title,
			it.Vendor,
			formatAmount(it.BudgetAmount),
			it.BudgetDate,
			formatAmount(it.ActualPlannedAmount),
			it.ActualPlannedDate,
			formatAmount(it.ConfirmedAmount),
			it.ConfirmedDate,
			it.PaymentDate,
			it.DeliveryDate,
			it.PONumber,
			it.Note,
			formatBool(it.IsPaid),
		})
	}
	return itemHeaders, records
}

// RenderItemsCSV renders the item collection as CSV text. encoding/csv
// quotes and escapes fields containing a comma, quote or newline.
func RenderItemsCSV(items []domain.Item) ([]byte, error) {
	headers, records := ItemRecords(items)
	return renderCSV(headers, records)
}

// RenderItemsJSON serializes the raw item collection. The output round
// trips: parsing it back yields identical field values, with nil amounts
// staying null and empty dates staying empty.
func RenderItemsJSON(items []domain.Item) ([]byte, error) {
	return json.MarshalIndent(items, "", "  ")
}

// ParseItemsJSON parses a collection previously produced by
// RenderItemsJSON.
func ParseItemsJSON(data []byte) ([]domain.Item, error) {
	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse items: %w", err)
	}
	return items, nil
}

// VarianceRecords returns the variance CSV header row and data records.
func VarianceRecords(rows []analytics.VarianceRow) ([]string, [][]string) {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Code, r.Title,
			formatInt(r.Budget), formatInt(r.Confirmed),
			formatInt(r.Variance), strconv.Itoa(r.Pct),
		})
	}
	return []string{"code", "title", "budget", "confirmed", "variance", "pct"}, records
}

// RenderVarianceCSV renders a variance result set as CSV text.
func RenderVarianceCSV(rows []analytics.VarianceRow) ([]byte, error) {
	headers, records := VarianceRecords(rows)
	return renderCSV(headers, records)
}

// CashflowRecords returns the cashflow CSV header row and data records.
func CashflowRecords(rows []analytics.CashflowRow) ([]string, [][]string) {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Month,
			formatInt(r.Sales), formatInt(r.Cost),
			formatInt(r.Net), formatInt(r.Balance),
		})
	}
	return []string{"month", "sales", "cost", "net", "balance"}, records
}

// RenderCashflowCSV renders a monthly cashflow result set as CSV text.
func RenderCashflowCSV(rows []analytics.CashflowRow) ([]byte, error) {
	headers, records := CashflowRecords(rows)
	return renderCSV(headers, records)
}

// VendorRecords returns the vendor summary CSV header row and data records.
func VendorRecords(rows []analytics.VendorRow) ([]string, [][]string) {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Vendor, formatInt(r.Actual), formatInt(r.Confirmed),
		})
	}
	return []string{"vendor", "actual", "confirmed"}, records
}

// RenderVendorsCSV renders a vendor summary result set as CSV text.
func RenderVendorsCSV(rows []analytics.VendorRow) ([]byte, error) {
	headers, records := VendorRecords(rows)
	return renderCSV(headers, records)
}

func renderCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
