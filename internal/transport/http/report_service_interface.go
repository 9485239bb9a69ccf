package http

import (
	"context"
	"io"

	"costlens/internal/analytics"
	"costlens/pkg/contracts/domain"
)

// ReportServiceInterface is the service contract the report handler
// depends on; tests substitute a mock.
type ReportServiceInterface interface {
	HasReport() bool
	ReportID() string
	Items() []domain.Item
	IngestWorkbook(ctx context.Context, r io.Reader, sourceFile string) (*domain.IngestResult, error)
	UpdateItem(ctx context.Context, id int, patch domain.ItemPatch) ([]domain.Item, error)
	SumForPrefix(prefix string, field domain.Field, month string) int64
	SumDescendants(code string, field domain.Field, month string) int64
	Variance(month string, hideFullLoss bool) []analytics.VarianceRow
	MonthlyCashflow(openingBalance *int64) []analytics.CashflowRow
	VendorSummary(month string) []analytics.VendorRow
	Quality() analytics.QualityReport
}
