// Package services binds the ingestion pipeline, aggregation tree and
// analytics engine behind one facade consumed by the CLI and the HTTP
// transport.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"costlens/internal/aggregation"
	"costlens/internal/analytics"
	"costlens/internal/config"
	"costlens/internal/dataprocessing"
	apperrors "costlens/internal/errors"
	"costlens/pkg/contracts/domain"
)

// ReportService holds the current cost report snapshot and answers every
// query over it. The snapshot is immutable: mutations replace the whole
// slice under the write lock, so concurrent readers always observe a
// consistent collection and never a half-patched one.
type ReportService struct {
	logger    *slog.Logger
	processor *dataprocessing.Processor
	engine    *analytics.Engine
	validate  *validator.Validate
	rules     config.RulesConfig

	mu         sync.RWMutex
	reportID   string
	sourceFile string
	items      []domain.Item
	warnings   []apperrors.Warning
}

// NewReportService creates a report service with the given business rules.
func NewReportService(logger *slog.Logger, rules config.RulesConfig) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		logger:    logger.With(slog.String("component", "report_service")),
		processor: dataprocessing.NewProcessor(logger),
		engine:    analytics.NewEngine(rules.VendorPatterns(), rules.UnspecifiedVendorName),
		validate:  validator.New(),
		rules:     rules,
	}
}

// IngestGrid runs the pipeline over a raw cell grid and replaces the
// current snapshot. Inferred aggregate rows are tagged before the snapshot
// is stored.
func (s *ReportService) IngestGrid(ctx context.Context, grid [][]string, sourceFile string) (*domain.IngestResult, error) {
	result, warnings, err := s.processor.Ingest(ctx, grid, sourceFile)
	if err != nil {
		return nil, err
	}

	tree := aggregation.NewTree(result.Items)
	result.Items = tree.Annotate(result.Items)

	s.mu.Lock()
	s.reportID = result.ReportID
	s.sourceFile = sourceFile
	s.items = result.Items
	s.warnings = warnings
	s.mu.Unlock()

	return result, nil
}

// IngestWorkbook decodes an Excel workbook stream and ingests its grid.
func (s *ReportService) IngestWorkbook(ctx context.Context, r io.Reader, sourceFile string) (*domain.IngestResult, error) {
	grid, err := dataprocessing.LoadGridFromReader(r, s.rules.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to decode workbook: %w", err)
	}
	return s.IngestGrid(ctx, grid, sourceFile)
}

// IngestFile decodes an Excel workbook from disk and ingests its grid.
func (s *ReportService) IngestFile(ctx context.Context, filePath string) (*domain.IngestResult, error) {
	grid, err := dataprocessing.LoadGrid(filePath, s.rules.SheetName)
	if err != nil {
		return nil, err
	}
	return s.IngestGrid(ctx, grid, filePath)
}

// HasReport reports whether a collection has been ingested.
func (s *ReportService) HasReport() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items != nil
}

// ReportID returns the session identifier of the current report.
func (s *ReportService) ReportID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reportID
}

// Items returns the current snapshot. The returned slice is the snapshot
// itself; callers must treat it as read-only, which is safe because every
// mutation path builds a fresh slice.
func (s *ReportService) Items() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// Warnings returns the anomalies recorded during the last ingestion.
func (s *ReportService) Warnings() []apperrors.Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.warnings
}

// SumForPrefix computes the deepest-populated-value sum for the prefix and
// field, optionally restricted to a YYYY-MM month. The tree is rebuilt from
// the filtered pool on every call; deepest-ness is relative to that pool.
func (s *ReportService) SumForPrefix(prefix string, field domain.Field, month string) int64 {
	pool := domain.FilterMonth(s.Items(), month)
	return aggregation.NewTree(pool).SumForPrefix(prefix, field)
}

// SumDescendants is SumForPrefix restricted to strict descendants.
func (s *ReportService) SumDescendants(code string, field domain.Field, month string) int64 {
	pool := domain.FilterMonth(s.Items(), month)
	return aggregation.NewTree(pool).SumDescendants(code, field)
}

// Variance lists confirmed-versus-budget variance per two-segment group.
func (s *ReportService) Variance(month string, hideFullLoss bool) []analytics.VarianceRow {
	return s.engine.Variance(s.Items(), month, hideFullLoss)
}

// MonthlyCashflow computes the payment-month cash flow with a running
// balance. A nil openingBalance falls back to the configured default; an
// explicit value is honored as-is, including zero.
func (s *ReportService) MonthlyCashflow(openingBalance *int64) []analytics.CashflowRow {
	balance := s.rules.OpeningBalance
	if openingBalance != nil {
		balance = *openingBalance
	}
	return s.engine.MonthlyCashflow(s.Items(), balance)
}

// VendorSummary lists the top vendors by confirmed total.
func (s *ReportService) VendorSummary(month string) []analytics.VendorRow {
	return s.engine.VendorSummary(s.Items(), month)
}

// Quality computes the data-quality report for the current snapshot.
func (s *ReportService) Quality() analytics.QualityReport {
	return s.engine.Quality(s.Items())
}

// UpdateItem patches a single item by id and returns the full updated
// collection. The patch is validated first: amounts must be non-negative,
// dates well-formed, the payment date on/after the confirmed date and the
// delivery date on/before it. An unknown id leaves the collection
// untouched and is reported only through a warning log.
func (s *ReportService) UpdateItem(ctx context.Context, id int, patch domain.ItemPatch) ([]domain.Item, error) {
	if err := s.validate.Struct(&patch); err != nil {
		return nil, apperrors.NewWithDetails(422, "VALIDATION_FAILED", "item patch validation failed", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.items {
		if s.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.WarnContext(ctx, "update for unknown item id ignored", slog.Int("item_id", id))
		return s.items, nil
	}

	updated := patch.Apply(s.items[idx])
	if err := validateItemDates(updated); err != nil {
		return nil, err
	}

	next := make([]domain.Item, len(s.items))
	copy(next, s.items)
	next[idx] = updated
	s.items = next

	s.logger.InfoContext(ctx, "item updated", slog.Int("item_id", id), slog.String("code", updated.Code))
	return s.items, nil
}

// validateItemDates enforces the cross-field date ordering rules. ISO
// dates compare correctly as strings, so no parsing is needed here.
func validateItemDates(it domain.Item) error {
	if it.ConfirmedDate != "" && it.PaymentDate != "" && it.PaymentDate < it.ConfirmedDate {
		return apperrors.ErrValidation("payment_date", "must be on/after confirmed_date")
	}
	if it.ConfirmedDate != "" && it.DeliveryDate != "" && it.DeliveryDate > it.ConfirmedDate {
		return apperrors.ErrValidation("delivery_date", "must be on/before confirmed_date")
	}
	return nil
}
