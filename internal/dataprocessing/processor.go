package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apperrors "costlens/internal/errors"
	"costlens/pkg/contracts/domain"
)

// Processor runs the ingestion pipeline over a raw cell grid.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a new ingestion processor.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger.With(slog.String("component", "processor"))}
}

// Ingest converts a raw cell grid into the canonical item collection.
// Items are numbered sequentially from 1 in source row order. Rows that
// are blank across every mapped column are dropped and counted in
// RejectedRows. The returned warnings cover unresolved columns,
// synthesized codes and duplicate codes; none of them abort ingestion.
func (p *Processor) Ingest(ctx context.Context, grid [][]string, sourceFile string) (*domain.IngestResult, []apperrors.Warning, error) {
	headerRow, err := DetectHeader(grid)
	if err != nil {
		return nil, nil, err
	}

	var subHeader []string
	if headerRow+1 < len(grid) {
		subHeader = grid[headerRow+1]
	}
	tokens := BuildHeaderTokens(grid[headerRow], subHeader)
	cmap, warnings := MapColumns(tokens)

	p.logger.InfoContext(ctx, "header detected",
		slog.String("source_file", sourceFile),
		slog.Int("header_row", headerRow),
		slog.Int("mapped_columns", len(cmap)))

	dataStart := headerRow + 2
	var dataRows [][]string
	if dataStart < len(grid) {
		dataRows = grid[dataStart:]
	}

	totalRows := len(dataRows)
	var kept [][]string
	for _, row := range dataRows {
		if rowIsBlank(cmap, row) {
			continue
		}
		kept = append(kept, row)
	}

	rawCodes := make([]string, len(kept))
	for i, row := range kept {
		rawCodes[i] = cmap.Cell(row, RoleCode)
	}
	resolved := ResolveCodes(rawCodes)

	items := make([]domain.Item, len(kept))
	for i, row := range kept {
		item := domain.Item{
			ID:                  i + 1,
			Code:                resolved[i].Code,
			DisplayCode:         resolved[i].DisplayCode,
			Title:               cmap.Cell(row, RoleTitle),
			Vendor:              cmap.Cell(row, RoleVendor),
			Note:                cmap.Cell(row, RoleNote),
			PONumber:            cmap.Cell(row, RolePONumber),
			BudgetAmount:        NormalizeAmount(cmap.Cell(row, RoleBudgetAmount)),
			ActualPlannedAmount: NormalizeAmount(cmap.Cell(row, RoleActualAmount)),
			ConfirmedAmount:     NormalizeAmount(cmap.Cell(row, RoleConfirmedAmount)),
			BudgetDate:          NormalizeDate(cmap.Cell(row, RoleBudgetDate)),
			ActualPlannedDate:   NormalizeDate(cmap.Cell(row, RoleActualDate)),
			ConfirmedDate:       NormalizeDate(cmap.Cell(row, RoleConfirmedDate)),
			PaymentDate:         NormalizeDate(cmap.Cell(row, RolePaymentDate)),
			DeliveryDate:        NormalizeDate(cmap.Cell(row, RoleDeliveryDate)),
		}
		item.IsPaid = item.PaymentDate != ""
		items[i] = item

		if resolved[i].Synthesized {
			warnings = append(warnings, apperrors.Warning{
				Kind:    apperrors.WarnAmbiguousCode,
				Subject: item.Code,
				Detail:  fmt.Sprintf("row %d raw code %q", item.ID, resolved[i].DisplayCode),
			})
		}
	}

	seen := make(map[string]int)
	for _, it := range items {
		seen[it.Code]++
	}
	for code, n := range seen {
		if n > 1 {
			warnings = append(warnings, apperrors.Warning{
				Kind:    apperrors.WarnDuplicateCode,
				Subject: code,
				Detail:  fmt.Sprintf("%d rows share this code", n),
			})
		}
	}

	result := &domain.IngestResult{
		ReportID:     uuid.New().String(),
		SourceFile:   sourceFile,
		Items:        items,
		TotalRows:    totalRows,
		ValidRows:    len(items),
		RejectedRows: totalRows - len(items),
	}

	p.logger.InfoContext(ctx, "ingestion complete",
		slog.String("report_id", result.ReportID),
		slog.Int("total_rows", result.TotalRows),
		slog.Int("valid_rows", result.ValidRows),
		slog.Int("rejected_rows", result.RejectedRows),
		slog.Int("warnings", len(warnings)))

	return result, warnings, nil
}

// rowIsBlank reports whether every mapped column of the row is empty.
func rowIsBlank(cmap ColumnMap, row []string) bool {
	for _, role := range allRoles {
		if cmap.Cell(row, role) != "" {
			return false
		}
	}
	return true
}
