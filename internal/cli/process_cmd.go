package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"costlens/internal/config"
	"costlens/internal/exporter"
	"costlens/internal/infrastructure"
	"costlens/internal/services"
	"costlens/internal/validation"
)

func newProcessCmd() *cobra.Command {
	var (
		format         string
		outDir         string
		month          string
		openingBalance int64
		withQuality    bool
	)

	cmd := &cobra.Command{
		Use:   "process <workbook.xlsx> [more.xlsx...]",
		Short: "Ingest cost report workbooks and write exports",
		Long: "Ingest one or more cost report workbooks, resolve item codes and write\n" +
			"item, variance, cashflow and vendor exports next to each other in the output directory.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if outDir != "" {
				cfg.Paths.ExportsDir = outDir
			}
			logger, err := infrastructure.InitializeLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			var opening *int64
			if cmd.Flags().Changed("opening-balance") {
				opening = &openingBalance
			}

			validator := validation.NewFileValidator(logger, cfg.Server.MaxUploadBytes)
			for _, file := range args {
				if err := validator.ValidateWorkbookFile(file); err != nil {
					return err
				}
			}

			paths := config.NewPaths(cfg.Paths)
			if err := paths.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create output directories: %w", err)
			}
			writer := exporter.NewCSVWriter(paths)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.NumCPU())

			for _, file := range args {
				g.Go(func() error {
					svc := services.NewReportService(logger, cfg.Rules)
					result, err := svc.IngestFile(ctx, file)
					if err != nil {
						return fmt.Errorf("%s: %w", file, err)
					}

					base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
					if err := writeExports(svc, writer, paths, base, format, month, opening, withQuality); err != nil {
						return fmt.Errorf("%s: %w", file, err)
					}

					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items (%d rows rejected), report %s\n",
						file, result.ValidRows, result.RejectedRows, result.ReportID)
					for _, w := range svc.Warnings() {
						fmt.Fprintf(cmd.ErrOrStderr(), "  warning: %s\n", w)
					}
					return nil
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Item export format (csv or json)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (defaults to the configured exports dir)")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Restrict variance and vendor summaries to a month (YYYY-MM)")
	cmd.Flags().Int64Var(&openingBalance, "opening-balance", 0, "Opening balance for the cashflow projection (unset: the configured value)")
	cmd.Flags().BoolVar(&withQuality, "with-quality", false, "Also write a data quality report")
	return cmd
}

func writeExports(svc *services.ReportService, writer *exporter.CSVWriter, paths *config.Paths, base, format, month string, openingBalance *int64, withQuality bool) error {
	switch format {
	case "json":
		data, err := exporter.RenderItemsJSON(svc.Items())
		if err != nil {
			return err
		}
		if err := os.WriteFile(paths.GetExportPath(base+"_items.json"), data, 0644); err != nil {
			return err
		}
	case "csv":
		headers, records := exporter.ItemRecords(svc.Items())
		if err := writer.WriteSimpleCSV(base+"_items.csv", headers, records); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q (want csv or json)", format)
	}

	headers, records := exporter.VarianceRecords(svc.Variance(month, false))
	if err := writer.WriteSimpleCSV(base+"_variance.csv", headers, records); err != nil {
		return err
	}

	headers, records = exporter.CashflowRecords(svc.MonthlyCashflow(openingBalance))
	if err := writer.WriteSimpleCSV(base+"_cashflow.csv", headers, records); err != nil {
		return err
	}

	headers, records = exporter.VendorRecords(svc.VendorSummary(month))
	if err := writer.WriteSimpleCSV(base+"_vendors.csv", headers, records); err != nil {
		return err
	}

	if withQuality {
		quality, err := json.MarshalIndent(svc.Quality(), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(paths.GetExportPath(base+"_quality.json"), quality, 0644); err != nil {
			return err
		}
	}
	return nil
}
