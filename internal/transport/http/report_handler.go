// Package http exposes the cost report query and mutation interface over
// chi. Handlers translate HTTP parameters into service calls; every
// failure renders as an RFC 7807 problem document.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "costlens/internal/errors"
	"costlens/internal/exporter"
	"costlens/internal/validation"
	"costlens/pkg/contracts/domain"
)

// ReportHandler handles cost report HTTP requests.
type ReportHandler struct {
	service        ReportServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validator      *validation.FileValidator
	maxUploadBytes int64
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *ReportHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &ReportHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "report_handler")),
		errorHandler:   errorHandler,
		validator:      validation.NewFileValidator(logger, maxUploadBytes),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the report routes.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.UploadReport)
	r.Get("/items", h.GetItems)
	r.Patch("/items/{id}", h.PatchItem)
	r.Get("/sum", h.GetSum)
	r.Get("/variance", h.GetVariance)
	r.Get("/cashflow", h.GetCashflow)
	r.Get("/vendors", h.GetVendors)
	r.Get("/quality", h.GetQuality)
	r.Get("/export/{format}", h.Export)

	return r
}

// RequireReport rejects query routes until a report has been ingested.
func (h *ReportHandler) requireReport(w http.ResponseWriter, r *http.Request) bool {
	if !h.service.HasReport() {
		h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
		return false
	}
	return true
}

// UploadReport handles POST /api/report with a multipart workbook upload.
func (h *ReportHandler) UploadReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart file field is required"))
		return
	}
	defer file.Close()

	if err := h.validator.ValidateWorkbookName(header.Filename); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "ingesting uploaded report",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	result, err := h.service.IngestWorkbook(r.Context(), file, header.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.IngestError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// GetItems handles GET /api/report/items.
func (h *ReportHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	if !h.requireReport(w, r) {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"report_id": h.service.ReportID(),
		"items":     h.service.Items(),
	})
}

// PatchItem handles PATCH /api/report/items/{id}.
func (h *ReportHandler) PatchItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireReport(w, r) {
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "item id must be an integer"))
		return
	}

	var patch domain.ItemPatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	items, err := h.service.UpdateItem(r.Context(), id, patch)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{"items": items})
}

// GetSum handles GET /api/report/sum?prefix=&field=&month=&descendants=.
func (h *ReportHandler) GetSum(w http.ResponseWriter, r *http.Request) {
	if !h.requireReport(w, r) {
		return
	}

	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("prefix", "prefix is required"))
		return
	}

	field, ok := domain.ParseField(r.URL.Query().Get("field"))
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("field", "field must be budget, actual_planned or confirmed"))
		return
	}

	month := r.URL.Query().Get("month")

	var total int64
	if r.URL.Query().Get("descendants") == "true" {
		total = h.service.SumDescendants(prefix, field, month)
	} else {
		total = h.service.SumForPrefix(prefix, field, month)
	}

	render.JSON(w, r, map[string]interface{}{
		"prefix": prefix,
		"field":  field,
		"month":  month,
		"total":  total,
	})
}

// GetVariance handles GET /api/report/variance?month=&hide_full_loss=.
func (h *ReportHandler) GetVariance(w http.ResponseWriter, r *http.Request) {
	if !h.requireReport(w, r) {
		return
	}
	month := r.URL.Query().Get("month")
	hideFullLoss := r.URL.Query().Get("hide_full_loss") == "true"
	render.JSON(w, r, map[string]interface{}{
		"variance": h.service.Variance(month, hideFullLoss),
	})
}

// GetCashflow handles GET /api/report/cashflow?opening_balance=.
func (h *ReportHandler) GetCashflow(w http.ResponseWriter, r *http.Request) {
	if !h.requireReport(w, r) {
		return
	}

	var opening *int64
	if raw := r.URL.Query().Get("opening_balance"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("opening_balance", "must be an integer"))
			return
		}
		opening = &v
	}

	render.JSON(w, r, map[string]interface{}{
		"cashflow": h.service.MonthlyCashflow(opening),
	})
}

// GetVendors handles GET /api/report/vendors?month=.
func (h *ReportHandler) GetVendors(w http.ResponseWriter, r *http.Request) {
	if !h.requireReport(w, r) {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"vendors": h.service.VendorSummary(r.URL.Query().Get("month")),
	})
}

// GetQuality handles GET /api/report/quality.
func (h *ReportHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	if !h.requireReport(w, r) {
		return
	}
	render.JSON(w, r, h.service.Quality())
}

// Export handles GET /api/report/export/{format} with format csv or json.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !h.requireReport(w, r) {
		return
	}

	items := h.service.Items()

	switch chi.URLParam(r, "format") {
	case "csv":
		data, err := exporter.RenderItemsCSV(items)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="cost_items.csv"`)
		w.Write(data)
	case "json":
		data, err := exporter.RenderItemsJSON(items)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="cost_items.json"`)
		w.Write(data)
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be csv or json"))
	}
}
