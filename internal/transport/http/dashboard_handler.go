package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "adpulse/internal/errors"
	"adpulse/internal/exporter"
	"adpulse/internal/infrastructure"
	"adpulse/internal/services"
)

// DashboardHandler serves the dashboard JSON API with RFC 7807 errors.
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.Metrics
}

// NewDashboardHandler creates a new dashboard handler. metrics may be
// nil in tests.
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.Metrics) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		metrics:      metrics,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/daily", h.GetDaily)
	r.Get("/channels", h.GetChannels)
	r.Get("/campaigns", h.GetCampaigns)
	r.Get("/business", h.GetBusiness)
	r.Get("/filters", h.GetFilters)
	r.Get("/files", h.GetFiles)
	r.Get("/export", h.Export)
	r.Post("/reload", h.Reload)

	return r
}

// GetOverview handles GET /api/dashboard/overview
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	query, apiErr := parseDashboardQuery(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	overview, err := h.service.Overview(r.Context(), query.Filter())
	if err != nil {
		h.handleServiceError(w, r, err, "overview")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   overview,
	})
}

// GetDaily handles GET /api/dashboard/daily
func (h *DashboardHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	query, apiErr := parseDashboardQuery(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	series, err := h.service.Daily(r.Context(), query.Filter())
	if err != nil {
		h.handleServiceError(w, r, err, "daily series")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   series,
		"count":  len(series.Channels),
	})
}

// GetChannels handles GET /api/dashboard/channels
func (h *DashboardHandler) GetChannels(w http.ResponseWriter, r *http.Request) {
	query, apiErr := parseDashboardQuery(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	rows, err := h.service.Channels(r.Context(), query.Filter())
	if err != nil {
		h.handleServiceError(w, r, err, "channel summary")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetCampaigns handles GET /api/dashboard/campaigns
func (h *DashboardHandler) GetCampaigns(w http.ResponseWriter, r *http.Request) {
	query, apiErr := parseDashboardQuery(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	limit := query.Limit
	if limit == 0 {
		limit = defaultCampaignLimit
	}

	rows, err := h.service.Campaigns(r.Context(), query.Filter(), limit)
	if err != nil {
		h.handleServiceError(w, r, err, "campaign performance")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetBusiness handles GET /api/dashboard/business
func (h *DashboardHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	query, apiErr := parseDashboardQuery(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	rows, err := h.service.BusinessJoin(r.Context(), query.Filter())
	if err != nil {
		h.handleServiceError(w, r, err, "business join")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetFilters handles GET /api/dashboard/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "filter options")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   opts,
	})
}

// GetFiles handles GET /api/dashboard/files
func (h *DashboardHandler) GetFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.DataFiles(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("data directory listing", err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   files,
		"count":  len(files),
	})
}

// Export handles GET /api/dashboard/export. The format parameter picks
// csv or xlsx; the response streams as a file download.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	query, apiErr := parseDashboardQuery(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(exporter.FormatCSV)
	}
	format, err := exporter.ParseFormat(formatParam)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	rows, err := h.service.ExportDaily(r.Context(), query.Filter())
	if err != nil {
		h.handleServiceError(w, r, err, "export")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=\""+format.Filename("daily_channel")+"\"")

	if h.metrics != nil {
		h.metrics.ExportsTotal.WithLabelValues(string(format)).Inc()
	}

	switch format {
	case exporter.FormatXLSX:
		err = exporter.WriteDailyXLSX(w, rows)
	default:
		err = exporter.WriteDailyCSV(w, rows, exporter.WriteOptions{BOMPrefix: true})
	}
	if err != nil {
		// Headers are already out; log and abandon the response.
		h.logger.ErrorContext(r.Context(), "export write failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

// Reload handles POST /api/dashboard/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "reload requested",
		slog.String("remote_addr", r.RemoteAddr))

	if err := h.service.Reload(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.DataLoadError(err))
		return
	}

	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "filter options")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   opts,
	})
}

// handleServiceError maps service sentinels onto API errors.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("operation", what),
		slog.String("error", err.Error()))

	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	case errors.Is(err, services.ErrNoRows):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusNotFound,
			"NO_ROWS",
			"No rows match the requested filters",
		))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
