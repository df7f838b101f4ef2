package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/dataset"
	apierrors "adpulse/internal/errors"
	"adpulse/internal/files"
	"adpulse/internal/services"
)

// stubDashboard implements DashboardServiceInterface with function fields
// so each test overrides only what it needs.
type stubDashboard struct {
	reload        func(ctx context.Context) error
	overview      func(ctx context.Context, f dataset.Filter) (*services.Overview, error)
	daily         func(ctx context.Context, f dataset.Filter) (*services.DailySeries, error)
	channels      func(ctx context.Context, f dataset.Filter) ([]dataset.ChannelSummaryRow, error)
	campaigns     func(ctx context.Context, f dataset.Filter, limit int) ([]dataset.CampaignRow, error)
	businessJoin  func(ctx context.Context, f dataset.Filter) ([]dataset.BusinessJoinRow, error)
	filterOptions func(ctx context.Context) (*services.FilterOptions, error)
	dataFiles     func(ctx context.Context) ([]files.FileInfo, error)
	exportDaily   func(ctx context.Context, f dataset.Filter) ([]dataset.DailyChannelRow, error)
}

func (s *stubDashboard) Reload(ctx context.Context) error {
	if s.reload == nil {
		return nil
	}
	return s.reload(ctx)
}

func (s *stubDashboard) Overview(ctx context.Context, f dataset.Filter) (*services.Overview, error) {
	if s.overview == nil {
		return &services.Overview{}, nil
	}
	return s.overview(ctx, f)
}

func (s *stubDashboard) Daily(ctx context.Context, f dataset.Filter) (*services.DailySeries, error) {
	if s.daily == nil {
		return &services.DailySeries{}, nil
	}
	return s.daily(ctx, f)
}

func (s *stubDashboard) Channels(ctx context.Context, f dataset.Filter) ([]dataset.ChannelSummaryRow, error) {
	if s.channels == nil {
		return nil, nil
	}
	return s.channels(ctx, f)
}

func (s *stubDashboard) Campaigns(ctx context.Context, f dataset.Filter, limit int) ([]dataset.CampaignRow, error) {
	if s.campaigns == nil {
		return nil, nil
	}
	return s.campaigns(ctx, f, limit)
}

func (s *stubDashboard) BusinessJoin(ctx context.Context, f dataset.Filter) ([]dataset.BusinessJoinRow, error) {
	if s.businessJoin == nil {
		return nil, nil
	}
	return s.businessJoin(ctx, f)
}

func (s *stubDashboard) FilterOptions(ctx context.Context) (*services.FilterOptions, error) {
	if s.filterOptions == nil {
		return &services.FilterOptions{}, nil
	}
	return s.filterOptions(ctx)
}

func (s *stubDashboard) DataFiles(ctx context.Context) ([]files.FileInfo, error) {
	if s.dataFiles == nil {
		return nil, nil
	}
	return s.dataFiles(ctx)
}

func (s *stubDashboard) ExportDaily(ctx context.Context, f dataset.Filter) ([]dataset.DailyChannelRow, error) {
	if s.exportDaily == nil {
		return nil, nil
	}
	return s.exportDaily(ctx, f)
}

func newTestHandler(stub *stubDashboard) *DashboardHandler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewDashboardHandler(stub, logger, apierrors.NewErrorHandler(logger, false), nil)
}

func doRequest(t *testing.T, h *DashboardHandler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetOverview(t *testing.T) {
	stub := &stubDashboard{
		overview: func(ctx context.Context, f dataset.Filter) (*services.Overview, error) {
			return &services.Overview{TotalSpend: 215, MarketingRows: 4}, nil
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodGet, "/overview")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 215.0, data["total_spend"])
}

func TestGetOverviewPassesFilter(t *testing.T) {
	var got dataset.Filter
	stub := &stubDashboard{
		overview: func(ctx context.Context, f dataset.Filter) (*services.Overview, error) {
			got = f
			return &services.Overview{}, nil
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodGet,
		"/overview?from=2025-01-01&to=2025-01-31&channels=Google,Facebook&states=CA")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), got.From)
	assert.Equal(t, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), got.To)
	assert.Equal(t, []string{"Google", "Facebook"}, got.Channels)
	assert.Equal(t, []string{"CA"}, got.States)
}

func TestGetOverviewInvalidDate(t *testing.T) {
	rec := doRequest(t, newTestHandler(&stubDashboard{}), http.MethodGet, "/overview?from=01-02-2025")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "/errors/validation", body["type"])
}

func TestGetOverviewReversedRange(t *testing.T) {
	rec := doRequest(t, newTestHandler(&stubDashboard{}), http.MethodGet,
		"/overview?from=2025-02-01&to=2025-01-01")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDatasetNotLoadedMapsTo404(t *testing.T) {
	stub := &stubDashboard{
		overview: func(ctx context.Context, f dataset.Filter) (*services.Overview, error) {
			return nil, services.ErrDatasetNotLoaded
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodGet, "/overview")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "/errors/data/not-found", body["type"])
}

func TestGetChannelsNoRows(t *testing.T) {
	stub := &stubDashboard{
		channels: func(ctx context.Context, f dataset.Filter) ([]dataset.ChannelSummaryRow, error) {
			return nil, services.ErrNoRows
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodGet, "/channels?channels=LinkedIn")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCampaignsDefaultLimit(t *testing.T) {
	var gotLimit int
	stub := &stubDashboard{
		campaigns: func(ctx context.Context, f dataset.Filter, limit int) ([]dataset.CampaignRow, error) {
			gotLimit = limit
			return []dataset.CampaignRow{{Campaign: "alpha"}}, nil
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodGet, "/campaigns")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultCampaignLimit, gotLimit)

	rec = doRequest(t, newTestHandler(stub), http.MethodGet, "/campaigns?limit=5")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotLimit)
}

func TestGetCampaignsInvalidLimit(t *testing.T) {
	rec := doRequest(t, newTestHandler(&stubDashboard{}), http.MethodGet, "/campaigns?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, newTestHandler(&stubDashboard{}), http.MethodGet, "/campaigns?limit=10000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFiles(t *testing.T) {
	stub := &stubDashboard{
		dataFiles: func(ctx context.Context) ([]files.FileInfo, error) {
			return []files.FileInfo{
				{Name: "Google.csv", Role: files.RoleChannel, Channel: "Google", Exists: true},
				{Name: "business.csv", Role: files.RoleBusiness, Exists: false},
			}, nil
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodGet, "/files")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 2.0, body["count"])
	data := body["data"].([]interface{})
	first := data[0].(map[string]interface{})
	assert.Equal(t, "Google.csv", first["name"])
	assert.Equal(t, "channel", first["role"])
}

func TestExportCSV(t *testing.T) {
	stub := &stubDashboard{
		exportDaily: func(ctx context.Context, f dataset.Filter) ([]dataset.DailyChannelRow, error) {
			return []dataset.DailyChannelRow{{
				Date:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
				Channel: "Google",
			}}, nil
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodGet, "/export")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "daily_channel.csv")
	assert.Contains(t, rec.Body.String(), "2025-01-01,Google")
}

func TestExportXLSX(t *testing.T) {
	stub := &stubDashboard{
		exportDaily: func(ctx context.Context, f dataset.Filter) ([]dataset.DailyChannelRow, error) {
			return []dataset.DailyChannelRow{{Channel: "Google"}}, nil
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodGet, "/export?format=xlsx")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "daily_channel.xlsx")
	// XLSX files start with the zip magic bytes
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	rec := doRequest(t, newTestHandler(&stubDashboard{}), http.MethodGet, "/export?format=pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReload(t *testing.T) {
	called := false
	stub := &stubDashboard{
		reload: func(ctx context.Context) error {
			called = true
			return nil
		},
		filterOptions: func(ctx context.Context) (*services.FilterOptions, error) {
			return &services.FilterOptions{Channels: []string{"Google"}}, nil
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodPost, "/reload")

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
}

func TestReloadFailure(t *testing.T) {
	stub := &stubDashboard{
		reload: func(ctx context.Context) error {
			return assert.AnError
		},
	}

	rec := doRequest(t, newTestHandler(stub), http.MethodPost, "/reload")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "/errors/data/load-failed", body["type"])
}
