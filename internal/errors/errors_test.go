package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/infrastructure"
)

func TestAPIErrorImplementsError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
}

func TestNewWithDetails(t *testing.T) {
	err := NewWithDetails(http.StatusNotFound, "NOT_FOUND", "missing", "campaigns")
	assert.Equal(t, "campaigns", err.Details)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("from", "must be an ISO date")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)

	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "from", detail.Field)
	assert.Equal(t, "must be an ISO date", detail.Message)
}

func TestDataLoadError(t *testing.T) {
	cause := fmt.Errorf("no date column in Google.csv")
	err := DataLoadError(cause)

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "DATA_LOAD_FAILED", err.ErrorCode)
	assert.Equal(t, cause.Error(), err.Details)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{ErrDatasetNotFound, http.StatusNotFound, "DATASET_NOT_FOUND"},
		{ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{ErrDataLoadFailed, http.StatusInternalServerError, "DATA_LOAD_FAILED"},
		{ErrServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "invalid date", "/api/dashboard/overview")
	problem.WithExtension("trace_id", "abc-123")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, TypeValidation, doc["type"])
	assert.Equal(t, "Bad Request", doc["title"])
	assert.Equal(t, float64(http.StatusBadRequest), doc["status"])
	assert.Equal(t, "invalid date", doc["detail"])
	assert.Equal(t, "/api/dashboard/overview", doc["instance"])
	assert.Equal(t, "abc-123", doc["trace_id"])
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestHandleErrorAPIError(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil)

	h.HandleError(rec, req, ErrValidation("to", "must not precede from"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, TypeValidation, doc["type"])
}

func TestHandleErrorIncludesTraceID(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil)
	req = req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-42"))

	h.HandleError(rec, req, ErrInvalidRequest)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "trace-42", doc["trace_id"])
}

func TestHandleErrorUnknownErrorIsOpaque(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/daily", nil)

	h.HandleError(rec, req, fmt.Errorf("sensitive internal detail"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "An unexpected error occurred", doc["detail"])
	assert.NotContains(t, rec.Body.String(), "sensitive internal detail")
}

func TestHandleErrorContextDeadline(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/daily", nil)

	h.HandleError(rec, req, context.DeadlineExceeded)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHandleErrorNilIsNoop(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorToProblemMapsDomainCodes(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/channels", nil)

	tests := []struct {
		err      *APIError
		wantType string
	}{
		{ErrValidationFailed, TypeValidation},
		{ErrNotFound, TypeNotFound},
		{ErrDatasetNotFound, TypeDataNotFound},
		{ErrDataLoadFailed, TypeDataLoad},
		{ErrRateLimitExceeded, TypeRateLimit},
		{ErrServiceUnavailable, TypeServiceDown},
		{ErrInternalServer, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.ErrorCode, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.err.StatusCode, problem.Status)
		})
	}
}
