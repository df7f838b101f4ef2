package services

import (
	"context"
	"log/slog"
	"time"
)

// DatasetStatus is the minimal view the health service needs of the
// dashboard service.
type DatasetStatus interface {
	Loaded() bool
}

// HealthService reports liveness and readiness for the dashboard.
type HealthService struct {
	version   string
	buildTime string
	startedAt time.Time
	data      DatasetStatus
	logger    *slog.Logger
}

// NewHealthService creates a health service bound to the dataset status.
func NewHealthService(version, buildTime string, data DatasetStatus, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		startedAt: time.Now(),
		data:      data,
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthStatus is the response body for health endpoints.
type HealthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	DatasetLoaded bool    `json:"dataset_loaded"`
}

// HealthCheck reports overall health.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	loaded := s.data != nil && s.data.Loaded()
	status := "healthy"
	if !loaded {
		status = "degraded"
	}

	return HealthStatus{
		Status:        status,
		Version:       s.version,
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		DatasetLoaded: loaded,
	}
}

// ReadinessCheck reports whether the service can answer dashboard queries.
// Ready means a dataset has been loaded.
func (s *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	st := s.HealthCheck(ctx)
	if st.DatasetLoaded {
		st.Status = "ready"
	} else {
		st.Status = "not_ready"
	}
	return st
}

// LivenessCheck reports process liveness; it never depends on the dataset.
func (s *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:        "alive",
		Version:       s.version,
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		DatasetLoaded: s.data != nil && s.data.Loaded(),
	}
}

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
}

// Version returns build information.
func (s *HealthService) Version() VersionInfo {
	return VersionInfo{
		Version:   s.version,
		BuildTime: s.buildTime,
	}
}
