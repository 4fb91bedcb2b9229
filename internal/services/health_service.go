package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/source"
)

// SourceStats reports the cache state of every dataset
type SourceStats interface {
	Stats() []source.EntryStats
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	sources   SourceStats
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual dataset health
type ServiceHealth struct {
	Status    string    `json:"status"`
	Rows      int       `json:"rows"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusStale    = "stale"
	StatusEmpty    = "empty"
	StatusAlive    = "alive"
)

// NewHealthService creates a new health service
func NewHealthService(version string, sources SourceStats, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		sources:   sources,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports the state of every dataset. A dataset that failed its
// last fetch makes the service degraded; it still answers with cached rows.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth),
	}
	if hs.sources == nil {
		return status
	}

	for _, st := range hs.sources.Stats() {
		sh := ServiceHealth{Rows: st.Rows, FetchedAt: st.FetchedAt, Message: st.LastError}
		switch {
		case st.LastError != "":
			sh.Status = StatusDegraded
			status.Status = StatusDegraded
		case !st.Cached:
			sh.Status = StatusEmpty
		case !st.Fresh:
			sh.Status = StatusStale
		default:
			sh.Status = StatusReady
		}
		status.Services[string(st.Dataset)] = sh
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}
