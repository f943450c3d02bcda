package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *pgxpool.Pool and caching.CacheService.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        Pinger
	cache     Pinger
	version   string
	startedAt time.Time
	jobStatus func() map[string]interface{}
}

// NewHealthHandlers creates a new health handlers instance. jobStatus may be nil.
func NewHealthHandlers(db, cache Pinger, version string, jobStatus func() map[string]interface{}) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		version:   version,
		startedAt: time.Now(),
		jobStatus: jobStatus,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Services  map[string]string      `json:"services,omitempty"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version"`
	Jobs      map[string]interface{} `json:"jobs,omitempty"`
}

// HealthCheck reports liveness only.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, &HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Version:   h.version,
	})
}

// ReadinessCheck reports 503 until both Postgres and Redis answer.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  map[string]string{},
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Version:   h.version,
	}
	check := func(name string, p Pinger) {
		if p == nil {
			health.Services[name] = "disabled"
			return
		}
		if err := p.Ping(ctx); err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "not_ready"
			return
		}
		health.Services[name] = "healthy"
	}
	check("database", h.db)
	check("redis", h.cache)
	if h.jobStatus != nil {
		health.Jobs = h.jobStatus()
	}

	if health.Status != "ready" {
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	return c.JSON(http.StatusOK, health)
}

// MetricsResponse represents application metrics
type MetricsResponse struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Goroutines int       `json:"goroutines"`
	HeapAlloc  uint64    `json:"heap_alloc_bytes"`
}

func (h *HealthHandlers) GetMetrics(c echo.Context) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return c.JSON(http.StatusOK, &MetricsResponse{
		Timestamp:  time.Now().UTC(),
		Version:    h.version,
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
	})
}
