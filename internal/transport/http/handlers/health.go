package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type readinessCheck struct {
	name  string
	probe func(ctx context.Context) error
}

// HealthOption customises a HealthHandler.
type HealthOption func(*HealthHandler)

// WithReadinessCheck registers a named dependency probe consulted by the
// readiness endpoint.
func WithReadinessCheck(name string, probe func(ctx context.Context) error) HealthOption {
	return func(h *HealthHandler) {
		if name == "" || probe == nil {
			return
		}
		h.checks = append(h.checks, readinessCheck{name: name, probe: probe})
	}
}

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	startedAt time.Time
	checks    []readinessCheck
}

// NewHealthHandler builds a new health handler instance.
func NewHealthHandler(opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{startedAt: time.Now().UTC()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Status godoc
// @Summary Service health check
// @Description Returns the status and uptime of the service. Does not touch backing stores.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Readiness godoc
// @Summary Service readiness check
// @Description Verifies connectivity to backing stores. Returns 503 when any probe fails.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	status := http.StatusOK

	for _, check := range h.checks {
		if err := check.probe(ctx); err != nil {
			results[check.name] = "unreachable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.name] = "ok"
	}

	resp := HealthResponse{Status: "ok", Checks: results}
	if status != http.StatusOK {
		resp.Status = "degraded"
	}

	c.JSON(status, resp)
}
