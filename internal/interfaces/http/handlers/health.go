package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck probes one dependency; a nil error means ready.
type ReadinessCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checks map[string]ReadinessCheck
}

// NewHealthHandler constructs a HealthHandler with named dependency checks.
func NewHealthHandler(checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Live handles GET /healthz: the process is up.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /readyz: every dependency check must pass.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
		} else {
			results[name] = "ok"
		}
	}
	c.JSON(status, gin.H{"checks": results})
}
