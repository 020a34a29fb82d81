package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opsconsole/backend/internal/infrastructure/logger"
	"github.com/opsconsole/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// Pinger is satisfied by persistence.Database
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolReporter is optionally implemented by the Pinger to expose pool usage
type PoolReporter interface {
	Stats() (persistence.ConnectionStats, error)
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	db      Pinger
	service string
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, service string) *HealthHandler {
	return &HealthHandler{db: db, service: service, timeout: 2 * time.Second}
}

// Check godoc
// @ID           healthCheck
// @Summary      Health check
// @Description  Liveness, database reachability and connection pool usage
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Failure      503 {object} map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status, code, database := "healthy", http.StatusOK, "connected"
	if err := h.db.Ping(ctx); err != nil {
		logger.L(ctx).Warn("Health check: database unreachable", zap.Error(err))
		status, code, database = "unhealthy", http.StatusServiceUnavailable, "disconnected"
	}

	body := gin.H{
		"status":    status,
		"service":   h.service,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if reporter, ok := h.db.(PoolReporter); ok {
		if stats, err := reporter.Stats(); err == nil {
			body["pool"] = gin.H{
				"max_open":         stats.MaxOpenConnections,
				"open":             stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
				"wait_count":       stats.WaitCount,
				"wait_duration_ms": stats.WaitDuration.Milliseconds(),
			}
		}
	}
	c.JSON(code, body)
}
