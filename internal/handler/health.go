package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ProofINer/proofin-backend/internal/infrastructure/chain"
	"github.com/ProofINer/proofin-backend/internal/infrastructure/redis"
	"github.com/ProofINer/proofin-backend/pkg/database"
)

// HealthHandler handles liveness and readiness checks.
type HealthHandler struct {
	chain  *chain.Client
	redis  *redis.Client
	db     *database.Pool
	logger *slog.Logger
}

// NewHealthHandler creates the health handler. Any dependency may be
// nil; readiness reports it as not configured.
func NewHealthHandler(chainClient *chain.Client, redisClient *redis.Client, db *database.Pool, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{chain: chainClient, redis: redisClient, db: db, logger: logger}
}

// Health handles GET /api/health and /healthz. Returns 200 while the
// process is up.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz. Returns 200 only when every configured
// dependency answers.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if h.chain != nil {
		if err := h.chain.Ping(ctx); err != nil {
			checks["chain"] = "error: " + err.Error()
			ready = false
		} else {
			checks["chain"] = "ok"
		}
	} else {
		checks["chain"] = "not configured"
		ready = false
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	if h.db != nil {
		if err := h.db.Health(ctx); err != nil {
			checks["postgres"] = "error: " + err.Error()
			ready = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "not configured"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeEnvelope(w, statusCode, envelope{
		Success: ready,
		Data:    map[string]any{"status": status, "checks": checks},
	})

	h.logger.Debug("readiness check", slog.String("status", status))
}
