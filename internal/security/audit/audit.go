package audit

import (
	"context"
	"log/slog"
	"time"
)

// RequestIDContextKey carries the request id assigned by the HTTP
// layer.
type RequestIDContextKey struct{}

// Logger emits structured audit lines for chain-mutating actions:
// contract creation, verification, minting and escrow movements.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, address, role, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID := ctx.Value(RequestIDContextKey{}); reqID != nil {
		requestID, _ = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("address", address),
		slog.String("role", role),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogContractAction(ctx context.Context, address, role, action, contractID, status string) {
	al.LogAction(ctx, address, role, action, "contract", contractID, status, "")
}

func (al *Logger) LogDenied(ctx context.Context, address, role, reason string) {
	al.LogAction(ctx, address, role, "access_denied", "api", "", "denied", reason)
}
