package audit

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID int64, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID := ctx.Value("request_id"); reqID != nil {
		requestID = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", strconv.FormatInt(userID, 10)),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogGeneration(ctx context.Context, userID int64, profileID, status, details string) {
	al.LogAction(ctx, userID, "generate", "profile", profileID, status, details)
}

func (al *Logger) LogDeletion(ctx context.Context, userID int64, profileID, status, details string) {
	al.LogAction(ctx, userID, "delete", "profile", profileID, status, details)
}

func (al *Logger) LogDenied(ctx context.Context, userID int64, reason string) {
	al.LogAction(ctx, userID, "access_denied", "api", "", "denied", reason)
}
