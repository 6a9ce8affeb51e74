package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Mathew1327/Construction-tracker/pkg/logger"
)

// actorKey carries the acting user id into services for audit attribution.
type actorKey struct{}

// WithActor returns a context attributing audit entries to userID.
func WithActor(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ensureContext(ctx)
	}
	return context.WithValue(ensureContext(ctx), actorKey{}, userID)
}

func actorFrom(ctx context.Context) *string {
	if ctx == nil {
		return nil
	}
	if id, ok := ctx.Value(actorKey{}).(string); ok && id != "" {
		return &id
	}
	return nil
}

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if entry.UserID == nil {
		entry.UserID = actorFrom(ctx)
	}
	if err := audit.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}
