package logging

import (
	"context"
	"log/slog"

	"github.com/hanpama/bookgraph/internal/eventbus"
	"github.com/hanpama/bookgraph/internal/events"
	"github.com/hanpama/bookgraph/internal/reqid"
)

// Subscribe logs finished HTTP requests, GraphQL operations and created
// entities to logger. The returned func removes the subscriptions.
func Subscribe(logger *slog.Logger) (unsubscribe func()) {
	offs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.RequestFinish) {
			logger.LogAttrs(ctx, slog.LevelInfo, "http request",
				slog.String("method", e.Request.Method),
				slog.String("path", e.Request.URL.Path),
				slog.Int("status", e.Status),
				slog.Duration("duration", e.Duration),
				requestID(ctx),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.OperationFinish) {
			level := slog.LevelDebug
			if len(e.Errors) > 0 {
				level = slog.LevelWarn
			}
			logger.LogAttrs(ctx, level, "graphql operation",
				slog.String("operation", e.OperationType),
				slog.String("name", e.OperationName),
				slog.Int("errors", len(e.Errors)),
				slog.Duration("duration", e.Duration),
				requestID(ctx),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.EntityCreated) {
			logger.LogAttrs(ctx, slog.LevelInfo, "entity created",
				slog.String("kind", e.Kind),
				slog.Int("id", e.ID),
				requestID(ctx),
			)
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func requestID(ctx context.Context) slog.Attr {
	id, _ := reqid.FromContext(ctx)
	return slog.String("request_id", id)
}
