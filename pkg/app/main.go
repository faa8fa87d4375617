package app

import (
	"github.com/gorilla/sessions"

	"github.com/omnik-labs/marketplace/pkg/cache"
	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/events"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/stream"
	"github.com/omnik-labs/marketplace/pkg/telemetry"
	"github.com/omnik-labs/marketplace/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to every bounded context's services.New during process initialization.
//
// Logging: app.Logger is backed by a trace-aware handler; use the context methods
// and trace_id, span_id, request_id and caller are injected automatically:
//
//	app.Logger.InfoContext(ctx, "item listed", "item_id", id)
//	app.Logger.ErrorContext(ctx, "settlement failed", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient // nil unless TEMPORAL_ENABLED
	SessionStore   sessions.Store            // nil in worker process
	Stream         *stream.Hub               // nil in worker process or when STREAM_ENABLED=false
	LedgerMetrics  *telemetry.LedgerMetrics
}
