package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/omnik-labs/marketplace/pkg/config"
)

// Tag keys attached to ledger error events.
const (
	TagLedgerOperation = "ledger.operation"
	TagLedgerAddress   = "ledger.address"
)

// SetupSentry initializes the Sentry SDK. No-ops if DSN is empty.
// Every event carries the service name and the ledger's custody address.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentryOptions(cfg)); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

func sentryOptions(cfg *config.Config) sentry.ClientOptions {
	opts := sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		TracesSampleRate: 0.2,
		AttachStacktrace: true,
		Tags:             map[string]string{"service": cfg.ServiceName},
	}
	if cfg.MarketAddress != "" {
		opts.Tags[TagLedgerAddress] = cfg.MarketAddress
	}
	return opts
}

// SentryFlush flushes buffered events before process exit.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware returns a net/http middleware that captures panics and errors.
// Repanic: true so the outer Recovery middleware still handles the 500 response.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: 2 * time.Second})
	return h.Handle
}

// CaptureLedgerError reports an unexpected ledger failure tagged with the
// operation that raised it. The request's hub is used when ctx carries one.
// It returns nil when Sentry is not configured.
func CaptureLedgerError(ctx context.Context, op string, err error) *sentry.EventID {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	var id *sentry.EventID
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag(TagLedgerOperation, op)
		scope.SetLevel(sentry.LevelError)
		id = hub.CaptureException(err)
	})
	return id
}
