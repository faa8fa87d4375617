// Package workflows connects the marketplace processes to Temporal.
//
// Temporal is optional (TEMPORAL_ENABLED). When it is off, the API serves only the
// synchronous ledger endpoints and the worker runs event consumers only.
package workflows

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/logger"
)

// TemporalClient wraps the Temporal SDK client with project-level configuration.
type TemporalClient struct {
	Client    client.Client
	Namespace string
	TaskQueue string
	log       logger.Logger
}

// NewTemporalClient initializes a Temporal client with OTel tracing integration.
// Call Close() when the application shuts down.
func NewTemporalClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*TemporalClient, error) {
	otelInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, fmt.Errorf("create temporal otel interceptor: %w", err)
	}

	c, err := client.DialContext(ctx, client.Options{
		HostPort:     cfg.TemporalHostPort,
		Namespace:    cfg.TemporalNamespace,
		Logger:       NewLogger(log),
		Interceptors: []interceptor.ClientInterceptor{otelInterceptor},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal server at %s: %w", cfg.TemporalHostPort, err)
	}

	log.Info("temporal client connected",
		"host_port", cfg.TemporalHostPort,
		"namespace", cfg.TemporalNamespace,
		"task_queue", cfg.TemporalTaskQueue,
	)

	return &TemporalClient{
		Client:    c,
		Namespace: cfg.TemporalNamespace,
		TaskQueue: cfg.TemporalTaskQueue,
		log:       log,
	}, nil
}

// NewWorker returns a worker polling the client's task queue. Register workflows
// and activities on it, then call Run or Start.
func (tc *TemporalClient) NewWorker() worker.Worker {
	return worker.New(tc.Client, tc.TaskQueue, worker.Options{})
}

// Ping checks the Temporal frontend health.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health: %w", err)
	}
	return nil
}

// Close gracefully shuts down the Temporal client connection.
func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}

// NewLogger adapts logger.Logger to Temporal's log.Logger interface.
func NewLogger(log logger.Logger) temporallog.Logger {
	return &temporalLogger{log: log}
}

type temporalLogger struct {
	log logger.Logger
}

func (l *temporalLogger) Debug(msg string, keyvals ...any) {
	l.log.Debug(msg, keyvals...)
}

func (l *temporalLogger) Info(msg string, keyvals ...any) {
	l.log.Info(msg, keyvals...)
}

func (l *temporalLogger) Warn(msg string, keyvals ...any) {
	l.log.Warn(msg, keyvals...)
}

func (l *temporalLogger) Error(msg string, keyvals ...any) {
	l.log.Error(msg, keyvals...)
}
