package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/omnik-labs/marketplace/pkg/logger"
)

// Metadata keys set on every domain event message.
const (
	MetaEventID      = "event_id"
	MetaEventVersion = "event_version"
	MetaTopic        = "event_topic"
)

// Event is implemented by every domain event that travels over the bus.
type Event interface {
	EventTopic() string
	EventID() string
	EventVersion() int
}

// NewMessage encodes evt as JSON and stamps it with its identity metadata and the
// trace context carried by ctx. The Watermill message UUID equals the event ID so
// consumers can deduplicate on either.
func NewMessage(ctx context.Context, evt Event) (*message.Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %s: %w", evt.EventTopic(), err)
	}
	msg := message.NewMessage(evt.EventID(), payload)
	msg.Metadata.Set(MetaEventID, evt.EventID())
	msg.Metadata.Set(MetaEventVersion, strconv.Itoa(evt.EventVersion()))
	msg.Metadata.Set(MetaTopic, evt.EventTopic())
	injectTrace(ctx, msg)
	return msg, nil
}

// Decode unmarshals a message payload into T.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("events: decode message %s: %w", msg.UUID, err)
	}
	return v, nil
}

// NewLoggerAdapter bridges logger.Logger to watermill.LoggerAdapter.
func NewLoggerAdapter(log logger.Logger) watermill.LoggerAdapter {
	return &slogAdapter{log: log}
}

type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
