// internal/app/notify/sink.go

// Package notify delivers side-effect intents produced by the lifecycle
// engine. Delivery is fire-and-forget: a failed or dropped notification
// never affects the correctness of the request record.
package notify

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Sink receives one notification per recipient. Implementations must be
// safe for concurrent use and should not block beyond their own delivery
// round trip.
type Sink interface {
	Notify(ctx context.Context, userID primitive.ObjectID, kind string, payload map[string]string)
}

// LogSink writes notifications to the structured log. It is the default
// sink and the development stand-in for a real delivery channel.
type LogSink struct {
	Log *zap.Logger
}

// NewLogSink constructs a LogSink over the given logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{Log: logger}
}

// Notify logs the notification at info level.
func (s *LogSink) Notify(_ context.Context, userID primitive.ObjectID, kind string, payload map[string]string) {
	s.Log.Info("notification",
		zap.String("user_id", userID.Hex()),
		zap.String("kind", kind),
		zap.Any("payload", payload))
}

// Discard is a Sink that drops everything. Useful in tests.
type Discard struct{}

// Notify does nothing.
func (Discard) Notify(context.Context, primitive.ObjectID, string, map[string]string) {}
