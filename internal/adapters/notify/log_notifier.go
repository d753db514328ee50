package notify

// Package notify provides Notifier adapters that surface transport events to
// the host application.

import (
	"context"
	"log/slog"

	"github.com/inthon2025/candy-session-go/internal/ports"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier logs transport events and forwards them to an optional
// callback, letting a notification component subscribe without coupling the
// request client to presentation.
type LogNotifier struct {
	Logger  *slog.Logger
	OnEvent func(event ports.Event)
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event ports.Event) {
	n.Logger.InfoContext(ctx, "transport event",
		slog.String("kind", string(event.Kind)),
		slog.Int("status", event.Status),
		slog.String("message", event.Message),
	)
	if n.OnEvent != nil {
		n.OnEvent(event)
	}
}
