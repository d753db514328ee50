package nav

// Package nav provides Navigator adapters. Non-browser hosts (the CLI,
// tests) use LogNavigator; an embedding application supplies its own
// router-backed implementation.

import (
	"log/slog"

	"github.com/inthon2025/candy-session-go/internal/ports"
)

var _ ports.Navigator = (*LogNavigator)(nil)

// LogNavigator records navigations in the log and forwards them to an
// optional callback.
type LogNavigator struct {
	Logger     *slog.Logger
	OnNavigate func(path string)
}

// NewLogNavigator creates a LogNavigator.
func NewLogNavigator(logger *slog.Logger) *LogNavigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNavigator{Logger: logger}
}

func (n *LogNavigator) Navigate(path string) {
	n.Logger.Info("navigate", slog.String("path", path))
	if n.OnNavigate != nil {
		n.OnNavigate(path)
	}
}
