package logger

import (
	"strings"

	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

// New builds the process logger through httplog so request logs and application logs share one sink.
// An unknown level falls back to info.
func New(service, level string, json bool) zerolog.Logger {
	level = strings.ToLower(strings.TrimSpace(level))
	if _, err := zerolog.ParseLevel(level); err != nil || level == "" {
		level = zerolog.InfoLevel.String()
	}
	return httplog.NewLogger(service, httplog.Options{
		JSON:     json,
		LogLevel: level,
		Concise:  !json,
	})
}

// Component derives a child logger tagged with the component name
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
