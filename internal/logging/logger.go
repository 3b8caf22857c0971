package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/spacefrags/kopia-status/internal/config"
)

// NewLogger creates the structured zerolog.Logger used by every component.
func NewLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "kopia-status").
		Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
