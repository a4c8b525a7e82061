package logger

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodrush/internal/config"
)

// Module wires slog logger for dependency injection.
var Module = fx.Provide(fromConfig)

func fromConfig(cfg *config.Config) *slog.Logger {
	return NewWithLevel(ParseLevel(cfg.LogLevel))
}
