package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodrush/internal/adapter/rabbitmq"
	"github.com/polkiloo/foodrush/internal/config"
	"github.com/polkiloo/foodrush/internal/realtime"
)

// Module provides the event mirror and exposes it to the realtime bus.
var Module = fx.Provide(
	newEventMirror,
	func(m *EventMirror) realtime.Mirror { return m },
)

type mirrorParams struct {
	fx.In

	Publisher rabbitmq.Publisher
	Config    *config.Config
	Logger    *slog.Logger
}

func newEventMirror(p mirrorParams) *EventMirror {
	return NewEventMirror(p.Publisher, p.Config.MirrorQueueSize, p.Config.MirrorWorkers, p.Logger)
}
