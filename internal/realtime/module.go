package realtime

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodrush/internal/config"
)

// Module wires the room registry, notification bus and websocket hub.
var Module = fx.Options(
	fx.Provide(
		NewRegistry,
		newBus,
		newHub,
	),
)

type busParams struct {
	fx.In

	Registry *Registry
	Logger   *slog.Logger
	Mirror   Mirror `optional:"true"`
}

func newBus(p busParams) *Bus {
	return NewBus(p.Registry, p.Logger, p.Mirror)
}

type hubParams struct {
	fx.In

	Bus    *Bus
	Logger *slog.Logger
	Config *config.Config
}

func newHub(p hubParams) *Hub {
	return NewHub(p.Bus, p.Logger, Config{
		SendBuffer:        p.Config.WSSendBuffer,
		PingInterval:      p.Config.WSPingInterval,
		WriteTimeout:      p.Config.WSWriteTimeout,
		EnableCompression: p.Config.WSCompression,
	})
}
