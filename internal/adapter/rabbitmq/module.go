package rabbitmq

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodrush/internal/config"
)

// Module exposes the event publisher to the fx graph.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Invoke(registerLifecycle),
)

type publisherParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

var dial = func(url, exchange string, logger *slog.Logger) (Publisher, error) {
	return Dial(url, exchange, logger)
}

func newPublisher(p publisherParams) (Publisher, error) {
	if p.Config.AMQPURL == "" {
		p.Logger.Info("event mirroring disabled: AMQP_URL not set")
		return Nop{}, nil
	}
	return dial(p.Config.AMQPURL, p.Config.AMQPExchange, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, publisher Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
}
