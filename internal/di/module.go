package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/foodrush/internal/adapter/rabbitmq"
	"github.com/polkiloo/foodrush/internal/app"
	"github.com/polkiloo/foodrush/internal/config"
	"github.com/polkiloo/foodrush/internal/logger"
	"github.com/polkiloo/foodrush/internal/pkg/auth"
	"github.com/polkiloo/foodrush/internal/realtime"
	"github.com/polkiloo/foodrush/internal/server/http/router"
	"github.com/polkiloo/foodrush/internal/storage/postgres"
	"github.com/polkiloo/foodrush/internal/usecase"
	"github.com/polkiloo/foodrush/internal/worker"
)

// Module composes the application graph. Extra options are appended, which lets
// tests swap infrastructure with fx.Replace or fx.Decorate.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		rabbitmq.Module,
		worker.Module,
		realtime.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
