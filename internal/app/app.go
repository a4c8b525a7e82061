package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/foodrush/internal/config"
	pkgAuth "github.com/polkiloo/foodrush/internal/pkg/auth"
	"github.com/polkiloo/foodrush/internal/realtime"
	"github.com/polkiloo/foodrush/internal/server/http/handlers"
	"github.com/polkiloo/foodrush/internal/usecase"
	"github.com/polkiloo/foodrush/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newFacade,
		func(f *FoodRushFacade) handlers.FoodRushFacade { return f },
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Config        *config.Config
	Tokens        pkgAuth.Strategy
	Orders        *usecase.OrderUseCase
	Deliveries    *usecase.DeliveryUseCase
	Carts         *usecase.CartUseCase
	Notifications *usecase.NotificationUseCase
	Hub           *realtime.Hub
	Health        HealthChecker `optional:"true"`
}

func newFacade(p facadeParams) *FoodRushFacade {
	return NewFoodRushFacade(p.Tokens, p.Orders, p.Deliveries, p.Carts, p.Notifications, p.Hub, p.Health, p.Config.DeliveryFee)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Hub        *realtime.Hub
	Mirror     *worker.EventMirror
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting foodrush", slog.String("addr", p.Server.Addr))
			p.Mirror.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			// Hijacked websocket connections are not tracked by http.Server.
			serverErr := p.Server.Shutdown(shutdownCtx)
			if errors.Is(serverErr, http.ErrServerClosed) {
				serverErr = nil
			}
			hubErr := p.Hub.Shutdown(shutdownCtx)
			p.Mirror.Stop()

			if err := errors.Join(serverErr, hubErr); err != nil {
				return err
			}
			p.Logger.Info("foodrush stopped",
				slog.Int64("mirror_dropped", p.Mirror.Dropped()),
				slog.Int64("mirror_failed", p.Mirror.Failed()),
			)
			return nil
		},
	})
}
