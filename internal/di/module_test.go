package di

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/foodrush/internal/adapter/rabbitmq"
	"github.com/polkiloo/foodrush/internal/app"
	"github.com/polkiloo/foodrush/internal/config"
	"github.com/polkiloo/foodrush/internal/domain/repository"
	"github.com/polkiloo/foodrush/internal/realtime"
	"github.com/polkiloo/foodrush/internal/storage/postgres"
	"github.com/polkiloo/foodrush/internal/test"
	"github.com/polkiloo/foodrush/internal/worker"
)

type healthStub struct{}

func (healthStub) HealthCheck(context.Context) error { return nil }

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:      ":0",
		DatabaseURI:     "postgres://stub",
		JWTSecret:       "secret",
		JWTIssuer:       "foodrush",
		TokenTTL:        time.Hour,
		ShutdownTimeout: time.Millisecond,
		LogLevel:        "error",
		DeliveryFee:     decimal.RequireFromString("30"),
		MirrorWorkers:   1,
		MirrorQueueSize: 4,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	orderRepo := test.NewOrderRepositoryStub()
	deliveryRepo := test.NewDeliveryRepositoryStub()
	orderRepo.Deliveries = deliveryRepo

	var (
		facade *app.FoodRushFacade
		engine *gin.Engine
		bus    *realtime.Bus
		mirror *worker.EventMirror
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.OrderRepository(orderRepo)),
			fx.Replace(repository.DeliveryRepository(deliveryRepo)),
			fx.Replace(rabbitmq.Publisher(rabbitmq.Nop{})),
			fx.Decorate(func(app.HealthChecker) app.HealthChecker { return healthStub{} }),
		),
		fx.Populate(&facade, &engine, &bus, &mirror),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || engine == nil || mirror == nil {
		t.Fatal("expected facade, router and mirror instances")
	}

	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected healthy router, got %d", resp.Code)
	}

	if _, err := bus.Publish(realtime.Broadcast, "ping", nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
