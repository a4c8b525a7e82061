package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/foodrush/internal/cart"
	"github.com/polkiloo/foodrush/internal/config"
	"github.com/polkiloo/foodrush/internal/domain/repository"
	"github.com/polkiloo/foodrush/internal/orderflow"
	"github.com/polkiloo/foodrush/internal/realtime"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		newMachines,
		func(bus *realtime.Bus) Publisher { return bus },
		cart.NewStore,
		NewOrderUseCase,
		newDeliveryUseCase,
		NewNotificationUseCase,
		newCartUseCase,
	),
)

type machinesResult struct {
	fx.Out

	Orders     *orderflow.Machine
	Deliveries *orderflow.DeliveryMachine
}

func newMachines(cfg *config.Config, logger *slog.Logger) machinesResult {
	mode := orderflow.Permissive
	if cfg.StrictTransitions {
		mode = orderflow.Strict
	}
	logger.Info("order transitions configured", slog.String("mode", mode.String()))
	return machinesResult{
		Orders:     orderflow.NewMachine(mode),
		Deliveries: orderflow.NewDeliveryMachine(mode),
	}
}

type deliveryParams struct {
	fx.In

	Deliveries repository.DeliveryRepository
	Orders     repository.OrderRepository
	OrderFlow  *orderflow.Machine
	Flow       *orderflow.DeliveryMachine
	Publisher  Publisher
	Logger     *slog.Logger
}

func newDeliveryUseCase(p deliveryParams) *DeliveryUseCase {
	return NewDeliveryUseCase(p.Deliveries, p.Orders, p.OrderFlow, p.Flow, p.Publisher, p.Logger)
}

func newCartUseCase(store *cart.Store, orders *OrderUseCase, cfg *config.Config, logger *slog.Logger) *CartUseCase {
	return NewCartUseCase(store, orders, cfg.DeliveryFee, logger)
}
