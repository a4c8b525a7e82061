package usecase

import (
	"log/slog"
	"time"

	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/orderflow"
	"github.com/polkiloo/foodrush/internal/realtime"
)

// Publisher fans events out to realtime rooms.
type Publisher interface {
	Publish(target realtime.Target, event string, payload any) (bool, error)
}

// notifier publishes domain events. Publish failures are logged and never returned.
type notifier struct {
	publisher Publisher
	logger    *slog.Logger
}

func (n notifier) publish(target realtime.Target, event string, payload any) {
	delivered, err := n.publisher.Publish(target, event, payload)
	if err != nil {
		n.logger.Error("publish failed",
			slog.String("target", target.String()),
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
		return
	}
	n.logger.Debug("event published",
		slog.String("target", target.String()),
		slog.String("event", event),
		slog.Bool("delivered", delivered),
	)
}

func (n notifier) newOrder(order *model.Order) {
	n.publish(realtime.ToRoom(model.RoomRestaurant, order.RestaurantID), model.EventNewOrder, model.NewOrderEventFrom(order))
}

// statusChanged goes to the customer (unless guest), the rider (once assigned) and the restaurant.
func (n notifier) statusChanged(order *model.Order) {
	updatedAt := order.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	event := model.OrderStatusChangedEvent{
		OrderID:        order.ID.String(),
		OrderNumber:    order.Number,
		Status:         string(order.Status),
		RestaurantName: order.RestaurantName,
		Message:        orderflow.StatusMessage(order.Status),
		UpdatedAt:      updatedAt,
	}

	if !order.IsGuest() {
		n.publish(realtime.ToRoom(model.RoomCustomer, *order.CustomerID), model.EventOrderStatusChanged, event)
	}
	if order.HasRider() {
		n.publish(realtime.ToRoom(model.RoomRider, *order.RiderID), model.EventOrderStatusChanged, event)
	}
	n.publish(realtime.ToRoom(model.RoomRestaurant, order.RestaurantID), model.EventOrderStatusChanged, event)
}
