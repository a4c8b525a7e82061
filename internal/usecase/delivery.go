package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/domain/repository"
	"github.com/polkiloo/foodrush/internal/orderflow"
	"github.com/polkiloo/foodrush/internal/realtime"
)

// AssignRequest describes a rider accepting an order.
type AssignRequest struct {
	OrderID             uuid.UUID
	RiderID             string
	Pickup              model.Coordinates
	Dropoff             model.Coordinates
	EstimatedDistanceKm float64
}

// DeliveryUseCase drives the rider side of an order.
type DeliveryUseCase struct {
	deliveries repository.DeliveryRepository
	orders     repository.OrderRepository
	orderFlow  *orderflow.Machine
	flow       *orderflow.DeliveryMachine
	notify     notifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewDeliveryUseCase constructs DeliveryUseCase.
func NewDeliveryUseCase(
	deliveries repository.DeliveryRepository,
	orders repository.OrderRepository,
	orderFlow *orderflow.Machine,
	flow *orderflow.DeliveryMachine,
	publisher Publisher,
	logger *slog.Logger,
) *DeliveryUseCase {
	return &DeliveryUseCase{
		deliveries: deliveries,
		orders:     orders,
		orderFlow:  orderFlow,
		flow:       flow,
		notify:     notifier{publisher: publisher, logger: logger},
		logger:     logger,
		now:        time.Now,
	}
}

// Assign creates the delivery, binds the rider to the order and notifies every party.
func (u *DeliveryUseCase) Assign(ctx context.Context, req AssignRequest) (*model.Delivery, *model.Order, error) {
	if strings.TrimSpace(req.RiderID) == "" {
		return nil, nil, fmt.Errorf("%w: rider required", domainErrors.ErrInvalidOrder)
	}
	if !req.Pickup.Valid() || !req.Dropoff.Valid() {
		return nil, nil, fmt.Errorf("%w: invalid coordinates", domainErrors.ErrInvalidOrder)
	}

	order, err := u.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := u.deliveries.GetByOrder(ctx, order.ID); err == nil {
		return nil, nil, fmt.Errorf("delivery for order %s: %w", order.Number, domainErrors.ErrAlreadyExists)
	} else if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, nil, err
	}

	next, err := u.orderFlow.Transition(order.Status, model.OrderStatusAssignedRider)
	if err != nil {
		return nil, nil, err
	}

	now := u.now().UTC()
	delivery := &model.Delivery{
		ID:                  uuid.New(),
		OrderID:             order.ID,
		RiderID:             req.RiderID,
		Pickup:              req.Pickup,
		Dropoff:             req.Dropoff,
		Status:              model.DeliveryStatusAssigned,
		EstimatedDistanceKm: req.EstimatedDistanceKm,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	updated, err := u.orders.AssignRider(ctx, delivery, order.Status, next)
	if err != nil {
		return nil, nil, err
	}

	u.notify.statusChanged(updated)
	u.notify.publish(realtime.ToRoom(model.RoomRider, req.RiderID), model.EventDeliveryAssigned, model.DeliveryAssignedEvent{
		DeliveryID:     delivery.ID.String(),
		OrderID:        updated.ID.String(),
		OrderNumber:    updated.Number,
		RiderID:        req.RiderID,
		RestaurantName: updated.RestaurantName,
		Pickup:         model.LocationPayload{Latitude: req.Pickup.Latitude, Longitude: req.Pickup.Longitude},
		Dropoff:        model.LocationPayload{Latitude: req.Dropoff.Latitude, Longitude: req.Dropoff.Longitude},
	})
	return delivery, updated, nil
}

// UpdateStatus advances the delivery and mirrors the change onto the order when it has a counterpart.
// A concurrent change of the same delivery makes the later call fail with ErrInvalidTransition.
func (u *DeliveryUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, requested model.DeliveryStatus) (*model.Delivery, error) {
	current, err := u.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := u.flow.Transition(current.Status, requested)
	if err != nil {
		return nil, err
	}

	var actualKm *float64
	if next == model.DeliveryStatusDelivered && current.Status != next {
		actualKm = u.travelledKm(ctx, current)
	}
	updated, err := u.deliveries.UpdateStatus(ctx, id, current.Status, next, actualKm)
	if err != nil {
		return nil, err
	}

	if orderStatus, ok := orderflow.OrderStatusFor(next); ok {
		u.syncOrder(ctx, updated.OrderID, orderStatus)
	}
	return updated, nil
}

// travelledKm measures pickup, every waypoint recorded after pickup, then drop-off.
func (u *DeliveryUseCase) travelledKm(ctx context.Context, d *model.Delivery) *float64 {
	points, err := u.deliveries.ListTracking(ctx, d.ID)
	if err != nil {
		u.logger.Error("load tracking for distance failed", slog.String("delivery", d.ID.String()), slog.String("error", err.Error()))
		return nil
	}
	route := []model.Coordinates{d.Pickup}
	for _, p := range points {
		if p.Status == model.DeliveryStatusPickedUp || p.Status == model.DeliveryStatusGoingToDelivery {
			route = append(route, p.Location)
		}
	}
	route = append(route, d.Dropoff)
	km := math.Round(model.PathKm(route)*1000) / 1000
	return &km
}

func (u *DeliveryUseCase) syncOrder(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		u.logger.Error("load order for delivery update failed", slog.String("order", orderID.String()), slog.String("error", err.Error()))
		return
	}
	if order.Status == status {
		return
	}
	next, err := u.orderFlow.Transition(order.Status, status)
	if err == nil {
		var updated *model.Order
		updated, err = u.orders.UpdateStatus(ctx, orderID, order.Status, next)
		if err == nil {
			u.notify.statusChanged(updated)
			return
		}
	}
	if errors.Is(err, domainErrors.ErrInvalidTransition) {
		u.logger.Warn("order status not synced with delivery",
			slog.String("order", order.Number),
			slog.String("from", string(order.Status)),
			slog.String("to", string(status)),
			slog.String("error", err.Error()),
		)
		return
	}
	u.logger.Error("update order from delivery failed", slog.String("order", order.Number), slog.String("error", err.Error()))
}

// Track appends a rider waypoint and publishes it to the customer and restaurant rooms.
func (u *DeliveryUseCase) Track(ctx context.Context, id uuid.UUID, location model.Coordinates) (*model.TrackingPoint, error) {
	if !location.Valid() {
		return nil, fmt.Errorf("%w: invalid coordinates", domainErrors.ErrInvalidOrder)
	}
	delivery, err := u.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if orderflow.IsTerminalDelivery(delivery.Status) {
		return nil, fmt.Errorf("%w: delivery is %s", domainErrors.ErrInvalidTransition, delivery.Status)
	}

	point := &model.TrackingPoint{
		DeliveryID: delivery.ID,
		Location:   location,
		Status:     delivery.Status,
		RecordedAt: u.now().UTC(),
	}
	if err := u.deliveries.AppendTracking(ctx, point); err != nil {
		return nil, err
	}

	event := model.DeliveryTrackingEvent{
		DeliveryID: delivery.ID.String(),
		Latitude:   location.Latitude,
		Longitude:  location.Longitude,
		Status:     string(delivery.Status),
	}
	order, err := u.orders.GetByID(ctx, delivery.OrderID)
	if err != nil {
		u.logger.Error("load order for tracking failed", slog.String("delivery", delivery.ID.String()), slog.String("error", err.Error()))
		return point, nil
	}
	if !order.IsGuest() {
		u.notify.publish(realtime.ToRoom(model.RoomCustomer, *order.CustomerID), model.EventDeliveryTracking, event)
	}
	u.notify.publish(realtime.ToRoom(model.RoomRestaurant, order.RestaurantID), model.EventDeliveryTracking, event)
	return point, nil
}

// Tracking returns the waypoints of a delivery in recording order.
func (u *DeliveryUseCase) Tracking(ctx context.Context, id uuid.UUID) ([]model.TrackingPoint, error) {
	if _, err := u.deliveries.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return u.deliveries.ListTracking(ctx, id)
}
