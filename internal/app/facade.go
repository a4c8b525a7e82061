package app

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/foodrush/internal/cart"
	"github.com/polkiloo/foodrush/internal/domain/model"
	pkgAuth "github.com/polkiloo/foodrush/internal/pkg/auth"
	"github.com/polkiloo/foodrush/internal/realtime"
	"github.com/polkiloo/foodrush/internal/usecase"
)

// HealthChecker reports storage readiness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FoodRushFacade exposes the use cases to the HTTP layer.
type FoodRushFacade struct {
	tokens        pkgAuth.Strategy
	orders        *usecase.OrderUseCase
	deliveries    *usecase.DeliveryUseCase
	carts         *usecase.CartUseCase
	notifications *usecase.NotificationUseCase
	hub           *realtime.Hub
	health        HealthChecker
	deliveryFee   decimal.Decimal
}

func NewFoodRushFacade(
	tokens pkgAuth.Strategy,
	orders *usecase.OrderUseCase,
	deliveries *usecase.DeliveryUseCase,
	carts *usecase.CartUseCase,
	notifications *usecase.NotificationUseCase,
	hub *realtime.Hub,
	health HealthChecker,
	deliveryFee decimal.Decimal,
) *FoodRushFacade {
	return &FoodRushFacade{
		tokens:        tokens,
		orders:        orders,
		deliveries:    deliveries,
		carts:         carts,
		notifications: notifications,
		hub:           hub,
		health:        health,
		deliveryFee:   deliveryFee,
	}
}

func (f *FoodRushFacade) ParseToken(token string) (pkgAuth.Principal, error) {
	return f.tokens.ParseToken(token)
}

// PlaceOrder creates an order priced with the configured delivery fee.
func (f *FoodRushFacade) PlaceOrder(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	in.DeliveryFee = f.deliveryFee
	return f.orders.Create(ctx, in)
}

func (f *FoodRushFacade) Order(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return f.orders.Get(ctx, id)
}

func (f *FoodRushFacade) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return f.orders.List(ctx, filter)
}

func (f *FoodRushFacade) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, id, status)
}

func (f *FoodRushFacade) AssignRider(ctx context.Context, req usecase.AssignRequest) (*model.Delivery, *model.Order, error) {
	return f.deliveries.Assign(ctx, req)
}

func (f *FoodRushFacade) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus) (*model.Delivery, error) {
	return f.deliveries.UpdateStatus(ctx, id, status)
}

func (f *FoodRushFacade) TrackDelivery(ctx context.Context, id uuid.UUID, location model.Coordinates) (*model.TrackingPoint, error) {
	return f.deliveries.Track(ctx, id, location)
}

func (f *FoodRushFacade) DeliveryTracking(ctx context.Context, id uuid.UUID) ([]model.TrackingPoint, error) {
	return f.deliveries.Tracking(ctx, id)
}

func (f *FoodRushFacade) Cart(owner string) usecase.CartSnapshot {
	return f.carts.Snapshot(owner)
}

func (f *FoodRushFacade) AddToCart(owner string, item cart.Item, restaurant cart.Restaurant) (cart.AddResult, error) {
	return f.carts.AddItem(owner, item, restaurant)
}

func (f *FoodRushFacade) ResolveCartConflict(owner string, conflictID uuid.UUID, replace bool) (cart.AddResult, error) {
	return f.carts.Resolve(owner, conflictID, replace)
}

func (f *FoodRushFacade) UpdateCartItem(owner, itemID string, quantity int) error {
	return f.carts.UpdateQuantity(owner, itemID, quantity)
}

func (f *FoodRushFacade) RemoveCartItem(owner, itemID string) error {
	return f.carts.Remove(owner, itemID)
}

func (f *FoodRushFacade) ClearCart(owner string) error {
	return f.carts.Clear(owner)
}

func (f *FoodRushFacade) Checkout(ctx context.Context, owner string, req usecase.CheckoutRequest) (*model.Order, error) {
	return f.carts.Checkout(ctx, owner, req)
}

func (f *FoodRushFacade) Broadcast(event string, payload any) (bool, error) {
	return f.notifications.Broadcast(event, payload)
}

func (f *FoodRushFacade) Send(room, event string, payload any) (bool, error) {
	return f.notifications.Send(room, event, payload)
}

func (f *FoodRushFacade) ServeRealtime(w http.ResponseWriter, r *http.Request, principal pkgAuth.Principal) error {
	return f.hub.Serve(w, r, principal)
}

// Health checks storage; a nil checker reports healthy.
func (f *FoodRushFacade) Health(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
