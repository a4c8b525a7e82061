package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/polkiloo/foodrush/internal/cart"
	"github.com/polkiloo/foodrush/internal/domain/model"
	pkgAuth "github.com/polkiloo/foodrush/internal/pkg/auth"
	"github.com/polkiloo/foodrush/internal/usecase"
)

// AuthFacade verifies bearer tokens.
type AuthFacade interface {
	ParseToken(token string) (pkgAuth.Principal, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, in model.NewOrder) (*model.Order, error)
	Order(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
}

// DeliveryFacade provides rider side operations.
type DeliveryFacade interface {
	AssignRider(ctx context.Context, req usecase.AssignRequest) (*model.Delivery, *model.Order, error)
	UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus) (*model.Delivery, error)
	TrackDelivery(ctx context.Context, id uuid.UUID, location model.Coordinates) (*model.TrackingPoint, error)
	DeliveryTracking(ctx context.Context, id uuid.UUID) ([]model.TrackingPoint, error)
}

// CartFacade manages carts keyed by owner.
type CartFacade interface {
	Cart(owner string) usecase.CartSnapshot
	AddToCart(owner string, item cart.Item, restaurant cart.Restaurant) (cart.AddResult, error)
	ResolveCartConflict(owner string, conflictID uuid.UUID, replace bool) (cart.AddResult, error)
	UpdateCartItem(owner, itemID string, quantity int) error
	RemoveCartItem(owner, itemID string) error
	ClearCart(owner string) error
	Checkout(ctx context.Context, owner string, req usecase.CheckoutRequest) (*model.Order, error)
}

// NotificationFacade pushes admin events.
type NotificationFacade interface {
	Broadcast(event string, payload any) (bool, error)
	Send(room, event string, payload any) (bool, error)
}

// RealtimeFacade serves websocket sessions and reports readiness.
type RealtimeFacade interface {
	ServeRealtime(w http.ResponseWriter, r *http.Request, principal pkgAuth.Principal) error
	Health(ctx context.Context) error
}

// FoodRushFacade aggregates the full set of operations used across handlers.
type FoodRushFacade interface {
	AuthFacade
	OrderFacade
	DeliveryFacade
	CartFacade
	NotificationFacade
	RealtimeFacade
}
