package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/foodrush/internal/cart"
	"github.com/polkiloo/foodrush/internal/domain/model"
	pkgAuth "github.com/polkiloo/foodrush/internal/pkg/auth"
	"github.com/polkiloo/foodrush/internal/usecase"
)

// facadeStub implements FoodRushFacade with overridable behaviour.
type facadeStub struct {
	ParseFn       func(string) (pkgAuth.Principal, error)
	PlaceFn       func(context.Context, model.NewOrder) (*model.Order, error)
	OrderFn       func(context.Context, uuid.UUID) (*model.Order, error)
	OrdersFn      func(context.Context, model.OrderFilter) ([]model.Order, error)
	UpdateOrderFn func(context.Context, uuid.UUID, model.OrderStatus) (*model.Order, error)
	AssignFn      func(context.Context, usecase.AssignRequest) (*model.Delivery, *model.Order, error)
	UpdateDelivFn func(context.Context, uuid.UUID, model.DeliveryStatus) (*model.Delivery, error)
	TrackFn       func(context.Context, uuid.UUID, model.Coordinates) (*model.TrackingPoint, error)
	TrackingFn    func(context.Context, uuid.UUID) ([]model.TrackingPoint, error)
	CartFn        func(string) usecase.CartSnapshot
	AddFn         func(string, cart.Item, cart.Restaurant) (cart.AddResult, error)
	ResolveFn     func(string, uuid.UUID, bool) (cart.AddResult, error)
	UpdateItemFn  func(string, string, int) error
	RemoveItemFn  func(string, string) error
	ClearFn       func(string) error
	CheckoutFn    func(context.Context, string, usecase.CheckoutRequest) (*model.Order, error)
	BroadcastFn   func(string, any) (bool, error)
	SendFn        func(string, string, any) (bool, error)
	ServeFn       func(http.ResponseWriter, *http.Request, pkgAuth.Principal) error
	HealthFn      func(context.Context) error
}

var _ FoodRushFacade = facadeStub{}

func sampleOrder() *model.Order {
	return &model.Order{
		ID:             uuid.MustParse("3f1c8a2e-5b7d-4c9e-8f10-2a3b4c5d6e7f"),
		Number:         "FR-20260101-7KQ2M9XD",
		CustomerName:   "Nok",
		RestaurantID:   "7",
		RestaurantName: "Krua Thai",
		Items: []model.OrderItem{{
			ID:        uuid.New(),
			ProductID: "pad-thai",
			Name:      "Pad Thai",
			Quantity:  1,
			UnitPrice: decimal.RequireFromString("80"),
			Addons:    []model.OrderItemAddon{{Name: "egg", Price: decimal.RequireFromString("10")}},
		}},
		Subtotal:    decimal.RequireFromString("90"),
		DeliveryFee: decimal.RequireFromString("30"),
		Total:       decimal.RequireFromString("120"),
		Status:      model.OrderStatusPending,
	}
}

func (s facadeStub) ParseToken(token string) (pkgAuth.Principal, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Principal{Subject: "1", Role: pkgAuth.RoleCustomer}, nil
}

func (s facadeStub) PlaceOrder(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, in)
	}
	return sampleOrder(), nil
}

func (s facadeStub) Order(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return sampleOrder(), nil
}

func (s facadeStub) Orders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filter)
	}
	return []model.Order{*sampleOrder()}, nil
}

func (s facadeStub) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if s.UpdateOrderFn != nil {
		return s.UpdateOrderFn(ctx, id, status)
	}
	o := sampleOrder()
	o.Status = status
	return o, nil
}

func (s facadeStub) AssignRider(ctx context.Context, req usecase.AssignRequest) (*model.Delivery, *model.Order, error) {
	if s.AssignFn != nil {
		return s.AssignFn(ctx, req)
	}
	o := sampleOrder()
	o.Status = model.OrderStatusAssignedRider
	o.RiderID = &req.RiderID
	return &model.Delivery{ID: uuid.New(), OrderID: req.OrderID, RiderID: req.RiderID, Status: model.DeliveryStatusAssigned}, o, nil
}

func (s facadeStub) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus) (*model.Delivery, error) {
	if s.UpdateDelivFn != nil {
		return s.UpdateDelivFn(ctx, id, status)
	}
	return &model.Delivery{ID: id, Status: status}, nil
}

func (s facadeStub) TrackDelivery(ctx context.Context, id uuid.UUID, location model.Coordinates) (*model.TrackingPoint, error) {
	if s.TrackFn != nil {
		return s.TrackFn(ctx, id, location)
	}
	return &model.TrackingPoint{ID: 1, DeliveryID: id, Location: location, Status: model.DeliveryStatusPickedUp}, nil
}

func (s facadeStub) DeliveryTracking(ctx context.Context, id uuid.UUID) ([]model.TrackingPoint, error) {
	if s.TrackingFn != nil {
		return s.TrackingFn(ctx, id)
	}
	return nil, nil
}

func (s facadeStub) Cart(owner string) usecase.CartSnapshot {
	if s.CartFn != nil {
		return s.CartFn(owner)
	}
	return usecase.CartSnapshot{}
}

func (s facadeStub) AddToCart(owner string, item cart.Item, restaurant cart.Restaurant) (cart.AddResult, error) {
	if s.AddFn != nil {
		return s.AddFn(owner, item, restaurant)
	}
	return cart.AddResult{Item: &item}, nil
}

func (s facadeStub) ResolveCartConflict(owner string, conflictID uuid.UUID, replace bool) (cart.AddResult, error) {
	if s.ResolveFn != nil {
		return s.ResolveFn(owner, conflictID, replace)
	}
	return cart.AddResult{}, nil
}

func (s facadeStub) UpdateCartItem(owner, itemID string, quantity int) error {
	if s.UpdateItemFn != nil {
		return s.UpdateItemFn(owner, itemID, quantity)
	}
	return nil
}

func (s facadeStub) RemoveCartItem(owner, itemID string) error {
	if s.RemoveItemFn != nil {
		return s.RemoveItemFn(owner, itemID)
	}
	return nil
}

func (s facadeStub) ClearCart(owner string) error {
	if s.ClearFn != nil {
		return s.ClearFn(owner)
	}
	return nil
}

func (s facadeStub) Checkout(ctx context.Context, owner string, req usecase.CheckoutRequest) (*model.Order, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, owner, req)
	}
	return sampleOrder(), nil
}

func (s facadeStub) Broadcast(event string, payload any) (bool, error) {
	if s.BroadcastFn != nil {
		return s.BroadcastFn(event, payload)
	}
	return false, nil
}

func (s facadeStub) Send(room, event string, payload any) (bool, error) {
	if s.SendFn != nil {
		return s.SendFn(room, event, payload)
	}
	return true, nil
}

func (s facadeStub) ServeRealtime(w http.ResponseWriter, r *http.Request, principal pkgAuth.Principal) error {
	if s.ServeFn != nil {
		return s.ServeFn(w, r, principal)
	}
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}

func (s facadeStub) Health(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}
