package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/foodrush/internal/cart"
	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

// GuestCartPrefix marks cart owners without a customer account.
const GuestCartPrefix = "guest-"

// CartSnapshot is the externally visible state of a cart.
type CartSnapshot struct {
	Restaurant *cart.Restaurant
	Items      []cart.Item
	Pending    *cart.Conflict
	TotalItems int
	TotalPrice decimal.Decimal
}

// CheckoutRequest carries the customer data needed to place the cart as an order.
type CheckoutRequest struct {
	Customer            model.Customer
	PaymentMethod       string
	SpecialInstructions string
}

// CartUseCase manages per-customer carts and turns them into orders.
type CartUseCase struct {
	carts       *cart.Store
	orders      *OrderUseCase
	deliveryFee decimal.Decimal
	logger      *slog.Logger
}

// NewCartUseCase constructs CartUseCase.
func NewCartUseCase(carts *cart.Store, orders *OrderUseCase, deliveryFee decimal.Decimal, logger *slog.Logger) *CartUseCase {
	return &CartUseCase{carts: carts, orders: orders, deliveryFee: deliveryFee, logger: logger}
}

// Snapshot returns the cart of owner.
func (u *CartUseCase) Snapshot(owner string) CartSnapshot {
	return snapshot(u.carts.Get(owner))
}

// AddItem adds to the cart of owner. A cross-restaurant add returns a pending conflict.
func (u *CartUseCase) AddItem(owner string, item cart.Item, restaurant cart.Restaurant) (cart.AddResult, error) {
	return u.carts.Get(owner).AddItem(item, restaurant)
}

// Resolve settles a pending conflict of owner's cart.
func (u *CartUseCase) Resolve(owner string, conflictID uuid.UUID, accept bool) (cart.AddResult, error) {
	c, ok := u.carts.Lookup(owner)
	if !ok {
		return cart.AddResult{}, domainErrors.ErrUnknownConflict
	}
	return c.Resolve(conflictID, accept)
}

// UpdateQuantity changes a line quantity; zero or less removes it.
func (u *CartUseCase) UpdateQuantity(owner, itemID string, quantity int) error {
	return u.carts.Get(owner).UpdateQuantity(itemID, quantity)
}

// Remove deletes a line.
func (u *CartUseCase) Remove(owner, itemID string) error {
	return u.carts.Get(owner).Remove(itemID)
}

// Clear empties the cart.
func (u *CartUseCase) Clear(owner string) error {
	return u.carts.Get(owner).Clear()
}

// Checkout places the cart as an order. The lines leave the cart before the order is stored,
// so a concurrent checkout cannot place them twice; they are put back when storing fails.
func (u *CartUseCase) Checkout(ctx context.Context, owner string, req CheckoutRequest) (*model.Order, error) {
	c := u.carts.Get(owner)
	if req.Customer.ID == nil && !strings.HasPrefix(owner, GuestCartPrefix) {
		id := owner
		req.Customer.ID = &id
	}

	in, taken, err := c.Take(req.Customer, u.deliveryFee, req.PaymentMethod, req.SpecialInstructions)
	if err != nil {
		return nil, err
	}
	order, err := u.orders.Create(ctx, in)
	if err != nil {
		if !c.Restore(taken) {
			u.logger.Warn("cart lines lost after failed checkout",
				slog.String("owner", owner),
				slog.String("restaurant", taken.Restaurant.ID),
				slog.Int("lines", len(taken.Items)),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}
	return order, nil
}

func snapshot(c *cart.Cart) CartSnapshot {
	s := CartSnapshot{
		Items:      c.Items(),
		Pending:    c.Pending(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
	if r, ok := c.Restaurant(); ok {
		s.Restaurant = &r
	}
	return s
}
