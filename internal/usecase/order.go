package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/domain/repository"
	"github.com/polkiloo/foodrush/internal/orderflow"
)

const (
	defaultPaymentMethod = "cash"
	numberAttempts       = 3
)

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders   repository.OrderRepository
	machine  *orderflow.Machine
	notify   notifier
	now      func() time.Time
	numberFn func(time.Time) string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, machine *orderflow.Machine, publisher Publisher, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		machine:  machine,
		notify:   notifier{publisher: publisher, logger: logger},
		now:      time.Now,
		numberFn: GenerateOrderNumber,
	}
}

// Create prices and stores a new order, then announces it to the restaurant room.
func (u *OrderUseCase) Create(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	if err := ValidateNewOrder(in); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	items := make([]model.OrderItem, len(in.Items))
	subtotal := decimal.Zero
	for i, it := range in.Items {
		it.ID = uuid.New()
		it.Addons = append([]model.OrderItemAddon(nil), it.Addons...)
		items[i] = it
		subtotal = subtotal.Add(it.LineTotal())
	}

	paymentMethod := strings.TrimSpace(in.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	order := &model.Order{
		ID:                  uuid.New(),
		CustomerID:          in.Customer.ID,
		CustomerName:        in.Customer.Name,
		CustomerPhone:       in.Customer.Phone,
		CustomerAddress:     in.Customer.Address,
		RestaurantID:        in.RestaurantID,
		RestaurantName:      in.RestaurantName,
		Items:               items,
		Subtotal:            subtotal,
		DeliveryFee:         in.DeliveryFee,
		Total:               subtotal.Add(in.DeliveryFee),
		Status:              model.OrderStatusPending,
		PaymentMethod:       paymentMethod,
		PaymentStatus:       model.PaymentStatusPending,
		SpecialInstructions: in.SpecialInstructions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var err error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		order.Number = u.numberFn(now)
		if err = u.orders.Create(ctx, order); !errors.Is(err, domainErrors.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	u.notify.newOrder(order)
	return order, nil
}

// Get returns an order by id.
func (u *OrderUseCase) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// List returns orders matching filter, newest first.
func (u *OrderUseCase) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return u.orders.List(ctx, filter)
}

// UpdateStatus moves the order through the state machine and publishes the change.
// Nothing is published when the order is missing or the transition is rejected,
// including when a concurrent update changed the order after it was read.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, requested model.OrderStatus) (*model.Order, error) {
	current, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := u.machine.Transition(current.Status, requested)
	if err != nil {
		return nil, err
	}

	updated, err := u.orders.UpdateStatus(ctx, id, current.Status, next)
	if err != nil {
		return nil, err
	}

	u.notify.statusChanged(updated)
	return updated, nil
}
