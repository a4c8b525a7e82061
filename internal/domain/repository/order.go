package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/foodrush/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Status writes are guarded by the status the caller validated against: when
// the stored status is no longer from, nothing is written and
// errors.ErrInvalidTransition is returned.
type OrderRepository interface {
	// Create persists the order together with its items and add-ons atomically.
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (*model.Order, error)
	// AssignRider stores delivery and binds its rider to the order in one transaction.
	AssignRider(ctx context.Context, delivery *model.Delivery, from, to model.OrderStatus) (*model.Order, error)
}
