package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/foodrush/internal/domain/model"
)

// DeliveryRepository describes persistence of deliveries and their append-only tracking log.
// Deliveries are created through OrderRepository.AssignRider.
type DeliveryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Delivery, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error)
	// UpdateStatus moves the delivery from one status to another; actualKm is stored when not nil.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.DeliveryStatus, actualKm *float64) (*model.Delivery, error)
	AppendTracking(ctx context.Context, point *model.TrackingPoint) error
	ListTracking(ctx context.Context, deliveryID uuid.UUID) ([]model.TrackingPoint, error)
}
