package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

const deliveryColumns = `id, order_id, rider_id, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, status,
       estimated_distance_km, actual_distance_km, picked_up_at, delivered_at, created_at, updated_at`

func insertDelivery(ctx context.Context, q querier, d *model.Delivery) error {
	const query = `INSERT INTO deliveries (` + deliveryColumns + `)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := q.Exec(ctx, query,
		d.ID, d.OrderID, d.RiderID,
		d.Pickup.Latitude, d.Pickup.Longitude, d.Dropoff.Latitude, d.Dropoff.Longitude,
		d.Status, d.EstimatedDistanceKm, d.ActualDistanceKm, d.PickedUpAt, d.DeliveredAt,
		d.CreatedAt, d.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case hasCode(err, codeUniqueViolation):
		return fmt.Errorf("delivery for order %s: %w", d.OrderID, domainErrors.ErrAlreadyExists)
	case hasCode(err, codeForeignKeyViolation):
		return domainErrors.ErrNotFound
	default:
		return err
	}
}

func (r *deliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Delivery, error) {
	const query = `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id=$1`
	return scanDelivery(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *deliveryRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Delivery, error) {
	const query = `SELECT ` + deliveryColumns + ` FROM deliveries WHERE order_id=$1`
	return scanDelivery(r.storage.pool.QueryRow(ctx, query, orderID))
}

// UpdateStatus stamps picked_up_at and delivered_at the first time the matching status is reached.
func (r *deliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.DeliveryStatus, actualKm *float64) (*model.Delivery, error) {
	const query = `UPDATE deliveries
                   SET status=$1::text,
                       updated_at=NOW(),
                       picked_up_at=CASE WHEN $1::text='PICKED_UP' THEN COALESCE(picked_up_at, NOW()) ELSE picked_up_at END,
                       delivered_at=CASE WHEN $1::text='DELIVERED' THEN COALESCE(delivered_at, NOW()) ELSE delivered_at END,
                       actual_distance_km=COALESCE($4::double precision, actual_distance_km)
                   WHERE id=$2 AND status=$3
                   RETURNING ` + deliveryColumns
	d, err := scanDelivery(r.storage.pool.QueryRow(ctx, query, to, id, from, actualKm))
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return d, err
	}

	var status model.DeliveryStatus
	err = r.storage.pool.QueryRow(ctx, `SELECT status FROM deliveries WHERE id=$1`, id).Scan(&status)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, domainErrors.ErrNotFound
	case err != nil:
		return nil, err
	}
	return nil, fmt.Errorf("%w: delivery is already %s", domainErrors.ErrInvalidTransition, status)
}

func (r *deliveryRepository) AppendTracking(ctx context.Context, p *model.TrackingPoint) error {
	const query = `INSERT INTO delivery_tracking (delivery_id, latitude, longitude, status, recorded_at)
                   VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.storage.pool.QueryRow(ctx, query, p.DeliveryID, p.Location.Latitude, p.Location.Longitude, p.Status, p.RecordedAt).Scan(&p.ID)
	if err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *deliveryRepository) ListTracking(ctx context.Context, deliveryID uuid.UUID) ([]model.TrackingPoint, error) {
	const query = `SELECT id, delivery_id, latitude, longitude, status, recorded_at
                   FROM delivery_tracking WHERE delivery_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, deliveryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TrackingPoint
	for rows.Next() {
		var p model.TrackingPoint
		if err := rows.Scan(&p.ID, &p.DeliveryID, &p.Location.Latitude, &p.Location.Longitude, &p.Status, &p.RecordedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanDelivery(row pgx.Row) (*model.Delivery, error) {
	var d model.Delivery
	err := row.Scan(
		&d.ID, &d.OrderID, &d.RiderID,
		&d.Pickup.Latitude, &d.Pickup.Longitude, &d.Dropoff.Latitude, &d.Dropoff.Longitude,
		&d.Status, &d.EstimatedDistanceKm, &d.ActualDistanceKm, &d.PickedUpAt, &d.DeliveredAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
