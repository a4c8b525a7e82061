package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

const orderColumns = `id, number, customer_id, customer_name, customer_phone, customer_address,
       restaurant_id, restaurant_name, rider_id, subtotal_cents, delivery_fee_cents, total_cents,
       status, payment_method, payment_status, special_instructions, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const insertOrder = `INSERT INTO orders (` + orderColumns + `)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	const insertItem = `INSERT INTO order_items (id, order_id, position, product_id, name, quantity, unit_price_cents, instructions)
                        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	const insertAddon = `INSERT INTO order_item_addons (item_id, position, name, price_cents) VALUES ($1, $2, $3, $4)`

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertOrder,
			order.ID, order.Number, order.CustomerID, order.CustomerName, order.CustomerPhone, order.CustomerAddress,
			order.RestaurantID, order.RestaurantName, order.RiderID,
			toCents(order.Subtotal), toCents(order.DeliveryFee), toCents(order.Total),
			order.Status, order.PaymentMethod, order.PaymentStatus, order.SpecialInstructions,
			order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			if hasCode(err, codeUniqueViolation) {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}

		for i, it := range order.Items {
			if _, err := tx.Exec(ctx, insertItem, it.ID, order.ID, i, it.ProductID, it.Name, it.Quantity, toCents(it.UnitPrice), it.Instructions); err != nil {
				return fmt.Errorf("insert item %d: %w", i, err)
			}
			for j, a := range it.Addons {
				if _, err := tx.Exec(ctx, insertAddon, it.ID, j, a.Name, toCents(a.Price)); err != nil {
					return fmt.Errorf("insert addon %d of item %d: %w", j, i, err)
				}
			}
		}
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return getOrder(ctx, r.storage.pool, id)
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.RestaurantID != nil {
		args = append(args, *filter.RestaurantID)
		where = append(where, fmt.Sprintf("restaurant_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, len(result))
	for i := range result {
		ids[i] = result[i].ID
	}
	items, err := loadItems(ctx, r.storage.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (*model.Order, error) {
	const query = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := guardedUpdate(ctx, tx, id, query, to, id, from); err != nil {
			return err
		}
		var err error
		order, err = getOrder(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) AssignRider(ctx context.Context, d *model.Delivery, from, to model.OrderStatus) (*model.Order, error) {
	const query = `UPDATE orders SET rider_id=$1, status=$2, updated_at=NOW() WHERE id=$3 AND status=$4`
	var order *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := guardedUpdate(ctx, tx, d.OrderID, query, d.RiderID, to, d.OrderID, from); err != nil {
			return err
		}
		if err := insertDelivery(ctx, tx, d); err != nil {
			return err
		}
		var err error
		order, err = getOrder(ctx, tx, d.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// guardedUpdate runs an update conditioned on the current status. When no row
// matches it tells a missing order apart from one whose status moved on.
func guardedUpdate(ctx context.Context, q querier, id uuid.UUID, query string, args ...any) error {
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var status model.OrderStatus
	err = q.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&status)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domainErrors.ErrNotFound
	case err != nil:
		return err
	}
	return fmt.Errorf("%w: order is already %s", domainErrors.ErrInvalidTransition, status)
}

func getOrder(ctx context.Context, q querier, id uuid.UUID) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	items, err := loadItems(ctx, q, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	return order, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var subtotal, deliveryFee, total int64
	err := row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
		&o.RestaurantID, &o.RestaurantName, &o.RiderID, &subtotal, &deliveryFee, &total,
		&o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.SpecialInstructions, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Subtotal = fromCents(subtotal)
	o.DeliveryFee = fromCents(deliveryFee)
	o.Total = fromCents(total)
	return &o, nil
}

// loadItems returns items with their add-ons grouped by order id, in insertion order.
func loadItems(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	const itemsQuery = `SELECT id, order_id, product_id, name, quantity, unit_price_cents, instructions
                        FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`
	const addonsQuery = `SELECT a.item_id, a.name, a.price_cents
                         FROM order_item_addons a JOIN order_items i ON i.id = a.item_id
                         WHERE i.order_id = ANY($1) ORDER BY a.item_id, a.position`

	rows, err := q.Query(ctx, itemsQuery, orderIDs)
	if err != nil {
		return nil, err
	}
	type itemRef struct {
		order uuid.UUID
		index int
	}
	result := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	refs := make(map[uuid.UUID]itemRef)
	for rows.Next() {
		var (
			it      model.OrderItem
			orderID uuid.UUID
			price   int64
		)
		if err := rows.Scan(&it.ID, &orderID, &it.ProductID, &it.Name, &it.Quantity, &price, &it.Instructions); err != nil {
			rows.Close()
			return nil, err
		}
		it.UnitPrice = fromCents(price)
		refs[it.ID] = itemRef{order: orderID, index: len(result[orderID])}
		result[orderID] = append(result[orderID], it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return result, nil
	}

	rows, err = q.Query(ctx, addonsQuery, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			itemID uuid.UUID
			addon  model.OrderItemAddon
			price  int64
		)
		if err := rows.Scan(&itemID, &addon.Name, &price); err != nil {
			return nil, err
		}
		addon.Price = fromCents(price)
		ref, ok := refs[itemID]
		if !ok {
			continue
		}
		items := result[ref.order]
		items[ref.index].Addons = append(items[ref.index].Addons, addon)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
