package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus describes order lifecycle.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	OrderStatusAssignedRider  OrderStatus = "ASSIGNED_RIDER"
	OrderStatusPickedUp       OrderStatus = "PICKED_UP"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// OrderStatuses lists the lifecycle in its linear order followed by CANCELLED.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReadyForPickup,
	OrderStatusAssignedRider,
	OrderStatusPickedUp,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// PaymentStatus describes payment capture state reported by the payment collaborator.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Order is a placed food order.
type Order struct {
	ID                  uuid.UUID
	Number              string
	CustomerID          *string
	CustomerName        string
	CustomerPhone       string
	CustomerAddress     string
	RestaurantID        string
	RestaurantName      string
	RiderID             *string
	Items               []OrderItem
	Subtotal            decimal.Decimal
	DeliveryFee         decimal.Decimal
	Total               decimal.Decimal
	Status              OrderStatus
	PaymentMethod       string
	PaymentStatus       PaymentStatus
	SpecialInstructions string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsGuest reports whether the order was placed without a customer account.
func (o *Order) IsGuest() bool {
	return o.CustomerID == nil || *o.CustomerID == ""
}

// HasRider reports whether a rider has been assigned.
func (o *Order) HasRider() bool {
	return o.RiderID != nil && *o.RiderID != ""
}

// OrderItem is a line of an order with price snapshots.
type OrderItem struct {
	ID           uuid.UUID
	ProductID    string
	Name         string
	Quantity     int
	UnitPrice    decimal.Decimal
	Instructions string
	Addons       []OrderItemAddon
}

// LineTotal returns (unit price + addons) * quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	unit := i.UnitPrice
	for _, a := range i.Addons {
		unit = unit.Add(a.Price)
	}
	return unit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderItemAddon is an add-on selection with its price snapshot.
type OrderItemAddon struct {
	Name  string
	Price decimal.Decimal
}

// Customer carries the contact snapshot stored with an order.
type Customer struct {
	ID      *string
	Name    string
	Phone   string
	Address string
}

// NewOrder is the checkout payload consumed by order creation.
type NewOrder struct {
	Customer            Customer
	RestaurantID        string
	RestaurantName      string
	Items               []OrderItem
	DeliveryFee         decimal.Decimal
	PaymentMethod       string
	SpecialInstructions string
}

// OrderFilter scopes order listing.
type OrderFilter struct {
	RestaurantID *string
	Status       *OrderStatus
}
