package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddonRequest is an add-on selection of an order line.
type AddonRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderItemRequest is a line of a checkout payload.
type OrderItemRequest struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Instructions string          `json:"instructions"`
	Addons       []AddonRequest  `json:"addons"`
}

// CreateOrderRequest describes the checkout payload.
type CreateOrderRequest struct {
	CustomerID          *string            `json:"customerId"`
	CustomerName        string             `json:"customerName"`
	CustomerPhone       string             `json:"customerPhone"`
	CustomerAddress     string             `json:"customerAddress"`
	RestaurantID        string             `json:"restaurantId"`
	RestaurantName      string             `json:"restaurantName"`
	Items               []OrderItemRequest `json:"items"`
	PaymentMethod       string             `json:"paymentMethod"`
	SpecialInstructions string             `json:"specialInstructions"`
}

// StatusRequest carries a requested order or delivery status.
type StatusRequest struct {
	Status string `json:"status"`
}

// AddonResponse is an add-on with its price snapshot.
type AddonResponse struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// OrderItemResponse is an order line.
type OrderItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Instructions string          `json:"instructions,omitempty"`
	Addons       []AddonResponse `json:"addons,omitempty"`
}

// OrderResponse describes a placed order.
type OrderResponse struct {
	ID                  string              `json:"id"`
	Number              string              `json:"orderNumber"`
	CustomerID          *string             `json:"customerId,omitempty"`
	CustomerName        string              `json:"customerName"`
	CustomerPhone       string              `json:"customerPhone"`
	CustomerAddress     string              `json:"customerAddress"`
	RestaurantID        string              `json:"restaurantId"`
	RestaurantName      string              `json:"restaurantName"`
	RiderID             *string             `json:"riderId,omitempty"`
	Items               []OrderItemResponse `json:"items"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	DeliveryFee         decimal.Decimal     `json:"deliveryFee"`
	Total               decimal.Decimal     `json:"totalAmount"`
	Status              string              `json:"status"`
	PaymentMethod       string              `json:"paymentMethod"`
	PaymentStatus       string              `json:"paymentStatus"`
	SpecialInstructions string              `json:"specialInstructions,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}
