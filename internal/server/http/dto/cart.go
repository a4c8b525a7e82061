package dto

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/foodrush/internal/cart"
)

// AddCartItemRequest adds an item sold by a restaurant.
type AddCartItemRequest struct {
	Restaurant cart.Restaurant `json:"restaurant"`
	Item       cart.Item       `json:"item"`
}

// ResolveConflictRequest answers a pending restaurant conflict.
type ResolveConflictRequest struct {
	ConflictID string `json:"conflictId"`
	Replace    bool   `json:"replace"`
}

// UpdateCartItemRequest sets a line quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutRequest carries the customer snapshot for checkout.
type CheckoutRequest struct {
	CustomerName        string `json:"customerName"`
	CustomerPhone       string `json:"customerPhone"`
	CustomerAddress     string `json:"customerAddress"`
	PaymentMethod       string `json:"paymentMethod"`
	SpecialInstructions string `json:"specialInstructions"`
}

// CartResponse is the visible cart state.
type CartResponse struct {
	Restaurant *cart.Restaurant `json:"restaurant"`
	Items      []cart.Item      `json:"items"`
	Pending    *cart.Conflict   `json:"pending,omitempty"`
	TotalItems int              `json:"totalItems"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
}
