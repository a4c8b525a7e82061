package model

import "time"

// Event names published on the realtime bus.
const (
	EventNewOrder           = "new-order"
	EventOrderStatusChanged = "order-status-changed"
	EventDeliveryAssigned   = "delivery-assigned"
	EventDeliveryTracking   = "delivery-tracking"
)

// NewOrderItemPayload describes a line in the new-order event.
type NewOrderItemPayload struct {
	ProductID    string   `json:"productId"`
	Name         string   `json:"name"`
	Quantity     int      `json:"quantity"`
	Price        float64  `json:"price"`
	Instructions string   `json:"instructions,omitempty"`
	Addons       []string `json:"addons,omitempty"`
}

// NewOrderEvent is sent to the restaurant room when an order is placed.
type NewOrderEvent struct {
	OrderID             string                `json:"orderId"`
	OrderNumber         string                `json:"orderNumber"`
	CustomerName        string                `json:"customerName"`
	CustomerPhone       string                `json:"customerPhone"`
	CustomerAddress     string                `json:"customerAddress"`
	TotalAmount         float64               `json:"totalAmount"`
	Items               []NewOrderItemPayload `json:"items"`
	SpecialInstructions string                `json:"specialInstructions"`
	CreatedAt           time.Time             `json:"createdAt"`
	RestaurantID        string                `json:"restaurantId"`
	RestaurantName      string                `json:"restaurantName"`
}

// OrderStatusChangedEvent is sent after every accepted status transition.
type OrderStatusChangedEvent struct {
	OrderID        string    `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	Status         string    `json:"status"`
	RestaurantName string    `json:"restaurantName"`
	Message        string    `json:"message"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// LocationPayload is a coordinate pair on the wire.
type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DeliveryAssignedEvent is sent to the rider room when a delivery is created.
type DeliveryAssignedEvent struct {
	DeliveryID     string          `json:"deliveryId"`
	OrderID        string          `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	RiderID        string          `json:"riderId"`
	RestaurantName string          `json:"restaurantName"`
	Pickup         LocationPayload `json:"pickup"`
	Dropoff        LocationPayload `json:"dropoff"`
}

// DeliveryTrackingEvent carries one rider waypoint.
type DeliveryTrackingEvent struct {
	DeliveryID string  `json:"deliveryId"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Status     string  `json:"status"`
}

// NewOrderEventFrom builds the new-order payload.
func NewOrderEventFrom(o *Order) NewOrderEvent {
	items := make([]NewOrderItemPayload, 0, len(o.Items))
	for _, it := range o.Items {
		var addons []string
		for _, a := range it.Addons {
			addons = append(addons, a.Name)
		}
		items = append(items, NewOrderItemPayload{
			ProductID:    it.ProductID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			Price:        it.UnitPrice.InexactFloat64(),
			Instructions: it.Instructions,
			Addons:       addons,
		})
	}
	return NewOrderEvent{
		OrderID:             o.ID.String(),
		OrderNumber:         o.Number,
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		CustomerAddress:     o.CustomerAddress,
		TotalAmount:         o.Total.InexactFloat64(),
		Items:               items,
		SpecialInstructions: o.SpecialInstructions,
		CreatedAt:           o.CreatedAt,
		RestaurantID:        o.RestaurantID,
		RestaurantName:      o.RestaurantName,
	}
}
