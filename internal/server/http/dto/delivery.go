package dto

import "time"

// Location is a coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AssignRiderRequest describes a rider accepting an order.
type AssignRiderRequest struct {
	RiderID     string   `json:"riderId"`
	Pickup      Location `json:"pickup"`
	Dropoff     Location `json:"dropoff"`
	EstimatedKm float64  `json:"estimatedKm"`
}

// DeliveryResponse describes a delivery.
type DeliveryResponse struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"orderId"`
	RiderID     string     `json:"riderId"`
	Pickup      Location   `json:"pickup"`
	Dropoff     Location   `json:"dropoff"`
	Status      string     `json:"status"`
	EstimatedKm float64    `json:"estimatedKm"`
	ActualKm    *float64   `json:"actualKm,omitempty"`
	PickedUpAt  *time.Time `json:"pickedUpAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// AssignmentResponse is returned once a rider is bound to an order.
type AssignmentResponse struct {
	Delivery DeliveryResponse `json:"delivery"`
	Order    OrderResponse    `json:"order"`
}

// TrackingResponse is one recorded waypoint.
type TrackingResponse struct {
	ID         int64     `json:"id"`
	DeliveryID string    `json:"deliveryId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recordedAt"`
}
