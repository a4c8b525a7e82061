package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the rider-side vocabulary, independent from OrderStatus.
type DeliveryStatus string

const (
	DeliveryStatusAssigned        DeliveryStatus = "ASSIGNED"
	DeliveryStatusArrivedPickup   DeliveryStatus = "ARRIVED_PICKUP"
	DeliveryStatusPickedUp        DeliveryStatus = "PICKED_UP"
	DeliveryStatusGoingToDelivery DeliveryStatus = "GOING_TO_DELIVERY"
	DeliveryStatusDelivered       DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled       DeliveryStatus = "CANCELLED"
)

// DeliveryStatuses lists delivery statuses in linear order followed by CANCELLED.
var DeliveryStatuses = []DeliveryStatus{
	DeliveryStatusAssigned,
	DeliveryStatusArrivedPickup,
	DeliveryStatusPickedUp,
	DeliveryStatusGoingToDelivery,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the point lies within latitude/longitude bounds.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance to other.
func (c Coordinates) DistanceKm(other Coordinates) float64 {
	lat1, lat2 := c.Latitude*math.Pi/180, other.Latitude*math.Pi/180
	dLat := lat2 - lat1
	dLng := (other.Longitude - c.Longitude) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// PathKm sums the legs between consecutive points.
func PathKm(points []Coordinates) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].DistanceKm(points[i])
	}
	return total
}

// Delivery links an order to the rider that accepted it.
type Delivery struct {
	ID                  uuid.UUID
	OrderID             uuid.UUID
	RiderID             string
	Pickup              Coordinates
	Dropoff             Coordinates
	Status              DeliveryStatus
	EstimatedDistanceKm float64
	ActualDistanceKm    *float64 // set once the delivery is DELIVERED
	PickedUpAt          *time.Time
	DeliveredAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TrackingPoint is one append-only waypoint of a delivery.
type TrackingPoint struct {
	ID         int64
	DeliveryID uuid.UUID
	Location   Coordinates
	Status     DeliveryStatus
	RecordedAt time.Time
}
