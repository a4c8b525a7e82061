package model

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"pending", OrderStatusPending, "PENDING"},
		{"confirmed", OrderStatusConfirmed, "CONFIRMED"},
		{"preparing", OrderStatusPreparing, "PREPARING"},
		{"ready", OrderStatusReadyForPickup, "READY_FOR_PICKUP"},
		{"assigned", OrderStatusAssignedRider, "ASSIGNED_RIDER"},
		{"picked up", OrderStatusPickedUp, "PICKED_UP"},
		{"out for delivery", OrderStatusOutForDelivery, "OUT_FOR_DELIVERY"},
		{"delivered", OrderStatusDelivered, "DELIVERED"},
		{"cancelled", OrderStatusCancelled, "CANCELLED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
	if len(OrderStatuses) != len(cases) {
		t.Fatalf("expected %d statuses, got %d", len(cases), len(OrderStatuses))
	}
}

func TestLineTotalIncludesAddons(t *testing.T) {
	item := OrderItem{
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("45.50"),
		Addons: []OrderItemAddon{
			{Name: "egg", Price: decimal.RequireFromString("10")},
			{Name: "extra rice", Price: decimal.RequireFromString("5.25")},
		},
	}
	if got := item.LineTotal(); !got.Equal(decimal.RequireFromString("182.25")) {
		t.Fatalf("unexpected line total %s", got)
	}
}

func TestOrderGuestAndRider(t *testing.T) {
	o := &Order{}
	if !o.IsGuest() || o.HasRider() {
		t.Fatalf("expected guest order without rider")
	}
	customer, rider := "c1", "r1"
	o.CustomerID = &customer
	o.RiderID = &rider
	if o.IsGuest() || !o.HasRider() {
		t.Fatalf("expected customer order with rider")
	}
}

func TestRoomKey(t *testing.T) {
	key := Room(RoomRestaurant, "R1")
	if key.String() != "restaurant:R1" {
		t.Fatalf("unexpected key %q", key.String())
	}
	if !key.Valid() {
		t.Fatal("expected key to be valid")
	}
	if Room("kitchen", "1").Valid() {
		t.Fatal("unknown kind must be invalid")
	}
	if Room(RoomRider, " ").Valid() {
		t.Fatal("blank id must be invalid")
	}

	parsed, ok := ParseRoomKey("customer:abc:1")
	if !ok || parsed.Kind != RoomCustomer || parsed.ID != "abc:1" {
		t.Fatalf("unexpected parse result %+v ok=%v", parsed, ok)
	}
	if _, ok := ParseRoomKey("nocolon"); ok {
		t.Fatal("expected parse failure")
	}
}

func TestNewOrderEventFrom(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{
		ID:              uuid.New(),
		Number:          "FR-1",
		CustomerName:    "Somchai",
		CustomerPhone:   "0800000000",
		CustomerAddress: "Bangkok",
		RestaurantID:    "R1",
		RestaurantName:  "Krua Thai",
		Total:           decimal.RequireFromString("150.75"),
		CreatedAt:       created,
		Items: []OrderItem{{
			ProductID: "p1", Name: "Pad Thai", Quantity: 2, UnitPrice: decimal.RequireFromString("60"),
			Addons: []OrderItemAddon{{Name: "shrimp", Price: decimal.RequireFromString("15")}},
		}},
	}

	ev := NewOrderEventFrom(o)
	if ev.OrderID != o.ID.String() || ev.OrderNumber != "FR-1" || ev.RestaurantID != "R1" {
		t.Fatalf("unexpected identifiers: %+v", ev)
	}
	if ev.TotalAmount != 150.75 {
		t.Fatalf("unexpected total %v", ev.TotalAmount)
	}
	if len(ev.Items) != 1 || ev.Items[0].Addons[0] != "shrimp" || ev.Items[0].Price != 60 {
		t.Fatalf("unexpected items %+v", ev.Items)
	}
	if !ev.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created at %v", ev.CreatedAt)
	}
}

func TestCoordinatesValid(t *testing.T) {
	if !(Coordinates{Latitude: 13.7563, Longitude: 100.5018}).Valid() {
		t.Fatal("expected Bangkok to be valid")
	}
	if (Coordinates{Latitude: 91}).Valid() || (Coordinates{Longitude: -181}).Valid() {
		t.Fatal("expected out-of-range coordinates to be invalid")
	}
}

func TestCoordinatesDistanceKm(t *testing.T) {
	origin := Coordinates{}
	oneDegreeEast := Coordinates{Longitude: 1}
	if got := origin.DistanceKm(oneDegreeEast); math.Abs(got-111.195) > 0.01 {
		t.Fatalf("expected about 111.195 km along the equator, got %.3f", got)
	}
	if got := oneDegreeEast.DistanceKm(origin); math.Abs(got-origin.DistanceKm(oneDegreeEast)) > 1e-9 {
		t.Fatalf("distance must be symmetric, got %.6f", got)
	}
	if got := origin.DistanceKm(origin); got != 0 {
		t.Fatalf("expected zero distance to itself, got %f", got)
	}

	twoDegreesEast := Coordinates{Longitude: 2}
	if got := PathKm([]Coordinates{origin, oneDegreeEast, twoDegreesEast}); math.Abs(got-origin.DistanceKm(twoDegreesEast)) > 1e-6 {
		t.Fatalf("collinear legs must add up, got %.6f", got)
	}
	if PathKm(nil) != 0 || PathKm([]Coordinates{origin}) != 0 {
		t.Fatal("paths with fewer than two points have no length")
	}
}
