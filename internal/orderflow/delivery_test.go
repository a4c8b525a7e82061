package orderflow

import (
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

func TestDeliveryMachineStrict(t *testing.T) {
	m := NewDeliveryMachine(Strict)
	path := []model.DeliveryStatus{
		model.DeliveryStatusAssigned,
		model.DeliveryStatusArrivedPickup,
		model.DeliveryStatusPickedUp,
		model.DeliveryStatusGoingToDelivery,
		model.DeliveryStatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		if _, err := m.Transition(path[i], path[i+1]); err != nil {
			t.Fatalf("%s -> %s: %v", path[i], path[i+1], err)
		}
	}
	if _, err := m.Transition(model.DeliveryStatusAssigned, model.DeliveryStatusDelivered); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := m.Transition(model.DeliveryStatusDelivered, model.DeliveryStatusCancelled); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected terminal rejection, got %v", err)
	}
	if _, err := m.Transition(model.DeliveryStatusPickedUp, model.DeliveryStatusCancelled); err != nil {
		t.Fatalf("expected cancel to be allowed, got %v", err)
	}
}

func TestDeliveryMachinePermissive(t *testing.T) {
	m := NewDeliveryMachine(Permissive)
	if got, err := m.Transition(model.DeliveryStatusAssigned, model.DeliveryStatusDelivered); err != nil || got != model.DeliveryStatusDelivered {
		t.Fatalf("unexpected result %s err=%v", got, err)
	}
	if _, err := m.Transition(model.DeliveryStatusAssigned, "LOST"); !errors.Is(err, domainErrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestOrderStatusFor(t *testing.T) {
	cases := map[model.DeliveryStatus]model.OrderStatus{
		model.DeliveryStatusAssigned:        model.OrderStatusAssignedRider,
		model.DeliveryStatusPickedUp:        model.OrderStatusPickedUp,
		model.DeliveryStatusGoingToDelivery: model.OrderStatusOutForDelivery,
		model.DeliveryStatusDelivered:       model.OrderStatusDelivered,
		model.DeliveryStatusCancelled:       model.OrderStatusCancelled,
	}
	for in, want := range cases {
		got, ok := OrderStatusFor(in)
		if !ok || got != want {
			t.Fatalf("%s: expected %s, got %s", in, want, got)
		}
	}
	if _, ok := OrderStatusFor(model.DeliveryStatusArrivedPickup); ok {
		t.Fatal("arrived pickup must not map to an order status")
	}
}

func TestParseDeliveryStatus(t *testing.T) {
	if got, err := ParseDeliveryStatus("going_to_delivery"); err != nil || got != model.DeliveryStatusGoingToDelivery {
		t.Fatalf("unexpected %s err=%v", got, err)
	}
	if _, err := ParseDeliveryStatus("x"); !errors.Is(err, domainErrors.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestDeliveryStatusMessage(t *testing.T) {
	for _, s := range model.DeliveryStatuses {
		if DeliveryStatusMessage(s) == GenericStatusMessage {
			t.Fatalf("expected dedicated message for %s", s)
		}
	}
	if DeliveryStatusMessage("LOST") != GenericStatusMessage {
		t.Fatal("expected generic message for unknown status")
	}
}
