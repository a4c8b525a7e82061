package orderflow

import (
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

// DeliveryMachine validates rider-side delivery transitions using the same modes as Machine.
type DeliveryMachine struct {
	mode Mode
}

// NewDeliveryMachine constructs DeliveryMachine.
func NewDeliveryMachine(mode Mode) *DeliveryMachine {
	return &DeliveryMachine{mode: mode}
}

// Transition returns the new delivery status or a rejection.
func (m *DeliveryMachine) Transition(current, requested model.DeliveryStatus) (model.DeliveryStatus, error) {
	if !IsKnownDelivery(requested) {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, requested)
	}
	if m.mode == Permissive {
		return requested, nil
	}
	if IsTerminalDelivery(current) {
		return "", fmt.Errorf("%w: %s is terminal", domainErrors.ErrInvalidTransition, current)
	}
	if requested == model.DeliveryStatusCancelled {
		return requested, nil
	}
	for i := 0; i < len(model.DeliveryStatuses)-2; i++ {
		if model.DeliveryStatuses[i] == current && model.DeliveryStatuses[i+1] == requested {
			return requested, nil
		}
	}
	return "", fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, current, requested)
}

// IsTerminalDelivery reports whether delivery reached DELIVERED or CANCELLED.
func IsTerminalDelivery(status model.DeliveryStatus) bool {
	return status == model.DeliveryStatusDelivered || status == model.DeliveryStatusCancelled
}

// IsKnownDelivery reports whether status belongs to the delivery vocabulary.
func IsKnownDelivery(status model.DeliveryStatus) bool {
	for _, s := range model.DeliveryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus normalises user input into a DeliveryStatus.
func ParseDeliveryStatus(raw string) (model.DeliveryStatus, error) {
	status := model.DeliveryStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !IsKnownDelivery(status) {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, raw)
	}
	return status, nil
}

// OrderStatusFor maps a delivery status onto the order lifecycle.
// ARRIVED_PICKUP has no order-level counterpart.
func OrderStatusFor(status model.DeliveryStatus) (model.OrderStatus, bool) {
	switch status {
	case model.DeliveryStatusAssigned:
		return model.OrderStatusAssignedRider, true
	case model.DeliveryStatusPickedUp:
		return model.OrderStatusPickedUp, true
	case model.DeliveryStatusGoingToDelivery:
		return model.OrderStatusOutForDelivery, true
	case model.DeliveryStatusDelivered:
		return model.OrderStatusDelivered, true
	case model.DeliveryStatusCancelled:
		return model.OrderStatusCancelled, true
	default:
		return "", false
	}
}
