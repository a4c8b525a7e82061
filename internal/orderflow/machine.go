package orderflow

import (
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

// Mode selects how transitions are validated.
type Mode int

const (
	// Permissive accepts any known status regardless of the current one.
	// Restaurants rely on it to skip steps, e.g. marking pickup orders delivered directly.
	Permissive Mode = iota
	// Strict accepts only the adjacent next status or CANCELLED from a non-terminal state.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "permissive"
}

// Machine validates order status transitions.
type Machine struct {
	mode Mode
}

// NewMachine constructs Machine in the given mode.
func NewMachine(mode Mode) *Machine {
	return &Machine{mode: mode}
}

// Mode returns configured validation mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Transition returns the new status or a rejection.
func (m *Machine) Transition(current, requested model.OrderStatus) (model.OrderStatus, error) {
	if !IsKnown(requested) {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, requested)
	}
	if m.mode == Permissive {
		return requested, nil
	}

	if IsTerminal(current) {
		return "", fmt.Errorf("%w: %s is terminal", domainErrors.ErrInvalidTransition, current)
	}
	if requested == model.OrderStatusCancelled {
		return requested, nil
	}
	next, ok := Next(current)
	if !ok || next != requested {
		return "", fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, current, requested)
	}
	return requested, nil
}

// Next returns the status following current in the linear lifecycle.
func Next(current model.OrderStatus) (model.OrderStatus, bool) {
	// The last two entries are DELIVERED and CANCELLED, neither has a successor.
	for i := 0; i < len(model.OrderStatuses)-2; i++ {
		if model.OrderStatuses[i] == current {
			return model.OrderStatuses[i+1], true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transitions are expected.
func IsTerminal(status model.OrderStatus) bool {
	return status == model.OrderStatusDelivered || status == model.OrderStatusCancelled
}

// IsKnown reports whether status belongs to the lifecycle vocabulary.
func IsKnown(status model.OrderStatus) bool {
	for _, s := range model.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ParseStatus normalises user input into an OrderStatus.
func ParseStatus(raw string) (model.OrderStatus, error) {
	status := model.OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !IsKnown(status) {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, raw)
	}
	return status, nil
}
