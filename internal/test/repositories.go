package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/domain/repository"
)

// OrderRepositoryStub keeps orders in memory and allows tests to override behaviour.
type OrderRepositoryStub struct {
	CreateFn       func(context.Context, *model.Order) error
	GetByIDFn      func(context.Context, uuid.UUID) (*model.Order, error)
	ListFn         func(context.Context, model.OrderFilter) ([]model.Order, error)
	UpdateStatusFn func(context.Context, uuid.UUID, model.OrderStatus, model.OrderStatus) (*model.Order, error)
	AssignRiderFn  func(context.Context, *model.Delivery, model.OrderStatus, model.OrderStatus) (*model.Order, error)

	// Deliveries receives the delivery stored by AssignRider, when set.
	Deliveries *DeliveryRepositoryStub

	mu          sync.Mutex
	Orders      map[uuid.UUID]*model.Order
	Created     []model.Order
	UpdateCalls []OrderUpdateCall
}

// OrderUpdateCall captures a status update invocation.
type OrderUpdateCall struct {
	ID      uuid.UUID
	Status  model.OrderStatus
	RiderID string
}

// NewOrderRepositoryStub constructs stub repository seeded with orders.
func NewOrderRepositoryStub(orders ...model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{Orders: make(map[uuid.UUID]*model.Order)}
	for i := range orders {
		o := orders[i]
		s.Orders[o.ID] = &o
	}
	return s
}

// Create stores the order unless overridden.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	s.Created = append(s.Created, *order)
	s.mu.Unlock()
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[uuid.UUID]*model.Order)
	}
	for _, existing := range s.Orders {
		if existing.Number == order.Number {
			return domainErrors.ErrAlreadyExists
		}
	}
	stored := *order
	s.Orders[order.ID] = &stored
	return nil
}

// GetByID returns a copy of the stored order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// List filters stored orders, newest first.
func (s *OrderRepositoryStub) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, o := range s.Orders {
		if filter.RestaurantID != nil && o.RestaurantID != *filter.RestaurantID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// UpdateStatus records the call and mutates the stored order when it is still in status from.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	s.UpdateCalls = append(s.UpdateCalls, OrderUpdateCall{ID: id, Status: to})
	s.mu.Unlock()
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, from, to)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.guardLocked(id, from)
	if err != nil {
		return nil, err
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	return &cp, nil
}

// AssignRider records the call, stores the delivery and binds the rider, all or nothing.
func (s *OrderRepositoryStub) AssignRider(ctx context.Context, d *model.Delivery, from, to model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	s.UpdateCalls = append(s.UpdateCalls, OrderUpdateCall{ID: d.OrderID, Status: to, RiderID: d.RiderID})
	s.mu.Unlock()
	if s.AssignRiderFn != nil {
		return s.AssignRiderFn(ctx, d, from, to)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.guardLocked(d.OrderID, from)
	if err != nil {
		return nil, err
	}
	if s.Deliveries != nil {
		if err := s.Deliveries.Put(d); err != nil {
			return nil, err
		}
	}
	rider := d.RiderID
	o.RiderID = &rider
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	return &cp, nil
}

func (s *OrderRepositoryStub) guardLocked(id uuid.UUID, from model.OrderStatus) (*model.Order, error) {
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if o.Status != from {
		return nil, fmt.Errorf("%w: order is already %s", domainErrors.ErrInvalidTransition, o.Status)
	}
	return o, nil
}

// Updates returns a snapshot of recorded status updates.
func (s *OrderRepositoryStub) Updates() []OrderUpdateCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OrderUpdateCall(nil), s.UpdateCalls...)
}

// DeliveryRepositoryStub keeps deliveries and tracking in memory.
type DeliveryRepositoryStub struct {
	PutFn            func(*model.Delivery) error
	AppendTrackingFn func(context.Context, *model.TrackingPoint) error

	mu         sync.Mutex
	Deliveries map[uuid.UUID]*model.Delivery
	Tracking   map[uuid.UUID][]model.TrackingPoint
	nextPoint  int64
}

// NewDeliveryRepositoryStub constructs stub repository seeded with deliveries.
func NewDeliveryRepositoryStub(deliveries ...model.Delivery) *DeliveryRepositoryStub {
	s := &DeliveryRepositoryStub{
		Deliveries: make(map[uuid.UUID]*model.Delivery),
		Tracking:   make(map[uuid.UUID][]model.TrackingPoint),
	}
	for i := range deliveries {
		d := deliveries[i]
		s.Deliveries[d.ID] = &d
	}
	return s
}

// Put stores delivery; a second delivery for the same order is rejected.
func (s *DeliveryRepositoryStub) Put(d *model.Delivery) error {
	if s.PutFn != nil {
		return s.PutFn(d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Deliveries {
		if existing.OrderID == d.OrderID {
			return domainErrors.ErrAlreadyExists
		}
	}
	cp := *d
	s.Deliveries[d.ID] = &cp
	return nil
}

// GetByID returns a copy of the stored delivery.
func (s *DeliveryRepositoryStub) GetByID(_ context.Context, id uuid.UUID) (*model.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.Deliveries[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// GetByOrder finds the delivery of an order.
func (s *DeliveryRepositoryStub) GetByOrder(_ context.Context, orderID uuid.UUID) (*model.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.Deliveries {
		if d.OrderID == orderID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// UpdateStatus mutates the stored delivery when it is still in status from and stamps pickup/drop-off times.
func (s *DeliveryRepositoryStub) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.DeliveryStatus, actualKm *float64) (*model.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.Deliveries[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if d.Status != from {
		return nil, fmt.Errorf("%w: delivery is already %s", domainErrors.ErrInvalidTransition, d.Status)
	}
	now := time.Now().UTC()
	d.Status = to
	d.UpdatedAt = now
	switch to {
	case model.DeliveryStatusPickedUp:
		d.PickedUpAt = &now
	case model.DeliveryStatusDelivered:
		d.DeliveredAt = &now
	}
	if actualKm != nil {
		km := *actualKm
		d.ActualDistanceKm = &km
	}
	cp := *d
	return &cp, nil
}

// AppendTracking appends a waypoint.
func (s *DeliveryRepositoryStub) AppendTracking(ctx context.Context, p *model.TrackingPoint) error {
	if s.AppendTrackingFn != nil {
		return s.AppendTrackingFn(ctx, p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPoint++
	p.ID = s.nextPoint
	s.Tracking[p.DeliveryID] = append(s.Tracking[p.DeliveryID], *p)
	return nil
}

// ListTracking returns waypoints in insertion order.
func (s *DeliveryRepositoryStub) ListTracking(_ context.Context, deliveryID uuid.UUID) ([]model.TrackingPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.TrackingPoint(nil), s.Tracking[deliveryID]...), nil
}

var (
	_ repository.OrderRepository    = (*OrderRepositoryStub)(nil)
	_ repository.DeliveryRepository = (*DeliveryRepositoryStub)(nil)
)
