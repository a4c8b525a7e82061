// Package cart holds the shopping cart aggregate. A non-empty cart belongs to
// exactly one restaurant; adding an item from another restaurant opens a
// conflict that must be resolved before the cart can change again.
package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	"github.com/polkiloo/foodrush/internal/domain/model"
)

// Restaurant identifies the vendor a cart is bound to.
type Restaurant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is a cart line.
type Item struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Quantity     int             `json:"quantity"`
	Instructions string          `json:"instructions,omitempty"`
	Extras       string          `json:"extras,omitempty"`
	ExtrasPrice  decimal.Decimal `json:"extrasPrice"`
	RestaurantID string          `json:"restaurantId"`
}

// LineTotal returns (price + extras) * quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Add(i.ExtrasPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i Item) sameLine(other Item) bool {
	return i.ProductID == other.ProductID &&
		i.Instructions == other.Instructions &&
		i.Extras == other.Extras &&
		i.ExtrasPrice.Equal(other.ExtrasPrice)
}

// Conflict is an add that targets a different restaurant than the cart's binding.
type Conflict struct {
	ID        uuid.UUID  `json:"id"`
	Current   Restaurant `json:"current"`
	Requested Restaurant `json:"requested"`
	Item      Item       `json:"item"`
}

// AddResult describes the outcome of an add. Exactly one of Item and Pending is set.
type AddResult struct {
	Item    *Item     `json:"item,omitempty"`
	Merged  bool      `json:"merged,omitempty"`
	Pending *Conflict `json:"pending,omitempty"`
}

// Resolver decides a conflict. true replaces the cart contents, false keeps them.
type Resolver interface {
	Resolve(ctx context.Context, conflict Conflict) (bool, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, conflict Conflict) (bool, error)

func (f ResolverFunc) Resolve(ctx context.Context, conflict Conflict) (bool, error) {
	return f(ctx, conflict)
}

// Cart is safe for concurrent use.
type Cart struct {
	mu       sync.Mutex
	owner    *Restaurant
	items    []Item
	pending  *Conflict
	resolved map[uuid.UUID]struct{}
	newID    func() string
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{
		resolved: make(map[uuid.UUID]struct{}),
		newID:    uuid.NewString,
	}
}

// AddItem adds item sold by owner.
func (c *Cart) AddItem(item Item, owner Restaurant) (AddResult, error) {
	if err := validate(item, owner); err != nil {
		return AddResult{}, err
	}
	item.RestaurantID = owner.ID

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		return AddResult{}, domainErrors.ErrConflictPending
	}
	if c.owner != nil && c.owner.ID != owner.ID {
		c.pending = &Conflict{ID: uuid.New(), Current: *c.owner, Requested: owner, Item: item}
		conflict := *c.pending
		return AddResult{Pending: &conflict}, nil
	}
	return c.addLocked(item, owner), nil
}

// Resolve settles the pending conflict. It succeeds at most once per conflict.
func (c *Cart) Resolve(conflictID uuid.UUID, accept bool) (AddResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil || c.pending.ID != conflictID {
		if _, done := c.resolved[conflictID]; done {
			return AddResult{}, domainErrors.ErrConflictResolved
		}
		return AddResult{}, domainErrors.ErrUnknownConflict
	}

	conflict := *c.pending
	c.pending = nil
	c.resolved[conflictID] = struct{}{}

	if !accept {
		return AddResult{}, nil
	}
	c.items = nil
	c.owner = nil
	return c.addLocked(conflict.Item, conflict.Requested), nil
}

// AddItemWith adds item and, on conflict, asks resolver once. It reports whether the item was added.
// Cancelling ctx while the resolver is pending abandons the add.
func (c *Cart) AddItemWith(ctx context.Context, item Item, owner Restaurant, resolver Resolver) (bool, error) {
	res, err := c.AddItem(item, owner)
	if err != nil {
		return false, err
	}
	if res.Pending == nil {
		return true, nil
	}
	conflict := *res.Pending

	type decision struct {
		accept bool
		err    error
	}
	decided := make(chan decision, 1)
	go func() {
		accept, err := resolver.Resolve(ctx, conflict)
		decided <- decision{accept: accept, err: err}
	}()

	select {
	case <-ctx.Done():
		_, _ = c.Resolve(conflict.ID, false)
		return false, ctx.Err()
	case d := <-decided:
		if d.err != nil {
			_, _ = c.Resolve(conflict.ID, false)
			return false, fmt.Errorf("resolve conflict: %w", d.err)
		}
		if _, err := c.Resolve(conflict.ID, d.accept); err != nil {
			return false, err
		}
		return d.accept, nil
	}
}

// Remove deletes the line with itemID.
func (c *Cart) Remove(itemID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		return domainErrors.ErrConflictPending
	}
	idx := c.indexLocked(itemID)
	if idx < 0 {
		return fmt.Errorf("cart item %s: %w", itemID, domainErrors.ErrNotFound)
	}
	c.removeLocked(idx)
	return nil
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (c *Cart) UpdateQuantity(itemID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		return domainErrors.ErrConflictPending
	}
	idx := c.indexLocked(itemID)
	if idx < 0 {
		return fmt.Errorf("cart item %s: %w", itemID, domainErrors.ErrNotFound)
	}
	if quantity <= 0 {
		c.removeLocked(idx)
		return nil
	}
	c.items[idx].Quantity = quantity
	return nil
}

// Clear empties the cart and drops its restaurant binding.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		return domainErrors.ErrConflictPending
	}
	c.items = nil
	c.owner = nil
	return nil
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.items...)
}

// Restaurant returns the current binding.
func (c *Cart) Restaurant() (Restaurant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner == nil {
		return Restaurant{}, false
	}
	return *c.owner, true
}

// Pending returns the unresolved conflict, if any.
func (c *Cart) Pending() *Conflict {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	conflict := *c.pending
	return &conflict
}

// TotalItems sums quantities over all lines.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice sums line totals.
func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Lines is the content removed from a cart by Take.
type Lines struct {
	Restaurant Restaurant
	Items      []Item
}

// Checkout turns the cart into an order request. The cart itself is left untouched.
func (c *Cart) Checkout(customer model.Customer, deliveryFee decimal.Decimal, paymentMethod, instructions string) (model.NewOrder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkoutLocked(customer, deliveryFee, paymentMethod, instructions)
}

// Take builds the order request and empties the cart in one step.
// The removed lines are returned so a failed placement can hand them back through Restore.
func (c *Cart) Take(customer model.Customer, deliveryFee decimal.Decimal, paymentMethod, instructions string) (model.NewOrder, Lines, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	in, err := c.checkoutLocked(customer, deliveryFee, paymentMethod, instructions)
	if err != nil {
		return model.NewOrder{}, Lines{}, err
	}
	taken := Lines{Restaurant: *c.owner, Items: c.items}
	c.items = nil
	c.owner = nil
	return in, taken, nil
}

// Restore puts lines taken by Take back. Lines added meanwhile are kept and equal lines merge.
// It reports false when the cart now belongs to another restaurant or waits on a conflict.
func (c *Cart) Restore(lines Lines) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(lines.Items) == 0 {
		return true
	}
	if c.pending != nil || (c.owner != nil && c.owner.ID != lines.Restaurant.ID) {
		return false
	}
	added := c.items
	c.items = nil
	c.owner = nil
	for _, it := range lines.Items {
		c.addLocked(it, lines.Restaurant)
	}
	for _, it := range added {
		c.addLocked(it, lines.Restaurant)
	}
	return true
}

func (c *Cart) checkoutLocked(customer model.Customer, deliveryFee decimal.Decimal, paymentMethod, instructions string) (model.NewOrder, error) {
	if c.pending != nil {
		return model.NewOrder{}, domainErrors.ErrConflictPending
	}
	if len(c.items) == 0 || c.owner == nil {
		return model.NewOrder{}, domainErrors.ErrEmptyCart
	}

	items := make([]model.OrderItem, 0, len(c.items))
	for _, it := range c.items {
		line := model.OrderItem{
			ProductID:    it.ProductID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.Price,
			Instructions: it.Instructions,
		}
		if it.Extras != "" || !it.ExtrasPrice.IsZero() {
			line.Addons = []model.OrderItemAddon{{Name: it.Extras, Price: it.ExtrasPrice}}
		}
		items = append(items, line)
	}

	return model.NewOrder{
		Customer:            customer,
		RestaurantID:        c.owner.ID,
		RestaurantName:      c.owner.Name,
		Items:               items,
		DeliveryFee:         deliveryFee,
		PaymentMethod:       paymentMethod,
		SpecialInstructions: instructions,
	}, nil
}

func (c *Cart) addLocked(item Item, owner Restaurant) AddResult {
	if c.owner == nil {
		o := owner
		c.owner = &o
	}
	for i := range c.items {
		if c.items[i].sameLine(item) {
			c.items[i].Quantity += item.Quantity
			merged := c.items[i]
			return AddResult{Item: &merged, Merged: true}
		}
	}
	if item.ID == "" {
		item.ID = c.newID()
	}
	c.items = append(c.items, item)
	added := item
	return AddResult{Item: &added}
}

func (c *Cart) indexLocked(itemID string) int {
	for i := range c.items {
		if c.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeLocked(idx int) {
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	if len(c.items) == 0 {
		c.items = nil
		c.owner = nil
	}
}

func validate(item Item, owner Restaurant) error {
	switch {
	case strings.TrimSpace(owner.ID) == "":
		return fmt.Errorf("%w: restaurant id required", domainErrors.ErrInvalidItem)
	case strings.TrimSpace(item.ProductID) == "":
		return fmt.Errorf("%w: product id required", domainErrors.ErrInvalidItem)
	case item.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", domainErrors.ErrInvalidItem)
	case item.Price.IsNegative() || item.ExtrasPrice.IsNegative():
		return fmt.Errorf("%w: negative price", domainErrors.ErrInvalidItem)
	}
	return nil
}
