package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/orderflow"
	pkgAuth "github.com/polkiloo/foodrush/internal/pkg/auth"
	"github.com/polkiloo/foodrush/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed order payload")
		return
	}

	in := toNewOrder(req)
	if principal := CurrentPrincipal(c); in.Customer.ID == nil && principal.Role == pkgAuth.RoleCustomer && principal.Subject != "" {
		subject := principal.Subject
		in.Customer.ID = &subject
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// List handles GET /api/orders?restaurant_id=&status=.
func (h *OrderHandler) List(c *gin.Context) {
	var filter model.OrderFilter
	if restaurantID := strings.TrimSpace(c.Query("restaurant_id")); restaurantID != "" {
		filter.RestaurantID = &restaurantID
	}
	if raw := c.Query("status"); strings.TrimSpace(raw) != "" {
		status, err := orderflow.ParseStatus(raw)
		if err != nil {
			abortWithError(c, err)
			return
		}
		filter.Status = &status
	}

	orders, err := h.facade.Orders(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// UpdateStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		badRequest(c, "status is required")
		return
	}

	status, err := orderflow.ParseStatus(req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toNewOrder(req dto.CreateOrderRequest) model.NewOrder {
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		line := model.OrderItem{
			ProductID:    it.ProductID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.Price,
			Instructions: it.Instructions,
		}
		for _, a := range it.Addons {
			line.Addons = append(line.Addons, model.OrderItemAddon{Name: a.Name, Price: a.Price})
		}
		items = append(items, line)
	}

	return model.NewOrder{
		Customer: model.Customer{
			ID:      req.CustomerID,
			Name:    req.CustomerName,
			Phone:   req.CustomerPhone,
			Address: req.CustomerAddress,
		},
		RestaurantID:        req.RestaurantID,
		RestaurantName:      req.RestaurantName,
		Items:               items,
		PaymentMethod:       req.PaymentMethod,
		SpecialInstructions: req.SpecialInstructions,
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		line := dto.OrderItemResponse{
			ID:           it.ID.String(),
			ProductID:    it.ProductID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			Price:        it.UnitPrice,
			Instructions: it.Instructions,
		}
		for _, a := range it.Addons {
			line.Addons = append(line.Addons, dto.AddonResponse{Name: a.Name, Price: a.Price})
		}
		items = append(items, line)
	}

	return dto.OrderResponse{
		ID:                  order.ID.String(),
		Number:              order.Number,
		CustomerID:          order.CustomerID,
		CustomerName:        order.CustomerName,
		CustomerPhone:       order.CustomerPhone,
		CustomerAddress:     order.CustomerAddress,
		RestaurantID:        order.RestaurantID,
		RestaurantName:      order.RestaurantName,
		RiderID:             order.RiderID,
		Items:               items,
		Subtotal:            order.Subtotal,
		DeliveryFee:         order.DeliveryFee,
		Total:               order.Total,
		Status:              string(order.Status),
		PaymentMethod:       order.PaymentMethod,
		PaymentStatus:       string(order.PaymentStatus),
		SpecialInstructions: order.SpecialInstructions,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}
