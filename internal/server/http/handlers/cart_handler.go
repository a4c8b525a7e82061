package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/foodrush/internal/cart"
	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/server/http/dto"
	"github.com/polkiloo/foodrush/internal/usecase"
)

// CartHandler exposes the single-restaurant cart and its conflict protocol.
type CartHandler struct {
	facade CartFacade
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(facade CartFacade) *CartHandler {
	return &CartHandler{facade: facade}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toCartResponse(h.facade.Cart(owner)))
}

// AddItem handles POST /api/cart/items. A cross-restaurant add answers 409
// with the pending conflict that must be resolved next.
func (h *CartHandler) AddItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed cart item")
		return
	}

	res, err := h.facade.AddToCart(owner, req.Item, req.Restaurant)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if res.Pending != nil {
		c.JSON(http.StatusConflict, res)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(h.facade.Cart(owner)))
}

// Resolve handles POST /api/cart/conflict.
func (h *CartHandler) Resolve(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	var req dto.ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed resolution")
		return
	}
	conflictID, err := uuid.Parse(req.ConflictID)
	if err != nil {
		badRequest(c, "invalid conflictId")
		return
	}

	if _, err := h.facade.ResolveCartConflict(owner, conflictID, req.Replace); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(h.facade.Cart(owner)))
}

// UpdateItem handles PATCH /api/cart/items/:itemId.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed quantity")
		return
	}
	if err := h.facade.UpdateCartItem(owner, c.Param("itemId"), req.Quantity); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(h.facade.Cart(owner)))
}

// RemoveItem handles DELETE /api/cart/items/:itemId.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	if err := h.facade.RemoveCartItem(owner, c.Param("itemId")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(h.facade.Cart(owner)))
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	if err := h.facade.ClearCart(owner); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout handles POST /api/cart/checkout.
func (h *CartHandler) Checkout(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed checkout payload")
		return
	}

	order, err := h.facade.Checkout(c.Request.Context(), owner, usecase.CheckoutRequest{
		Customer: model.Customer{
			Name:    req.CustomerName,
			Phone:   req.CustomerPhone,
			Address: req.CustomerAddress,
		},
		PaymentMethod:       req.PaymentMethod,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

func toCartResponse(s usecase.CartSnapshot) dto.CartResponse {
	items := s.Items
	if items == nil {
		items = []cart.Item{}
	}
	return dto.CartResponse{
		Restaurant: s.Restaurant,
		Items:      items,
		Pending:    s.Pending,
		TotalItems: s.TotalItems,
		TotalPrice: s.TotalPrice,
	}
}
