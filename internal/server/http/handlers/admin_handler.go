package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/foodrush/internal/server/http/dto"
)

// AdminHandler pushes operator events onto the realtime bus.
type AdminHandler struct {
	facade NotificationFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade NotificationFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Broadcast handles POST /api/admin/broadcast.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Event) == "" {
		badRequest(c, "event is required")
		return
	}

	delivered, err := h.facade.Broadcast(req.Event, req.Payload)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeliveredResponse{Delivered: delivered})
}

// Send handles POST /api/admin/send.
func (h *AdminHandler) Send(c *gin.Context) {
	var req dto.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Event) == "" {
		badRequest(c, "room and event are required")
		return
	}

	delivered, err := h.facade.Send(req.Room, req.Event, req.Payload)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeliveredResponse{Delivered: delivered})
}
