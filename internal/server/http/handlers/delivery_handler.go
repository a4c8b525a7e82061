package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/foodrush/internal/domain/model"
	"github.com/polkiloo/foodrush/internal/orderflow"
	"github.com/polkiloo/foodrush/internal/server/http/dto"
	"github.com/polkiloo/foodrush/internal/usecase"
)

// DeliveryHandler manages rider assignment, delivery progress and tracking.
type DeliveryHandler struct {
	facade DeliveryFacade
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(facade DeliveryFacade) *DeliveryHandler {
	return &DeliveryHandler{facade: facade}
}

// Assign handles POST /api/orders/:id/delivery.
func (h *DeliveryHandler) Assign(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignRiderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed assignment payload")
		return
	}

	delivery, order, err := h.facade.AssignRider(c.Request.Context(), usecase.AssignRequest{
		OrderID:             orderID,
		RiderID:             strings.TrimSpace(req.RiderID),
		Pickup:              toCoordinates(req.Pickup),
		Dropoff:             toCoordinates(req.Dropoff),
		EstimatedDistanceKm: req.EstimatedKm,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AssignmentResponse{
		Delivery: toDeliveryResponse(*delivery),
		Order:    toOrderResponse(*order),
	})
}

// UpdateStatus handles PATCH /api/deliveries/:id/status.
func (h *DeliveryHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		badRequest(c, "status is required")
		return
	}

	status, err := orderflow.ParseDeliveryStatus(req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	delivery, err := h.facade.UpdateDeliveryStatus(c.Request.Context(), id, status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeliveryResponse(*delivery))
}

// Track handles POST /api/deliveries/:id/tracking.
func (h *DeliveryHandler) Track(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.Location
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed location")
		return
	}

	point, err := h.facade.TrackDelivery(c.Request.Context(), id, toCoordinates(req))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTrackingResponse(*point))
}

// Tracking handles GET /api/deliveries/:id/tracking.
func (h *DeliveryHandler) Tracking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	points, err := h.facade.DeliveryTracking(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := make([]dto.TrackingResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, toTrackingResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func toCoordinates(l dto.Location) model.Coordinates {
	return model.Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

func toLocation(c model.Coordinates) dto.Location {
	return dto.Location{Latitude: c.Latitude, Longitude: c.Longitude}
}

func toDeliveryResponse(d model.Delivery) dto.DeliveryResponse {
	return dto.DeliveryResponse{
		ID:          d.ID.String(),
		OrderID:     d.OrderID.String(),
		RiderID:     d.RiderID,
		Pickup:      toLocation(d.Pickup),
		Dropoff:     toLocation(d.Dropoff),
		Status:      string(d.Status),
		EstimatedKm: d.EstimatedDistanceKm,
		ActualKm:    d.ActualDistanceKm,
		PickedUpAt:  d.PickedUpAt,
		DeliveredAt: d.DeliveredAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toTrackingResponse(p model.TrackingPoint) dto.TrackingResponse {
	return dto.TrackingResponse{
		ID:         p.ID,
		DeliveryID: p.DeliveryID.String(),
		Latitude:   p.Location.Latitude,
		Longitude:  p.Location.Longitude,
		Status:     string(p.Status),
		RecordedAt: p.RecordedAt,
	}
}
