package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RealtimeHandler upgrades websocket sessions and answers health probes.
type RealtimeHandler struct {
	facade RealtimeFacade
}

// NewRealtimeHandler constructs RealtimeHandler.
func NewRealtimeHandler(facade RealtimeFacade) *RealtimeHandler {
	return &RealtimeHandler{facade: facade}
}

// Serve handles GET /ws. The connection is held until the peer leaves.
func (h *RealtimeHandler) Serve(c *gin.Context) {
	if err := h.facade.ServeRealtime(c.Writer, c.Request, CurrentPrincipal(c)); err != nil {
		_ = c.Error(err)
	}
	c.Abort()
}

// Health handles GET /healthz.
func (h *RealtimeHandler) Health(c *gin.Context) {
	if err := h.facade.Health(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
