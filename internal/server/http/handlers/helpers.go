package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	pkgAuth "github.com/polkiloo/foodrush/internal/pkg/auth"
	"github.com/polkiloo/foodrush/internal/server/http/middleware"
	"github.com/polkiloo/foodrush/internal/usecase"
)

// GuestSessionHeader identifies the cart of a caller without a token.
const GuestSessionHeader = "X-Guest-Session"

// CurrentPrincipal extracts the authenticated principal from context.
func CurrentPrincipal(c *gin.Context) pkgAuth.Principal {
	principal, _ := middleware.Principal(c)
	return principal
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// cartOwner prefers the principal subject and falls back to the guest session header.
func cartOwner(c *gin.Context) (string, bool) {
	if principal, ok := middleware.Principal(c); ok && principal.Subject != "" {
		return principal.Subject, true
	}
	if guest := strings.TrimSpace(c.GetHeader(GuestSessionHeader)); guest != "" {
		return usecase.GuestCartPrefix + guest, true
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "cart session required"})
	return "", false
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// abortWithError maps domain errors to HTTP statuses. Unknown errors are
// reported as 500 without leaking their text.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainErrors.ErrNotFound), errors.Is(err, domainErrors.ErrUnknownConflict):
		status = http.StatusNotFound
	case errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrConflictPending),
		errors.Is(err, domainErrors.ErrConflictResolved):
		status = http.StatusConflict
	case errors.Is(err, domainErrors.ErrInvalidStatus),
		errors.Is(err, domainErrors.ErrInvalidOrder),
		errors.Is(err, domainErrors.ErrInvalidItem),
		errors.Is(err, domainErrors.ErrInvalidRoom),
		errors.Is(err, domainErrors.ErrInvalidEvent),
		errors.Is(err, domainErrors.ErrEmptyCart):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrForbidden):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		c.AbortWithStatus(status)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
