package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cat-hotel-backend/internal/engine"
	"cat-hotel-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store store.Store
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store) *Handler {
	return &Handler{store: s}
}

// abortOnRebalanceError translates engine failures into API responses. A
// placement failure means the category cannot currently accept the demand;
// that is a 409 the caller can resolve with different dates or categories,
// not a server fault.
func abortOnRebalanceError(c *gin.Context, err error) {
	var capacity *engine.CapacityExceededError
	var noRoom *engine.NoRoomAvailableError
	if errors.As(err, &capacity) || errors.As(err, &noRoom) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":  "this room category cannot currently accept this reservation",
			"reason": err.Error(),
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to rebalance room assignments"})
}
