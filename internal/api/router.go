package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"cat-hotel-backend/config"
	"cat-hotel-backend/internal/mw"
	"cat-hotel-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s)

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), 5)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// GET /api/room-types
		api.GET("/room-types", caching, GetRoomTypes(db))

		// GET /api/room-types/{room_type_id}/rooms
		api.GET("/room-types/:room_type_id/rooms", caching, GetRoomBoard(db))

		// POST /api/room-types/{room_type_id}/rebalance
		api.POST("/room-types/:room_type_id/rebalance", handler.RebalanceRoomType)

		// Reservation lifecycle
		api.POST("/reservations", handler.CreateReservation)
		api.POST("/reservations/:reservation_id/check-in", handler.CheckInReservation)
		api.POST("/reservations/:reservation_id/check-out", handler.CheckOutReservation)
		api.POST("/reservations/:reservation_id/cancel", handler.CancelReservation)
	}

	return r
}
