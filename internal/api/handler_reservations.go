package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cat-hotel-backend/internal/engine"
	"cat-hotel-backend/internal/model"
)

const dayFormat = "2006-01-02"

// createReservationRequest is the payload for POST /api/reservations.
// Dates are UTC calendar days; the stay is [checkIn, checkOut).
type createReservationRequest struct {
	CustomerID   int64   `json:"customerId" binding:"required"`
	RoomTypeID   int64   `json:"roomTypeId" binding:"required"`
	CheckIn      string  `json:"checkIn" binding:"required"`
	CheckOut     string  `json:"checkOut" binding:"required"`
	AllowSharing bool    `json:"allowSharing"`
	CatIDs       []int64 `json:"catIds"`
}

// CreateReservation handles POST /api/reservations. The reservation insert
// and the follow-up rebalance run in one transaction: if no feasible
// placement exists the reservation is not stored at all.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkIn, err := time.ParseInLocation(dayFormat, req.CheckIn, time.UTC)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid checkIn date. Use YYYY-MM-DD."})
		return
	}
	checkOut, err := time.ParseInLocation(dayFormat, req.CheckOut, time.UTC)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid checkOut date. Use YYYY-MM-DD."})
		return
	}
	if !checkIn.Before(checkOut) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "checkIn must be before checkOut"})
		return
	}

	reservation := model.Reservation{
		CustomerID:   req.CustomerID,
		RoomTypeID:   req.RoomTypeID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		AllowSharing: req.AllowSharing,
		Status:       model.StatusConfirmed,
	}

	txErr := h.store.DB().Transaction(func(tx *gorm.DB) error {
		txStore := h.store.WithTx(tx)
		if err := txStore.CreateReservation(c.Request.Context(), &reservation); err != nil {
			return err
		}
		if len(req.CatIDs) > 0 {
			var cats []model.Cat
			if err := tx.Where("id IN ? AND customer_id = ?", req.CatIDs, req.CustomerID).Find(&cats).Error; err != nil {
				return err
			}
			if err := tx.Model(&reservation).Association("Cats").Append(&cats); err != nil {
				return err
			}
			reservation.Cats = cats
		}
		return engine.New(txStore).Rebalance(c.Request.Context(), req.RoomTypeID)
	})
	if txErr != nil {
		abortOnRebalanceError(c, txErr)
		return
	}

	created, err := h.store.GetReservation(c.Request.Context(), reservation.ID)
	if err != nil || created == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload reservation"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// CheckInReservation handles POST /api/reservations/{reservation_id}/check-in.
// Marks the guest as physically present and pins their assignment so later
// rebalances never move it.
func (h *Handler) CheckInReservation(c *gin.Context) {
	reservationID, res, ok := h.loadReservation(c)
	if !ok {
		return
	}
	if res.Status != model.StatusPending && res.Status != model.StatusConfirmed {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Reservation cannot be checked in from status " + string(res.Status)})
		return
	}

	txErr := h.store.DB().Transaction(func(tx *gorm.DB) error {
		txStore := h.store.WithTx(tx)
		if err := txStore.UpdateReservationStatus(c.Request.Context(), reservationID, model.StatusCheckedIn); err != nil {
			return err
		}
		return engine.New(txStore).LockAssignmentsForReservation(c.Request.Context(), reservationID)
	})
	if txErr != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check in reservation"})
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckOutReservation handles POST /api/reservations/{reservation_id}/check-out.
func (h *Handler) CheckOutReservation(c *gin.Context) {
	h.finishReservation(c, model.StatusCheckedOut)
}

// CancelReservation handles POST /api/reservations/{reservation_id}/cancel.
func (h *Handler) CancelReservation(c *gin.Context) {
	h.finishReservation(c, model.StatusCancelled)
}

// finishReservation moves a reservation into a terminal status and sweeps
// its assignment out. The transition only ever frees capacity, so it commits
// regardless of whether the follow-up rebalance can place everyone else; an
// infeasible category must never block a cancellation or a check-out.
func (h *Handler) finishReservation(c *gin.Context, status model.ReservationStatus) {
	reservationID, res, ok := h.loadReservation(c)
	if !ok {
		return
	}
	if res.Status.Terminal() {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Reservation is already " + string(res.Status)})
		return
	}

	txErr := h.store.DB().Transaction(func(tx *gorm.DB) error {
		txStore := h.store.WithTx(tx)
		if err := txStore.UpdateReservationStatus(c.Request.Context(), reservationID, status); err != nil {
			return err
		}
		return txStore.DeleteTerminalAssignments(c.Request.Context(), res.RoomTypeID)
	})
	if txErr != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reservation"})
		return
	}

	// Reconsider the freed capacity for everyone else. Infeasibility here is
	// an operational signal, not a failure of this request.
	if err := engine.New(h.store).Rebalance(c.Request.Context(), res.RoomTypeID); err != nil {
		var capacity *engine.CapacityExceededError
		var noRoom *engine.NoRoomAvailableError
		if !errors.As(err, &capacity) && !errors.As(err, &noRoom) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to rebalance room type"})
			return
		}
		log.Printf("Rebalance after finishing reservation %d skipped placement: %v", reservationID, err)
	}
	c.Status(http.StatusNoContent)
}

// RebalanceRoomType handles POST /api/room-types/{room_type_id}/rebalance,
// the manual trigger for a category-wide reassignment.
func (h *Handler) RebalanceRoomType(c *gin.Context) {
	roomTypeID, err := strconv.ParseInt(c.Param("room_type_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room type ID"})
		return
	}

	if err := engine.New(h.store).Rebalance(c.Request.Context(), roomTypeID); err != nil {
		abortOnRebalanceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) loadReservation(c *gin.Context) (int64, *model.Reservation, bool) {
	reservationID, err := strconv.ParseInt(c.Param("reservation_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return 0, nil, false
	}
	res, err := h.store.GetReservation(c.Request.Context(), reservationID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reservation"})
		return 0, nil, false
	}
	if res == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return 0, nil, false
	}
	return reservationID, res, true
}
