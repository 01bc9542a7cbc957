package engine

import (
	"context"
	"time"

	"cat-hotel-backend/internal/model"
)

// Repository is the narrow persistence capability the engine consumes. It
// is satisfied both by a store over a plain connection and by one bound to
// an externally supplied transaction; the engine never constructs one.
type Repository interface {
	// GetRoomType returns the room type with its rooms preloaded, or nil
	// if no such room type exists.
	GetRoomType(ctx context.Context, id int64) (*model.RoomType, error)

	// ListInScopeReservations returns the category's reservations in
	// non-terminal, non-cancelled status, ordered by check-in ascending,
	// with cats and any existing assignment preloaded.
	ListInScopeReservations(ctx context.Context, roomTypeID int64) ([]model.Reservation, error)

	// DeleteTerminalAssignments removes assignment rows whose owning
	// reservation in this category is cancelled or checked out.
	DeleteTerminalAssignments(ctx context.Context, roomTypeID int64) error

	// DeleteAssignments removes the assignment rows of the given
	// reservations. A nil or empty slice is a no-op.
	DeleteAssignments(ctx context.Context, reservationIDs []int64) error

	// CreateAssignments inserts the given assignment rows.
	CreateAssignments(ctx context.Context, assignments []model.RoomAssignment) error

	// LockAssignments stamps the reservation's current assignment with the
	// lock timestamp. Already-locked or missing assignments are left alone.
	LockAssignments(ctx context.Context, reservationID int64, lockedAt time.Time) error

	// Transaction runs fn against a Repository bound to one transaction,
	// committing on nil and rolling back on error.
	Transaction(ctx context.Context, fn func(Repository) error) error
}
