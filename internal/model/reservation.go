package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked_in"
	StatusCheckedOut ReservationStatus = "checked_out"
	StatusCancelled  ReservationStatus = "cancelled"
)

// Terminal reports whether the status removes the reservation from the
// room-assignment scope.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled
}

// Reservation is a booked stay. The interval [CheckIn, CheckOut) is
// half-open at UTC day granularity: a departure and an arrival may share
// the same calendar day.
type Reservation struct {
	ID           int64             `gorm:"primaryKey" json:"id"`
	CustomerID   int64             `gorm:"index;not null" json:"customerId"`
	RoomTypeID   int64             `gorm:"index;not null" json:"roomTypeId"`
	CheckIn      time.Time         `gorm:"not null" json:"checkIn"`
	CheckOut     time.Time         `gorm:"not null" json:"checkOut"`
	AllowSharing bool              `gorm:"not null;default:false" json:"allowSharing"`
	Status       ReservationStatus `gorm:"size:32;not null;index" json:"status"`
	CreatedAt    time.Time         `gorm:"not null" json:"-"`
	UpdatedAt    time.Time         `gorm:"not null" json:"-"`

	// Associations
	Customer   Customer        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RoomType   RoomType        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Cats       []Cat           `gorm:"many2many:reservation_cats;" json:"cats,omitempty"`
	Assignment *RoomAssignment `gorm:"foreignKey:ReservationID" json:"assignment,omitempty"`
}

// OccupantCount returns the number of cats on the reservation, clamped to
// at least 1 so a reservation with no linked cats still occupies capacity.
func (r *Reservation) OccupantCount() int {
	if len(r.Cats) < 1 {
		return 1
	}
	return len(r.Cats)
}

// InScope reports whether the reservation participates in room assignment.
func (r *Reservation) InScope() bool {
	return !r.Status.Terminal()
}

// Locked reports whether the reservation's assignment must not be moved:
// the guest has checked in, or the assignment carries a lock timestamp.
func (r *Reservation) Locked() bool {
	if r.Status == StatusCheckedIn {
		return true
	}
	return r.Assignment != nil && r.Assignment.LockedAt != nil
}
