package model

import "time"

// RoomAssignment records which physical room a reservation occupies over
// its stay. At most one assignment exists per reservation; the engine
// rewrites it freely on rebalance until LockedAt is set.
type RoomAssignment struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	ReservationID int64      `gorm:"uniqueIndex;not null" json:"reservationId"`
	RoomID        int64      `gorm:"index;not null" json:"roomId"`
	CheckIn       time.Time  `gorm:"not null" json:"checkIn"`
	CheckOut      time.Time  `gorm:"not null" json:"checkOut"`
	Occupants     int        `gorm:"not null" json:"occupants"`
	AllowSharing  bool       `gorm:"not null" json:"allowSharing"`
	LockedAt      *time.Time `json:"lockedAt,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"-"`
	UpdatedAt     time.Time  `gorm:"not null" json:"-"`

	// Associations
	Room Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// IsLocked reports whether the assignment has been pinned by check-in.
func (a *RoomAssignment) IsLocked() bool {
	return a.LockedAt != nil
}
