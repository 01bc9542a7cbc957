package model

import "time"

// RoomType represents a class of interchangeable rooms sharing one capacity.
type RoomType struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Capacity  int       `gorm:"not null" json:"capacity"` // max simultaneous cats per room, >= 1
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Rooms []Room `gorm:"foreignKey:RoomTypeID" json:"rooms,omitempty"`
}
