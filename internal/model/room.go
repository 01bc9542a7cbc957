package model

import "time"

// Room represents a physical room belonging to exactly one RoomType.
type Room struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	RoomTypeID int64     `gorm:"index;not null" json:"roomTypeId"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"not null" json:"-"`
	UpdatedAt  time.Time `gorm:"not null" json:"-"`

	// Associations
	RoomType RoomType `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
