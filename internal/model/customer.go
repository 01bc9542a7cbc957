package model

import "time"

// Customer owns reservations and cats.
type Customer struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Phone     string    `gorm:"size:64" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Cats []Cat `gorm:"foreignKey:CustomerID" json:"cats,omitempty"`
}

// Cat is a single boarding guest. A reservation's occupant count is the
// number of cats linked to it, never less than 1.
type Cat struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	CustomerID int64     `gorm:"index;not null" json:"customerId"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	CreatedAt  time.Time `gorm:"not null" json:"-"`
	UpdatedAt  time.Time `gorm:"not null" json:"-"`

	// Associations
	Customer Customer `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
