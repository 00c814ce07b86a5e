package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleEditor   UserRole = "EDITOR"
	RoleReviewer UserRole = "REVIEWER"
	RoleReader   UserRole = "READER"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleReviewer, RoleReader:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'READER'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = NewID()
	}
	return nil
}

// NewID returns a time-ordered identifier so that rows created later sort
// after earlier ones even when timestamps collide.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
