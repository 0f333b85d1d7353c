package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account. Username and email carry unique
// indexes so the database rejects duplicates even when two registrations
// race past the application-level existence checks.
type User struct {
	UserID       string        `gorm:"type:char(36);primaryKey" json:"-"`
	Username     string        `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string        `gorm:"size:60;not null" json:"-"`
	CreatedAt    time.Time     `json:"-"`
	UpdatedAt    time.Time     `json:"-"`
	Compositions []Composition `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate assigns a UUID primary key when none was set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.New().String()
	}
	return nil
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
