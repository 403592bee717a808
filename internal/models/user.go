// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserRole enumerates the roles a user can hold.
type UserRole string

const (
	RoleMember UserRole = "member"
	RoleAdmin  UserRole = "admin"
)

// User represents a registered Gig Buddy account.
// Email is stored lower-cased; the password hash is never serialized.
type User struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Username    string            `gorm:"not null" json:"username"`
	Email       string            `gorm:"uniqueIndex;not null" json:"email"`
	Password    string            `gorm:"not null" json:"-"`
	Bio         string            `json:"bio"`
	Avatar      string            `json:"avatar"`
	Location    string            `json:"location"`
	Website     string            `json:"website"`
	SocialLinks datatypes.JSONMap `json:"social_links,omitempty"`
	Role        UserRole          `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Gigs        []Gig             `gorm:"foreignKey:UserID" json:"gigs,omitempty"`
	Collections []Collection      `gorm:"foreignKey:UserID" json:"collections,omitempty"`
}

// IsAdmin reports whether the user holds the admin role override.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
