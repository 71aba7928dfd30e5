// Package models contains the persistent entities of the blog and the
// error types shared by every layer.
package models

import "time"

// User is an account that can author posts and comments.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254;not null;default:''" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `gorm:"size:150;not null;default:''" json:"first_name,omitempty"`
	LastName  string    `gorm:"size:150;not null;default:''" json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns the full name when present, falling back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
