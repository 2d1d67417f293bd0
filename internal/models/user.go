// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered author or commenter.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Posts        []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	Comments     []Comment `gorm:"foreignKey:UserID" json:"comments,omitempty"`
}
