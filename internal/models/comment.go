// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// CommentDateLayout is the display format stored in Comment.Date.
const CommentDateLayout = "01-02-2006"

// Comment represents a reader comment attached to a post.
type Comment struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Text string `gorm:"type:text;not null" json:"text"`
	// Date is the display-formatted submission date shown on rendered pages.
	Date      string    `gorm:"not null" json:"date"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Post      Post      `gorm:"foreignKey:PostID" json:"post,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
