package models

import (
	"time"
)

// PostDateLayout is the display format stored in Post.Date.
const PostDateLayout = "January 2, 2006"

// Post represents a published blog entry.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"uniqueIndex;not null" json:"title"`
	Subtitle string `gorm:"not null" json:"subtitle"`
	// Date is the display-formatted publication date shown on rendered pages.
	Date      string    `gorm:"not null" json:"date"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
