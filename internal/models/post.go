package models

import "time"

// Post belongs to a user profile, or to a group when GroupID is set.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	GroupID   *uint     `json:"group_id,omitempty" gorm:"index"`
	Title     string    `json:"title" gorm:"size:200"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"required,min=1,max=5000"`
	GroupID *uint  `json:"group_id,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Content string  `json:"content" validate:"required,min=1,max=5000"`
}
