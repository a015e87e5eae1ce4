package models

import "time"

// Reaction is a single like-style reaction of a user on a post.
type Reaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_post_user_reaction"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_post_user_reaction"`
	CreatedAt time.Time `json:"created_at"`
}
