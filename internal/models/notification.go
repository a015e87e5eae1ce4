package models

import "time"

type NotificationType string

const (
	NotificationFollow       NotificationType = "follow"
	NotificationReaction     NotificationType = "reaction"
	NotificationComment      NotificationType = "comment"
	NotificationGroupRequest NotificationType = "group_request"
)

// Notification is consumed by deleting it; there is no read flag.
type Notification struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	RecipientUserID uint             `json:"recipient_user_id" gorm:"not null;index"`
	ActorUserID     *uint            `json:"actor_user_id,omitempty" gorm:"index"`
	Type            NotificationType `json:"type" gorm:"size:30;not null;index"`
	ReferenceID     *string          `json:"reference_id,omitempty" gorm:"size:64"`
	Message         *string          `json:"message,omitempty" gorm:"size:500"`
	Date            time.Time        `json:"date" gorm:"index"`
}
