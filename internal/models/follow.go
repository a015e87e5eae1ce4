package models

import "time"

type FollowStatus string

// A missing edge is represented by the empty FollowStatus.
const (
	FollowStatusNone     FollowStatus = ""
	FollowStatusPending  FollowStatus = "pending"
	FollowStatusAccepted FollowStatus = "accepted"
)

// Follow is a directed edge from FollowerID to FolloweeID.
type Follow struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	FollowerID  uint         `json:"follower_id" gorm:"not null;uniqueIndex:idx_follower_followee"`
	FolloweeID  uint         `json:"followee_id" gorm:"not null;index;uniqueIndex:idx_follower_followee"`
	Status      FollowStatus `json:"status" gorm:"size:20;not null;index"`
	RequestedAt time.Time    `json:"requested_at"`
	RespondedAt *time.Time   `json:"responded_at,omitempty"`

	Follower *User `json:"follower,omitempty" gorm:"foreignKey:FollowerID"`
	Followee *User `json:"followee,omitempty" gorm:"foreignKey:FolloweeID"`
}
