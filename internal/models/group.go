package models

import "time"

type MembershipStatus string

const (
	MembershipNone     MembershipStatus = ""
	MembershipPending  MembershipStatus = "pending"
	MembershipAccepted MembershipStatus = "accepted"
)

type Group struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description *string   `json:"description,omitempty" gorm:"size:1000"`
	OwnerUserID uint      `json:"owner_user_id" gorm:"not null;index"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`

	Members []GroupMembership `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}

type GroupMembership struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	GroupID     uint             `json:"group_id" gorm:"not null;index;uniqueIndex:idx_group_user"`
	UserID      uint             `json:"user_id" gorm:"not null;index;uniqueIndex:idx_group_user"`
	Status      MembershipStatus `json:"status" gorm:"size:20;not null"`
	IsModerator bool             `json:"is_moderator"`
	JoinDate    time.Time        `json:"join_date"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// CreateGroupRequest defines the request body for creating a group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}
