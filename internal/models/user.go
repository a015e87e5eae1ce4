package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Site-wide roles
const (
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleUser   = "User"
)

type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Username        string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null"`
	Password        string    `json:"-"`
	FirebaseUID     *string   `json:"-" gorm:"uniqueIndex"`
	DisplayName     string    `json:"display_name" gorm:"size:100"`
	Bio             string    `json:"bio" gorm:"size:500"`
	IsPrivate       *bool     `json:"is_private"` // nil is treated as public
	ProfileImageURL string    `json:"profile_image_url"`
	Role            string    `json:"role" gorm:"size:20;not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Private reports whether the account requires follow approval.
func (u *User) Private() bool {
	return u.IsPrivate != nil && *u.IsPrivate
}

type CreateLocalUserRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken  string `json:"id_token" validate:"required"`
	Username string `json:"username" validate:"omitempty,alphanum,min=3,max=32"`
}

type UpdateUserRequest struct {
	DisplayName     *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio             *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	IsPrivate       *bool   `json:"is_private,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint     `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}
