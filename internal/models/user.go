package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents an account identity. The follow relation lives in the
// Follow table; FollowersCount/FollowingCount are denormalized counters
// maintained by the follow handlers.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"size:50;uniqueIndex"`
	Email          string    `json:"email" gorm:"uniqueIndex"`
	Password       string    `json:"-"` // bcrypt hash, never serialized
	Bio            string    `json:"bio" gorm:"size:500"`
	AvatarURL      string    `json:"avatar_url"`
	FollowersCount int       `json:"followers_count" gorm:"default:0"`
	FollowingCount int       `json:"following_count" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserCompact is the trimmed identity representation embedded in posts,
// comments, likes and notifications.
type UserCompact struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}

// SignupRequest defines the request body for local registration
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// SigninRequest defines the request body for login
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest defines the request body for profile updates
type UpdateUserRequest struct {
	Username  string `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
