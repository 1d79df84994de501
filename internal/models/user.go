package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered reader. Authentication is handled at the boundary;
// the core only needs identity and display data.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"size:60;not null" json:"name"`
	Email           string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	DefaultLanguage string    `gorm:"size:10;not null;default:en" json:"default_language"`
	AvatarPreset    *string   `gorm:"size:30" json:"avatar_preset"`
	AvatarImage     *string   `gorm:"type:text" json:"avatar_image"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// UserInfo is the compact user shape embedded in API responses.
type UserInfo struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UpdateProfileRequest updates the caller's own profile. Preset and image are
// mutually exclusive; setting one clears the other.
type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	AvatarPreset *string `json:"avatar_preset"`
	AvatarImage  *string `json:"avatar_image"`
}

// LoginRequest is the demo email login used by the boundary layer.
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}
