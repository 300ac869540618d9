package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the only persisted entity. Token hashes and expiries come in
// pairs and are NULL while nothing is outstanding. Expiries are unix seconds.
type User struct {
	ID                         uuid.UUID `gorm:"type:uuid;primaryKey"               json:"id"`
	Email                      string    `gorm:"uniqueIndex;not null"               json:"email"`
	Username                   string    `gorm:"uniqueIndex;not null"               json:"username"`
	FullName                   string    `gorm:"not null;default:''"                json:"fullname"`
	PasswordHash               string    `gorm:"not null"                           json:"-"`
	Role                       string    `gorm:"not null;default:user"              json:"role"`
	IsEmailVerified            bool      `gorm:"not null;default:false"             json:"isEmailVerified"`
	EmailVerificationTokenHash *string   `gorm:"index"                              json:"-"`
	EmailVerificationExpiry    *int64    `json:"-"`
	ForgotPasswordTokenHash    *string   `gorm:"index"                              json:"-"`
	ForgotPasswordExpiry       *int64    `json:"-"`
	RefreshToken               string    `gorm:"not null;default:''"                json:"-"`
	CreatedAt                  time.Time `json:"createdAt"`
	UpdatedAt                  time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// PublicUser is a User without the password hash, token fields or refresh
// slot.
type PublicUser struct {
	ID              uuid.UUID `json:"_id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	FullName        string    `json:"fullname,omitempty"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		FullName:        u.FullName,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
