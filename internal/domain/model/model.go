package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex:idx_users_username;size:150" json:"username"`
	Email          string    `gorm:"uniqueIndex:idx_users_email;size:254" json:"email"`
	HashedPassword string    `json:"-"`
	Role           Role      `gorm:"size:20;default:user" json:"role"`
	Confirmed      bool      `gorm:"default:false" json:"confirmed"`
	Avatar         string    `gorm:"size:255" json:"avatar"`
	// Last-issued refresh token; rotation overwrites, so at most one is
	// valid per user at any time.
	RefreshToken *string   `gorm:"size:1024" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

type Contact struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName      string     `gorm:"size:50;not null" json:"first_name"`
	LastName       string     `gorm:"size:50;not null" json:"last_name"`
	Email          string     `gorm:"size:254;not null;uniqueIndex:idx_contacts_email_user" json:"email"`
	PhoneNumber    string     `gorm:"size:30;not null" json:"phone_number"`
	Birthday       *time.Time `json:"birthday,omitempty"`
	AdditionalInfo string     `json:"additional_info,omitempty"`
	UserID         uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_contacts_email_user" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
