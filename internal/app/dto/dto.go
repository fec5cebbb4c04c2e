package dto

import (
	"time"

	"github.com/okravchenko/contactbook/internal/domain/model"
)

type RegisterDTO struct {
	Username string     `json:"username" validate:"required,min=3,max=150"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6,max=72"`
	Role     model.Role `json:"role" validate:"omitempty"`
}

// LoginDTO binds the OAuth2-style form body of POST /auth/login.
type LoginDTO struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RequestEmailDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type ContactDTO struct {
	FirstName      string     `json:"first_name" validate:"required,max=50"`
	LastName       string     `json:"last_name" validate:"required,max=50"`
	Email          string     `json:"email" validate:"required,email"`
	PhoneNumber    string     `json:"phone_number" validate:"required,max=30"`
	Birthday       *time.Time `json:"birthday"`
	AdditionalInfo string     `json:"additional_info"`
}

type ContactUpdateDTO struct {
	FirstName      *string    `json:"first_name" validate:"omitempty,max=50"`
	LastName       *string    `json:"last_name" validate:"omitempty,max=50"`
	Email          *string    `json:"email" validate:"omitempty,email"`
	PhoneNumber    *string    `json:"phone_number" validate:"omitempty,max=30"`
	Birthday       *time.Time `json:"birthday"`
	AdditionalInfo *string    `json:"additional_info"`
}
