package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the signed session cookie.
type SessionClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session is returned after a successful login.
type Session struct {
	Token     string      `json:"-"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserProfile `json:"user"`
}

// RegisterRequest is submitted by the registration form.
type RegisterRequest struct {
	Username        string `form:"username" json:"username" validate:"required,min=3,max=50"`
	Email           string `form:"email" json:"email" validate:"required,email,max=254"`
	Password        string `form:"password" json:"password" validate:"required,min=8,max=72,notnumeric"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" validate:"required,eqfield=Password"`
}

// LoginRequest is submitted by the login form.
type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required,max=50"`
	Password string `form:"password" json:"password" validate:"required"`
}
