package model

import (
	"errors"
	"time"
)

// User represents a board member.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Nickname       string    `db:"nickname" json:"nickname"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	PhoneNumber    string    `db:"phone_number" json:"phoneNumber"`
	ZipCode        string    `db:"zip_code" json:"zipCode"`
	AddressBase    string    `db:"address_base" json:"addressBase"`
	AddressDetail  string    `db:"address_detail" json:"addressDetail"`
	AddressExtra   string    `db:"address_extra" json:"addressExtra"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Nickname      string `json:"nickname" validate:"required,nickname"`
	Email         string `json:"email" validate:"required,boardemail,max=254"`
	Password      string `json:"password" validate:"required,password"`
	PhoneNumber   string `json:"phoneNumber" validate:"required,phone"`
	ZipCode       string `json:"zipCode" validate:"required"`
	AddressBase   string `json:"addressBase" validate:"required"`
	AddressDetail string `json:"addressDetail" validate:"max=50"`
	AddressExtra  string `json:"addressExtra"`
}

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login. Username is the
// identity string the client compares against owner ids.
type LoginResponse struct {
	Success     bool   `json:"success"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
}

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrNicknameExists is returned when the nickname is already taken
	ErrNicknameExists = errors.New("nickname already exists")

	// ErrEmailExists is returned when the email is already registered
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenExpired = errors.New("access token expired")
	ErrTokenInvalid = errors.New("access token invalid")
	ErrTokenRevoked = errors.New("access token revoked")
)
