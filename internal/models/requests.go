package models

import "time"

// SignupRequest represents a self-registration request
type SignupRequest struct {
	Name     string       `json:"name" validate:"required,min=4"`
	Email    string       `json:"email" validate:"required,email"`
	Mobile   MobileNumber `json:"mobile" validate:"required,mobile"`
	Password string       `json:"password" validate:"required,password"`
}

// LoginRequest represents a login request for both users and the admin
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents a partial profile update by the user
type UpdateProfileRequest struct {
	Name   *string       `json:"name,omitempty" validate:"omitempty,min=4"`
	Email  *string       `json:"email,omitempty" validate:"omitempty,email"`
	Mobile *MobileNumber `json:"mobile,omitempty" validate:"omitempty,mobile"`
}

// CreateUserRequest represents a user creation request made by the admin
type CreateUserRequest struct {
	Name     string       `json:"name" validate:"required,min=4"`
	Email    string       `json:"email" validate:"required,email"`
	Mobile   MobileNumber `json:"mobile" validate:"required,mobile"`
	Password string       `json:"password" validate:"required,password"`
}

// UpdateUserRequest represents a partial user update made by the admin
type UpdateUserRequest struct {
	Name     *string       `json:"name,omitempty" validate:"omitempty,min=4"`
	Email    *string       `json:"email,omitempty" validate:"omitempty,email"`
	Mobile   *MobileNumber `json:"mobile,omitempty" validate:"omitempty,mobile"`
	Password *string       `json:"password,omitempty" validate:"omitempty,password"`
}

// TokenResponse is returned by both login endpoints
type TokenResponse struct {
	Status    string    `json:"status"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message"`
}

// UserListResponse is a page of users for the admin dashboard
type UserListResponse struct {
	Status string         `json:"status"`
	Users  []UserResponse `json:"users"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Count  int            `json:"count"`
}

// MessageResponse is a status with a human readable message
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UserEnvelope wraps a single user
type UserEnvelope struct {
	Status string       `json:"status"`
	User   UserResponse `json:"user"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	// Errors lists field validation problems, keyed by field name
	Errors map[string]string `json:"errors,omitempty"`
}
