package models

import "errors"

// Errors shared by the repository and service layers
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailExists   = errors.New("email already exists")
	ErrInvalidUserID = errors.New("invalid user id")
)
