package model

import "errors"

var (
	// Auth related errors
	ErrUnauthenticated    = errors.New("authentication required")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenExpired       = errors.New("token expired")

	// File lifecycle errors
	ErrFileNotFound  = errors.New("file not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidState  = errors.New("transition not legal from current state")
	ErrAlreadyExists = errors.New("file already registered")

	// Upload negotiation errors
	ErrValidation = errors.New("invalid upload metadata")

	// Provider errors not attributable to the caller
	ErrUpstream = errors.New("upstream provider failure")
)
