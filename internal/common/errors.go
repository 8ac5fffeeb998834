// Package common defines shared constants and sentinel errors used across
// the studio service and CLI layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Signup / login validation errors.
	ErrorUsernameTaken     = errors.New("username already taken")
	ErrorEmailTaken        = errors.New("email already registered")
	ErrorEmailBanned       = errors.New("email is banned")
	ErrorPasswordMismatch  = errors.New("passwords do not match")
	ErrorInvalidCredential = errors.New("invalid email or password")

	// OTP lifecycle errors.
	ErrInvalidOTP = errors.New("invalid verification code")
	ErrOTPExpired = errors.New("verification code expired")

	// Studio validation errors.
	ErrorEmptyPrompt = errors.New("empty prompt")
)
