package domain

import "errors"

// Auth errors.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrUserExists             = errors.New("user already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUnauthenticated        = errors.New("not authenticated")
	ErrRateLimited            = errors.New("you can only request a password reset once per day, please try again tomorrow")
	ErrMailDelivery           = errors.New("error sending email")
	ErrPasswordChangeRequired = errors.New("password change required")
)

// CV errors.
var (
	ErrForbidden           = errors.New("access forbidden")
	ErrCVNotFound          = errors.New("no CV found for this user")
	ErrUnsupportedFileType = errors.New("only PDF, DOC, and DOCX allowed")
	ErrFileTooLarge        = errors.New("file too large")
)

// Location errors.
var (
	ErrLocationUnconfigured = errors.New("location lookup is not configured")
	ErrLocationUnavailable  = errors.New("location provider unavailable")
)
