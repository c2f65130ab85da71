package handler

import "github.com/jobportal/jobboard-api/internal/core/ports"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// validationErrorResponse is returned when the body fails validation.
type validationErrorResponse struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors"`
}

// --- Request types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type changePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// --- Response types ---

type authResponse struct {
	Token                  string            `json:"token"`
	User                   ports.UserSummary `json:"user"`
	RequiresPasswordChange bool              `json:"requiresPasswordChange"`
}

type meResponse struct {
	User *ports.UserProfile `json:"user"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}

type changePasswordResponse struct {
	Msg   string            `json:"msg"`
	Token string            `json:"token"`
	User  ports.UserSummary `json:"user"`
}
