package handler

import (
	"errors"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

var outcomeLabels = []struct {
	err   error
	label string
}{
	{domain.ErrInvalidInput, "invalid_input"},
	{domain.ErrUserExists, "user_exists"},
	{domain.ErrInvalidCredentials, "invalid_credentials"},
	{domain.ErrUnauthenticated, "unauthenticated"},
	{domain.ErrUserNotFound, "user_not_found"},
	{domain.ErrRateLimited, "rate_limited"},
	{domain.ErrMailDelivery, "mail_failed"},
	{domain.ErrPasswordChangeRequired, "forbidden"},
	{domain.ErrForbidden, "forbidden"},
	{domain.ErrCVNotFound, "not_found"},
	{domain.ErrUnsupportedFileType, "unsupported_type"},
	{domain.ErrFileTooLarge, "too_large"},
	{domain.ErrLocationUnconfigured, "unconfigured"},
	{domain.ErrLocationUnavailable, "upstream_error"},
}

// outcome turns an operation result into a bounded metric label.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "invalid_input"
	}
	for _, o := range outcomeLabels {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}
