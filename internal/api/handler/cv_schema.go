package handler

import "github.com/jobportal/jobboard-api/internal/core/domain"

type cvResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    *domain.CV `json:"data,omitempty"`
}
