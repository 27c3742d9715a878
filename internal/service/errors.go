package service

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

// Actor identifies who triggered a write. UserID is nil when sign-in is disabled.
type Actor struct {
	UserID    *uuid.UUID
	Role      domain.Role
	IPAddress string
	RequestID string
}

type AuditEntry struct {
	Actor        Actor
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Changes      string
}
