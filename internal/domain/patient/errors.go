package patient

import (
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var (
	ErrPatientNotFound      = fmt.Errorf("patient %w", domain.ErrNotFound)
	ErrPatientAlreadyExists = fmt.Errorf("%w: a patient with this national ID already exists", domain.ErrConflict)
	ErrPatientHasDependents = fmt.Errorf("%w: patient has appointments or consultations; delete with cascade to remove them", domain.ErrInUse)
	ErrInvalidBirthDate     = errors.New("birth date cannot be in the future")
)
