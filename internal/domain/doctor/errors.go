package doctor

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var (
	ErrDoctorNotFound      = fmt.Errorf("doctor %w", domain.ErrNotFound)
	ErrDoctorAlreadyExists = fmt.Errorf("%w: a doctor with this national ID already exists", domain.ErrConflict)
	ErrDoctorHasRecords    = fmt.Errorf("%w: doctor has appointments or consultations", domain.ErrInUse)
)
