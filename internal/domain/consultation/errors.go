package consultation

import (
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var (
	ErrConsultationNotFound = fmt.Errorf("consultation %w", domain.ErrNotFound)
	ErrAppointmentMismatch  = errors.New("appointment belongs to a different patient or doctor")
)
