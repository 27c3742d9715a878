package medication

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var (
	ErrMedicationNotFound = fmt.Errorf("medication %w", domain.ErrNotFound)
	ErrMedicationInUse    = fmt.Errorf("%w: medication is referenced by prescriptions", domain.ErrInUse)
)
