package treatment

import (
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var (
	ErrTreatmentNotFound = fmt.Errorf("treatment %w", domain.ErrNotFound)
	ErrEndBeforeStart    = errors.New("end date cannot be before start date")
)
