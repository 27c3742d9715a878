package appointment

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var ErrAppointmentNotFound = fmt.Errorf("appointment %w", domain.ErrNotFound)
