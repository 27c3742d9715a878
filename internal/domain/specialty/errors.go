package specialty

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var (
	ErrSpecialtyNotFound      = fmt.Errorf("specialty %w", domain.ErrNotFound)
	ErrSpecialtyAlreadyExists = fmt.Errorf("%w: a specialty with this name already exists", domain.ErrConflict)
	ErrSpecialtyHasDoctors    = fmt.Errorf("%w: specialty still has doctors assigned", domain.ErrInUse)
)
