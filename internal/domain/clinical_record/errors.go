package clinical_record

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

var (
	ErrRecordNotFound      = fmt.Errorf("clinical record %w", domain.ErrNotFound)
	ErrRecordAlreadyExists = fmt.Errorf("%w: this patient already has a clinical record", domain.ErrConflict)
)
