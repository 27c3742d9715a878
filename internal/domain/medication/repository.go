package medication

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uint) (*Medication, error)
	Update(ctx context.Context, m *Medication) error

	// Delete returns ErrMedicationInUse while prescriptions reference the medication.
	Delete(ctx context.Context, id uint) error

	// List returns a paginated, filtered list. now anchors the expiring-soon filter.
	List(ctx context.Context, q *ListMedicationsQuery, now time.Time) (*domain.Paged[Medication], error)
	Exists(ctx context.Context, id uint) (bool, error)
}
