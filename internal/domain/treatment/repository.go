package treatment

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, t *Treatment) error

	// GetByID loads the treatment with its consultation, patient and doctor.
	GetByID(ctx context.Context, id uint) (*Treatment, error)
	Update(ctx context.Context, t *Treatment) error

	// Delete also removes the treatment's prescriptions.
	Delete(ctx context.Context, id uint) error

	// List returns a paginated, filtered list. now anchors the active filter.
	List(ctx context.Context, q *ListTreatmentsQuery, now time.Time) (*domain.Paged[Treatment], error)
	ListByConsultation(ctx context.Context, consultationID uint) ([]*Treatment, error)
	Exists(ctx context.Context, id uint) (bool, error)
}
