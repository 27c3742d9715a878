package prescription

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error

	// GetByID loads the prescription with its medication and treatment chain.
	GetByID(ctx context.Context, id uint) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q *ListPrescriptionsQuery) (*domain.Paged[Prescription], error)
	ListByTreatment(ctx context.Context, treatmentID uint) ([]*Prescription, error)

	// Stats counts all prescriptions, those of the last 30 days and today's.
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}
