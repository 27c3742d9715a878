package patient

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Repository interface {
	// Create persists a new patient. Returns ErrPatientAlreadyExists on duplicate NationalID.
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id uint) (*Patient, error)

	Update(ctx context.Context, p *Patient) error

	// Delete removes the patient and its clinical record. Returns
	// ErrPatientHasDependents while appointments or consultations exist.
	Delete(ctx context.Context, id uint) error

	// DeleteCascade removes the patient together with every consultation,
	// treatment, prescription, appointment and clinical record, atomically.
	DeleteCascade(ctx context.Context, id uint) (*CascadeResult, error)

	// List returns a paginated, filtered list of patients. now anchors the age filters.
	List(ctx context.Context, q *ListPatientsQuery, now time.Time) (*domain.Paged[Patient], error)

	Exists(ctx context.Context, id uint) (bool, error)

	Count(ctx context.Context) (int64, error)
}
