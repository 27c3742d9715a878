package doctor

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Repository interface {
	// Create persists a new doctor. Returns ErrDoctorAlreadyExists on duplicate NationalID.
	Create(ctx context.Context, d *Doctor) error

	// GetByID loads the doctor with its specialty. Returns ErrDoctorNotFound if missing.
	GetByID(ctx context.Context, id uint) (*Doctor, error)

	Update(ctx context.Context, d *Doctor) error

	// Delete fails with ErrDoctorHasRecords while appointments or consultations reference the doctor.
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, q *ListDoctorsQuery) (*domain.Paged[Doctor], error)

	Exists(ctx context.Context, id uint) (bool, error)

	Count(ctx context.Context) (int64, error)
}
