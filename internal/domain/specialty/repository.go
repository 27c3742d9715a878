package specialty

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Repository interface {
	// Create persists a new specialty. Returns ErrSpecialtyAlreadyExists on duplicate name.
	Create(ctx context.Context, s *Specialty) error

	// GetByID returns the specialty with its doctor count. Returns ErrSpecialtyNotFound if missing.
	GetByID(ctx context.Context, id uint) (*Specialty, error)

	Update(ctx context.Context, s *Specialty) error

	// Delete fails with ErrSpecialtyHasDoctors while doctors reference the specialty.
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, q *ListSpecialtiesQuery) (*domain.Paged[Specialty], error)

	// Exists checks for the id without loading the row.
	Exists(ctx context.Context, id uint) (bool, error)

	// TopByConsultations ranks specialties by the number of consultations held
	// by their doctors.
	TopByConsultations(ctx context.Context, limit int) ([]Ranking, error)
}
