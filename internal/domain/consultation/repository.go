package consultation

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c *Consultation) error

	// GetByID loads the consultation with patient, doctor (and specialty) and appointment.
	GetByID(ctx context.Context, id uint) (*Consultation, error)
	Update(ctx context.Context, c *Consultation) error

	// Delete removes the consultation together with its treatments and their prescriptions.
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q *ListConsultationsQuery) (*domain.Paged[Consultation], error)
	Exists(ctx context.Context, id uint) (bool, error)

	// Recent returns the newest consultations, optionally narrowed to a
	// patient, a doctor or a start instant.
	Recent(ctx context.Context, f RecentFilter, limit int) ([]*Consultation, error)

	// CountBetween counts consultations with from <= consulted_at < to. Zero
	// bounds are open.
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type RecentFilter struct {
	PatientID *uint
	DoctorID  *uint
	Since     *time.Time
}
