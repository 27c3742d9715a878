package appointment

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uint) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error

	// Delete leaves consultations that came from the appointment in place,
	// with their appointment reference cleared.
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q *ListAppointmentsQuery) (*domain.Paged[Appointment], error)
	Exists(ctx context.Context, id uint) (bool, error)

	// Stats counts all appointments and those scheduled on today's date.
	Stats(ctx context.Context, today time.Time) (*Stats, error)
}
