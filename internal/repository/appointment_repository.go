package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/appointment"
)

var appointmentOrdering = ordering{
	fields: map[string]string{
		"scheduled_at": "citas_medicas.scheduled_at",
		"status":       "citas_medicas.status",
		"created_at":   "citas_medicas.created_at",
	},
	fallback: "citas_medicas.scheduled_at DESC",
	tiebreak: "citas_medicas.id DESC",
}

var appointmentErrs = errMap{notFound: appointment.ErrAppointmentNotFound}

type AppointmentRepository struct {
	db  *gorm.DB
	loc *time.Location
}

// NewAppointmentRepository interprets calendar-day filters in loc.
func NewAppointmentRepository(db *gorm.DB, loc *time.Location) *AppointmentRepository {
	return &AppointmentRepository{db: db, loc: loc}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	return create(ctx, r.db, a, appointmentErrs)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uint) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := r.db.WithContext(ctx).Preload("Patient").Preload("Doctor.Specialty").First(&a, id).Error; err != nil {
		return nil, appointmentErrs.translate(err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	return save(ctx, r.db, a, appointmentErrs)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &appointment.Appointment{}, id, appointmentErrs)
}

func (r *AppointmentRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &appointment.Appointment{}, id)
}

func (r *AppointmentRepository) filters(q *appointment.ListAppointmentsQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where(
				"(citas_medicas.patient_id IN (SELECT id FROM pacientes WHERE first_name ILIKE ? OR last_name ILIKE ?) "+
					"OR citas_medicas.doctor_id IN (SELECT id FROM medicos WHERE first_name ILIKE ? OR last_name ILIKE ?))",
				p, p, p, p,
			)
		}
		if q.PatientID != nil {
			db = db.Where("citas_medicas.patient_id = ?", *q.PatientID)
		}
		if q.DoctorID != nil {
			db = db.Where("citas_medicas.doctor_id = ?", *q.DoctorID)
		}
		if q.Status != nil {
			db = db.Where("citas_medicas.status = ?", string(*q.Status))
		}
		return db.Scopes(instantRange("citas_medicas.scheduled_at", q.DateFrom, q.DateTo, r.loc))
	}
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*domain.Paged[appointment.Appointment], error) {
	filtered := r.db.WithContext(ctx).Model(&appointment.Appointment{}).Scopes(r.filters(q))
	return paginate[appointment.Appointment](filtered, q.PageRequest, domain.DefaultPageSize,
		preload("Patient", "Doctor"), appointmentOrdering.scope(q.Ordering))
}

func (r *AppointmentRepository) Stats(ctx context.Context, today time.Time) (*appointment.Stats, error) {
	var s appointment.Stats
	base := r.db.WithContext(ctx).Model(&appointment.Appointment{})
	if err := base.Session(&gorm.Session{}).Count(&s.Total).Error; err != nil {
		return nil, err
	}
	err := base.Session(&gorm.Session{}).
		Scopes(instantRange("citas_medicas.scheduled_at", &today, &today, r.loc)).
		Count(&s.Today).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
