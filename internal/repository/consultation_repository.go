package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
)

var consultationOrdering = ordering{
	fields: map[string]string{
		"consulted_at": "consultas_medicas.consulted_at",
		"created_at":   "consultas_medicas.created_at",
	},
	fallback: "consultas_medicas.consulted_at DESC",
	tiebreak: "consultas_medicas.id DESC",
}

var consultationErrs = errMap{notFound: consultation.ErrConsultationNotFound}

type ConsultationRepository struct {
	db  *gorm.DB
	loc *time.Location
}

// NewConsultationRepository interprets calendar-day filters in loc.
func NewConsultationRepository(db *gorm.DB, loc *time.Location) *ConsultationRepository {
	return &ConsultationRepository{db: db, loc: loc}
}

func (r *ConsultationRepository) Create(ctx context.Context, c *consultation.Consultation) error {
	return create(ctx, r.db, c, consultationErrs)
}

func (r *ConsultationRepository) GetByID(ctx context.Context, id uint) (*consultation.Consultation, error) {
	var c consultation.Consultation
	err := r.db.WithContext(ctx).
		Preload("Patient").Preload("Doctor.Specialty").Preload("Appointment").
		First(&c, id).Error
	if err != nil {
		return nil, consultationErrs.translate(err)
	}
	return &c, nil
}

func (r *ConsultationRepository) Update(ctx context.Context, c *consultation.Consultation) error {
	return save(ctx, r.db, c, consultationErrs)
}

func (r *ConsultationRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &consultation.Consultation{}, id, consultationErrs)
}

func (r *ConsultationRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &consultation.Consultation{}, id)
}

func (r *ConsultationRepository) filters(q *consultation.ListConsultationsQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where(
				"(consultas_medicas.patient_id IN (SELECT id FROM pacientes WHERE first_name ILIKE ? OR last_name ILIKE ?) "+
					"OR consultas_medicas.doctor_id IN (SELECT id FROM medicos WHERE first_name ILIKE ? OR last_name ILIKE ?) "+
					"OR consultas_medicas.reason ILIKE ?)",
				p, p, p, p, p,
			)
		}
		if q.PatientID != nil {
			db = db.Where("consultas_medicas.patient_id = ?", *q.PatientID)
		}
		if q.DoctorID != nil {
			db = db.Where("consultas_medicas.doctor_id = ?", *q.DoctorID)
		}
		if q.SpecialtyID != nil {
			db = db.Where("consultas_medicas.doctor_id IN (SELECT id FROM medicos WHERE specialty_id = ?)", *q.SpecialtyID)
		}
		if q.PatientName != "" {
			p := likePattern(q.PatientName)
			db = db.Where("consultas_medicas.patient_id IN (SELECT id FROM pacientes WHERE first_name ILIKE ? OR last_name ILIKE ?)", p, p)
		}
		if q.DoctorName != "" {
			p := likePattern(q.DoctorName)
			db = db.Where("consultas_medicas.doctor_id IN (SELECT id FROM medicos WHERE first_name ILIKE ? OR last_name ILIKE ?)", p, p)
		}
		if q.SpecialtyName != "" {
			db = db.Where(
				"consultas_medicas.doctor_id IN (SELECT medicos.id FROM medicos JOIN especialidades ON especialidades.id = medicos.specialty_id WHERE especialidades.name ILIKE ?)",
				likePattern(q.SpecialtyName),
			)
		}
		return db.Scopes(instantRange("consultas_medicas.consulted_at", q.DateFrom, q.DateTo, r.loc))
	}
}

func (r *ConsultationRepository) List(ctx context.Context, q *consultation.ListConsultationsQuery) (*domain.Paged[consultation.Consultation], error) {
	filtered := r.db.WithContext(ctx).Model(&consultation.Consultation{}).Scopes(r.filters(q))
	return paginate[consultation.Consultation](filtered, q.PageRequest, domain.DefaultPageSize,
		preload("Patient", "Doctor.Specialty"), consultationOrdering.scope(q.Ordering))
}

func (r *ConsultationRepository) Recent(ctx context.Context, f consultation.RecentFilter, limit int) ([]*consultation.Consultation, error) {
	db := r.db.WithContext(ctx).Preload("Patient").Preload("Doctor.Specialty")
	if f.PatientID != nil {
		db = db.Where("patient_id = ?", *f.PatientID)
	}
	if f.DoctorID != nil {
		db = db.Where("doctor_id = ?", *f.DoctorID)
	}
	if f.Since != nil {
		db = db.Where("consulted_at >= ?", *f.Since)
	}

	var out []*consultation.Consultation
	err := db.Order("consulted_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *ConsultationRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	db := r.db.WithContext(ctx).Model(&consultation.Consultation{})
	if !from.IsZero() {
		db = db.Where("consulted_at >= ?", from)
	}
	if !to.IsZero() {
		db = db.Where("consulted_at < ?", to)
	}
	var n int64
	err := db.Count(&n).Error
	return n, err
}
