package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
)

var treatmentOrdering = ordering{
	fields: map[string]string{
		"start_date": "tratamientos.start_date",
		"end_date":   "tratamientos.end_date",
		"created_at": "tratamientos.created_at",
	},
	fallback: "tratamientos.start_date DESC",
	tiebreak: "tratamientos.id DESC",
}

var treatmentErrs = errMap{notFound: treatment.ErrTreatmentNotFound}

const treatmentPatients = "tratamientos.consultation_id IN (SELECT consultas_medicas.id FROM consultas_medicas " +
	"JOIN pacientes ON pacientes.id = consultas_medicas.patient_id WHERE pacientes.first_name ILIKE ? OR pacientes.last_name ILIKE ?)"

type TreatmentRepository struct {
	db *gorm.DB
}

func NewTreatmentRepository(db *gorm.DB) *TreatmentRepository {
	return &TreatmentRepository{db: db}
}

func (r *TreatmentRepository) Create(ctx context.Context, t *treatment.Treatment) error {
	return create(ctx, r.db, t, treatmentErrs)
}

func (r *TreatmentRepository) GetByID(ctx context.Context, id uint) (*treatment.Treatment, error) {
	var t treatment.Treatment
	err := r.db.WithContext(ctx).
		Preload("Consultation.Patient").Preload("Consultation.Doctor").
		First(&t, id).Error
	if err != nil {
		return nil, treatmentErrs.translate(err)
	}
	return &t, nil
}

func (r *TreatmentRepository) Update(ctx context.Context, t *treatment.Treatment) error {
	return save(ctx, r.db, t, treatmentErrs)
}

func (r *TreatmentRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &treatment.Treatment{}, id, treatmentErrs)
}

func (r *TreatmentRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &treatment.Treatment{}, id)
}

// activeScope mirrors Treatment.IsActiveAt.
func activeScope(active bool, now time.Time) func(*gorm.DB) *gorm.DB {
	today := sqlDate(now)
	return func(db *gorm.DB) *gorm.DB {
		if active {
			return db.Where("(tratamientos.end_date IS NULL OR tratamientos.end_date >= ?)", today)
		}
		return db.Where("tratamientos.end_date < ?", today)
	}
}

func treatmentFilters(q *treatment.ListTreatmentsQuery, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where("("+treatmentPatients+" OR tratamientos.description ILIKE ?)", p, p, p)
		}
		if q.ConsultationID != nil {
			db = db.Where("tratamientos.consultation_id = ?", *q.ConsultationID)
		}
		if q.Active != nil {
			db = db.Scopes(activeScope(*q.Active, now))
		}
		return db.Scopes(dateRange("tratamientos.start_date", q.DateFrom, q.DateTo))
	}
}

func (r *TreatmentRepository) List(ctx context.Context, q *treatment.ListTreatmentsQuery, now time.Time) (*domain.Paged[treatment.Treatment], error) {
	filtered := r.db.WithContext(ctx).Model(&treatment.Treatment{}).Scopes(treatmentFilters(q, now))
	return paginate[treatment.Treatment](filtered, q.PageRequest, domain.DefaultPageSize,
		preload("Consultation.Patient", "Consultation.Doctor"), treatmentOrdering.scope(q.Ordering))
}

func (r *TreatmentRepository) ListByConsultation(ctx context.Context, consultationID uint) ([]*treatment.Treatment, error) {
	var out []*treatment.Treatment
	err := r.db.WithContext(ctx).
		Where("consultation_id = ?", consultationID).
		Order("start_date DESC, id DESC").
		Find(&out).Error
	return out, err
}
