package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	cr "github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/clinical_record"
)

const (
	recordPatientLastName  = "(SELECT last_name FROM pacientes WHERE pacientes.id = historiales_clinicos.patient_id)"
	recordPatientFirstName = "(SELECT first_name FROM pacientes WHERE pacientes.id = historiales_clinicos.patient_id)"
)

var recordOrdering = ordering{
	fields: map[string]string{
		"patient":    recordPatientLastName,
		"blood_type": "historiales_clinicos.blood_type",
		"created_at": "historiales_clinicos.created_at",
		"updated_at": "historiales_clinicos.updated_at",
	},
	fallback: recordPatientLastName + " ASC, " + recordPatientFirstName + " ASC",
	tiebreak: "historiales_clinicos.id ASC",
}

var recordErrs = errMap{
	notFound: cr.ErrRecordNotFound,
	conflict: cr.ErrRecordAlreadyExists,
}

type ClinicalRecordRepository struct {
	db *gorm.DB
}

func NewClinicalRecordRepository(db *gorm.DB) *ClinicalRecordRepository {
	return &ClinicalRecordRepository{db: db}
}

func (r *ClinicalRecordRepository) Create(ctx context.Context, rec *cr.ClinicalRecord) error {
	return create(ctx, r.db, rec, recordErrs)
}

func (r *ClinicalRecordRepository) GetByID(ctx context.Context, id uint) (*cr.ClinicalRecord, error) {
	var rec cr.ClinicalRecord
	if err := r.db.WithContext(ctx).Preload("Patient").First(&rec, id).Error; err != nil {
		return nil, recordErrs.translate(err)
	}
	return &rec, nil
}

func (r *ClinicalRecordRepository) GetByPatientID(ctx context.Context, patientID uint) (*cr.ClinicalRecord, error) {
	var rec cr.ClinicalRecord
	err := r.db.WithContext(ctx).Preload("Patient").Where("patient_id = ?", patientID).First(&rec).Error
	if err != nil {
		return nil, recordErrs.translate(err)
	}
	return &rec, nil
}

func (r *ClinicalRecordRepository) Update(ctx context.Context, rec *cr.ClinicalRecord) error {
	return save(ctx, r.db, rec, recordErrs)
}

func (r *ClinicalRecordRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &cr.ClinicalRecord{}, id, recordErrs)
}

func recordFilters(q *cr.ListRecordsQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where(
				"(historiales_clinicos.patient_id IN (SELECT id FROM pacientes WHERE first_name ILIKE ? OR last_name ILIKE ? OR national_id ILIKE ?) "+
					"OR historiales_clinicos.blood_type ILIKE ?)",
				p, p, p, p,
			)
		}
		if q.BloodType != nil {
			db = db.Where("historiales_clinicos.blood_type = ?", string(*q.BloodType))
		}
		return db
	}
}

func (r *ClinicalRecordRepository) List(ctx context.Context, q *cr.ListRecordsQuery) (*domain.Paged[cr.ClinicalRecord], error) {
	filtered := r.db.WithContext(ctx).Model(&cr.ClinicalRecord{}).Scopes(recordFilters(q))
	return paginate[cr.ClinicalRecord](filtered, q.PageRequest, domain.DefaultPageSize,
		preload("Patient"), recordOrdering.scope(q.Ordering))
}
