package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/appointment"
	cr "github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/clinical_record"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
)

var patientOrdering = ordering{
	fields: map[string]string{
		"last_name":   "pacientes.last_name",
		"first_name":  "pacientes.first_name",
		"national_id": "pacientes.national_id",
		"birth_date":  "pacientes.birth_date",
		"created_at":  "pacientes.created_at",
	},
	fallback: "pacientes.last_name ASC, pacientes.first_name ASC",
	tiebreak: "pacientes.id ASC",
}

var patientErrs = errMap{
	notFound: patient.ErrPatientNotFound,
	conflict: patient.ErrPatientAlreadyExists,
	inUse:    patient.ErrPatientHasDependents,
}

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	return create(ctx, r.db, p, patientErrs)
}

func (r *PatientRepository) GetByID(ctx context.Context, id uint) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, patientErrs.translate(err)
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	return save(ctx, r.db, p, patientErrs)
}

// Delete relies on the RESTRICT foreign keys of appointments and
// consultations; the clinical record cascades.
func (r *PatientRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &patient.Patient{}, id, patientErrs)
}

func (r *PatientRepository) DeleteCascade(ctx context.Context, id uint) (*patient.CascadeResult, error) {
	var out patient.CascadeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p patient.Patient
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
			return err
		}

		consultations := tx.Model(&consultation.Consultation{}).Select("id").Where("patient_id = ?", id)
		treatments := tx.Model(&treatment.Treatment{}).Select("id").Where("consultation_id IN (?)", consultations)

		if err := tx.Model(&prescription.Prescription{}).Where("treatment_id IN (?)", treatments).Count(&out.Prescriptions).Error; err != nil {
			return err
		}
		if err := tx.Model(&treatment.Treatment{}).Where("consultation_id IN (?)", consultations).Count(&out.Treatments).Error; err != nil {
			return err
		}

		// Treatments and prescriptions follow consultations through ON DELETE CASCADE.
		res := tx.Where("patient_id = ?", id).Delete(&consultation.Consultation{})
		if res.Error != nil {
			return res.Error
		}
		out.Consultations = res.RowsAffected

		res = tx.Where("patient_id = ?", id).Delete(&appointment.Appointment{})
		if res.Error != nil {
			return res.Error
		}
		out.Appointments = res.RowsAffected

		res = tx.Where("patient_id = ?", id).Delete(&cr.ClinicalRecord{})
		if res.Error != nil {
			return res.Error
		}
		out.ClinicalRecords = res.RowsAffected

		return tx.Delete(&p).Error
	})
	if err != nil {
		return nil, patientErrs.translate(err)
	}
	return &out, nil
}

func (r *PatientRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &patient.Patient{}, id)
}

func (r *PatientRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&patient.Patient{}).Count(&n).Error
	return n, err
}

func patientFilters(q *patient.ListPatientsQuery, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where("(pacientes.first_name ILIKE ? OR pacientes.last_name ILIKE ? OR pacientes.national_id ILIKE ?)", p, p, p)
		}
		if q.FirstName != "" {
			db = db.Where("pacientes.first_name ILIKE ?", likePattern(q.FirstName))
		}
		if q.LastName != "" {
			db = db.Where("pacientes.last_name ILIKE ?", likePattern(q.LastName))
		}
		if q.MinAge != nil {
			db = db.Where("pacientes.birth_date <= ?", sqlDate(patient.LatestBirthDateForAge(now, *q.MinAge)))
		}
		if q.MaxAge != nil {
			db = db.Where("pacientes.birth_date > ?", sqlDate(patient.EarliestBirthDateExclusiveForAge(now, *q.MaxAge)))
		}
		return db
	}
}

func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery, now time.Time) (*domain.Paged[patient.Patient], error) {
	filtered := r.db.WithContext(ctx).Model(&patient.Patient{}).Scopes(patientFilters(q, now))
	return paginate[patient.Patient](filtered, q.PageRequest, domain.DefaultPageSize, patientOrdering.scope(q.Ordering))
}
