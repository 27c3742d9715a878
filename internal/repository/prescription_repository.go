package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
)

var prescriptionOrdering = ordering{
	fields: map[string]string{
		"created_at": "recetas_medicas.created_at",
		"quantity":   "recetas_medicas.quantity",
	},
	fallback: "recetas_medicas.created_at DESC",
	tiebreak: "recetas_medicas.id DESC",
}

var prescriptionErrs = errMap{notFound: prescription.ErrPrescriptionNotFound}

// prescriptionChain walks recetas_medicas -> tratamientos -> consultas_medicas.
const prescriptionChain = "recetas_medicas.treatment_id IN (SELECT tratamientos.id FROM tratamientos " +
	"JOIN consultas_medicas ON consultas_medicas.id = tratamientos.consultation_id WHERE "

var prescriptionPreloads = []string{
	"Medication",
	"Treatment.Consultation.Patient",
	"Treatment.Consultation.Doctor",
}

type PrescriptionRepository struct {
	db  *gorm.DB
	loc *time.Location
}

// NewPrescriptionRepository interprets calendar-day filters in loc.
func NewPrescriptionRepository(db *gorm.DB, loc *time.Location) *PrescriptionRepository {
	return &PrescriptionRepository{db: db, loc: loc}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	return create(ctx, r.db, p, prescriptionErrs)
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id uint) (*prescription.Prescription, error) {
	var p prescription.Prescription
	if err := r.db.WithContext(ctx).Scopes(preload(prescriptionPreloads...)).First(&p, id).Error; err != nil {
		return nil, prescriptionErrs.translate(err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) Update(ctx context.Context, p *prescription.Prescription) error {
	return save(ctx, r.db, p, prescriptionErrs)
}

func (r *PrescriptionRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &prescription.Prescription{}, id, prescriptionErrs)
}

func (r *PrescriptionRepository) filters(q *prescription.ListPrescriptionsQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where(
				"("+prescriptionChain+"consultas_medicas.patient_id IN (SELECT id FROM pacientes WHERE first_name ILIKE ? OR last_name ILIKE ?) "+
					"OR consultas_medicas.doctor_id IN (SELECT id FROM medicos WHERE first_name ILIKE ? OR last_name ILIKE ?)) "+
					"OR recetas_medicas.medication_id IN (SELECT id FROM medicamentos WHERE name ILIKE ?))",
				p, p, p, p, p,
			)
		}
		if q.DoctorID != nil {
			db = db.Where(prescriptionChain+"consultas_medicas.doctor_id = ?)", *q.DoctorID)
		}
		if q.TreatmentID != nil {
			db = db.Where("recetas_medicas.treatment_id = ?", *q.TreatmentID)
		}
		if q.MedicationID != nil {
			db = db.Where("recetas_medicas.medication_id = ?", *q.MedicationID)
		}
		return db.Scopes(instantRange("recetas_medicas.created_at", q.DateFrom, q.DateTo, r.loc))
	}
}

func (r *PrescriptionRepository) List(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*domain.Paged[prescription.Prescription], error) {
	filtered := r.db.WithContext(ctx).Model(&prescription.Prescription{}).Scopes(r.filters(q))
	return paginate[prescription.Prescription](filtered, q.PageRequest, domain.DefaultPageSize,
		preload(prescriptionPreloads...), prescriptionOrdering.scope(q.Ordering))
}

func (r *PrescriptionRepository) ListByTreatment(ctx context.Context, treatmentID uint) ([]*prescription.Prescription, error) {
	var out []*prescription.Prescription
	err := r.db.WithContext(ctx).
		Preload("Medication").
		Where("treatment_id = ?", treatmentID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *PrescriptionRepository) Stats(ctx context.Context, now time.Time) (*prescription.Stats, error) {
	today := startOfDay(now.In(r.loc), r.loc)
	monthAgo := today.AddDate(0, 0, -30)

	var s prescription.Stats
	counts := []struct {
		dst  *int64
		from *time.Time
	}{
		{&s.Total, nil},
		{&s.Last30Days, &monthAgo},
		{&s.Today, &today},
	}

	base := r.db.WithContext(ctx).Model(&prescription.Prescription{})
	for _, c := range counts {
		q := base.Session(&gorm.Session{})
		if c.from != nil {
			q = q.Where("recetas_medicas.created_at >= ?", *c.from)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}
