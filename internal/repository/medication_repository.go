package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
)

var medicationOrdering = ordering{
	fields: map[string]string{
		"name":            "medicamentos.name",
		"stock":           "medicamentos.stock",
		"unit_price":      "medicamentos.unit_price",
		"expiration_date": "medicamentos.expiration_date",
	},
	fallback: "medicamentos.name ASC",
	tiebreak: "medicamentos.id ASC",
}

var medicationErrs = errMap{
	notFound: medication.ErrMedicationNotFound,
	inUse:    medication.ErrMedicationInUse,
}

type MedicationRepository struct {
	db *gorm.DB
}

func NewMedicationRepository(db *gorm.DB) *MedicationRepository {
	return &MedicationRepository{db: db}
}

func (r *MedicationRepository) Create(ctx context.Context, m *medication.Medication) error {
	return create(ctx, r.db, m, medicationErrs)
}

func (r *MedicationRepository) GetByID(ctx context.Context, id uint) (*medication.Medication, error) {
	var m medication.Medication
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, medicationErrs.translate(err)
	}
	return &m, nil
}

func (r *MedicationRepository) Update(ctx context.Context, m *medication.Medication) error {
	return save(ctx, r.db, m, medicationErrs)
}

func (r *MedicationRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &medication.Medication{}, id, medicationErrs)
}

func (r *MedicationRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &medication.Medication{}, id)
}

func medicationFilters(q *medication.ListMedicationsQuery, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where("(medicamentos.name ILIKE ? OR medicamentos.description ILIKE ?)", p, p)
		}
		if q.Name != "" {
			db = db.Where("medicamentos.name ILIKE ?", likePattern(q.Name))
		}
		if q.LowStock != nil {
			if *q.LowStock {
				db = db.Where("medicamentos.stock <= ?", medication.LowStockThreshold)
			} else {
				db = db.Where("medicamentos.stock > ?", medication.LowStockThreshold)
			}
		}
		if q.ExpiringSoon != nil {
			cutoff := sqlDate(medication.ExpiryCutoff(now))
			if *q.ExpiringSoon {
				db = db.Where("medicamentos.expiration_date <= ?", cutoff)
			} else {
				db = db.Where("medicamentos.expiration_date > ?", cutoff)
			}
		}
		return db
	}
}

func (r *MedicationRepository) List(ctx context.Context, q *medication.ListMedicationsQuery, now time.Time) (*domain.Paged[medication.Medication], error) {
	filtered := r.db.WithContext(ctx).Model(&medication.Medication{}).Scopes(medicationFilters(q, now))
	return paginate[medication.Medication](filtered, q.PageRequest, domain.DefaultPageSize,
		medicationOrdering.scope(q.Ordering))
}
