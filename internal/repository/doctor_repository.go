package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
)

var doctorOrdering = ordering{
	fields: map[string]string{
		"last_name":   "medicos.last_name",
		"first_name":  "medicos.first_name",
		"national_id": "medicos.national_id",
		"created_at":  "medicos.created_at",
	},
	fallback: "medicos.last_name ASC, medicos.first_name ASC",
	tiebreak: "medicos.id ASC",
}

var doctorErrs = errMap{
	notFound: doctor.ErrDoctorNotFound,
	conflict: doctor.ErrDoctorAlreadyExists,
	inUse:    doctor.ErrDoctorHasRecords,
}

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) Create(ctx context.Context, d *doctor.Doctor) error {
	return create(ctx, r.db, d, doctorErrs)
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uint) (*doctor.Doctor, error) {
	var d doctor.Doctor
	if err := r.db.WithContext(ctx).Preload("Specialty").First(&d, id).Error; err != nil {
		return nil, doctorErrs.translate(err)
	}
	return &d, nil
}

func (r *DoctorRepository) Update(ctx context.Context, d *doctor.Doctor) error {
	return save(ctx, r.db, d, doctorErrs)
}

func (r *DoctorRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &doctor.Doctor{}, id, doctorErrs)
}

func (r *DoctorRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &doctor.Doctor{}, id)
}

func (r *DoctorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Count(&n).Error
	return n, err
}

func doctorFilters(q *doctor.ListDoctorsQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where(
				"(medicos.national_id ILIKE ? OR medicos.first_name ILIKE ? OR medicos.last_name ILIKE ? OR "+
					"medicos.specialty_id IN (SELECT id FROM especialidades WHERE name ILIKE ?))",
				p, p, p, p,
			)
		}
		if q.SpecialtyID != nil {
			db = db.Where("medicos.specialty_id = ?", *q.SpecialtyID)
		}
		if q.SpecialtyName != "" {
			db = db.Where("medicos.specialty_id IN (SELECT id FROM especialidades WHERE name ILIKE ?)", likePattern(q.SpecialtyName))
		}
		if q.FirstName != "" {
			db = db.Where("medicos.first_name ILIKE ?", likePattern(q.FirstName))
		}
		if q.LastName != "" {
			db = db.Where("medicos.last_name ILIKE ?", likePattern(q.LastName))
		}
		if q.Active != nil {
			db = db.Where("medicos.active = ?", *q.Active)
		}
		return db
	}
}

func (r *DoctorRepository) List(ctx context.Context, q *doctor.ListDoctorsQuery) (*domain.Paged[doctor.Doctor], error) {
	filtered := r.db.WithContext(ctx).Model(&doctor.Doctor{}).Scopes(doctorFilters(q))
	return paginate[doctor.Doctor](filtered, q.PageRequest, domain.DefaultPageSize,
		preload("Specialty"), doctorOrdering.scope(q.Ordering))
}
