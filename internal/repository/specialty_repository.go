package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
)

var specialtyOrdering = ordering{
	fields: map[string]string{
		"name":       "especialidades.name",
		"created_at": "especialidades.created_at",
	},
	fallback: "especialidades.name ASC",
	tiebreak: "especialidades.id ASC",
}

const specialtyWithCount = "especialidades.*, " +
	"(SELECT COUNT(*) FROM medicos WHERE medicos.specialty_id = especialidades.id) AS doctor_count"

type SpecialtyRepository struct {
	db *gorm.DB
}

func NewSpecialtyRepository(db *gorm.DB) *SpecialtyRepository {
	return &SpecialtyRepository{db: db}
}

var specialtyErrs = errMap{
	notFound: specialty.ErrSpecialtyNotFound,
	conflict: specialty.ErrSpecialtyAlreadyExists,
	inUse:    specialty.ErrSpecialtyHasDoctors,
}

func (r *SpecialtyRepository) Create(ctx context.Context, s *specialty.Specialty) error {
	return create(ctx, r.db, s, specialtyErrs)
}

func (r *SpecialtyRepository) GetByID(ctx context.Context, id uint) (*specialty.Specialty, error) {
	var s specialty.Specialty
	err := r.db.WithContext(ctx).Select(specialtyWithCount).First(&s, id).Error
	if err != nil {
		return nil, specialtyErrs.translate(err)
	}
	return &s, nil
}

func (r *SpecialtyRepository) Update(ctx context.Context, s *specialty.Specialty) error {
	return save(ctx, r.db, s, specialtyErrs)
}

func (r *SpecialtyRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &specialty.Specialty{}, id, specialtyErrs)
}

func (r *SpecialtyRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, r.db, &specialty.Specialty{}, id)
}

func specialtyFilters(q *specialty.ListSpecialtiesQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			p := likePattern(q.Search)
			db = db.Where("(especialidades.name ILIKE ? OR especialidades.description ILIKE ?)", p, p)
		}
		return db
	}
}

func (r *SpecialtyRepository) List(ctx context.Context, q *specialty.ListSpecialtiesQuery) (*domain.Paged[specialty.Specialty], error) {
	filtered := r.db.WithContext(ctx).Model(&specialty.Specialty{}).Scopes(specialtyFilters(q))
	withCount := func(db *gorm.DB) *gorm.DB { return db.Select(specialtyWithCount) }
	return paginate[specialty.Specialty](filtered, q.PageRequest, domain.DefaultPageSize,
		withCount, specialtyOrdering.scope(q.Ordering))
}

func (r *SpecialtyRepository) TopByConsultations(ctx context.Context, limit int) ([]specialty.Ranking, error) {
	var out []specialty.Ranking
	err := r.db.WithContext(ctx).
		Table("especialidades").
		Select(`especialidades.id AS specialty_id, especialidades.name AS name,
			(SELECT COUNT(*) FROM medicos WHERE medicos.specialty_id = especialidades.id) AS doctor_count,
			(SELECT COUNT(*) FROM consultas_medicas JOIN medicos ON medicos.id = consultas_medicas.doctor_id
				WHERE medicos.specialty_id = especialidades.id) AS consultation_count`).
		Order("consultation_count DESC, especialidades.name ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
