package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// checkFields maps CHECK constraint names to the field they guard.
var checkFields = map[string]domain.FieldError{
	"chk_medicamentos_stock":       {Field: "stock", Message: "must not be negative"},
	"chk_medicamentos_unit_price":  {Field: "unit_price", Message: "must be greater than 0"},
	"chk_recetas_medicas_quantity": {Field: "quantity", Message: "must be greater than 0"},
}

// errMap names the entity sentinels a statement's failures translate to.
// Nil entries fall back to the shared domain classes.
type errMap struct {
	notFound error
	conflict error // unique violation
	inUse    error // foreign key violation
}

func (m errMap) translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return orDefault(m.notFound, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		if m.conflict != nil {
			return m.conflict
		}
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		if m.inUse != nil {
			return m.inUse
		}
		return fmt.Errorf("%w: %s", domain.ErrInUse, pgErr.ConstraintName)
	case pgCheckViolation:
		if fe, ok := checkFields[pgErr.ConstraintName]; ok {
			return domain.NewFieldError(fe.Field, fe.Message)
		}
		return domain.NewFieldError("_", pgErr.Message)
	}
	return err
}

// translateWrite handles inserts and updates, where a foreign key violation
// means the referenced row does not exist.
func (m errMap) translateWrite(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return domain.NewFieldError(fkColumn(pgErr), "references a record that does not exist")
	}
	return m.translate(err)
}

// fkColumn extracts the column from a detail like
// `Key (specialty_id)=(9) is not present in table "especialidades".`
func fkColumn(pgErr *pgconn.PgError) string {
	detail := pgErr.Detail
	start := strings.Index(detail, "Key (")
	end := strings.Index(detail, ")=(")
	if start < 0 || end <= start+len("Key (") {
		return "_"
	}
	return detail[start+len("Key (") : end]
}

func orDefault(err, fallback error) error {
	if err != nil {
		return err
	}
	return fallback
}

// likePattern wraps s in % for a contains match, escaping LIKE wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// ordering maps public field names accepted in ?ordering= to SQL columns.
type ordering struct {
	fields   map[string]string
	fallback string
	tiebreak string
}

// clause turns "name" or "-name" into an ORDER BY clause. Unknown fields use
// the entity's default order.
func (o ordering) clause(requested string) string {
	requested = strings.TrimSpace(requested)
	desc := strings.HasPrefix(requested, "-")
	col, ok := o.fields[strings.TrimPrefix(requested, "-")]
	if !ok {
		return o.fallback + ", " + o.tiebreak
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, %s", col, dir, o.tiebreak)
}

func (o ordering) scope(requested string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(o.clause(requested))
	}
}

// paginate counts the filtered query, then loads one page of it with the
// extra scopes (ordering, preloads, selects) applied.
func paginate[T any](filtered *gorm.DB, req domain.PageRequest, defaultSize int, load ...func(*gorm.DB) *gorm.DB) (*domain.Paged[T], error) {
	req = req.Normalized(defaultSize)

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []*T
	if total > 0 {
		err := filtered.Session(&gorm.Session{}).
			Scopes(load...).
			Offset(req.Offset()).
			Limit(req.PageSize).
			Find(&items).Error
		if err != nil {
			return nil, err
		}
	}
	return domain.NewPaged(items, total, req), nil
}

// dayRange converts inclusive calendar-day bounds into a half-open instant
// range in loc. Nil bounds stay open.
func dayRange(from, to *time.Time, loc *time.Location) (start, end *time.Time) {
	if from != nil {
		s := startOfDay(*from, loc)
		start = &s
	}
	if to != nil {
		e := startOfDay(*to, loc).AddDate(0, 0, 1)
		end = &e
	}
	return start, end
}

func startOfDay(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// instantRange filters column to [start, end).
func instantRange(column string, from, to *time.Time, loc *time.Location) func(*gorm.DB) *gorm.DB {
	start, end := dayRange(from, to, loc)
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(column+" >= ?", *start)
		}
		if end != nil {
			db = db.Where(column+" < ?", *end)
		}
		return db
	}
}

// dateRange filters a DATE column to [from, to], both inclusive.
func dateRange(column string, from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(column+" >= ?", sqlDate(*from))
		}
		if to != nil {
			db = db.Where(column+" <= ?", sqlDate(*to))
		}
		return db
	}
}

// sqlDate renders t as a DATE literal so comparisons against DATE columns do
// not go through a time zone conversion.
func sqlDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func exists(ctx context.Context, db *gorm.DB, model any, id uint) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// deleteByID deletes one row, reporting notFound when nothing matched.
func deleteByID(ctx context.Context, db *gorm.DB, model any, id uint, m errMap) error {
	res := db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return m.translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return orDefault(m.notFound, domain.ErrNotFound)
	}
	return nil
}

// create and save never write preloaded associations; relations are managed
// through their foreign key columns only.
func create(ctx context.Context, db *gorm.DB, v any, m errMap) error {
	return m.translateWrite(db.WithContext(ctx).Omit(clause.Associations).Create(v).Error)
}

func save(ctx context.Context, db *gorm.DB, v any, m errMap) error {
	return m.translateWrite(db.WithContext(ctx).Omit(clause.Associations).Save(v).Error)
}

func preload(relations ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, rel := range relations {
			db = db.Preload(rel)
		}
		return db
	}
}
