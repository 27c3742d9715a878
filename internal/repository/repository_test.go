package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, Logger: gormlogger.Discard})
	require.NoError(t, err)
	return db
}

func toSQL(db *gorm.DB, model any, dest any, scopes ...func(*gorm.DB) *gorm.DB) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Model(model).Scopes(scopes...).Find(dest)
	})
}

func TestErrMap_Translate(t *testing.T) {
	m := errMap{
		notFound: patient.ErrPatientNotFound,
		conflict: patient.ErrPatientAlreadyExists,
		inUse:    patient.ErrPatientHasDependents,
	}

	assert.NoError(t, m.translate(nil))
	assert.ErrorIs(t, m.translate(gorm.ErrRecordNotFound), patient.ErrPatientNotFound)
	assert.ErrorIs(t, m.translate(&pgconn.PgError{Code: pgUniqueViolation}), patient.ErrPatientAlreadyExists)
	assert.ErrorIs(t, m.translate(&pgconn.PgError{Code: pgForeignKeyViolation}), domain.ErrInUse)

	boom := errors.New("boom")
	assert.Equal(t, boom, m.translate(boom))

	var empty errMap
	assert.ErrorIs(t, empty.translate(gorm.ErrRecordNotFound), domain.ErrNotFound)
	assert.ErrorIs(t, empty.translate(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "idx_x"}), domain.ErrConflict)
}

func TestErrMap_TranslateCheckViolation(t *testing.T) {
	err := errMap{}.translate(&pgconn.PgError{Code: pgCheckViolation, ConstraintName: "chk_medicamentos_stock"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"stock": "must not be negative"}, verr.Map())
}

func TestErrMap_TranslateWriteForeignKey(t *testing.T) {
	err := errMap{inUse: specialty.ErrSpecialtyHasDoctors}.translateWrite(&pgconn.PgError{
		Code:   pgForeignKeyViolation,
		Detail: `Key (specialty_id)=(9) is not present in table "especialidades".`,
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("specialty_id"))
	assert.NotErrorIs(t, err, specialty.ErrSpecialtyHasDoctors)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%ana%", likePattern("  ana "))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestOrdering_Clause(t *testing.T) {
	o := ordering{
		fields:   map[string]string{"name": "t.name"},
		fallback: "t.name ASC",
		tiebreak: "t.id ASC",
	}

	assert.Equal(t, "t.name ASC, t.id ASC", o.clause("name"))
	assert.Equal(t, "t.name DESC, t.id ASC", o.clause("-name"))
	assert.Equal(t, "t.name ASC, t.id ASC", o.clause(""))
	assert.Equal(t, "t.name ASC, t.id ASC", o.clause("password; DROP TABLE t"))
}

func TestDayRange(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	day := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	start, end := dayRange(&day, &day, loc)
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, time.Date(2024, 7, 10, 0, 0, 0, 0, loc), *start)
	assert.Equal(t, time.Date(2024, 7, 11, 0, 0, 0, 0, loc), *end)

	start, end = dayRange(nil, nil, loc)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestPatientFilters_AgeBounds(t *testing.T) {
	db := dryRunDB(t)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	minAge, maxAge := 30, 40

	sql := toSQL(db, &patient.Patient{}, &[]patient.Patient{},
		patientFilters(&patient.ListPatientsQuery{MinAge: &minAge, MaxAge: &maxAge}, now))

	assert.Contains(t, sql, "pacientes.birth_date <= '1994-03-15'")
	assert.Contains(t, sql, "pacientes.birth_date > '1983-03-15'")

	leapDay := time.Date(2028, 2, 29, 10, 0, 0, 0, time.UTC)
	minAge, maxAge = 1, 0
	sql = toSQL(db, &patient.Patient{}, &[]patient.Patient{},
		patientFilters(&patient.ListPatientsQuery{MinAge: &minAge, MaxAge: &maxAge}, leapDay))

	assert.Contains(t, sql, "pacientes.birth_date <= '2027-02-28'")
	assert.Contains(t, sql, "pacientes.birth_date > '2027-02-28'")
}

func TestDoctorFilters_SpecialtyUsesSubquery(t *testing.T) {
	db := dryRunDB(t)
	active := true

	sql := toSQL(db, &doctor.Doctor{}, &[]doctor.Doctor{},
		doctorFilters(&doctor.ListDoctorsQuery{SpecialtyName: "cardio", Active: &active}))

	assert.Contains(t, sql, "IN (SELECT id FROM especialidades")
	assert.Contains(t, sql, "'%cardio%'")
	assert.Contains(t, sql, "medicos.active = true")
	assert.NotContains(t, sql, "JOIN")
}

func TestMedicationFilters(t *testing.T) {
	db := dryRunDB(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	yes := true

	sql := toSQL(db, &medication.Medication{}, &[]medication.Medication{},
		medicationFilters(&medication.ListMedicationsQuery{LowStock: &yes, ExpiringSoon: &yes}, now))

	assert.Contains(t, sql, "medicamentos.stock <= 10")
	assert.Contains(t, sql, "medicamentos.expiration_date <= '2024-03-31'")
}

func TestTreatmentFilters_Active(t *testing.T) {
	db := dryRunDB(t)
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	active, inactive := true, false

	sql := toSQL(db, &treatment.Treatment{}, &[]treatment.Treatment{},
		treatmentFilters(&treatment.ListTreatmentsQuery{Active: &active}, now))
	assert.Contains(t, sql, "(tratamientos.end_date IS NULL OR tratamientos.end_date >= '2024-05-02')")

	sql = toSQL(db, &treatment.Treatment{}, &[]treatment.Treatment{},
		treatmentFilters(&treatment.ListTreatmentsQuery{Active: &inactive}, now))
	assert.Contains(t, sql, "tratamientos.end_date < '2024-05-02'")
}

func TestPrescriptionFilters_DoctorWalksTreatmentChain(t *testing.T) {
	db := dryRunDB(t)
	repo := NewPrescriptionRepository(db, time.UTC)
	doctorID := uint(7)

	sql := toSQL(db, &prescription.Prescription{}, &[]prescription.Prescription{},
		repo.filters(&prescription.ListPrescriptionsQuery{DoctorID: &doctorID}))

	assert.Contains(t, sql, "recetas_medicas.treatment_id IN (SELECT tratamientos.id FROM tratamientos")
	assert.Contains(t, sql, "consultas_medicas.doctor_id = 7")
}

func TestSearchClausesAreParenthesized(t *testing.T) {
	db := dryRunDB(t)
	id := uint(3)

	sql := toSQL(db, &medication.Medication{}, &[]medication.Medication{},
		medicationFilters(&medication.ListMedicationsQuery{Search: "ibu", Name: "ibu"}, time.Now()),
		func(tx *gorm.DB) *gorm.DB { return tx.Where("medicamentos.id = ?", id) })

	assert.Contains(t, sql, "(medicamentos.name ILIKE '%ibu%' OR medicamentos.description ILIKE '%ibu%')")
}
