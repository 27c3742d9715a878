//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/database"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("saludvital"),
		tcpostgres.WithUsername("saludvital"),
		tcpostgres.WithPassword("saludvital"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

type fixture struct {
	specialty    *specialty.Specialty
	doctor       *doctor.Doctor
	patient      *patient.Patient
	consultation *consultation.Consultation
	treatment    *treatment.Treatment
	medication   *medication.Medication
	prescription *prescription.Prescription
}

func seed(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{}

	f.specialty = &specialty.Specialty{Name: "Cardiología"}
	require.NoError(t, NewSpecialtyRepository(db).Create(ctx, f.specialty))

	f.doctor = &doctor.Doctor{NationalID: "11111111-1", FirstName: "Ana", LastName: "Rojas", Active: true, SpecialtyID: f.specialty.ID}
	require.NoError(t, NewDoctorRepository(db).Create(ctx, f.doctor))

	f.patient = &patient.Patient{NationalID: "22222222-2", FirstName: "Luis", LastName: "Soto", BirthDate: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, NewPatientRepository(db).Create(ctx, f.patient))

	f.consultation = &consultation.Consultation{PatientID: f.patient.ID, DoctorID: f.doctor.ID, ConsultedAt: time.Now(), Reason: "Dolor torácico"}
	require.NoError(t, NewConsultationRepository(db, time.UTC).Create(ctx, f.consultation))

	f.treatment = &treatment.Treatment{ConsultationID: f.consultation.ID, Description: "Reposo", StartDate: domain.Today(time.Now())}
	require.NoError(t, NewTreatmentRepository(db).Create(ctx, f.treatment))

	f.medication = &medication.Medication{Name: "Aspirina", Stock: 5, UnitPrice: decimal.RequireFromString("100.00"), ExpirationDate: domain.Today(time.Now()).AddDate(1, 0, 0)}
	require.NoError(t, NewMedicationRepository(db).Create(ctx, f.medication))

	f.prescription = &prescription.Prescription{TreatmentID: f.treatment.ID, MedicationID: f.medication.ID, Quantity: 3, Frequency: prescription.FrequencyEvery8Hours, Duration: "7 días"}
	require.NoError(t, NewPrescriptionRepository(db, time.UTC).Create(ctx, f.prescription))
	return f
}

func TestIntegration_Repositories(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	f := seed(t, db)

	t.Run("duplicate national id is a conflict", func(t *testing.T) {
		dup := &patient.Patient{NationalID: f.patient.NationalID, FirstName: "X", LastName: "Y", BirthDate: f.patient.BirthDate}
		err := NewPatientRepository(db).Create(ctx, dup)
		assert.ErrorIs(t, err, patient.ErrPatientAlreadyExists)
	})

	t.Run("unknown specialty is a field error", func(t *testing.T) {
		d := &doctor.Doctor{NationalID: "33333333-3", FirstName: "B", LastName: "C", SpecialtyID: 9999}
		err := NewDoctorRepository(db).Create(ctx, d)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("specialty_id"))
	})

	t.Run("negative stock is rejected by the check constraint", func(t *testing.T) {
		m := &medication.Medication{Name: "Bad", Stock: -1, UnitPrice: decimal.NewFromInt(1), ExpirationDate: time.Now()}
		err := NewMedicationRepository(db).Create(ctx, m)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("stock"))
	})

	t.Run("specialty list reports doctor count", func(t *testing.T) {
		page, err := NewSpecialtyRepository(db).List(ctx, &specialty.ListSpecialtiesQuery{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.EqualValues(t, 1, page.Items[0].DoctorCount)
	})

	t.Run("referenced medication cannot be deleted", func(t *testing.T) {
		err := NewMedicationRepository(db).Delete(ctx, f.medication.ID)
		assert.ErrorIs(t, err, medication.ErrMedicationInUse)
	})

	t.Run("low stock filter", func(t *testing.T) {
		yes := true
		page, err := NewMedicationRepository(db).List(ctx, &medication.ListMedicationsQuery{LowStock: &yes}, time.Now())
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.TotalCount)
	})

	t.Run("prescription preloads the treatment chain", func(t *testing.T) {
		p, err := NewPrescriptionRepository(db, time.UTC).GetByID(ctx, f.prescription.ID)
		require.NoError(t, err)
		assert.Equal(t, "Luis Soto", p.PatientName())
		assert.Equal(t, "Ana Rojas", p.DoctorName())
		assert.True(t, p.TotalCost().Equal(decimal.RequireFromString("300")))
	})

	t.Run("patient delete is protective", func(t *testing.T) {
		err := NewPatientRepository(db).Delete(ctx, f.patient.ID)
		assert.ErrorIs(t, err, patient.ErrPatientHasDependents)
	})

	t.Run("deleting a treatment removes its prescriptions", func(t *testing.T) {
		extra := &treatment.Treatment{ConsultationID: f.consultation.ID, Description: "Dieta", StartDate: domain.Today(time.Now())}
		require.NoError(t, NewTreatmentRepository(db).Create(ctx, extra))
		rx := &prescription.Prescription{TreatmentID: extra.ID, MedicationID: f.medication.ID, Quantity: 1, Frequency: prescription.FrequencyAsNeeded, Duration: "1 día"}
		require.NoError(t, NewPrescriptionRepository(db, time.UTC).Create(ctx, rx))

		require.NoError(t, NewTreatmentRepository(db).Delete(ctx, extra.ID))

		_, err := NewPrescriptionRepository(db, time.UTC).GetByID(ctx, rx.ID)
		assert.ErrorIs(t, err, prescription.ErrPrescriptionNotFound)
	})

	t.Run("cascade delete removes everything", func(t *testing.T) {
		appt := &appointment.Appointment{PatientID: f.patient.ID, DoctorID: f.doctor.ID, ScheduledAt: time.Now(), Status: appointment.StatusScheduled}
		require.NoError(t, NewAppointmentRepository(db, time.UTC).Create(ctx, appt))

		res, err := NewPatientRepository(db).DeleteCascade(ctx, f.patient.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.Consultations)
		assert.EqualValues(t, 1, res.Treatments)
		assert.EqualValues(t, 1, res.Prescriptions)
		assert.EqualValues(t, 1, res.Appointments)

		ok, err := NewPatientRepository(db).Exists(ctx, f.patient.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, NewMedicationRepository(db).Delete(ctx, f.medication.ID))
	})
}
