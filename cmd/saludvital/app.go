package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/config"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/server"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/service"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/metrics"
)

// app holds what every subcommand needs: settings, a logger, the database
// and the metrics registry its queries report to.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	metrics *metrics.Collector
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("service", cfg.App.Name), zap.String("env", cfg.App.Environment))

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	m := metrics.NewCollector(cfg.App.Name)
	if err := database.Instrument(db, m); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("instrumenting database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	if err := m.RegisterDB(sqlDB, cfg.Database.Name); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("registering pool metrics: %w", err)
	}

	log.Info("connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Name),
	)
	return &app{cfg: cfg, log: log, db: db, metrics: m}, nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		a.log.Warn("closing database", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) authService() *service.AuthService {
	return service.NewAuthService(
		repository.NewUserRepository(a.db),
		auth.NewJWTManager(a.cfg.JWT),
		a.metrics,
		a.log,
	)
}

// serverDeps builds repositories and services. The returned func drains the
// audit queue and must run after the server has stopped.
func (a *app) serverDeps() (server.Deps, func()) {
	loc := a.cfg.App.Location()
	clock := service.ClockIn(loc)

	audit := service.NewAuditService(repository.NewAuditRepository(a.db), a.metrics, a.log)
	svcs := service.New(service.Repositories{
		Specialties:     repository.NewSpecialtyRepository(a.db),
		Doctors:         repository.NewDoctorRepository(a.db),
		Patients:        repository.NewPatientRepository(a.db),
		ClinicalRecords: repository.NewClinicalRecordRepository(a.db),
		Appointments:    repository.NewAppointmentRepository(a.db, loc),
		Consultations:   repository.NewConsultationRepository(a.db, loc),
		Treatments:      repository.NewTreatmentRepository(a.db),
		Medications:     repository.NewMedicationRepository(a.db),
		Prescriptions:   repository.NewPrescriptionRepository(a.db, loc),
	}, audit, a.metrics, clock, a.log)

	deps := server.Deps{
		Services: svcs,
		Auth:     a.authService(),
		Metrics:  a.metrics,
		Clock:    clock,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, a.db)
		},
	}
	if a.cfg.Auth.Enabled {
		deps.Tokens = auth.NewJWTManager(a.cfg.JWT)
	}
	return deps, audit.Shutdown
}
