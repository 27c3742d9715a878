package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/config"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/appointment"
	cr "github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/clinical_record"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
)

func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   NewGormLogger(log, cfg.SlowQueryThreshold),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		TranslateError:                           false, // repositories inspect pgconn codes themselves
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: cfg.DSN(),
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Ping checks the connection within ctx; used by the health endpoint.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Models lists every persisted type in foreign key order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.AuditLog{},
		&specialty.Specialty{},
		&doctor.Doctor{},
		&patient.Patient{},
		&cr.ClinicalRecord{},
		&appointment.Appointment{},
		&consultation.Consultation{},
		&treatment.Treatment{},
		&medication.Medication{},
		&prescription.Prescription{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"auth", "audit"}
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	createIndexes(db, log)

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// createIndexes adds search indexes gorm tags cannot express. They only speed
// up ILIKE searches, so a failure (e.g. pg_trgm unavailable) is logged and skipped.
func createIndexes(db *gorm.DB, log *zap.Logger) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		log.Warn("pg_trgm unavailable; skipping search indexes", zap.Error(err))
		return
	}

	indexes := []struct {
		name  string
		query string
	}{
		{
			name:  "idx_pacientes_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_pacientes_name_trgm ON pacientes USING gin ((first_name || ' ' || last_name) gin_trgm_ops)`,
		},
		{
			name:  "idx_medicos_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_medicos_name_trgm ON medicos USING gin ((first_name || ' ' || last_name) gin_trgm_ops)`,
		},
		{
			name:  "idx_medicamentos_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_medicamentos_name_trgm ON medicamentos USING gin (name gin_trgm_ops)`,
		},
		{
			name:  "idx_citas_medicas_doctor_schedule",
			query: `CREATE INDEX IF NOT EXISTS idx_citas_medicas_doctor_schedule ON citas_medicas (doctor_id, scheduled_at) WHERE status <> 'Cancelada'`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			log.Warn("creating index failed", zap.String("index", idx.name), zap.Error(err))
		}
	}
}
