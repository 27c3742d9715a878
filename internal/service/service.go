package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

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
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/metrics"
)

// Clock returns the current instant in the clinic's time zone.
type Clock func() time.Time

func ClockIn(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

type Repositories struct {
	Specialties     specialty.Repository
	Doctors         doctor.Repository
	Patients        patient.Repository
	ClinicalRecords cr.Repository
	Appointments    appointment.Repository
	Consultations   consultation.Repository
	Treatments      treatment.Repository
	Medications     medication.Repository
	Prescriptions   prescription.Repository
}

// Services is what both the JSON API and the HTML pages call into.
type Services struct {
	Specialties     *SpecialtyService
	Doctors         *DoctorService
	Patients        *PatientService
	ClinicalRecords *ClinicalRecordService
	Appointments    *AppointmentService
	Consultations   *ConsultationService
	Treatments      *TreatmentService
	Medications     *MedicationService
	Prescriptions   *PrescriptionService
	Dashboard       *DashboardService
}

func New(repos Repositories, audit *AuditService, m *metrics.Collector, now Clock, log *zap.Logger) *Services {
	rec := recorder{audit: audit, metrics: m, log: log}
	return &Services{
		Specialties:     NewSpecialtyService(repos.Specialties, rec),
		Doctors:         NewDoctorService(repos.Doctors, repos.Specialties, repos.Consultations, rec, now),
		Patients:        NewPatientService(repos.Patients, repos.Consultations, repos.ClinicalRecords, rec, now),
		ClinicalRecords: NewClinicalRecordService(repos.ClinicalRecords, repos.Patients, rec),
		Appointments:    NewAppointmentService(repos.Appointments, repos.Patients, repos.Doctors, rec, now),
		Consultations:   NewConsultationService(repos.Consultations, repos.Patients, repos.Doctors, repos.Appointments, repos.Treatments, rec, now),
		Treatments:      NewTreatmentService(repos.Treatments, repos.Consultations, repos.Prescriptions, rec, now),
		Medications:     NewMedicationService(repos.Medications, rec, now),
		Prescriptions:   NewPrescriptionService(repos.Prescriptions, repos.Treatments, repos.Medications, rec, now),
		Dashboard:       NewDashboardService(repos.Patients, repos.Doctors, repos.Specialties, repos.Consultations, now),
	}
}

// recorder audits and counts successful writes.
type recorder struct {
	audit   *AuditService
	metrics *metrics.Collector
	log     *zap.Logger
}

func (r recorder) written(ctx context.Context, actor Actor, action domain.AuditAction, resource string, id uint, snapshot any) {
	r.metrics.RecordsWrittenTotal.WithLabelValues(resource, string(action)).Inc()

	var changes string
	if snapshot != nil {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			r.log.Warn("audit snapshot not serializable", zap.String("resource", resource), zap.Error(err))
		} else {
			changes = string(raw)
		}
	}

	r.audit.LogAsync(ctx, AuditEntry{
		Actor:        actor,
		Action:       action,
		ResourceType: resource,
		ResourceID:   strconv.FormatUint(uint64(id), 10),
		Changes:      changes,
	})

	r.log.Info(resource+" "+string(action)+"d",
		zap.Uint("id", id),
		zap.String("request_id", actor.RequestID),
	)
}

const msgUnknownReference = "references a record that does not exist"

// ref is a foreign key a write is about to store.
type ref struct {
	field  string
	id     uint
	exists func(ctx context.Context, id uint) (bool, error)
}

// checkRefs reports ids that point nowhere as field errors. Zero ids are
// left to the entity's own required-field validation.
func checkRefs(ctx context.Context, refs ...ref) error {
	verr := &domain.ValidationError{}
	for _, r := range refs {
		if r.id == 0 {
			continue
		}
		ok, err := r.exists(ctx, r.id)
		if err != nil {
			return fmt.Errorf("checking %s: %w", r.field, err)
		}
		if !ok {
			verr.Add(r.field, msgUnknownReference)
		}
	}
	return verr.OrNil()
}
