package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
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

// The fakes embed the repository interface so methods a test does not
// exercise panic instead of silently succeeding.

type fakeAudit struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	block   chan struct{}
}

func (f *fakeAudit) Create(_ context.Context, e *domain.AuditLog) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) all() []*domain.AuditLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.AuditLog(nil), f.entries...)
}

type testRecorder struct {
	recorder
	auditRepo *fakeAudit
}

func newTestRecorder(t *testing.T) testRecorder {
	t.Helper()
	repo := &fakeAudit{}
	m := metrics.NewCollector("test")
	audit := NewAuditService(repo, m, zap.NewNop())
	return testRecorder{
		recorder:  recorder{audit: audit, metrics: m, log: zap.NewNop()},
		auditRepo: repo,
	}
}

// flush waits for the audit worker to persist everything queued so far.
func (r testRecorder) flush() []*domain.AuditLog {
	r.audit.Shutdown()
	return r.auditRepo.all()
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type existsSet map[uint]bool

func (s existsSet) Exists(_ context.Context, id uint) (bool, error) {
	return s[id], nil
}

type fakeSpecialties struct {
	specialty.Repository
	existsSet
}

func (f fakeSpecialties) Exists(ctx context.Context, id uint) (bool, error) {
	return f.existsSet.Exists(ctx, id)
}

type fakeDoctors struct {
	doctor.Repository
	byID    map[uint]*doctor.Doctor
	created []*doctor.Doctor
}

func (f *fakeDoctors) Create(_ context.Context, d *doctor.Doctor) error {
	d.ID = uint(100 + len(f.created))
	f.byID[d.ID] = d
	f.created = append(f.created, d)
	return nil
}

func (f *fakeDoctors) GetByID(_ context.Context, id uint) (*doctor.Doctor, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDoctors) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

type fakePatients struct {
	patient.Repository
	byID       map[uint]*patient.Patient
	dependents bool
	cascaded   []uint
}

func (f *fakePatients) GetByID(_ context.Context, id uint) (*patient.Patient, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatients) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakePatients) Delete(_ context.Context, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return patient.ErrPatientNotFound
	}
	if f.dependents {
		return patient.ErrPatientHasDependents
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePatients) DeleteCascade(_ context.Context, id uint) (*patient.CascadeResult, error) {
	if _, ok := f.byID[id]; !ok {
		return nil, patient.ErrPatientNotFound
	}
	delete(f.byID, id)
	f.cascaded = append(f.cascaded, id)
	return &patient.CascadeResult{Consultations: 2, Treatments: 1, Prescriptions: 3, Appointments: 1, ClinicalRecords: 1}, nil
}

type fakeRecords struct {
	cr.Repository
	byPatient map[uint]*cr.ClinicalRecord
}

func (f fakeRecords) GetByPatientID(_ context.Context, patientID uint) (*cr.ClinicalRecord, error) {
	r, ok := f.byPatient[patientID]
	if !ok {
		return nil, cr.ErrRecordNotFound
	}
	return r, nil
}

type fakeAppointments struct {
	appointment.Repository
	byID map[uint]*appointment.Appointment
}

func (f fakeAppointments) GetByID(_ context.Context, id uint) (*appointment.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return a, nil
}

type fakeConsultations struct {
	consultation.Repository
	byID         map[uint]*consultation.Consultation
	recent       []*consultation.Consultation
	lastFilter   consultation.RecentFilter
	lastLimit    int
	countFrom    time.Time
	countTo      time.Time
	countResults int64
}

func (f *fakeConsultations) Create(_ context.Context, c *consultation.Consultation) error {
	c.ID = uint(100 + len(f.byID))
	f.byID[c.ID] = c
	return nil
}

func (f *fakeConsultations) GetByID(_ context.Context, id uint) (*consultation.Consultation, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, consultation.ErrConsultationNotFound
	}
	return c, nil
}

func (f *fakeConsultations) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeConsultations) Recent(_ context.Context, filter consultation.RecentFilter, limit int) ([]*consultation.Consultation, error) {
	f.lastFilter, f.lastLimit = filter, limit
	return f.recent, nil
}

func (f *fakeConsultations) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	f.countFrom, f.countTo = from, to
	return f.countResults, nil
}

type fakeTreatments struct {
	treatment.Repository
	existsSet
	byConsultation map[uint][]*treatment.Treatment
}

func (f fakeTreatments) Exists(ctx context.Context, id uint) (bool, error) {
	return f.existsSet.Exists(ctx, id)
}

func (f fakeTreatments) ListByConsultation(_ context.Context, id uint) ([]*treatment.Treatment, error) {
	return f.byConsultation[id], nil
}

type fakeMedications struct {
	medication.Repository
	existsSet
}

func (f fakeMedications) Exists(ctx context.Context, id uint) (bool, error) {
	return f.existsSet.Exists(ctx, id)
}

type fakePrescriptions struct {
	prescription.Repository
	byID map[uint]*prescription.Prescription
}

func (f *fakePrescriptions) Create(_ context.Context, p *prescription.Prescription) error {
	p.ID = uint(100 + len(f.byID))
	f.byID[p.ID] = p
	return nil
}

func (f *fakePrescriptions) GetByID(_ context.Context, id uint) (*prescription.Prescription, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, prescription.ErrPrescriptionNotFound
	}
	return p, nil
}

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	created []*domain.User
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrUserAlreadyExists
	}
	u.ID = uuid.New()
	f.byEmail[u.Email] = u
	f.created = append(f.created, u)
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUsers) RecordLoginAttempt(_ context.Context, id uuid.UUID, success bool, maxFailed int, lockFor time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID != id {
			continue
		}
		if success {
			u.FailedLoginCount = 0
			u.LockedUntil = nil
			return nil
		}
		u.FailedLoginCount++
		if u.FailedLoginCount >= maxFailed {
			until := time.Now().Add(lockFor)
			u.FailedLoginCount = 0
			u.LockedUntil = &until
		}
		return nil
	}
	return domain.ErrUserNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return domain.ErrUserNotFound
}
