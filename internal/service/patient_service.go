package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	cr "github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/clinical_record"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
)

const (
	resourcePatient    = "patient"
	patientRecentLimit = 5
)

type PatientService struct {
	repo          patient.Repository
	consultations consultation.Repository
	records       cr.Repository
	rec           recorder
	now           Clock
}

func NewPatientService(repo patient.Repository, consultations consultation.Repository, records cr.Repository, rec recorder, now Clock) *PatientService {
	return &PatientService{repo: repo, consultations: consultations, records: records, rec: rec, now: now}
}

// PatientDetail is a patient with the latest consultations and the clinical
// record, which is nil when none was opened yet.
type PatientDetail struct {
	Patient             *patient.Patient
	RecentConsultations []*consultation.Consultation
	Record              *cr.ClinicalRecord
}

func (s *PatientService) Create(ctx context.Context, cmd *patient.CreatePatientCommand, actor Actor) (*patient.Patient, error) {
	p := cmd.Build()
	if err := p.ValidateAt(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating patient: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionCreate, resourcePatient, p.ID, p)
	return p, nil
}

func (s *PatientService) Get(ctx context.Context, id uint) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) Detail(ctx context.Context, id uint) (*PatientDetail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	recent, err := s.consultations.Recent(ctx, consultation.RecentFilter{PatientID: &p.ID}, patientRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("loading recent consultations: %w", err)
	}

	record, err := s.records.GetByPatientID(ctx, p.ID)
	if err != nil && !errors.Is(err, cr.ErrRecordNotFound) {
		return nil, fmt.Errorf("loading clinical record: %w", err)
	}

	return &PatientDetail{Patient: p, RecentConsultations: recent, Record: record}, nil
}

func (s *PatientService) Update(ctx context.Context, id uint, cmd *patient.UpdatePatientCommand, actor Actor) (*patient.Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cmd.Apply(p)
	if err := p.ValidateAt(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating patient: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionUpdate, resourcePatient, p.ID, p)
	return p, nil
}

// Delete refuses patients with appointments or consultations unless cascade
// is set, in which case everything hanging off the patient goes too. The
// result is nil for a plain delete.
func (s *PatientService) Delete(ctx context.Context, id uint, cascade bool, actor Actor) (*patient.CascadeResult, error) {
	if !cascade {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, err
		}
		s.rec.written(ctx, actor, domain.ActionDelete, resourcePatient, id, nil)
		return nil, nil
	}

	res, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return nil, err
	}
	s.rec.written(ctx, actor, domain.ActionDelete, resourcePatient, id, res)
	s.rec.log.Warn("patient deleted with dependents",
		zap.Uint("patient_id", id),
		zap.Int64("consultations", res.Consultations),
		zap.Int64("appointments", res.Appointments),
	)
	return res, nil
}

func (s *PatientService) List(ctx context.Context, q *patient.ListPatientsQuery) (*domain.Paged[patient.Patient], error) {
	return s.repo.List(ctx, q, s.now())
}

// All returns patients by name, for form select boxes.
func (s *PatientService) All(ctx context.Context) ([]*patient.Patient, error) {
	page, err := s.repo.List(ctx, &patient.ListPatientsQuery{
		PageRequest: domain.PageRequest{PageSize: domain.MaxPageSize},
	}, s.now())
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ConsultationsThisMonth counts consultations held since the first day of
// the current month.
func (s *PatientService) ConsultationsThisMonth(ctx context.Context) (int64, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.consultations.CountBetween(ctx, start, start.AddDate(0, 1, 0))
}
