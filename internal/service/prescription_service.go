package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
)

const resourcePrescription = "prescription"

type PrescriptionService struct {
	repo        prescription.Repository
	treatments  treatment.Repository
	medications medication.Repository
	rec         recorder
	now         Clock
}

func NewPrescriptionService(
	repo prescription.Repository,
	treatments treatment.Repository,
	medications medication.Repository,
	rec recorder,
	now Clock,
) *PrescriptionService {
	return &PrescriptionService{repo: repo, treatments: treatments, medications: medications, rec: rec, now: now}
}

func (s *PrescriptionService) Create(ctx context.Context, cmd *prescription.CreatePrescriptionCommand, actor Actor) (*prescription.Prescription, error) {
	p := cmd.Build()
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating prescription: %w", err)
	}
	s.rec.metrics.PrescriptionsIssued.Inc()
	s.rec.written(ctx, actor, domain.ActionCreate, resourcePrescription, p.ID, p)
	return s.repo.GetByID(ctx, p.ID)
}

func (s *PrescriptionService) Get(ctx context.Context, id uint) (*prescription.Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PrescriptionService) Update(ctx context.Context, id uint, cmd *prescription.UpdatePrescriptionCommand, actor Actor) (*prescription.Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cmd.Apply(p)
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating prescription: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionUpdate, resourcePrescription, p.ID, p)
	return s.repo.GetByID(ctx, p.ID)
}

func (s *PrescriptionService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.written(ctx, actor, domain.ActionDelete, resourcePrescription, id, nil)
	return nil
}

func (s *PrescriptionService) List(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*domain.Paged[prescription.Prescription], error) {
	return s.repo.List(ctx, q)
}

// Stats counts all prescriptions, those of the last 30 days and today's.
func (s *PrescriptionService) Stats(ctx context.Context) (*prescription.Stats, error) {
	return s.repo.Stats(ctx, s.now())
}

func (s *PrescriptionService) validate(ctx context.Context, p *prescription.Prescription) error {
	return domain.MergeValidation(
		p.Validate(),
		checkRefs(ctx,
			ref{"treatment_id", p.TreatmentID, s.treatments.Exists},
			ref{"medication_id", p.MedicationID, s.medications.Exists},
		),
	)
}
