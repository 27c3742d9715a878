package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
)

const resourceTreatment = "treatment"

type TreatmentService struct {
	repo          treatment.Repository
	consultations consultation.Repository
	prescriptions prescription.Repository
	rec           recorder
	now           Clock
}

func NewTreatmentService(repo treatment.Repository, consultations consultation.Repository, prescriptions prescription.Repository, rec recorder, now Clock) *TreatmentService {
	return &TreatmentService{repo: repo, consultations: consultations, prescriptions: prescriptions, rec: rec, now: now}
}

type TreatmentDetail struct {
	Treatment     *treatment.Treatment
	Prescriptions []*prescription.Prescription
}

func (s *TreatmentService) Create(ctx context.Context, cmd *treatment.CreateTreatmentCommand, actor Actor) (*treatment.Treatment, error) {
	t := cmd.Build()
	if err := s.validate(ctx, t); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating treatment: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionCreate, resourceTreatment, t.ID, t)
	return s.repo.GetByID(ctx, t.ID)
}

func (s *TreatmentService) Get(ctx context.Context, id uint) (*treatment.Treatment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TreatmentService) Detail(ctx context.Context, id uint) (*TreatmentDetail, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ps, err := s.prescriptions.ListByTreatment(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("loading prescriptions: %w", err)
	}
	return &TreatmentDetail{Treatment: t, Prescriptions: ps}, nil
}

func (s *TreatmentService) Update(ctx context.Context, id uint, cmd *treatment.UpdateTreatmentCommand, actor Actor) (*treatment.Treatment, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cmd.Apply(t)
	if err := s.validate(ctx, t); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("updating treatment: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionUpdate, resourceTreatment, t.ID, t)
	return s.repo.GetByID(ctx, t.ID)
}

// Delete also removes the treatment's prescriptions.
func (s *TreatmentService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.written(ctx, actor, domain.ActionDelete, resourceTreatment, id, nil)
	return nil
}

func (s *TreatmentService) List(ctx context.Context, q *treatment.ListTreatmentsQuery) (*domain.Paged[treatment.Treatment], error) {
	return s.repo.List(ctx, q, s.now())
}

// Active narrows q to treatments still running today.
func (s *TreatmentService) Active(ctx context.Context, q *treatment.ListTreatmentsQuery) (*domain.Paged[treatment.Treatment], error) {
	active := true
	q.Active = &active
	return s.repo.List(ctx, q, s.now())
}

// All returns treatments newest first, for the prescription form select box.
func (s *TreatmentService) All(ctx context.Context) ([]*treatment.Treatment, error) {
	page, err := s.repo.List(ctx, &treatment.ListTreatmentsQuery{
		PageRequest: domain.PageRequest{PageSize: domain.MaxPageSize},
	}, s.now())
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// IsActive evaluates t against the clinic's current date.
func (s *TreatmentService) IsActive(t *treatment.Treatment) bool {
	return t.IsActiveAt(s.now())
}

func (s *TreatmentService) validate(ctx context.Context, t *treatment.Treatment) error {
	return domain.MergeValidation(
		t.Validate(),
		checkRefs(ctx, ref{"consultation_id", t.ConsultationID, s.consultations.Exists}),
	)
}
