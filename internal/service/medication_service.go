package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
)

const resourceMedication = "medication"

type MedicationService struct {
	repo medication.Repository
	rec  recorder
	now  Clock
}

func NewMedicationService(repo medication.Repository, rec recorder, now Clock) *MedicationService {
	return &MedicationService{repo: repo, rec: rec, now: now}
}

func (s *MedicationService) Create(ctx context.Context, cmd *medication.CreateMedicationCommand, actor Actor) (*medication.Medication, error) {
	m := cmd.Build()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("creating medication: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionCreate, resourceMedication, m.ID, m)
	return m, nil
}

func (s *MedicationService) Get(ctx context.Context, id uint) (*medication.Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MedicationService) Update(ctx context.Context, id uint, cmd *medication.UpdateMedicationCommand, actor Actor) (*medication.Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cmd.Apply(m)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("updating medication: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionUpdate, resourceMedication, m.ID, m)
	return m, nil
}

// Delete fails with medication.ErrMedicationInUse while prescriptions reference it.
func (s *MedicationService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.written(ctx, actor, domain.ActionDelete, resourceMedication, id, nil)
	return nil
}

func (s *MedicationService) List(ctx context.Context, q *medication.ListMedicationsQuery) (*domain.Paged[medication.Medication], error) {
	return s.repo.List(ctx, q, s.now())
}

func (s *MedicationService) LowStock(ctx context.Context, q *medication.ListMedicationsQuery) (*domain.Paged[medication.Medication], error) {
	yes := true
	q.LowStock = &yes
	return s.repo.List(ctx, q, s.now())
}

func (s *MedicationService) ExpiringSoon(ctx context.Context, q *medication.ListMedicationsQuery) (*domain.Paged[medication.Medication], error) {
	yes := true
	q.ExpiringSoon = &yes
	return s.repo.List(ctx, q, s.now())
}

// All returns medications by name, for the prescription form select box.
func (s *MedicationService) All(ctx context.Context) ([]*medication.Medication, error) {
	page, err := s.repo.List(ctx, &medication.ListMedicationsQuery{
		PageRequest: domain.PageRequest{PageSize: domain.MaxPageSize},
	}, s.now())
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// IsExpiringSoon evaluates m against the clinic's current date.
func (s *MedicationService) IsExpiringSoon(m *medication.Medication) bool {
	return m.IsExpiringSoonAt(s.now())
}
