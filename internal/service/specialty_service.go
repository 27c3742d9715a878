package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
)

const resourceSpecialty = "specialty"

type SpecialtyService struct {
	repo specialty.Repository
	rec  recorder
}

func NewSpecialtyService(repo specialty.Repository, rec recorder) *SpecialtyService {
	return &SpecialtyService{repo: repo, rec: rec}
}

func (s *SpecialtyService) Create(ctx context.Context, cmd *specialty.CreateSpecialtyCommand, actor Actor) (*specialty.Specialty, error) {
	sp := cmd.Build()
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("creating specialty: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionCreate, resourceSpecialty, sp.ID, sp)
	return sp, nil
}

func (s *SpecialtyService) Get(ctx context.Context, id uint) (*specialty.Specialty, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SpecialtyService) Update(ctx context.Context, id uint, cmd *specialty.UpdateSpecialtyCommand, actor Actor) (*specialty.Specialty, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cmd.Apply(sp)
	if err := sp.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, fmt.Errorf("updating specialty: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionUpdate, resourceSpecialty, sp.ID, sp)
	return sp, nil
}

func (s *SpecialtyService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.written(ctx, actor, domain.ActionDelete, resourceSpecialty, id, nil)
	return nil
}

func (s *SpecialtyService) List(ctx context.Context, q *specialty.ListSpecialtiesQuery) (*domain.Paged[specialty.Specialty], error) {
	return s.repo.List(ctx, q)
}

// All returns every specialty by name, for form select boxes.
func (s *SpecialtyService) All(ctx context.Context) ([]*specialty.Specialty, error) {
	page, err := s.repo.List(ctx, &specialty.ListSpecialtiesQuery{
		PageRequest: domain.PageRequest{PageSize: domain.MaxPageSize},
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
