package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	cr "github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/clinical_record"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
)

const resourceClinicalRecord = "clinical_record"

type ClinicalRecordService struct {
	repo     cr.Repository
	patients patient.Repository
	rec      recorder
}

func NewClinicalRecordService(repo cr.Repository, patients patient.Repository, rec recorder) *ClinicalRecordService {
	return &ClinicalRecordService{repo: repo, patients: patients, rec: rec}
}

func (s *ClinicalRecordService) Create(ctx context.Context, cmd *cr.CreateRecordCommand, actor Actor) (*cr.ClinicalRecord, error) {
	r := cmd.Build()
	if err := s.validate(ctx, r); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating clinical record: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionCreate, resourceClinicalRecord, r.ID, r)
	return s.repo.GetByID(ctx, r.ID)
}

func (s *ClinicalRecordService) Get(ctx context.Context, id uint) (*cr.ClinicalRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ClinicalRecordService) Update(ctx context.Context, id uint, cmd *cr.UpdateRecordCommand, actor Actor) (*cr.ClinicalRecord, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cmd.Apply(r)
	if err := s.validate(ctx, r); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("updating clinical record: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionUpdate, resourceClinicalRecord, r.ID, r)
	return s.repo.GetByID(ctx, r.ID)
}

func (s *ClinicalRecordService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.written(ctx, actor, domain.ActionDelete, resourceClinicalRecord, id, nil)
	return nil
}

func (s *ClinicalRecordService) List(ctx context.Context, q *cr.ListRecordsQuery) (*domain.Paged[cr.ClinicalRecord], error) {
	return s.repo.List(ctx, q)
}

func (s *ClinicalRecordService) validate(ctx context.Context, r *cr.ClinicalRecord) error {
	return domain.MergeValidation(
		r.Validate(),
		checkRefs(ctx, ref{"patient_id", r.PatientID, s.patients.Exists}),
	)
}
