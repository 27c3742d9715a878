package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
)

const (
	resourceDoctor = "doctor"

	// A doctor's detail lists at most this many consultations from the
	// last doctorRecentDays days.
	doctorRecentLimit = 5
	doctorRecentDays  = 30
)

type DoctorService struct {
	repo          doctor.Repository
	specialties   specialty.Repository
	consultations consultation.Repository
	rec           recorder
	now           Clock
}

func NewDoctorService(repo doctor.Repository, specialties specialty.Repository, consultations consultation.Repository, rec recorder, now Clock) *DoctorService {
	return &DoctorService{repo: repo, specialties: specialties, consultations: consultations, rec: rec, now: now}
}

type DoctorDetail struct {
	Doctor              *doctor.Doctor
	RecentConsultations []*consultation.Consultation
}

func (s *DoctorService) Create(ctx context.Context, cmd *doctor.CreateDoctorCommand, actor Actor) (*doctor.Doctor, error) {
	d := cmd.Build()
	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("creating doctor: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionCreate, resourceDoctor, d.ID, d)
	return s.repo.GetByID(ctx, d.ID)
}

func (s *DoctorService) Get(ctx context.Context, id uint) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) Detail(ctx context.Context, id uint) (*DoctorDetail, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	since := s.now().AddDate(0, 0, -doctorRecentDays)
	recent, err := s.consultations.Recent(ctx, consultation.RecentFilter{DoctorID: &d.ID, Since: &since}, doctorRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("loading recent consultations: %w", err)
	}
	return &DoctorDetail{Doctor: d, RecentConsultations: recent}, nil
}

func (s *DoctorService) Update(ctx context.Context, id uint, cmd *doctor.UpdateDoctorCommand, actor Actor) (*doctor.Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cmd.Apply(d)
	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("updating doctor: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionUpdate, resourceDoctor, d.ID, d)
	return s.repo.GetByID(ctx, d.ID)
}

func (s *DoctorService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.written(ctx, actor, domain.ActionDelete, resourceDoctor, id, nil)
	return nil
}

func (s *DoctorService) List(ctx context.Context, q *doctor.ListDoctorsQuery) (*domain.Paged[doctor.Doctor], error) {
	return s.repo.List(ctx, q)
}

// All returns every doctor by name, for form select boxes.
func (s *DoctorService) All(ctx context.Context) ([]*doctor.Doctor, error) {
	page, err := s.repo.List(ctx, &doctor.ListDoctorsQuery{
		PageRequest: domain.PageRequest{PageSize: domain.MaxPageSize},
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *DoctorService) validate(ctx context.Context, d *doctor.Doctor) error {
	return domain.MergeValidation(
		d.Validate(),
		checkRefs(ctx, ref{"specialty_id", d.SpecialtyID, s.specialties.Exists}),
	)
}
