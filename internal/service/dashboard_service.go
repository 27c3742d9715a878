package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
)

const (
	dashboardRecentLimit = 5
	dashboardTopLimit    = 5
)

type Dashboard struct {
	Patients            int64
	Doctors             int64
	Specialties         int64
	Consultations       int64
	ConsultationsToday  int64
	RecentConsultations []*consultation.Consultation
	TopSpecialties      []specialty.Ranking
}

type DashboardService struct {
	patients      patient.Repository
	doctors       doctor.Repository
	specialties   specialty.Repository
	consultations consultation.Repository
	now           Clock
}

func NewDashboardService(
	patients patient.Repository,
	doctors doctor.Repository,
	specialties specialty.Repository,
	consultations consultation.Repository,
	now Clock,
) *DashboardService {
	return &DashboardService{patients: patients, doctors: doctors, specialties: specialties, consultations: consultations, now: now}
}

func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)

	if d.Patients, err = s.patients.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}
	if d.Doctors, err = s.doctors.Count(ctx); err != nil {
		return nil, fmt.Errorf("counting doctors: %w", err)
	}

	page, err := s.specialties.List(ctx, &specialty.ListSpecialtiesQuery{PageRequest: domain.PageRequest{PageSize: 1}})
	if err != nil {
		return nil, fmt.Errorf("counting specialties: %w", err)
	}
	d.Specialties = page.TotalCount

	if d.Consultations, err = s.consultations.CountBetween(ctx, time.Time{}, time.Time{}); err != nil {
		return nil, fmt.Errorf("counting consultations: %w", err)
	}
	today := domain.Today(s.now())
	if d.ConsultationsToday, err = s.consultations.CountBetween(ctx, today, today.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("counting today's consultations: %w", err)
	}

	if d.RecentConsultations, err = s.consultations.Recent(ctx, consultation.RecentFilter{}, dashboardRecentLimit); err != nil {
		return nil, fmt.Errorf("loading recent consultations: %w", err)
	}
	if d.TopSpecialties, err = s.specialties.TopByConsultations(ctx, dashboardTopLimit); err != nil {
		return nil, fmt.Errorf("ranking specialties: %w", err)
	}
	return &d, nil
}
