package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
)

const resourceAppointment = "appointment"

type AppointmentService struct {
	repo     appointment.Repository
	patients patient.Repository
	doctors  doctor.Repository
	rec      recorder
	now      Clock
}

func NewAppointmentService(
	repo appointment.Repository,
	patients patient.Repository,
	doctors doctor.Repository,
	rec recorder,
	now Clock,
) *AppointmentService {
	return &AppointmentService{repo: repo, patients: patients, doctors: doctors, rec: rec, now: now}
}

func (s *AppointmentService) Create(ctx context.Context, cmd *appointment.CreateAppointmentCommand, actor Actor) (*appointment.Appointment, error) {
	a := cmd.Build()
	if err := s.validate(ctx, a); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}
	s.rec.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	s.rec.written(ctx, actor, domain.ActionCreate, resourceAppointment, a.ID, a)
	return s.repo.GetByID(ctx, a.ID)
}

func (s *AppointmentService) Get(ctx context.Context, id uint) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) Update(ctx context.Context, id uint, cmd *appointment.UpdateAppointmentCommand, actor Actor) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cmd.Apply(a)
	if err := s.validate(ctx, a); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}
	s.rec.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	s.rec.written(ctx, actor, domain.ActionUpdate, resourceAppointment, a.ID, a)
	return s.repo.GetByID(ctx, a.ID)
}

func (s *AppointmentService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.written(ctx, actor, domain.ActionDelete, resourceAppointment, id, nil)
	return nil
}

func (s *AppointmentService) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*domain.Paged[appointment.Appointment], error) {
	return s.repo.List(ctx, q)
}

// Stats counts all appointments and those scheduled for today in the clinic's zone.
func (s *AppointmentService) Stats(ctx context.Context) (*appointment.Stats, error) {
	return s.repo.Stats(ctx, s.now())
}

// ForPatient lists the latest appointments of a patient, for the consultation form.
func (s *AppointmentService) ForPatient(ctx context.Context, patientID uint) ([]*appointment.Appointment, error) {
	page, err := s.repo.List(ctx, &appointment.ListAppointmentsQuery{
		PatientID:   &patientID,
		PageRequest: domain.PageRequest{PageSize: domain.MaxPageSize},
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *AppointmentService) validate(ctx context.Context, a *appointment.Appointment) error {
	return domain.MergeValidation(
		a.Validate(),
		checkRefs(ctx,
			ref{"patient_id", a.PatientID, s.patients.Exists},
			ref{"doctor_id", a.DoctorID, s.doctors.Exists},
		),
	)
}
