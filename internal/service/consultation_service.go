package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
)

const resourceConsultation = "consultation"

type ConsultationService struct {
	repo         consultation.Repository
	patients     patient.Repository
	doctors      doctor.Repository
	appointments appointment.Repository
	treatments   treatment.Repository
	rec          recorder
	now          Clock
}

func NewConsultationService(
	repo consultation.Repository,
	patients patient.Repository,
	doctors doctor.Repository,
	appointments appointment.Repository,
	treatments treatment.Repository,
	rec recorder,
	now Clock,
) *ConsultationService {
	return &ConsultationService{
		repo:         repo,
		patients:     patients,
		doctors:      doctors,
		appointments: appointments,
		treatments:   treatments,
		rec:          rec,
		now:          now,
	}
}

type ConsultationDetail struct {
	Consultation *consultation.Consultation
	Treatments   []*treatment.Treatment
}

func (s *ConsultationService) Create(ctx context.Context, cmd *consultation.CreateConsultationCommand, actor Actor) (*consultation.Consultation, error) {
	c := cmd.Build()
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating consultation: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionCreate, resourceConsultation, c.ID, c)
	return s.repo.GetByID(ctx, c.ID)
}

func (s *ConsultationService) Get(ctx context.Context, id uint) (*consultation.Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ConsultationService) Detail(ctx context.Context, id uint) (*ConsultationDetail, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ts, err := s.treatments.ListByConsultation(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading treatments: %w", err)
	}
	return &ConsultationDetail{Consultation: c, Treatments: ts}, nil
}

func (s *ConsultationService) Update(ctx context.Context, id uint, cmd *consultation.UpdateConsultationCommand, actor Actor) (*consultation.Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cmd.Apply(c)
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("updating consultation: %w", err)
	}
	s.rec.written(ctx, actor, domain.ActionUpdate, resourceConsultation, c.ID, c)
	return s.repo.GetByID(ctx, c.ID)
}

// Delete also removes the consultation's treatments and their prescriptions.
func (s *ConsultationService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.written(ctx, actor, domain.ActionDelete, resourceConsultation, id, nil)
	return nil
}

func (s *ConsultationService) List(ctx context.Context, q *consultation.ListConsultationsQuery) (*domain.Paged[consultation.Consultation], error) {
	return s.repo.List(ctx, q)
}

// Today narrows q to consultations held on the clinic's current date.
func (s *ConsultationService) Today(ctx context.Context, q *consultation.ListConsultationsQuery) (*domain.Paged[consultation.Consultation], error) {
	today := domain.Today(s.now())
	q.DateFrom, q.DateTo = &today, &today
	return s.repo.List(ctx, q)
}

// All returns recent consultations, for the treatment form select box.
func (s *ConsultationService) All(ctx context.Context) ([]*consultation.Consultation, error) {
	return s.repo.Recent(ctx, consultation.RecentFilter{}, domain.MaxPageSize)
}

func (s *ConsultationService) validate(ctx context.Context, c *consultation.Consultation) error {
	err := domain.MergeValidation(
		c.Validate(),
		checkRefs(ctx,
			ref{"patient_id", c.PatientID, s.patients.Exists},
			ref{"doctor_id", c.DoctorID, s.doctors.Exists},
		),
	)
	if err != nil || c.AppointmentID == nil {
		return err
	}

	a, err := s.appointments.GetByID(ctx, *c.AppointmentID)
	if errors.Is(err, appointment.ErrAppointmentNotFound) {
		return domain.NewFieldError("appointment_id", msgUnknownReference)
	}
	if err != nil {
		return fmt.Errorf("checking appointment_id: %w", err)
	}
	if a.PatientID != c.PatientID || a.DoctorID != c.DoctorID {
		return domain.NewFieldError("appointment_id", consultation.ErrAppointmentMismatch.Error())
	}
	return nil
}
