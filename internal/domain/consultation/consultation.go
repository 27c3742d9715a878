package consultation

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
)

// Consultation is a visit that actually took place. It may come from a
// scheduled appointment or be a walk-in, in which case AppointmentID is nil.
type Consultation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	PatientID     uint                     `gorm:"column:patient_id;not null;index" json:"patient_id" validate:"required"`
	Patient       *patient.Patient         `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"patient,omitempty" validate:"-"`
	DoctorID      uint                     `gorm:"column:doctor_id;not null;index" json:"doctor_id" validate:"required"`
	Doctor        *doctor.Doctor           `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"doctor,omitempty" validate:"-"`
	AppointmentID *uint                    `gorm:"column:appointment_id;index" json:"appointment_id"`
	Appointment   *appointment.Appointment `gorm:"foreignKey:AppointmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"appointment,omitempty" validate:"-"`

	ConsultedAt time.Time `gorm:"column:consulted_at;not null;index" json:"consulted_at"`
	Reason      string    `gorm:"column:reason;type:text;not null" json:"reason" validate:"notblank"`
	Diagnosis   string    `gorm:"column:diagnosis;type:text" json:"diagnosis"`
}

func (Consultation) TableName() string {
	return "consultas_medicas"
}

func (c *Consultation) PatientName() string {
	if c.Patient == nil {
		return ""
	}
	return c.Patient.FullName()
}

func (c *Consultation) DoctorName() string {
	if c.Doctor == nil {
		return ""
	}
	return c.Doctor.FullName()
}

func (c *Consultation) SpecialtyName() string {
	if c.Doctor == nil {
		return ""
	}
	return c.Doctor.SpecialtyName()
}

func (c *Consultation) Normalize() {
	c.Reason = strings.TrimSpace(c.Reason)
	c.Diagnosis = strings.TrimSpace(c.Diagnosis)
	if c.AppointmentID != nil && *c.AppointmentID == 0 {
		c.AppointmentID = nil
	}
}

func (c *Consultation) Validate() error {
	c.Normalize()
	verr := &domain.ValidationError{}
	if c.ConsultedAt.IsZero() {
		verr.Add("consulted_at", "this field is required")
	}
	return domain.MergeValidation(domain.ValidateStruct(c), verr.OrNil())
}

type CreateConsultationCommand struct {
	PatientID     uint
	DoctorID      uint
	AppointmentID *uint
	ConsultedAt   time.Time
	Reason        string
	Diagnosis     string
}

func (c *CreateConsultationCommand) Build() *Consultation {
	return &Consultation{
		PatientID:     c.PatientID,
		DoctorID:      c.DoctorID,
		AppointmentID: c.AppointmentID,
		ConsultedAt:   c.ConsultedAt,
		Reason:        c.Reason,
		Diagnosis:     c.Diagnosis,
	}
}

type UpdateConsultationCommand struct {
	PatientID   *uint
	DoctorID    *uint
	ConsultedAt *time.Time
	Reason      *string
	Diagnosis   *string

	// SetAppointment distinguishes "clear the link" (AppointmentID nil) from
	// "leave it alone".
	SetAppointment bool
	AppointmentID  *uint
}

func (u *UpdateConsultationCommand) Apply(c *Consultation) {
	if u.PatientID != nil {
		c.PatientID = *u.PatientID
		c.Patient = nil
	}
	if u.DoctorID != nil {
		c.DoctorID = *u.DoctorID
		c.Doctor = nil
	}
	if u.SetAppointment {
		c.AppointmentID = u.AppointmentID
		c.Appointment = nil
	}
	if u.ConsultedAt != nil {
		c.ConsultedAt = *u.ConsultedAt
	}
	if u.Reason != nil {
		c.Reason = *u.Reason
	}
	if u.Diagnosis != nil {
		c.Diagnosis = *u.Diagnosis
	}
}

// ListConsultationsQuery filters on the calendar day of ConsultedAt; both
// bounds are inclusive.
type ListConsultationsQuery struct {
	Search        string // patient or doctor names, reason
	PatientID     *uint
	DoctorID      *uint
	SpecialtyID   *uint
	PatientName   string
	DoctorName    string
	SpecialtyName string
	DateFrom      *time.Time
	DateTo        *time.Time
	domain.PageRequest
}
