package appointment

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
)

// Status values are stored as the clinic staff write them.
type Status string

const (
	StatusScheduled Status = "Programada"
	StatusConfirmed Status = "Confirmada"
	StatusCancelled Status = "Cancelada"
	StatusCompleted Status = "Realizada"
)

var Statuses = []Status{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Appointment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	PatientID uint             `gorm:"column:patient_id;not null;index" json:"patient_id" validate:"required"`
	Patient   *patient.Patient `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"patient,omitempty" validate:"-"`
	DoctorID  uint             `gorm:"column:doctor_id;not null;index" json:"doctor_id" validate:"required"`
	Doctor    *doctor.Doctor   `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"doctor,omitempty" validate:"-"`

	ScheduledAt time.Time `gorm:"column:scheduled_at;not null;index" json:"scheduled_at"`
	Status      Status    `gorm:"column:status;type:varchar(20);not null;default:'Programada';index" json:"status" validate:"oneof=Programada Confirmada Cancelada Realizada"`
	Reason      string    `gorm:"column:reason;type:text" json:"reason"`
	Notes       string    `gorm:"column:notes;type:text" json:"notes"`
}

func (Appointment) TableName() string {
	return "citas_medicas"
}

func (a *Appointment) PatientName() string {
	if a.Patient == nil {
		return ""
	}
	return a.Patient.FullName()
}

func (a *Appointment) DoctorName() string {
	if a.Doctor == nil {
		return ""
	}
	return a.Doctor.FullName()
}

func (a *Appointment) Normalize() {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	a.Reason = strings.TrimSpace(a.Reason)
	a.Notes = strings.TrimSpace(a.Notes)
}

func (a *Appointment) Validate() error {
	a.Normalize()
	verr := &domain.ValidationError{}
	if a.ScheduledAt.IsZero() {
		verr.Add("scheduled_at", "this field is required")
	}
	return domain.MergeValidation(domain.ValidateStruct(a), verr.OrNil())
}

type CreateAppointmentCommand struct {
	PatientID   uint
	DoctorID    uint
	ScheduledAt time.Time
	Status      Status
	Reason      string
	Notes       string
}

func (c *CreateAppointmentCommand) Build() *Appointment {
	return &Appointment{
		PatientID:   c.PatientID,
		DoctorID:    c.DoctorID,
		ScheduledAt: c.ScheduledAt,
		Status:      c.Status,
		Reason:      c.Reason,
		Notes:       c.Notes,
	}
}

type UpdateAppointmentCommand struct {
	PatientID   *uint
	DoctorID    *uint
	ScheduledAt *time.Time
	Status      *Status
	Reason      *string
	Notes       *string
}

func (c *UpdateAppointmentCommand) Apply(a *Appointment) {
	if c.PatientID != nil {
		a.PatientID = *c.PatientID
		a.Patient = nil
	}
	if c.DoctorID != nil {
		a.DoctorID = *c.DoctorID
		a.Doctor = nil
	}
	if c.ScheduledAt != nil {
		a.ScheduledAt = *c.ScheduledAt
	}
	if c.Status != nil {
		a.Status = *c.Status
	}
	if c.Reason != nil {
		a.Reason = *c.Reason
	}
	if c.Notes != nil {
		a.Notes = *c.Notes
	}
}

// ListAppointmentsQuery filters on the calendar day of ScheduledAt; both
// bounds are inclusive.
type ListAppointmentsQuery struct {
	Search    string // patient or doctor names
	PatientID *uint
	DoctorID  *uint
	Status    *Status
	DateFrom  *time.Time
	DateTo    *time.Time
	domain.PageRequest
}

type Stats struct {
	Total int64 `json:"total"`
	Today int64 `json:"today"`
}
