package treatment

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
)

type Treatment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	ConsultationID uint                       `gorm:"column:consultation_id;not null;index" json:"consultation_id" validate:"required"`
	Consultation   *consultation.Consultation `gorm:"foreignKey:ConsultationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"consultation,omitempty" validate:"-"`

	Description string     `gorm:"column:description;type:text;not null" json:"description" validate:"notblank"`
	StartDate   time.Time  `gorm:"column:start_date;type:date;not null;index" json:"start_date"`
	EndDate     *time.Time `gorm:"column:end_date;type:date;index" json:"end_date"` // nil: open-ended
}

func (Treatment) TableName() string {
	return "tratamientos"
}

// IsActiveAt reports whether the treatment is still running on now's date.
// Open-ended treatments are always active.
func (t *Treatment) IsActiveAt(now time.Time) bool {
	if t.EndDate == nil {
		return true
	}
	return !domain.DateOnly(*t.EndDate).Before(domain.DateOnly(now))
}

func (t *Treatment) IsActive() bool {
	return t.IsActiveAt(time.Now())
}

// DurationDays is nil for open-ended treatments.
func (t *Treatment) DurationDays() *int {
	if t.EndDate == nil {
		return nil
	}
	d := domain.DaysBetween(t.StartDate, *t.EndDate)
	return &d
}

func (t *Treatment) PatientName() string {
	if t.Consultation == nil {
		return ""
	}
	return t.Consultation.PatientName()
}

func (t *Treatment) DoctorName() string {
	if t.Consultation == nil {
		return ""
	}
	return t.Consultation.DoctorName()
}

func (t *Treatment) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
	if !t.StartDate.IsZero() {
		t.StartDate = domain.DateOnly(t.StartDate)
	}
	if t.EndDate != nil {
		end := domain.DateOnly(*t.EndDate)
		t.EndDate = &end
	}
}

func (t *Treatment) Validate() error {
	t.Normalize()
	verr := &domain.ValidationError{}
	if t.StartDate.IsZero() {
		verr.Add("start_date", "this field is required")
	} else if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		verr.Add("end_date", ErrEndBeforeStart.Error())
	}
	return domain.MergeValidation(domain.ValidateStruct(t), verr.OrNil())
}

type CreateTreatmentCommand struct {
	ConsultationID uint
	Description    string
	StartDate      time.Time
	EndDate        *time.Time
}

func (c *CreateTreatmentCommand) Build() *Treatment {
	return &Treatment{
		ConsultationID: c.ConsultationID,
		Description:    c.Description,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
	}
}

type UpdateTreatmentCommand struct {
	ConsultationID *uint
	Description    *string
	StartDate      *time.Time

	// SetEndDate distinguishes "make open-ended" (EndDate nil) from "leave it alone".
	SetEndDate bool
	EndDate    *time.Time
}

func (u *UpdateTreatmentCommand) Apply(t *Treatment) {
	if u.ConsultationID != nil {
		t.ConsultationID = *u.ConsultationID
		t.Consultation = nil
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.StartDate != nil {
		t.StartDate = *u.StartDate
	}
	if u.SetEndDate {
		t.EndDate = u.EndDate
	}
}

// ListTreatmentsQuery filters DateFrom/DateTo on StartDate, both inclusive.
type ListTreatmentsQuery struct {
	Search         string // patient names or description
	ConsultationID *uint
	DateFrom       *time.Time
	DateTo         *time.Time
	Active         *bool
	domain.PageRequest
}
