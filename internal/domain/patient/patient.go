package patient

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Patient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	NationalID string    `gorm:"column:national_id;type:varchar(12);uniqueIndex;not null" json:"national_id" validate:"national_id"`
	FirstName  string    `gorm:"column:first_name;type:varchar(50);not null;index:idx_pacientes_name,priority:2" json:"first_name" validate:"notblank,max=50"`
	LastName   string    `gorm:"column:last_name;type:varchar(50);not null;index:idx_pacientes_name,priority:1" json:"last_name" validate:"notblank,max=50"`
	BirthDate  time.Time `gorm:"column:birth_date;type:date;not null;index" json:"birth_date"`
	Phone      string    `gorm:"column:phone;type:varchar(15)" json:"phone" validate:"omitempty,max=15"`
	Email      string    `gorm:"column:email;type:varchar(254)" json:"email" validate:"omitempty,email,max=254"`
	Address    string    `gorm:"column:address;type:text" json:"address"`
}

func (Patient) TableName() string {
	return "pacientes"
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// AgeAt returns the completed years between the birth date and now.
func (p *Patient) AgeAt(now time.Time) int {
	by, bm, bd := p.BirthDate.Date()
	ny, nm, nd := now.Date()
	years := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func (p *Patient) Age() int {
	return p.AgeAt(time.Now())
}

// LatestBirthDateForAge is the last birth date whose holder is at least
// years old on today.
func LatestBirthDateForAge(today time.Time, years int) time.Time {
	return yearsBefore(domain.DateOnly(today), years)
}

// EarliestBirthDateExclusiveForAge bounds from below (exclusive) the birth
// dates whose holder is at most years old on today.
func EarliestBirthDateExclusiveForAge(today time.Time, years int) time.Time {
	return yearsBefore(domain.DateOnly(today), years+1)
}

// yearsBefore keeps the month of d, so Feb 29 lands on Feb 28 in common
// years instead of rolling into March.
func yearsBefore(d time.Time, years int) time.Time {
	t := d.AddDate(-years, 0, 0)
	if t.Month() != d.Month() {
		t = t.AddDate(0, 0, -t.Day())
	}
	return t
}

func (p *Patient) Normalize() {
	p.NationalID = strings.TrimSpace(p.NationalID)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.Address = strings.TrimSpace(p.Address)
	if !p.BirthDate.IsZero() {
		p.BirthDate = domain.DateOnly(p.BirthDate)
	}
}

// ValidateAt rejects birth dates after the calendar day of now, taken in
// now's location.
func (p *Patient) ValidateAt(now time.Time) error {
	p.Normalize()
	verr := &domain.ValidationError{}
	switch {
	case p.BirthDate.IsZero():
		verr.Add("birth_date", "this field is required")
	case p.BirthDate.After(domain.DateOnly(now)):
		verr.Add("birth_date", ErrInvalidBirthDate.Error())
	}
	return domain.MergeValidation(domain.ValidateStruct(p), verr.OrNil())
}

type CreatePatientCommand struct {
	NationalID string
	FirstName  string
	LastName   string
	BirthDate  time.Time
	Phone      string
	Email      string
	Address    string
}

func (c *CreatePatientCommand) Build() *Patient {
	return &Patient{
		NationalID: c.NationalID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		BirthDate:  c.BirthDate,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
	}
}

type UpdatePatientCommand struct {
	NationalID *string
	FirstName  *string
	LastName   *string
	BirthDate  *time.Time
	Phone      *string
	Email      *string
	Address    *string
}

func (c *UpdatePatientCommand) Apply(p *Patient) {
	if c.NationalID != nil {
		p.NationalID = *c.NationalID
	}
	if c.FirstName != nil {
		p.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		p.LastName = *c.LastName
	}
	if c.BirthDate != nil {
		p.BirthDate = *c.BirthDate
	}
	if c.Phone != nil {
		p.Phone = *c.Phone
	}
	if c.Email != nil {
		p.Email = *c.Email
	}
	if c.Address != nil {
		p.Address = *c.Address
	}
}

// ListPatientsQuery defines filtering and pagination for patient list queries.
type ListPatientsQuery struct {
	Search    string // names or national id
	FirstName string
	LastName  string
	MinAge    *int
	MaxAge    *int
	domain.PageRequest
}

// CascadeResult reports what an explicit cascading delete removed.
type CascadeResult struct {
	Consultations   int64 `json:"consultations"`
	Treatments      int64 `json:"treatments"`
	Prescriptions   int64 `json:"prescriptions"`
	Appointments    int64 `json:"appointments"`
	ClinicalRecords int64 `json:"clinical_records"`
}
