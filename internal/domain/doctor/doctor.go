package doctor

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
)

type Doctor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	NationalID string `gorm:"column:national_id;type:varchar(12);uniqueIndex;not null" json:"national_id" validate:"national_id"`
	FirstName  string `gorm:"column:first_name;type:varchar(50);not null;index:idx_medicos_name,priority:2" json:"first_name" validate:"notblank,max=50"`
	LastName   string `gorm:"column:last_name;type:varchar(50);not null;index:idx_medicos_name,priority:1" json:"last_name" validate:"notblank,max=50"`
	Email      string `gorm:"column:email;type:varchar(254)" json:"email" validate:"omitempty,email,max=254"`
	Phone      string `gorm:"column:phone;type:varchar(15)" json:"phone" validate:"omitempty,max=15"`
	Active     bool   `gorm:"column:active;not null;index" json:"active"`

	SpecialtyID uint                 `gorm:"column:specialty_id;not null;index" json:"specialty_id" validate:"required"`
	Specialty   *specialty.Specialty `gorm:"foreignKey:SpecialtyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"specialty,omitempty" validate:"-"`
}

func (Doctor) TableName() string {
	return "medicos"
}

func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}

// SpecialtyName is empty unless the specialty was preloaded.
func (d *Doctor) SpecialtyName() string {
	if d.Specialty == nil {
		return ""
	}
	return d.Specialty.Name
}

func (d *Doctor) Normalize() {
	d.NationalID = strings.TrimSpace(d.NationalID)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
}

func (d *Doctor) Validate() error {
	d.Normalize()
	return domain.ValidateStruct(d)
}

type CreateDoctorCommand struct {
	NationalID  string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Active      *bool // defaults to true
	SpecialtyID uint
}

func (c *CreateDoctorCommand) Build() *Doctor {
	active := true
	if c.Active != nil {
		active = *c.Active
	}
	return &Doctor{
		NationalID:  c.NationalID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Active:      active,
		SpecialtyID: c.SpecialtyID,
	}
}

type UpdateDoctorCommand struct {
	NationalID  *string
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Active      *bool
	SpecialtyID *uint
}

func (c *UpdateDoctorCommand) Apply(d *Doctor) {
	if c.NationalID != nil {
		d.NationalID = *c.NationalID
	}
	if c.FirstName != nil {
		d.FirstName = *c.FirstName
	}
	if c.LastName != nil {
		d.LastName = *c.LastName
	}
	if c.Email != nil {
		d.Email = *c.Email
	}
	if c.Phone != nil {
		d.Phone = *c.Phone
	}
	if c.Active != nil {
		d.Active = *c.Active
	}
	if c.SpecialtyID != nil {
		d.SpecialtyID = *c.SpecialtyID
		d.Specialty = nil
	}
}

type ListDoctorsQuery struct {
	Search        string // national id, names, specialty name
	SpecialtyID   *uint
	SpecialtyName string
	FirstName     string
	LastName      string
	Active        *bool
	domain.PageRequest
}
