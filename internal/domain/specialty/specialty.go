package specialty

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Specialty struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Name        string `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name" validate:"notblank,max=100"`
	Description string `gorm:"column:description;type:text" json:"description"`

	// Populated by list and detail queries only.
	DoctorCount int64 `gorm:"column:doctor_count;->;-:migration" json:"doctor_count"`
}

func (Specialty) TableName() string {
	return "especialidades"
}

func (s *Specialty) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Description = strings.TrimSpace(s.Description)
}

func (s *Specialty) Validate() error {
	s.Normalize()
	return domain.ValidateStruct(s)
}

type CreateSpecialtyCommand struct {
	Name        string
	Description string
}

func (c *CreateSpecialtyCommand) Build() *Specialty {
	return &Specialty{Name: c.Name, Description: c.Description}
}

type UpdateSpecialtyCommand struct {
	Name        *string
	Description *string
}

func (c *UpdateSpecialtyCommand) Apply(s *Specialty) {
	if c.Name != nil {
		s.Name = *c.Name
	}
	if c.Description != nil {
		s.Description = *c.Description
	}
}

type ListSpecialtiesQuery struct {
	Search string // name or description
	domain.PageRequest
}

// Ranking is one row of the "busiest specialties" dashboard panel.
type Ranking struct {
	SpecialtyID       uint   `json:"specialty_id"`
	Name              string `json:"name"`
	DoctorCount       int64  `json:"doctor_count"`
	ConsultationCount int64  `json:"consultation_count"`
}
