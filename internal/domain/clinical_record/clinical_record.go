package clinical_record

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
)

type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// BloodTypes lists the accepted values in display order.
var BloodTypes = []BloodType{
	BloodTypeAPos, BloodTypeANeg, BloodTypeBPos, BloodTypeBNeg,
	BloodTypeABPos, BloodTypeABNeg, BloodTypeOPos, BloodTypeONeg,
}

func (b BloodType) IsValid() bool {
	for _, v := range BloodTypes {
		if v == b {
			return true
		}
	}
	return false
}

// ClinicalRecord holds the baseline medical facts of one patient. There is at
// most one per patient and it goes away with the patient.
type ClinicalRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	PatientID uint             `gorm:"column:patient_id;not null;uniqueIndex" json:"patient_id" validate:"required"`
	Patient   *patient.Patient `gorm:"foreignKey:PatientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"patient,omitempty" validate:"-"`

	BloodType         BloodType `gorm:"column:blood_type;type:varchar(5)" json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	KnownAllergies    string    `gorm:"column:known_allergies;type:text" json:"known_allergies"`
	ChronicConditions string    `gorm:"column:chronic_conditions;type:text" json:"chronic_conditions"`
}

func (ClinicalRecord) TableName() string {
	return "historiales_clinicos"
}

func (r *ClinicalRecord) PatientName() string {
	if r.Patient == nil {
		return ""
	}
	return r.Patient.FullName()
}

func (r *ClinicalRecord) Normalize() {
	r.BloodType = BloodType(strings.ToUpper(strings.TrimSpace(string(r.BloodType))))
	r.KnownAllergies = strings.TrimSpace(r.KnownAllergies)
	r.ChronicConditions = strings.TrimSpace(r.ChronicConditions)
}

func (r *ClinicalRecord) Validate() error {
	r.Normalize()
	return domain.ValidateStruct(r)
}

type CreateRecordCommand struct {
	PatientID         uint
	BloodType         BloodType
	KnownAllergies    string
	ChronicConditions string
}

func (c *CreateRecordCommand) Build() *ClinicalRecord {
	return &ClinicalRecord{
		PatientID:         c.PatientID,
		BloodType:         c.BloodType,
		KnownAllergies:    c.KnownAllergies,
		ChronicConditions: c.ChronicConditions,
	}
}

type UpdateRecordCommand struct {
	PatientID         *uint
	BloodType         *BloodType
	KnownAllergies    *string
	ChronicConditions *string
}

func (c *UpdateRecordCommand) Apply(r *ClinicalRecord) {
	if c.PatientID != nil {
		r.PatientID = *c.PatientID
		r.Patient = nil
	}
	if c.BloodType != nil {
		r.BloodType = *c.BloodType
	}
	if c.KnownAllergies != nil {
		r.KnownAllergies = *c.KnownAllergies
	}
	if c.ChronicConditions != nil {
		r.ChronicConditions = *c.ChronicConditions
	}
}

type ListRecordsQuery struct {
	Search    string // patient names, national id or blood type
	BloodType *BloodType
	domain.PageRequest
}
