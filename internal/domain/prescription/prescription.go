package prescription

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
)

type Frequency string

const (
	FrequencyEvery4Hours  Frequency = "cada_4_horas"
	FrequencyEvery6Hours  Frequency = "cada_6_horas"
	FrequencyEvery8Hours  Frequency = "cada_8_horas"
	FrequencyEvery12Hours Frequency = "cada_12_horas"
	FrequencyEvery24Hours Frequency = "cada_24_horas"
	FrequencyAsNeeded     Frequency = "segun_necesidad"
)

var Frequencies = []Frequency{
	FrequencyEvery4Hours, FrequencyEvery6Hours, FrequencyEvery8Hours,
	FrequencyEvery12Hours, FrequencyEvery24Hours, FrequencyAsNeeded,
}

var frequencyLabels = map[Frequency]string{
	FrequencyEvery4Hours:  "Cada 4 horas",
	FrequencyEvery6Hours:  "Cada 6 horas",
	FrequencyEvery8Hours:  "Cada 8 horas",
	FrequencyEvery12Hours: "Cada 12 horas",
	FrequencyEvery24Hours: "Cada 24 horas",
	FrequencyAsNeeded:     "Según necesidad",
}

func (f Frequency) IsValid() bool {
	_, ok := frequencyLabels[f]
	return ok
}

func (f Frequency) Label() string {
	if l, ok := frequencyLabels[f]; ok {
		return l
	}
	return string(f)
}

// Prescription is one medication line of a treatment.
type Prescription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	TreatmentID  uint                   `gorm:"column:treatment_id;not null;index" json:"treatment_id" validate:"required"`
	Treatment    *treatment.Treatment   `gorm:"foreignKey:TreatmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"treatment,omitempty" validate:"-"`
	MedicationID uint                   `gorm:"column:medication_id;not null;index" json:"medication_id" validate:"required"`
	Medication   *medication.Medication `gorm:"foreignKey:MedicationID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"medication,omitempty" validate:"-"`

	Quantity  int       `gorm:"column:quantity;not null;check:chk_recetas_medicas_quantity,quantity > 0" json:"quantity" validate:"gt=0"`
	Frequency Frequency `gorm:"column:frequency;type:varchar(50);not null" json:"frequency" validate:"oneof=cada_4_horas cada_6_horas cada_8_horas cada_12_horas cada_24_horas segun_necesidad"`
	Duration  string    `gorm:"column:duration;type:varchar(50);not null" json:"duration" validate:"notblank,max=50"`
}

func (Prescription) TableName() string {
	return "recetas_medicas"
}

// TotalCost multiplies quantity by unit price.
func TotalCost(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// TotalCost needs the medication preloaded; it is zero otherwise.
func (p *Prescription) TotalCost() decimal.Decimal {
	if p.Medication == nil {
		return decimal.Zero
	}
	return TotalCost(p.Quantity, p.Medication.UnitPrice)
}

func (p *Prescription) MedicationName() string {
	if p.Medication == nil {
		return ""
	}
	return p.Medication.Name
}

func (p *Prescription) PatientName() string {
	if p.Treatment == nil {
		return ""
	}
	return p.Treatment.PatientName()
}

func (p *Prescription) DoctorName() string {
	if p.Treatment == nil {
		return ""
	}
	return p.Treatment.DoctorName()
}

func (p *Prescription) Normalize() {
	p.Frequency = Frequency(strings.TrimSpace(string(p.Frequency)))
	p.Duration = strings.TrimSpace(p.Duration)
}

func (p *Prescription) Validate() error {
	p.Normalize()
	return domain.ValidateStruct(p)
}

type CreatePrescriptionCommand struct {
	TreatmentID  uint
	MedicationID uint
	Quantity     int
	Frequency    Frequency
	Duration     string
}

func (c *CreatePrescriptionCommand) Build() *Prescription {
	return &Prescription{
		TreatmentID:  c.TreatmentID,
		MedicationID: c.MedicationID,
		Quantity:     c.Quantity,
		Frequency:    c.Frequency,
		Duration:     c.Duration,
	}
}

type UpdatePrescriptionCommand struct {
	TreatmentID  *uint
	MedicationID *uint
	Quantity     *int
	Frequency    *Frequency
	Duration     *string
}

func (c *UpdatePrescriptionCommand) Apply(p *Prescription) {
	if c.TreatmentID != nil {
		p.TreatmentID = *c.TreatmentID
		p.Treatment = nil
	}
	if c.MedicationID != nil {
		p.MedicationID = *c.MedicationID
		p.Medication = nil
	}
	if c.Quantity != nil {
		p.Quantity = *c.Quantity
	}
	if c.Frequency != nil {
		p.Frequency = *c.Frequency
	}
	if c.Duration != nil {
		p.Duration = *c.Duration
	}
}

// ListPrescriptionsQuery filters DateFrom/DateTo on the calendar day the
// prescription was issued, both inclusive.
type ListPrescriptionsQuery struct {
	Search       string // patient, doctor or medication names
	DoctorID     *uint
	TreatmentID  *uint
	MedicationID *uint
	DateFrom     *time.Time
	DateTo       *time.Time
	domain.PageRequest
}

type Stats struct {
	Total      int64 `json:"total"`
	Last30Days int64 `json:"last_30_days"`
	Today      int64 `json:"today"`
}
