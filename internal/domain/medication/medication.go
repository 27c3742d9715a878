package medication

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

const (
	// LowStockThreshold is the highest stock still considered low.
	LowStockThreshold = 10
	// ExpiryWindowDays is how far ahead an expiration date counts as soon.
	ExpiryWindowDays = 30

	// decimal(10,2)
	priceScale     = 2
	maxPriceDigits = 8
)

var maxUnitPrice = decimal.New(1, maxPriceDigits)

type Medication struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Name           string          `gorm:"column:name;type:varchar(100);not null;index" json:"name" validate:"notblank,max=100"`
	Description    string          `gorm:"column:description;type:text" json:"description"`
	Stock          int             `gorm:"column:stock;not null;default:0;check:chk_medicamentos_stock,stock >= 0" json:"stock" validate:"gte=0"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null;check:chk_medicamentos_unit_price,unit_price > 0" json:"unit_price" validate:"decimal_gt0"`
	ExpirationDate time.Time       `gorm:"column:expiration_date;type:date;not null;index" json:"expiration_date"`
}

func (Medication) TableName() string {
	return "medicamentos"
}

func IsLowStock(stock int) bool {
	return stock <= LowStockThreshold
}

// ExpiryCutoff is the last expiration date that still counts as expiring soon
// on now's date.
func ExpiryCutoff(now time.Time) time.Time {
	return domain.DateOnly(now).AddDate(0, 0, ExpiryWindowDays)
}

func (m *Medication) IsLowStock() bool {
	return IsLowStock(m.Stock)
}

func (m *Medication) IsExpiringSoonAt(now time.Time) bool {
	return !domain.DateOnly(m.ExpirationDate).After(ExpiryCutoff(now))
}

func (m *Medication) IsExpiringSoon() bool {
	return m.IsExpiringSoonAt(time.Now())
}

func (m *Medication) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	if !m.ExpirationDate.IsZero() {
		m.ExpirationDate = domain.DateOnly(m.ExpirationDate)
	}
}

func (m *Medication) Validate() error {
	m.Normalize()
	verr := &domain.ValidationError{}
	if m.ExpirationDate.IsZero() {
		verr.Add("expiration_date", "this field is required")
	}
	if !m.UnitPrice.Equal(m.UnitPrice.Round(priceScale)) {
		verr.Add("unit_price", "must have at most 2 decimal places")
	}
	if m.UnitPrice.GreaterThanOrEqual(maxUnitPrice) {
		verr.Add("unit_price", "must have at most 8 digits before the decimal point")
	}
	return domain.MergeValidation(domain.ValidateStruct(m), verr.OrNil())
}

type CreateMedicationCommand struct {
	Name           string
	Description    string
	Stock          int
	UnitPrice      decimal.Decimal
	ExpirationDate time.Time
}

func (c *CreateMedicationCommand) Build() *Medication {
	return &Medication{
		Name:           c.Name,
		Description:    c.Description,
		Stock:          c.Stock,
		UnitPrice:      c.UnitPrice,
		ExpirationDate: c.ExpirationDate,
	}
}

type UpdateMedicationCommand struct {
	Name           *string
	Description    *string
	Stock          *int
	UnitPrice      *decimal.Decimal
	ExpirationDate *time.Time
}

func (c *UpdateMedicationCommand) Apply(m *Medication) {
	if c.Name != nil {
		m.Name = *c.Name
	}
	if c.Description != nil {
		m.Description = *c.Description
	}
	if c.Stock != nil {
		m.Stock = *c.Stock
	}
	if c.UnitPrice != nil {
		m.UnitPrice = *c.UnitPrice
	}
	if c.ExpirationDate != nil {
		m.ExpirationDate = *c.ExpirationDate
	}
}

type ListMedicationsQuery struct {
	Search       string // name or description
	Name         string
	LowStock     *bool
	ExpiringSoon *bool
	domain.PageRequest
}
