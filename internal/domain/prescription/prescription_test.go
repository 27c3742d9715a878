package prescription

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
)

func TestTotalCost(t *testing.T) {
	p := &Prescription{
		Quantity:   3,
		Medication: &medication.Medication{UnitPrice: decimal.RequireFromString("1250.50")},
	}
	assert.Equal(t, "3751.5", p.TotalCost().String())
	assert.True(t, TotalCost(3, decimal.RequireFromString("1250.50")).Equal(p.TotalCost()))

	p.Medication = nil
	assert.True(t, p.TotalCost().IsZero())
}

func TestValidate(t *testing.T) {
	p := &Prescription{TreatmentID: 1, MedicationID: 2, Quantity: 0, Frequency: "twice", Duration: ""}

	err := p.Validate()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := verr.Map()
	assert.Equal(t, "must be greater than 0", fields["quantity"])
	assert.Contains(t, fields["frequency"], "cada_8_horas")
	assert.Equal(t, "this field is required", fields["duration"])

	p.Quantity = 2
	p.Frequency = FrequencyEvery8Hours
	p.Duration = "7 días"
	assert.NoError(t, p.Validate())
}

func TestFrequency(t *testing.T) {
	for _, f := range Frequencies {
		assert.True(t, f.IsValid())
		assert.NotEqual(t, string(f), f.Label())
	}
	assert.False(t, Frequency("cada_3_horas").IsValid())
}
