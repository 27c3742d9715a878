package medication

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

func TestIsLowStock(t *testing.T) {
	assert.True(t, (&Medication{Stock: 5, UnitPrice: decimal.NewFromInt(100)}).IsLowStock())
	assert.True(t, (&Medication{Stock: 10}).IsLowStock())
	assert.False(t, (&Medication{Stock: 11}).IsLowStock())
}

func TestIsExpiringSoonAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"already expired", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"exactly 30 days", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), true},
		{"31 days", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Medication{ExpirationDate: tt.expiry}
			assert.Equal(t, tt.want, m.IsExpiringSoonAt(now))
		})
	}
}

func TestValidate(t *testing.T) {
	m := &Medication{
		Name:           "Paracetamol",
		Stock:          -1,
		UnitPrice:      decimal.Zero,
		ExpirationDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	err := m.Validate()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must not be negative", verr.Map()["stock"])
	assert.Equal(t, "must be greater than 0", verr.Map()["unit_price"])

	m.Stock = 0
	m.UnitPrice = decimal.RequireFromString("1.234")
	require.ErrorAs(t, m.Validate(), &verr)
	assert.Equal(t, "must have at most 2 decimal places", verr.Map()["unit_price"])

	m.UnitPrice = decimal.RequireFromString("1500.50")
	assert.NoError(t, m.Validate())
}
