package treatment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsActiveAt(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	end := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name string
		end  *time.Time
		want bool
	}{
		{"open ended", nil, true},
		{"ends today", end(date(2024, 3, 10)), true},
		{"ends tomorrow", end(date(2024, 3, 11)), true},
		{"ended yesterday", end(date(2024, 3, 9)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Treatment{StartDate: date(2024, 3, 1), EndDate: tt.end}
			assert.Equal(t, tt.want, tr.IsActiveAt(now))
		})
	}
}

func TestDurationDays(t *testing.T) {
	tr := &Treatment{StartDate: date(2024, 2, 20)}
	assert.Nil(t, tr.DurationDays())

	end := date(2024, 3, 5)
	tr.EndDate = &end
	require.NotNil(t, tr.DurationDays())
	assert.Equal(t, 14, *tr.DurationDays())
}

func TestValidate(t *testing.T) {
	end := date(2024, 1, 1)
	tr := &Treatment{ConsultationID: 1, Description: "Reposo", StartDate: date(2024, 2, 1), EndDate: &end}

	err := tr.Validate()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrEndBeforeStart.Error(), verr.Map()["end_date"])

	tr.EndDate = nil
	assert.NoError(t, tr.Validate())

	assert.Error(t, (&Treatment{}).Validate())
}

func TestUpdateCommand_ClearsEndDate(t *testing.T) {
	end := date(2024, 5, 1)
	tr := &Treatment{StartDate: date(2024, 4, 1), EndDate: &end}

	(&UpdateTreatmentCommand{}).Apply(tr)
	assert.NotNil(t, tr.EndDate)

	(&UpdateTreatmentCommand{SetEndDate: true}).Apply(tr)
	assert.Nil(t, tr.EndDate)
}
