package patient

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

func TestAgeAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		birth time.Time
		want  int
	}{
		{"birthday today", time.Date(1994, 6, 15, 0, 0, 0, 0, time.UTC), 30},
		{"birthday tomorrow", time.Date(1994, 6, 16, 0, 0, 0, 0, time.UTC), 29},
		{"birthday last month", time.Date(1994, 5, 20, 0, 0, 0, 0, time.UTC), 30},
		{"birthday next month", time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC), 29},
		{"born today", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), 0},
		{"future birth clamps", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Patient{BirthDate: tt.birth}
			assert.Equal(t, tt.want, p.AgeAt(now))
		})
	}
}

func TestAgeAt_DayBeforeThirtiethBirthday(t *testing.T) {
	today := time.Date(2025, 9, 3, 8, 0, 0, 0, time.UTC)
	p := &Patient{BirthDate: today.AddDate(-30, 0, 0)}

	assert.Equal(t, 30, p.AgeAt(today))
	assert.Equal(t, 29, p.AgeAt(today.AddDate(0, 0, -1)))
}

func TestBirthDateBoundsForAge(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	latest := LatestBirthDateForAge(today, 30)
	assert.Equal(t, 30, (&Patient{BirthDate: latest}).AgeAt(today))
	assert.Equal(t, 29, (&Patient{BirthDate: latest.AddDate(0, 0, 1)}).AgeAt(today))

	earliest := EarliestBirthDateExclusiveForAge(today, 30)
	assert.Equal(t, 31, (&Patient{BirthDate: earliest}).AgeAt(today))
	assert.Equal(t, 30, (&Patient{BirthDate: earliest.AddDate(0, 0, 1)}).AgeAt(today))
}

func TestBirthDateBoundsForAge_LeapDay(t *testing.T) {
	today := time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)
	marchFirst := &Patient{BirthDate: time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)}
	febLast := &Patient{BirthDate: time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC)}
	require.Equal(t, 0, marchFirst.AgeAt(today))
	require.Equal(t, 1, febLast.AgeAt(today))

	latest := LatestBirthDateForAge(today, 1)
	assert.Equal(t, time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC), latest)
	assert.True(t, marchFirst.BirthDate.After(latest), "age 0 must fail min_age=1")
	assert.False(t, febLast.BirthDate.After(latest))

	earliest := EarliestBirthDateExclusiveForAge(today, 0)
	assert.Equal(t, time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC), earliest)
	assert.True(t, marchFirst.BirthDate.After(earliest), "age 0 must pass max_age=0")
	assert.False(t, febLast.BirthDate.After(earliest))

	// Four-year steps stay on Feb 29.
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), LatestBirthDateForAge(today, 4))
}

func TestValidate(t *testing.T) {
	p := &Patient{
		NationalID: " 12345678-9 ",
		FirstName:  "Ana",
		LastName:   "Rojas",
		BirthDate:  time.Date(1990, 1, 2, 15, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.ValidateAt(time.Now()))
	assert.Equal(t, "12345678-9", p.NationalID)
	assert.Equal(t, 0, p.BirthDate.Hour())
	assert.Equal(t, "Ana Rojas", p.FullName())

	bad := &Patient{NationalID: "123", BirthDate: time.Now().AddDate(1, 0, 0)}
	err := bad.ValidateAt(time.Now())
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.Map()
	assert.Contains(t, fields, "national_id")
	assert.Contains(t, fields, "first_name")
	assert.Contains(t, fields, "last_name")
	assert.Equal(t, ErrInvalidBirthDate.Error(), fields["birth_date"])
}

func TestValidateAt_UsesClinicDay(t *testing.T) {
	santiago := time.FixedZone("CLT", -3*60*60)
	// 22:00 in the clinic is already the next day in UTC.
	now := time.Date(2024, 6, 15, 22, 0, 0, 0, santiago)
	p := &Patient{
		NationalID: "12345678-9",
		FirstName:  "Ana",
		LastName:   "Rojas",
		BirthDate:  time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
	}

	var verr *domain.ValidationError
	require.ErrorAs(t, p.ValidateAt(now), &verr)
	assert.Equal(t, ErrInvalidBirthDate.Error(), verr.Map()["birth_date"])

	p.BirthDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, p.ValidateAt(now))
}

func TestUpdateCommandApply(t *testing.T) {
	p := &Patient{FirstName: "Ana", LastName: "Rojas", Phone: "123"}
	name := "Ana María"
	empty := ""
	(&UpdatePatientCommand{FirstName: &name, Phone: &empty}).Apply(p)

	assert.Equal(t, "Ana María", p.FirstName)
	assert.Equal(t, "Rojas", p.LastName)
	assert.Empty(t, p.Phone)
}

func TestErrorClasses(t *testing.T) {
	assert.True(t, errors.Is(ErrPatientNotFound, domain.ErrNotFound))
	assert.True(t, errors.Is(ErrPatientAlreadyExists, domain.ErrConflict))
	assert.True(t, errors.Is(ErrPatientHasDependents, domain.ErrInUse))
	assert.Equal(t, "patient not found", ErrPatientNotFound.Error())
}
