package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalized(t *testing.T) {
	p := PageRequest{}.Normalized(15)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 15, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = PageRequest{Page: 3, PageSize: 500}.Normalized(0)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
}

func TestNewPaged(t *testing.T) {
	type row struct{}
	req := PageRequest{Page: 2, PageSize: 20}
	p := NewPaged[row](nil, 41, req)

	assert.Equal(t, 3, p.TotalPages)
	assert.NotNil(t, p.Items)
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrev())
}

func TestDates(t *testing.T) {
	loc := time.FixedZone("CLT", -3*3600)
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, loc), Today(now))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), DateOnly(now))
	assert.Equal(t, 30, DaysBetween(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))

	d, err := ParseDate("birth_date", "1990-05-17")
	assert.NoError(t, err)
	assert.Equal(t, time.May, d.Month())

	_, err = ParseDate("birth_date", "17/05/1990")
	assert.Error(t, err)

	dt, err := ParseDateTime("scheduled_at", "2024-03-10T09:15", loc)
	assert.NoError(t, err)
	assert.Equal(t, loc, dt.Location())

	_, err = ParseDateTime("scheduled_at", "tomorrow", loc)
	assert.Error(t, err)
}
