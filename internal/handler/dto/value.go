// Package dto converts between the wire representation shared by the JSON API
// and the HTML forms and the domain commands, queries and entities.
package dto

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

// Value holds one input field as text. JSON strings, numbers and booleans are
// all accepted so a malformed value is reported against its own field instead
// of failing the whole body.
type Value struct {
	Set       bool // present in the payload
	Null      bool
	Composite bool // an array or object where a single value belongs
	Raw       string
}

func (v *Value) UnmarshalJSON(b []byte) error {
	v.Set = true
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		v.Null, v.Raw = true, ""
		return nil
	case strings.HasPrefix(s, `"`):
		return json.Unmarshal(b, &v.Raw)
	case strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{"):
		v.Composite, v.Raw = true, s
		return nil
	default:
		v.Raw = s
		return nil
	}
}

// Text builds a present Value, mostly for tests and form input.
func Text(s string) Value {
	return Value{Set: true, Raw: s}
}

func (v Value) blank() bool {
	return v.Null || strings.TrimSpace(v.Raw) == ""
}

func (v Value) text() string {
	return strings.TrimSpace(v.Raw)
}

// parser converts Values into typed fields, collecting one error per field.
// In full mode (PUT) required fields that are absent read as blank, which
// entity validation then reports as missing.
type parser struct {
	verr domain.ValidationError
	loc  *time.Location
	full bool
}

func newParser(loc *time.Location, full bool) *parser {
	if loc == nil {
		loc = time.UTC
	}
	return &parser{loc: loc, full: full}
}

func (p *parser) err() error {
	return p.verr.OrNil()
}

func (p *parser) need(v Value) Value {
	if p.full && !v.Set {
		return Value{Set: true, Null: true}
	}
	return v
}

func (p *parser) str(field string, v Value) *string {
	if !v.Set {
		return nil
	}
	if v.Composite {
		p.verr.Add(field, "must be a single value")
		return nil
	}
	s := v.Raw
	if v.Null {
		s = ""
	}
	return &s
}

func (p *parser) id(field string, v Value) *uint {
	if !v.Set {
		return nil
	}
	var out uint
	if v.blank() {
		return &out
	}
	n, err := strconv.ParseUint(v.text(), 10, 64)
	if err != nil {
		p.verr.Add(field, "must be a valid id")
		return nil
	}
	out = uint(n)
	return &out
}

// optID is for nullable references: blank clears them.
func (p *parser) optID(field string, v Value) (set bool, id *uint) {
	if !v.Set {
		return false, nil
	}
	if v.blank() {
		return true, nil
	}
	return true, p.id(field, v)
}

func (p *parser) integer(field string, v Value) *int {
	if !v.Set {
		return nil
	}
	var out int
	if v.blank() {
		return &out
	}
	n, err := strconv.Atoi(v.text())
	if err != nil {
		p.verr.Add(field, "must be a whole number")
		return nil
	}
	out = n
	return &out
}

func (p *parser) boolean(field string, v Value) *bool {
	if !v.Set || v.blank() {
		return nil
	}
	b, err := parseBool(v.text())
	if err != nil {
		p.verr.Add(field, "must be true or false")
		return nil
	}
	return &b
}

func (p *parser) amount(field string, v Value) *decimal.Decimal {
	if !v.Set {
		return nil
	}
	if v.blank() {
		d := decimal.Zero
		return &d
	}
	d, err := decimal.NewFromString(v.text())
	if err != nil {
		p.verr.Add(field, "must be a valid decimal number")
		return nil
	}
	return &d
}

// date reads a calendar date; blank reads as the zero time.
func (p *parser) date(field string, v Value) *time.Time {
	if !v.Set {
		return nil
	}
	var out time.Time
	if v.blank() {
		return &out
	}
	t, err := domain.ParseDate(field, v.text())
	if err != nil {
		p.verr.Add(field, "must be a date in YYYY-MM-DD format")
		return nil
	}
	return &t
}

// optDate is for nullable dates: blank clears them.
func (p *parser) optDate(field string, v Value) (set bool, d *time.Time) {
	if !v.Set {
		return false, nil
	}
	if v.blank() {
		return true, nil
	}
	return true, p.date(field, v)
}

func (p *parser) dateTime(field string, v Value) *time.Time {
	if !v.Set {
		return nil
	}
	var out time.Time
	if v.blank() {
		return &out
	}
	t, err := domain.ParseDateTime(field, v.text(), p.loc)
	if err != nil {
		p.verr.Add(field, "must be a date-time in RFC3339 or YYYY-MM-DDTHH:MM format")
		return nil
	}
	return &t
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "si", "sí":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
