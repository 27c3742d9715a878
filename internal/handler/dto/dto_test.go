package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Map()
}

func TestValueAcceptsNumbersStringsAndNull(t *testing.T) {
	var req MedicationRequest
	body := `{"name":"Paracetamol","stock":5,"unit_price":"100.50","description":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, Value{Set: true, Raw: "Paracetamol"}, req.Name)
	assert.Equal(t, Value{Set: true, Raw: "5"}, req.Stock)
	assert.Equal(t, Value{Set: true, Raw: "100.50"}, req.UnitPrice)
	assert.Equal(t, Value{Set: true, Null: true}, req.Description)
	assert.False(t, req.ExpirationDate.Set)
}

func TestMedicationCreateCommand(t *testing.T) {
	req := MedicationRequest{
		Name:           Text("Paracetamol"),
		Stock:          Text("5"),
		UnitPrice:      Text("100"),
		ExpirationDate: Text("2025-01-31"),
	}
	cmd, err := req.CreateCommand()
	require.NoError(t, err)
	assert.Equal(t, 5, cmd.Stock)
	assert.True(t, decimal.NewFromInt(100).Equal(cmd.UnitPrice))
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), cmd.ExpirationDate)
}

func TestMalformedValuesAreFieldScoped(t *testing.T) {
	req := MedicationRequest{
		Name:           Text("Ibuprofeno"),
		Stock:          Text("cinco"),
		UnitPrice:      Text("1,5"),
		ExpirationDate: Text("31/01/2025"),
	}
	_, err := req.CreateCommand()
	fields := fieldErrors(t, err)
	assert.Equal(t, "must be a whole number", fields["stock"])
	assert.Equal(t, "must be a valid decimal number", fields["unit_price"])
	assert.Equal(t, "must be a date in YYYY-MM-DD format", fields["expiration_date"])
	assert.NotContains(t, fields, "name")
}

func TestArraysAndObjectsAreRejectedPerField(t *testing.T) {
	var req MedicationRequest
	body := `{"name":["Paracetamol"],"description":{"es":"x"},"stock":[5],"unit_price":"10","expiration_date":"2025-01-31"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.True(t, req.Name.Composite)

	_, err := req.CreateCommand()
	fields := fieldErrors(t, err)
	assert.Equal(t, "must be a single value", fields["name"])
	assert.Equal(t, "must be a single value", fields["description"])
	assert.Equal(t, "must be a whole number", fields["stock"])
	assert.NotContains(t, fields, "unit_price")
}

func TestPatchLeavesAbsentFieldsAlone(t *testing.T) {
	req := PatientRequest{Phone: Text("+56 9 1234")}
	cmd, err := req.UpdateCommand(false)
	require.NoError(t, err)

	p := &patient.Patient{FirstName: "Ana", LastName: "Rojas", Phone: "old"}
	cmd.Apply(p)
	assert.Equal(t, "Ana", p.FirstName)
	assert.Equal(t, "+56 9 1234", p.Phone)
}

func TestPutBlanksMissingRequiredFields(t *testing.T) {
	req := PatientRequest{Phone: Text("+56 9 1234")}
	cmd, err := req.UpdateCommand(true)
	require.NoError(t, err)

	p := &patient.Patient{
		NationalID: "12345678-9",
		FirstName:  "Ana",
		LastName:   "Rojas",
		BirthDate:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Address:    "Calle 1",
	}
	cmd.Apply(p)
	assert.Empty(t, p.FirstName)
	assert.True(t, p.BirthDate.IsZero())
	assert.Equal(t, "Calle 1", p.Address, "optional fields stay untouched")

	fields := fieldErrors(t, p.ValidateAt(time.Now()))
	assert.Contains(t, fields, "first_name")
	assert.Contains(t, fields, "birth_date")
}

func TestTreatmentEndDateCanBeCleared(t *testing.T) {
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tr := &treatment.Treatment{EndDate: &end}

	var req TreatmentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"end_date":null}`), &req))
	cmd, err := req.UpdateCommand(false)
	require.NoError(t, err)
	assert.True(t, cmd.SetEndDate)
	cmd.Apply(tr)
	assert.Nil(t, tr.EndDate)

	req = TreatmentRequest{}
	cmd, err = req.UpdateCommand(false)
	require.NoError(t, err)
	assert.False(t, cmd.SetEndDate)
}

func TestConsultationDateTimeUsesClinicZone(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	req := ConsultationRequest{
		PatientID:   Text("1"),
		DoctorID:    Text("2"),
		ConsultedAt: Text("2024-07-10T09:30"),
		Reason:      Text("Control"),
	}
	cmd, err := req.CreateCommand(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 10, 9, 30, 0, 0, loc), cmd.ConsultedAt)
	assert.Nil(t, cmd.AppointmentID)

	req.ConsultedAt = Text("2024-07-10T13:30:00Z")
	req.AppointmentID = Text("abc")
	_, err = req.CreateCommand(loc)
	assert.Equal(t, map[string]string{"appointment_id": "must be a valid id"}, fieldErrors(t, err))
}

func TestDoctorActiveDefaultsOnCreate(t *testing.T) {
	cmd, err := (&DoctorRequest{SpecialtyID: Text("3")}).CreateCommand()
	require.NoError(t, err)
	assert.Nil(t, cmd.Active)
	assert.True(t, cmd.Build().Active)
	assert.Equal(t, uint(3), cmd.SpecialtyID)

	cmd, err = (&DoctorRequest{Active: Text("false")}).CreateCommand()
	require.NoError(t, err)
	assert.False(t, cmd.Build().Active)
}

func TestQueries(t *testing.T) {
	q := &PatientQuery{MinAge: "30", MaxAge: "x", PageParams: PageParams{Page: "0", PageSize: "500"}}
	_, err := q.ToQuery(domain.DefaultPageSize)
	assert.Equal(t, map[string]string{"max_age": "must be a whole number"}, fieldErrors(t, err))

	q.MaxAge = ""
	out, err := q.ToQuery(domain.DefaultPageSize)
	require.NoError(t, err)
	assert.Equal(t, 30, *out.MinAge)
	assert.Nil(t, out.MaxAge)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, domain.MaxPageSize, out.PageSize)

	mq := &MedicationQuery{LowStock: "true"}
	mout, err := mq.ToQuery(15)
	require.NoError(t, err)
	assert.True(t, *mout.LowStock)
	assert.Nil(t, mout.ExpiringSoon)
	assert.Equal(t, 15, mout.PageSize)

	aq := &AppointmentQuery{Status: "Perdida"}
	_, err = aq.ToQuery(20)
	assert.Contains(t, fieldErrors(t, err), "status")
}

func TestPrescriptionResponseDerivedFields(t *testing.T) {
	p := &prescription.Prescription{
		Quantity:   5,
		Frequency:  prescription.FrequencyEvery8Hours,
		Medication: &medication.Medication{Name: "Amoxicilina", UnitPrice: decimal.RequireFromString("100.00")},
	}
	resp := NewPrescriptionResponse(p)
	assert.Equal(t, "500.00", resp.TotalCost)
	assert.Equal(t, "Cada 8 horas", resp.FrequencyLabel)
	assert.Equal(t, "Amoxicilina", resp.MedicationName)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "500.00", decoded["total_cost"])
	assert.Equal(t, float64(5), decoded["quantity"])
}

func TestMedicationResponseThresholds(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &medication.Medication{Stock: 5, UnitPrice: decimal.NewFromInt(100), ExpirationDate: now.AddDate(0, 0, 30)}
	resp := NewMedicationResponse(m, now)
	assert.True(t, resp.IsLowStock)
	assert.True(t, resp.IsExpiringSoon)
	assert.Equal(t, "100.00", resp.UnitPrice)

	m.Stock = 11
	m.ExpirationDate = now.AddDate(0, 0, 31)
	resp = NewMedicationResponse(m, now)
	assert.False(t, resp.IsLowStock)
	assert.False(t, resp.IsExpiringSoon)
}

func TestPatientResponseAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	p := &patient.Patient{FirstName: "Ana", LastName: "Rojas", BirthDate: time.Date(1994, 6, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 30, NewPatientResponse(p, now).Age)
	assert.Equal(t, 29, NewPatientResponse(p, now.AddDate(0, 0, -1)).Age)
	assert.Equal(t, "Ana Rojas", NewPatientResponse(p, now).FullName)
}

func TestNewPage(t *testing.T) {
	paged := domain.NewPaged([]*treatment.Treatment{{Description: "Reposo"}}, 21, domain.PageRequest{Page: 2, PageSize: 20})
	page := NewPage(paged, TreatmentResponses(time.Now()))
	assert.Equal(t, int64(21), page.Count)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasPrev())
	assert.False(t, page.HasNext())
	require.Len(t, page.Results, 1)
	assert.True(t, page.Results[0].IsActive)
}
