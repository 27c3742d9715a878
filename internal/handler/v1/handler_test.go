package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/service"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type nopAudit struct{}

func (nopAudit) Create(context.Context, *domain.AuditLog) error { return nil }

type memMedications struct {
	medication.Repository
	items     map[uint]*medication.Medication
	inUse     map[uint]bool
	lastQuery *medication.ListMedicationsQuery
	nextID    uint
}

func newMemMedications() *memMedications {
	return &memMedications{items: map[uint]*medication.Medication{}, inUse: map[uint]bool{}, nextID: 1}
}

func (r *memMedications) Create(_ context.Context, m *medication.Medication) error {
	m.ID = r.nextID
	r.nextID++
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *memMedications) GetByID(_ context.Context, id uint) (*medication.Medication, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, medication.ErrMedicationNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMedications) Update(_ context.Context, m *medication.Medication) error {
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *memMedications) Delete(_ context.Context, id uint) error {
	if _, ok := r.items[id]; !ok {
		return medication.ErrMedicationNotFound
	}
	if r.inUse[id] {
		return medication.ErrMedicationInUse
	}
	delete(r.items, id)
	return nil
}

func (r *memMedications) List(_ context.Context, q *medication.ListMedicationsQuery, _ time.Time) (*domain.Paged[medication.Medication], error) {
	r.lastQuery = q
	items := make([]*medication.Medication, 0, len(r.items))
	for _, m := range r.items {
		items = append(items, m)
	}
	return domain.NewPaged(items, int64(len(items)), q.PageRequest), nil
}

type memPatients struct {
	patient.Repository
	items      map[uint]*patient.Patient
	dependents map[uint]bool
}

func (r *memPatients) GetByID(_ context.Context, id uint) (*patient.Patient, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (r *memPatients) Delete(_ context.Context, id uint) error {
	if _, ok := r.items[id]; !ok {
		return patient.ErrPatientNotFound
	}
	if r.dependents[id] {
		return patient.ErrPatientHasDependents
	}
	delete(r.items, id)
	return nil
}

func (r *memPatients) DeleteCascade(_ context.Context, id uint) (*patient.CascadeResult, error) {
	if _, ok := r.items[id]; !ok {
		return nil, patient.ErrPatientNotFound
	}
	delete(r.items, id)
	return &patient.CascadeResult{Consultations: 2, Treatments: 1, Prescriptions: 3, Appointments: 1, ClinicalRecords: 1}, nil
}

func (r *memPatients) List(_ context.Context, q *patient.ListPatientsQuery, _ time.Time) (*domain.Paged[patient.Patient], error) {
	items := make([]*patient.Patient, 0, len(r.items))
	for _, p := range r.items {
		items = append(items, p)
	}
	return domain.NewPaged(items, int64(len(items)), q.PageRequest.Normalized(domain.DefaultPageSize)), nil
}

type memConsultations struct {
	consultation.Repository
	monthCount int64
}

func (r *memConsultations) CountBetween(context.Context, time.Time, time.Time) (int64, error) {
	return r.monthCount, nil
}

type harness struct {
	router      *gin.Engine
	medications *memMedications
	patients    *memPatients
}

func newHarness(t *testing.T, guards Guards) *harness {
	t.Helper()
	h := &harness{
		medications: newMemMedications(),
		patients: &memPatients{
			items: map[uint]*patient.Patient{
				1: {ID: 1, NationalID: "11111111-1", FirstName: "Ana", LastName: "Rojas", BirthDate: time.Date(1994, 3, 1, 0, 0, 0, 0, time.UTC)},
				2: {ID: 2, NationalID: "22222222-2", FirstName: "Luis", LastName: "Soto", BirthDate: time.Date(1980, 5, 2, 0, 0, 0, 0, time.UTC)},
			},
			dependents: map[uint]bool{1: true},
		},
	}

	m := metrics.NewCollector("test")
	audit := service.NewAuditService(nopAudit{}, m, zap.NewNop())
	t.Cleanup(audit.Shutdown)

	clock := func() time.Time { return testNow }
	svcs := service.New(service.Repositories{
		Medications:   h.medications,
		Patients:      h.patients,
		Consultations: &memConsultations{monthCount: 4},
	}, audit, m, clock, zap.NewNop())

	r := gin.New()
	NewHandler(svcs, nil, clock, zap.NewNop()).RegisterRoutes(r.Group("/api"), guards)
	h.router = r
	return h
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCreateMedication(t *testing.T) {
	h := newHarness(t, Guards{})

	w := h.do(http.MethodPost, "/api/medicamentos",
		`{"name":"Paracetamol","stock":5,"unit_price":100,"expiration_date":"2024-03-20"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "Paracetamol", data["name"])
	assert.Equal(t, "100.00", data["unit_price"])
	assert.Equal(t, true, data["is_low_stock"])
	assert.Equal(t, true, data["is_expiring_soon"])
}

func TestCreateMedicationValidation(t *testing.T) {
	h := newHarness(t, Guards{})

	w := h.do(http.MethodPost, "/api/medicamentos", `{"stock":-1,"unit_price":"0"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, "validation failed", body["error"])
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "stock")
	assert.Contains(t, fields, "unit_price")
	assert.Contains(t, fields, "expiration_date")
	assert.Empty(t, h.medications.items)
}

func TestCreateMedicationMalformedValue(t *testing.T) {
	h := newHarness(t, Guards{})

	w := h.do(http.MethodPost, "/api/medicamentos", `{"name":"X","stock":"muchos","unit_price":"1","expiration_date":"2025-01-01"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"stock": "must be a whole number"}, fields)

	w = h.do(http.MethodPost, "/api/medicamentos", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchMedicationOnlyTouchesSentFields(t *testing.T) {
	h := newHarness(t, Guards{})
	w := h.do(http.MethodPost, "/api/medicamentos",
		`{"name":"Ibuprofeno","description":"400mg","stock":50,"unit_price":"12.50","expiration_date":"2026-01-01"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodPatch, "/api/medicamentos/1", `{"stock":8}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(8), data["stock"])
	assert.Equal(t, "400mg", data["description"])
	assert.Equal(t, "12.50", data["unit_price"])
	assert.Equal(t, true, data["is_low_stock"])

	w = h.do(http.MethodPut, "/api/medicamentos/1", `{"stock":8}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "unit_price")
}

func TestMedicationSpecialLists(t *testing.T) {
	h := newHarness(t, Guards{})

	w := h.do(http.MethodGet, "/api/medicamentos/stock_bajo?page_size=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, h.medications.lastQuery.LowStock)
	assert.True(t, *h.medications.lastQuery.LowStock)
	assert.Equal(t, 5, h.medications.lastQuery.PageSize)

	w = h.do(http.MethodGet, "/api/medicamentos/proximos_vencimiento", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, h.medications.lastQuery.ExpiringSoon)
	assert.Nil(t, h.medications.lastQuery.LowStock)

	w = h.do(http.MethodGet, "/api/medicamentos?low_stock=quizas", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMedication(t *testing.T) {
	h := newHarness(t, Guards{})
	h.do(http.MethodPost, "/api/medicamentos", `{"name":"A","stock":1,"unit_price":"1","expiration_date":"2030-01-01"}`)
	h.do(http.MethodPost, "/api/medicamentos", `{"name":"B","stock":1,"unit_price":"1","expiration_date":"2030-01-01"}`)
	h.medications.inUse[1] = true

	w := h.do(http.MethodDelete, "/api/medicamentos/1", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "IN_USE", decode(t, w)["code"])

	w = h.do(http.MethodDelete, "/api/medicamentos/2", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/medicamentos/2", "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/medicamentos/abc", "").Code)
}

func TestDeletePatient(t *testing.T) {
	h := newHarness(t, Guards{})

	w := h.do(http.MethodDelete, "/api/pacientes/1", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, h.patients.items, uint(1))

	w = h.do(http.MethodDelete, "/api/pacientes/1?cascade=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodDelete, "/api/pacientes/1?cascade=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["consultations"])
	assert.Equal(t, float64(3), data["prescriptions"])
	assert.NotContains(t, h.patients.items, uint(1))

	w = h.do(http.MethodDelete, "/api/pacientes/2", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListPatientsIncludesAgeAndStats(t *testing.T) {
	h := newHarness(t, Guards{})

	w := h.do(http.MethodGet, "/api/pacientes", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)

	assert.Equal(t, float64(2), data["count"])
	assert.Equal(t, float64(domain.DefaultPageSize), data["page_size"])
	stats := data["stats"].(map[string]any)
	assert.Equal(t, float64(4), stats["consultations_this_month"])

	ages := map[string]float64{}
	for _, r := range data["results"].([]any) {
		p := r.(map[string]any)
		ages[p["full_name"].(string)] = p["age"].(float64)
	}
	assert.Equal(t, map[string]float64{"Ana Rojas": 30, "Luis Soto": 43}, ages)

	w = h.do(http.MethodGet, "/api/pacientes?min_age=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWriteRoutesRequireRole(t *testing.T) {
	asRole := func(role domain.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(middleware.ClaimsKey, &domain.Claims{UserID: uuid.New(), Role: role})
			c.Next()
		}
	}

	h := newHarness(t, Guards{Authenticate: asRole(domain.RoleReceptionist)})
	body := `{"name":"A","stock":1,"unit_price":"1","expiration_date":"2030-01-01"}`
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/medicamentos", body).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/medicamentos", "").Code)

	h = newHarness(t, Guards{Authenticate: asRole(domain.RolePharmacist)})
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/medicamentos", body).Code)
}
