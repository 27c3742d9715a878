package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
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
	items  map[uint]*medication.Medication
	inUse  map[uint]bool
	nextID uint
}

func (r *memMedications) Create(_ context.Context, m *medication.Medication) error {
	r.nextID++
	m.ID = r.nextID
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
	return domain.NewPaged(items, int64(len(items)), q.PageRequest), nil
}

type memConsultations struct {
	consultation.Repository
}

func (memConsultations) CountBetween(context.Context, time.Time, time.Time) (int64, error) {
	return 7, nil
}

type harness struct {
	router      *gin.Engine
	medications *memMedications
	patients    *memPatients
}

func newHarness(t *testing.T, guards Guards) *harness {
	t.Helper()
	h := &harness{
		medications: &memMedications{items: map[uint]*medication.Medication{}, inUse: map[uint]bool{}},
		patients: &memPatients{
			items: map[uint]*patient.Patient{
				1: {ID: 1, NationalID: "11111111-1", FirstName: "Ana", LastName: "Rojas", BirthDate: time.Date(1994, 3, 2, 0, 0, 0, 0, time.UTC)},
			},
			dependents: map[uint]bool{1: true},
		},
	}

	m := metrics.NewCollector("web_test")
	audit := service.NewAuditService(nopAudit{}, m, zap.NewNop())
	t.Cleanup(audit.Shutdown)

	clock := func() time.Time { return testNow }
	svcs := service.New(service.Repositories{
		Medications:   h.medications,
		Patients:      h.patients,
		Consultations: memConsultations{},
	}, audit, m, clock, zap.NewNop())

	r := gin.New()
	r.SetHTMLTemplate(Templates())
	opts := Options{AuthEnabled: guards.Authenticate != nil, CookieName: "session"}
	NewHandler(svcs, nil, clock, opts, zap.NewNop()).RegisterRoutes(r, guards)
	h.router = r
	return h
}

func (h *harness) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func flashFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookie {
			return c
		}
	}
	t.Fatal("no flash cookie set")
	return nil
}

func TestTemplatesParse(t *testing.T) {
	tmpl := Templates()
	for _, name := range []string{"list.html", "detail.html", "form.html", "dashboard.html", "login.html", "error.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestCreateMedicationThroughForm(t *testing.T) {
	h := newHarness(t, Guards{})

	w := h.get("/medicamentos/crear")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="unit_price"`)

	w = h.post("/medicamentos/crear", url.Values{
		"name":            {"Amoxicilina"},
		"stock":           {"5"},
		"unit_price":      {"1500"},
		"expiration_date": {"2024-03-20"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/medicamentos/1", w.Header().Get("Location"))

	w = h.get("/medicamentos/1", flashFrom(t, w))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Registro creado correctamente.")
	assert.Contains(t, body, "Amoxicilina")
	assert.Contains(t, body, "$1500.00")
}

func TestCreateMedicationRerendersErrors(t *testing.T) {
	h := newHarness(t, Guards{})

	w := h.post("/medicamentos/crear", url.Values{
		"name":            {"Amoxicilina"},
		"stock":           {"-3"},
		"unit_price":      {"abc"},
		"expiration_date": {""},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "must be a valid decimal number")
	assert.Contains(t, body, `value="Amoxicilina"`)
	assert.Empty(t, h.medications.items)

	w = h.post("/medicamentos/crear", url.Values{
		"name":            {"Amoxicilina"},
		"stock":           {"-3"},
		"unit_price":      {"10"},
		"expiration_date": {"2025-01-01"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Corrija los errores del formulario.")
}

func TestMedicationListShowsDerivedFlags(t *testing.T) {
	h := newHarness(t, Guards{})
	h.medications.items[1] = &medication.Medication{ID: 1, Name: "Ibuprofeno", Stock: 50, ExpirationDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	w := h.get("/medicamentos/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Ibuprofeno")
	assert.Contains(t, body, "Nuevo registro")
	assert.Contains(t, body, "1 registros")

	w = h.get("/medicamentos/?low_stock=tal_vez")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be true or false")
}

func TestDeleteMedicationInUseFlashesError(t *testing.T) {
	h := newHarness(t, Guards{})
	h.medications.items[1] = &medication.Medication{ID: 1, Name: "Ibuprofeno"}
	h.medications.inUse[1] = true

	w := h.post("/medicamentos/1/eliminar", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/medicamentos/1", w.Header().Get("Location"))
	assert.Contains(t, h.medications.items, uint(1))

	w = h.get("/medicamentos/1", flashFrom(t, w))
	assert.Contains(t, w.Body.String(), "referenced by prescriptions")
}

func TestDeletePatientCascade(t *testing.T) {
	h := newHarness(t, Guards{})

	w := h.post("/pacientes/1/eliminar", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/pacientes/1", w.Header().Get("Location"))

	w = h.post("/pacientes/1/eliminar", url.Values{"cascade": {"true"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/pacientes/", w.Header().Get("Location"))
	assert.Empty(t, h.patients.items)

	w = h.get("/pacientes/", flashFrom(t, w))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "2 consultas, 1 tratamientos, 3 recetas")
	assert.Contains(t, body, "consultas este mes")
}

func TestUnknownRecordIsNotFound(t *testing.T) {
	h := newHarness(t, Guards{})
	assert.Equal(t, http.StatusNotFound, h.get("/medicamentos/42").Code)
	assert.Equal(t, http.StatusNotFound, h.get("/medicamentos/abc").Code)
	assert.Equal(t, http.StatusNotFound, h.get("/medicamentos/42/editar").Code)
}

func TestWritesRequireRole(t *testing.T) {
	asReceptionist := func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &domain.Claims{UserID: uuid.New(), Email: "r@clinic.test", Role: domain.RoleReceptionist})
		c.Next()
	}
	h := newHarness(t, Guards{Authenticate: asReceptionist})

	w := h.get("/medicamentos/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Nuevo registro")
	assert.Contains(t, w.Body.String(), "r@clinic.test")

	assert.Equal(t, http.StatusForbidden, h.get("/medicamentos/crear").Code)
	assert.Equal(t, http.StatusForbidden, h.post("/medicamentos/crear", url.Values{"name": {"X"}}).Code)
	assert.Empty(t, h.medications.items)
}

func TestFormValuesLastValueWins(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("active=false&active=true&name=X"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	values, err := formValues(c)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"active": "true", "name": "X"}, values)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/pacientes/?page=2", safeNext("/pacientes/?page=2"))
	assert.Equal(t, "/", safeNext("https://evil.test/"))
	assert.Equal(t, "/", safeNext("//evil.test"))
	assert.Equal(t, "/", safeNext(""))
}
