// Package v1 serves the JSON API under /api.
package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/service"
)

type Handler struct {
	svc  *service.Services
	auth *service.AuthService
	now  service.Clock
	log  *zap.Logger
}

func NewHandler(svc *service.Services, authSvc *service.AuthService, now service.Clock, log *zap.Logger) *Handler {
	return &Handler{svc: svc, auth: authSvc, now: now, log: log.Named("api")}
}

// Guards are applied to route groups. With sign-in disabled both are nil and
// every route is open.
type Guards struct {
	Authenticate gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
}

func (g Guards) enabled() bool {
	return g.Authenticate != nil
}

// writers restricts a write route to the given roles when sign-in is on.
func (g Guards) writers(roles ...domain.Role) []gin.HandlerFunc {
	if !g.enabled() {
		return nil
	}
	return []gin.HandlerFunc{middleware.RequireRoles(roles...)}
}

var (
	catalogEditors  = []domain.Role{domain.RoleAdmin}
	frontDesk       = []domain.Role{domain.RoleAdmin, domain.RoleReceptionist, domain.RoleDoctor}
	clinicians      = []domain.Role{domain.RoleAdmin, domain.RoleDoctor}
	pharmacyEditors = []domain.Role{domain.RoleAdmin, domain.RolePharmacist}
	prescribers     = []domain.Role{domain.RoleAdmin, domain.RoleDoctor}
)

// RegisterRoutes mounts the API on api, which is expected to be /api.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	protected := api.Group("")
	if g.enabled() {
		authGroup := api.Group("/auth")
		if g.AuthLimit != nil {
			authGroup.Use(g.AuthLimit)
		}
		authGroup.POST("/login", h.login)
		authGroup.POST("/refresh", h.refresh)

		protected.Use(g.Authenticate)
		protected.POST("/auth/password", h.changePassword)
	}

	protected.GET("/dashboard", h.dashboard)

	resource(protected, "/especialidades", g.writers(catalogEditors...), crud{
		list: h.listSpecialties, create: h.createSpecialty, get: h.getSpecialty,
		update: h.updateSpecialty, remove: h.deleteSpecialty,
	})

	medicos := resource(protected, "/medicos", g.writers(catalogEditors...), crud{
		list: h.listDoctors, create: h.createDoctor, get: h.getDoctor,
		update: h.updateDoctor, remove: h.deleteDoctor,
	})
	medicos.GET("/:id/consultas", h.doctorConsultations)

	pacientes := resource(protected, "/pacientes", g.writers(frontDesk...), crud{
		list: h.listPatients, create: h.createPatient, get: h.getPatient,
		update: h.updatePatient, remove: h.deletePatient,
	})
	pacientes.GET("/:id/consultas", h.patientConsultations)

	resource(protected, "/historiales", g.writers(clinicians...), crud{
		list: h.listRecords, create: h.createRecord, get: h.getRecord,
		update: h.updateRecord, remove: h.deleteRecord,
	})

	resource(protected, "/citas", g.writers(frontDesk...), crud{
		list: h.listAppointments, create: h.createAppointment, get: h.getAppointment,
		update: h.updateAppointment, remove: h.deleteAppointment,
	})

	consultas := resource(protected, "/consultas", g.writers(clinicians...), crud{
		list: h.listConsultations, create: h.createConsultation, get: h.getConsultation,
		update: h.updateConsultation, remove: h.deleteConsultation,
	})
	consultas.GET("/hoy", h.todayConsultations)

	tratamientos := resource(protected, "/tratamientos", g.writers(clinicians...), crud{
		list: h.listTreatments, create: h.createTreatment, get: h.getTreatment,
		update: h.updateTreatment, remove: h.deleteTreatment,
	})
	tratamientos.GET("/activos", h.activeTreatments)

	medicamentos := resource(protected, "/medicamentos", g.writers(pharmacyEditors...), crud{
		list: h.medicationList(h.svc.Medications.List), create: h.createMedication, get: h.getMedication,
		update: h.updateMedication, remove: h.deleteMedication,
	})
	medicamentos.GET("/stock_bajo", h.medicationList(h.svc.Medications.LowStock))
	medicamentos.GET("/proximos_vencimiento", h.medicationList(h.svc.Medications.ExpiringSoon))

	resource(protected, "/recetas", g.writers(prescribers...), crud{
		list: h.listPrescriptions, create: h.createPrescription, get: h.getPrescription,
		update: h.updatePrescription, remove: h.deletePrescription,
	})
}

type crud struct {
	list, create, get, update, remove gin.HandlerFunc
}

// resource registers the standard list/create/detail/replace/patch/delete
// routes. Write routes get the guard handlers in front.
func resource(parent *gin.RouterGroup, path string, guard []gin.HandlerFunc, h crud) *gin.RouterGroup {
	rg := parent.Group(path)
	write := func(final gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), final)
	}

	rg.GET("", h.list)
	rg.POST("", write(h.create)...)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", write(h.update)...)
	rg.PATCH("/:id", write(h.update)...)
	rg.DELETE("/:id", write(h.remove)...)
	return rg
}
