// Package web serves the server-rendered pages. It shares the services and
// the dto conversions with the JSON API, so both surfaces validate, filter
// and derive fields identically.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/service"
)

// pageSize is the default list page size for pages; the API uses its own.
const pageSize = 15

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type Options struct {
	AuthEnabled  bool
	CookieName   string
	CookieSecure bool
	// SessionTTL bounds the session cookie; it matches the access token lifetime.
	SessionTTL time.Duration
}

type Handler struct {
	svc       *service.Services
	auth      *service.AuthService
	now       service.Clock
	opts      Options
	log       *zap.Logger
	resources []*resource
}

func NewHandler(svc *service.Services, authSvc *service.AuthService, now service.Clock, opts Options, log *zap.Logger) *Handler {
	h := &Handler{svc: svc, auth: authSvc, now: now, opts: opts, log: log.Named("web")}
	h.resources = []*resource{
		h.specialtyPages(),
		h.doctorPages(),
		h.patientPages(),
		h.recordPages(),
		h.appointmentPages(),
		h.consultationPages(),
		h.treatmentPages(),
		h.medicationPages(),
		h.prescriptionPages(),
	}
	return h
}

// Guards mirror the API's: nil Authenticate leaves every page open.
type Guards struct {
	Authenticate gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
}

var (
	catalogEditors  = []domain.Role{domain.RoleAdmin}
	frontDesk       = []domain.Role{domain.RoleAdmin, domain.RoleReceptionist, domain.RoleDoctor}
	clinicians      = []domain.Role{domain.RoleAdmin, domain.RoleDoctor}
	pharmacyEditors = []domain.Role{domain.RoleAdmin, domain.RolePharmacist}
	prescribers     = []domain.Role{domain.RoleAdmin, domain.RoleDoctor}
)

func (h *Handler) RegisterRoutes(r gin.IRouter, g Guards) {
	if g.Authenticate != nil {
		r.GET("/login", h.loginForm)
		if g.AuthLimit != nil {
			r.POST("/login", g.AuthLimit, h.login)
		} else {
			r.POST("/login", h.login)
		}
		r.GET("/logout", h.logout)
	}

	protected := r.Group("")
	if g.Authenticate != nil {
		protected.Use(g.Authenticate)
	}
	protected.GET("/", h.dashboard)

	for _, res := range h.resources {
		var guard []gin.HandlerFunc
		if g.Authenticate != nil {
			guard = []gin.HandlerFunc{middleware.RequireRoles(res.writers...)}
		}
		h.mount(protected, res, guard)
	}
}

func (h *Handler) mount(r gin.IRouter, res *resource, guard []gin.HandlerFunc) {
	writes := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), handler)
	}

	grp := r.Group("/" + res.path)
	grp.GET("/", h.list(res))
	grp.GET("/crear", writes(h.newForm(res))...)
	grp.POST("/crear", writes(h.create(res))...)
	grp.GET("/:id", h.show(res))
	grp.GET("/:id/editar", writes(h.editForm(res))...)
	grp.POST("/:id/editar", writes(h.update(res))...)
	grp.POST("/:id/eliminar", writes(h.remove(res))...)
}

// canWrite decides whether create, edit and delete controls are shown.
func (h *Handler) canWrite(c *gin.Context, roles []domain.Role) bool {
	if !h.opts.AuthEnabled {
		return true
	}
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return false
	}
	for _, r := range roles {
		if claims.Role == r {
			return true
		}
	}
	return false
}
