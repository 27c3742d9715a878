package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/service"
)

type recentConsultation struct {
	ID          uint
	When        string
	PatientName string
	DoctorName  string
	Reason      string
}

type dashboardView struct {
	page
	Dashboard *service.Dashboard
	Recent    []recentConsultation
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard.Get(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	loc := h.now().Location()
	recent := make([]recentConsultation, 0, len(d.RecentConsultations))
	for _, cs := range d.RecentConsultations {
		recent = append(recent, recentConsultation{
			ID:          cs.ID,
			When:        showDateTime(cs.ConsultedAt, loc),
			PatientName: cs.PatientName(),
			DoctorName:  cs.DoctorName(),
			Reason:      cs.Reason,
		})
	}
	c.HTML(http.StatusOK, "dashboard.html", dashboardView{
		page:      h.page(c, "Panel", ""),
		Dashboard: d,
		Recent:    recent,
	})
}

type loginView struct {
	page
	Next  string
	Email string
}

func (h *Handler) loginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", loginView{
		page: h.page(c, "Iniciar sesión", ""),
		Next: safeNext(c.Query("next")),
	})
}

// login stores the access token in an HttpOnly cookie that the page
// middleware reads back.
func (h *Handler) login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	next := safeNext(c.PostForm("next"))

	pair, err := h.auth.Login(c.Request.Context(), email, c.PostForm("password"), c.ClientIP())
	if err != nil {
		status, message := http.StatusUnauthorized, "Correo o contraseña incorrectos."
		switch {
		case errors.Is(err, service.ErrAccountLocked):
			status, message = http.StatusTooManyRequests, "Cuenta bloqueada temporalmente por intentos fallidos."
		case errors.Is(err, service.ErrAccountInactive):
			message = "La cuenta está inactiva."
		case !errors.Is(err, service.ErrInvalidCredentials):
			h.fail(c, err)
			return
		}
		view := loginView{page: h.page(c, "Iniciar sesión", ""), Next: next, Email: email}
		view.Flash = &flash{Kind: "error", Message: message}
		c.HTML(status, "login.html", view)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, pair.AccessToken, int(h.opts.SessionTTL.Seconds()), "/", "", h.opts.CookieSecure, true)
	c.Redirect(http.StatusSeeOther, next)
}

func (h *Handler) logout(c *gin.Context) {
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.CookieSecure, true)
	setFlash(c, "success", "Sesión cerrada.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// safeNext only follows local redirects.
func safeNext(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return "/"
	}
	return raw
}
