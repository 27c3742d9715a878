package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/service"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/logger"
)

const flashCookie = "saludvital_flash"

type flash struct {
	Kind    string // success or error
	Message string
}

type navItem struct {
	Label  string
	URL    string
	Active bool
}

// page is what the layout reads on every screen.
type page struct {
	Title string
	Nav   []navItem
	User  *domain.Claims
	Flash *flash
}

type row struct {
	ID    uint
	Cells []string
}

type stat struct {
	Label string
	Value int64
}

type option struct {
	Value string
	Label string
}

// field is one form or filter input.
type field struct {
	Name     string
	Label    string
	Kind     string // text, number, date, datetime-local, email, textarea, select, checkbox
	Required bool
	Step     string
	Options  []option

	Value string
	Error string
}

type pager struct {
	Count      int64
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
}

func (p pager) HasPrev() bool { return p.Page > 1 }
func (p pager) HasNext() bool { return p.Page < p.TotalPages }

type listView struct {
	page
	Base      string
	Columns   []string
	Rows      []row
	Filters   []field
	Stats     []stat
	Pager     pager
	CanCreate bool
}

type item struct {
	Label string
	Value string
	Link  string
}

type section struct {
	Title   string
	Base    string
	Columns []string
	Rows    []row
	AddLink string
}

type detailView struct {
	page
	Heading       string
	Base          string
	ID            uint
	Items         []item
	Sections      []section
	CanEdit       bool
	CascadeDelete bool
}

type formView struct {
	page
	Heading string
	Action  string
	Cancel  string
	Fields  []field
}

type errorView struct {
	page
	Message string
}

func (h *Handler) page(c *gin.Context, title, active string) page {
	p := page{Title: title, Flash: takeFlash(c)}
	if claims, ok := middleware.GetClaims(c); ok {
		p.User = claims
	}
	p.Nav = make([]navItem, 0, len(h.resources))
	for _, res := range h.resources {
		p.Nav = append(p.Nav, navItem{Label: res.title, URL: res.base(), Active: res.path == active})
	}
	return p
}

func setFlash(c *gin.Context, kind, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, kind+"|"+message, 60, "/", "", false, true)
}

// takeFlash reads the pending message and clears it.
func takeFlash(c *gin.Context) *flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	kind, message, ok := strings.Cut(raw, "|")
	if !ok {
		return nil
	}
	return &flash{Kind: kind, Message: message}
}

// formValues flattens the posted form, keeping the last value per key so a
// checked checkbox wins over its hidden "false" twin.
func formValues(c *gin.Context) (map[string]string, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			out[key] = values[len(values)-1]
		}
	}
	return out, nil
}

func queryValues(c *gin.Context) map[string]string {
	out := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}

// decodeForm feeds form input through the same request types the API binds,
// so both surfaces parse and validate identically.
func decodeForm(in map[string]string, req any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return binding.JSON.BindBody(body, req)
}

func fill(specs []field, values, errs map[string]string, options map[string][]option) []field {
	out := make([]field, len(specs))
	for i, f := range specs {
		f.Value = values[f.Name]
		f.Error = errs[f.Name]
		if opts, ok := options[f.Name]; ok {
			f.Options = opts
		}
		out[i] = f
	}
	return out
}

func actorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{
		IPAddress: c.ClientIP(),
		RequestID: middleware.GetRequestID(c),
	}
	if claims, ok := middleware.GetClaims(c); ok {
		id := claims.UserID
		actor.UserID = &id
		actor.Role = claims.Role
	}
	return actor
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) renderError(c *gin.Context, status int, title, message string) {
	c.HTML(status, "error.html", errorView{page: h.page(c, title, ""), Message: message})
}

func (h *Handler) notFound(c *gin.Context) {
	h.renderError(c, http.StatusNotFound, "No encontrado", "El registro solicitado no existe.")
}

// fail renders errors that have no form to go back to.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.notFound(c)
	case errors.As(err, &verr):
		h.renderError(c, http.StatusBadRequest, "Solicitud inválida", verr.Error())
	case errors.Is(err, service.ErrForbidden):
		h.renderError(c, http.StatusForbidden, "Acceso denegado", "No tiene permisos para esta acción.")
	default:
		logger.FromContext(c.Request.Context(), h.log).Error("page failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		h.renderError(c, http.StatusInternalServerError, "Error", "Ocurrió un error inesperado.")
	}
}

func isConstraint(err error) bool {
	return errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInUse)
}

func plain(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func count(n int64) string {
	return strconv.FormatInt(n, 10)
}

func idText(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

func optIDText(id *uint) string {
	if id == nil {
		return ""
	}
	return idText(*id)
}

func dateText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func optDateText(t *time.Time) string {
	if t == nil {
		return ""
	}
	return dateText(*t)
}

// inputDateTime matches <input type="datetime-local"> in the clinic's zone.
func inputDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006-01-02T15:04")
}

func showDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006 15:04")
}
