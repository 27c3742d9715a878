package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

// resource describes one entity's pages; the handlers below are shared.
type resource struct {
	path     string // URL segment
	title    string
	singular string
	columns  []string
	filters  []field
	fields   []field
	writers  []domain.Role
	cascade  bool // detail page offers a delete-with-dependents button
	defaults map[string]string // create form values the query string does not set

	list    func(c *gin.Context) (*listing, error)
	show    func(c *gin.Context, id uint) (*detailView, error)
	load    func(c *gin.Context, id uint) (map[string]string, error)
	options func(c *gin.Context, values map[string]string) (map[string][]option, error)
	create  func(c *gin.Context, in map[string]string) (uint, error)
	update  func(c *gin.Context, id uint, in map[string]string) error
	remove  func(c *gin.Context, id uint) (string, error)
}

func (r *resource) base() string {
	return "/" + r.path + "/"
}

type listing struct {
	rows  []row
	pager pager
	stats []stat
}

func newListing[E any](c *gin.Context, paged *domain.Paged[E], toRow func(*E) row) *listing {
	rows := make([]row, 0, len(paged.Items))
	for _, e := range paged.Items {
		rows = append(rows, toRow(e))
	}
	return &listing{rows: rows, pager: newPager(c, paged)}
}

func newPager[E any](c *gin.Context, paged *domain.Paged[E]) pager {
	p := pager{Count: paged.TotalCount, Page: paged.Page, TotalPages: paged.TotalPages}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	link := func(n int) string {
		q := c.Request.URL.Query()
		q.Set("page", strconv.Itoa(n))
		return "?" + q.Encode()
	}
	if p.HasPrev() {
		p.PrevURL = link(p.Page - 1)
	}
	if p.HasNext() {
		p.NextURL = link(p.Page + 1)
	}
	return p
}

func (h *Handler) list(res *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := listView{
			page:      h.page(c, res.title, res.path),
			Base:      res.base(),
			Columns:   res.columns,
			CanCreate: h.canWrite(c, res.writers),
			Pager:     pager{Page: 1, TotalPages: 1},
		}

		out, err := res.list(c)
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			view.Filters = fill(res.filters, queryValues(c), verr.Map(), nil)
			view.Flash = &flash{Kind: "error", Message: "Revise los filtros marcados."}
			c.HTML(http.StatusBadRequest, "list.html", view)
			return
		case err != nil:
			h.fail(c, err)
			return
		}

		view.Filters = fill(res.filters, queryValues(c), nil, nil)
		view.Rows = out.rows
		view.Pager = out.pager
		view.Stats = out.stats
		c.HTML(http.StatusOK, "list.html", view)
	}
}

func (h *Handler) show(res *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c)
			return
		}
		view, err := res.show(c, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		view.page = h.page(c, view.Heading, res.path)
		view.Base = res.base()
		view.ID = id
		view.CanEdit = h.canWrite(c, res.writers)
		view.CascadeDelete = res.cascade
		c.HTML(http.StatusOK, "detail.html", view)
	}
}

func (h *Handler) newForm(res *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		values := queryValues(c)
		for k, v := range res.defaults {
			if _, ok := values[k]; !ok {
				values[k] = v
			}
		}
		h.renderForm(c, http.StatusOK, res, 0, values, nil, nil)
	}
}

func (h *Handler) editForm(res *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c)
			return
		}
		values, err := res.load(c, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		h.renderForm(c, http.StatusOK, res, id, values, nil, nil)
	}
}

func (h *Handler) create(res *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := formValues(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		id, err := res.create(c, in)
		if err != nil {
			h.formError(c, res, 0, in, err)
			return
		}
		setFlash(c, "success", "Registro creado correctamente.")
		c.Redirect(http.StatusSeeOther, res.base()+idText(id))
	}
}

func (h *Handler) update(res *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c)
			return
		}
		in, err := formValues(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		if err := res.update(c, id, in); err != nil {
			h.formError(c, res, id, in, err)
			return
		}
		setFlash(c, "success", "Registro actualizado correctamente.")
		c.Redirect(http.StatusSeeOther, res.base()+idText(id))
	}
}

// remove reports constraint failures as a flash on the detail page.
func (h *Handler) remove(res *resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			h.notFound(c)
			return
		}
		message, err := res.remove(c, id)
		var verr *domain.ValidationError
		switch {
		case err == nil:
			setFlash(c, "success", message)
			c.Redirect(http.StatusSeeOther, res.base())
		case isConstraint(err):
			setFlash(c, "error", err.Error())
			c.Redirect(http.StatusSeeOther, res.base()+idText(id))
		case errors.As(err, &verr):
			setFlash(c, "error", verr.Error())
			c.Redirect(http.StatusSeeOther, res.base()+idText(id))
		default:
			h.fail(c, err)
		}
	}
}

// formError re-renders the submitted form for failures the user can fix.
func (h *Handler) formError(c *gin.Context, res *resource, id uint, in map[string]string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		h.renderForm(c, http.StatusBadRequest, res, id, in, verr.Map(),
			&flash{Kind: "error", Message: "Corrija los errores del formulario."})
	case isConstraint(err):
		h.renderForm(c, http.StatusConflict, res, id, in, nil,
			&flash{Kind: "error", Message: err.Error()})
	default:
		h.fail(c, err)
	}
}

func (h *Handler) renderForm(c *gin.Context, status int, res *resource, id uint, values, errs map[string]string, notice *flash) {
	var options map[string][]option
	if res.options != nil {
		var err error
		if options, err = res.options(c, values); err != nil {
			h.fail(c, err)
			return
		}
	}

	view := formView{
		Fields: fill(res.fields, values, errs, options),
	}
	if id == 0 {
		view.Heading = "Crear " + res.singular
		view.Action = res.base() + "crear"
		view.Cancel = res.base()
	} else {
		view.Heading = "Editar " + res.singular
		view.Action = res.base() + idText(id) + "/editar"
		view.Cancel = res.base() + idText(id)
	}
	view.page = h.page(c, view.Heading, res.path)
	if notice != nil {
		view.Flash = notice
	}
	c.HTML(status, "form.html", view)
}
