package web

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/dto"
)

var yesNoOptions = []option{{Value: "true", Label: "Sí"}, {Value: "false", Label: "No"}}

func (h *Handler) specialtyPages() *resource {
	return &resource{
		path:     "especialidades",
		title:    "Especialidades",
		singular: "especialidad",
		columns:  []string{"Nombre", "Descripción", "Médicos"},
		filters:  []field{{Name: "search", Label: "Buscar", Kind: "text"}},
		fields: []field{
			{Name: "name", Label: "Nombre", Kind: "text", Required: true},
			{Name: "description", Label: "Descripción", Kind: "textarea"},
		},
		writers: catalogEditors,

		list: func(c *gin.Context) (*listing, error) {
			var q dto.SpecialtyQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				return nil, err
			}
			query, err := q.ToQuery(pageSize)
			if err != nil {
				return nil, err
			}
			paged, err := h.svc.Specialties.List(c.Request.Context(), query)
			if err != nil {
				return nil, err
			}
			return newListing(c, paged, func(s *specialty.Specialty) row {
				return row{ID: s.ID, Cells: []string{s.Name, plain(s.Description), count(s.DoctorCount)}}
			}), nil
		},

		show: func(c *gin.Context, id uint) (*detailView, error) {
			ctx := c.Request.Context()
			s, err := h.svc.Specialties.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			doctors, err := h.svc.Doctors.List(ctx, &doctor.ListDoctorsQuery{
				SpecialtyID: &id,
				PageRequest: domain.PageRequest{PageSize: domain.MaxPageSize},
			})
			if err != nil {
				return nil, err
			}
			return &detailView{
				Heading: s.Name,
				Items: []item{
					{Label: "Descripción", Value: plain(s.Description)},
					{Label: "Médicos", Value: count(s.DoctorCount)},
				},
				Sections: []section{{
					Title:   "Médicos",
					Base:    "/medicos/",
					Columns: []string{"Nombre", "Activo"},
					Rows:    doctorRows(doctors.Items),
					AddLink: "/medicos/crear?specialty_id=" + idText(id),
				}},
			}, nil
		},

		load: func(c *gin.Context, id uint) (map[string]string, error) {
			s, err := h.svc.Specialties.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return map[string]string{"name": s.Name, "description": s.Description}, nil
		},

		create: func(c *gin.Context, in map[string]string) (uint, error) {
			var req dto.SpecialtyRequest
			if err := decodeForm(in, &req); err != nil {
				return 0, err
			}
			cmd, err := req.CreateCommand()
			if err != nil {
				return 0, err
			}
			s, err := h.svc.Specialties.Create(c.Request.Context(), cmd, actorFrom(c))
			if err != nil {
				return 0, err
			}
			return s.ID, nil
		},

		update: func(c *gin.Context, id uint, in map[string]string) error {
			var req dto.SpecialtyRequest
			if err := decodeForm(in, &req); err != nil {
				return err
			}
			cmd, err := req.UpdateCommand(true)
			if err != nil {
				return err
			}
			_, err = h.svc.Specialties.Update(c.Request.Context(), id, cmd, actorFrom(c))
			return err
		},

		remove: func(c *gin.Context, id uint) (string, error) {
			return "Especialidad eliminada.", h.svc.Specialties.Delete(c.Request.Context(), id, actorFrom(c))
		},
	}
}

func doctorRows(doctors []*doctor.Doctor) []row {
	rows := make([]row, 0, len(doctors))
	for _, d := range doctors {
		rows = append(rows, row{ID: d.ID, Cells: []string{d.FullName(), yesNo(d.Active)}})
	}
	return rows
}

func (h *Handler) doctorPages() *resource {
	return &resource{
		path:     "medicos",
		title:    "Médicos",
		singular: "médico",
		columns:  []string{"Nombre", "Documento", "Especialidad", "Correo", "Activo"},
		filters: []field{
			{Name: "search", Label: "Buscar", Kind: "text"},
			{Name: "specialty", Label: "Especialidad", Kind: "text"},
			{Name: "active", Label: "Activo", Kind: "select", Options: yesNoOptions},
		},
		fields: []field{
			{Name: "national_id", Label: "Documento", Kind: "text", Required: true},
			{Name: "first_name", Label: "Nombres", Kind: "text", Required: true},
			{Name: "last_name", Label: "Apellidos", Kind: "text", Required: true},
			{Name: "email", Label: "Correo", Kind: "email"},
			{Name: "phone", Label: "Teléfono", Kind: "text"},
			{Name: "specialty_id", Label: "Especialidad", Kind: "select", Required: true},
			{Name: "active", Label: "Activo", Kind: "checkbox"},
		},
		defaults: map[string]string{"active": "true"},
		writers:  catalogEditors,

		list: func(c *gin.Context) (*listing, error) {
			var q dto.DoctorQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				return nil, err
			}
			query, err := q.ToQuery(pageSize)
			if err != nil {
				return nil, err
			}
			paged, err := h.svc.Doctors.List(c.Request.Context(), query)
			if err != nil {
				return nil, err
			}
			return newListing(c, paged, func(d *doctor.Doctor) row {
				return row{ID: d.ID, Cells: []string{
					d.FullName(), d.NationalID, plain(d.SpecialtyName()), plain(d.Email), yesNo(d.Active),
				}}
			}), nil
		},

		show: func(c *gin.Context, id uint) (*detailView, error) {
			detail, err := h.svc.Doctors.Detail(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			d := detail.Doctor
			return &detailView{
				Heading: d.FullName(),
				Items: []item{
					{Label: "Documento", Value: d.NationalID},
					{Label: "Especialidad", Value: plain(d.SpecialtyName()), Link: "/especialidades/" + idText(d.SpecialtyID)},
					{Label: "Correo", Value: plain(d.Email)},
					{Label: "Teléfono", Value: plain(d.Phone)},
					{Label: "Activo", Value: yesNo(d.Active)},
				},
				Sections: []section{{
					Title:   "Consultas recientes",
					Base:    "/consultas/",
					Columns: []string{"Fecha", "Paciente", "Motivo"},
					Rows:    h.consultationRows(detail.RecentConsultations, false),
					AddLink: "/consultas/crear?doctor_id=" + idText(id),
				}},
			}, nil
		},

		load: func(c *gin.Context, id uint) (map[string]string, error) {
			d, err := h.svc.Doctors.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"national_id":  d.NationalID,
				"first_name":   d.FirstName,
				"last_name":    d.LastName,
				"email":        d.Email,
				"phone":        d.Phone,
				"specialty_id": idText(d.SpecialtyID),
				"active":       strconv.FormatBool(d.Active),
			}, nil
		},

		options: func(c *gin.Context, _ map[string]string) (map[string][]option, error) {
			specialties, err := h.svc.Specialties.All(c.Request.Context())
			if err != nil {
				return nil, err
			}
			opts := make([]option, 0, len(specialties))
			for _, s := range specialties {
				opts = append(opts, option{Value: idText(s.ID), Label: s.Name})
			}
			return map[string][]option{"specialty_id": opts}, nil
		},

		create: func(c *gin.Context, in map[string]string) (uint, error) {
			var req dto.DoctorRequest
			if err := decodeForm(in, &req); err != nil {
				return 0, err
			}
			cmd, err := req.CreateCommand()
			if err != nil {
				return 0, err
			}
			d, err := h.svc.Doctors.Create(c.Request.Context(), cmd, actorFrom(c))
			if err != nil {
				return 0, err
			}
			return d.ID, nil
		},

		update: func(c *gin.Context, id uint, in map[string]string) error {
			var req dto.DoctorRequest
			if err := decodeForm(in, &req); err != nil {
				return err
			}
			cmd, err := req.UpdateCommand(true)
			if err != nil {
				return err
			}
			_, err = h.svc.Doctors.Update(c.Request.Context(), id, cmd, actorFrom(c))
			return err
		},

		remove: func(c *gin.Context, id uint) (string, error) {
			return "Médico eliminado.", h.svc.Doctors.Delete(c.Request.Context(), id, actorFrom(c))
		},
	}
}
