package web

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/appointment"
	cr "github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/clinical_record"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/dto"
)

func (h *Handler) patientOptions(ctx context.Context) ([]option, error) {
	patients, err := h.svc.Patients.All(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]option, 0, len(patients))
	for _, p := range patients {
		opts = append(opts, option{Value: idText(p.ID), Label: p.LastName + ", " + p.FirstName + " (" + p.NationalID + ")"})
	}
	return opts, nil
}

func (h *Handler) doctorOptions(ctx context.Context) ([]option, error) {
	doctors, err := h.svc.Doctors.All(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]option, 0, len(doctors))
	for _, d := range doctors {
		label := d.FullName()
		if name := d.SpecialtyName(); name != "" {
			label += " · " + name
		}
		opts = append(opts, option{Value: idText(d.ID), Label: label})
	}
	return opts, nil
}

func (h *Handler) patientPages() *resource {
	return &resource{
		path:     "pacientes",
		title:    "Pacientes",
		singular: "paciente",
		columns:  []string{"Nombre", "Documento", "Edad", "Teléfono", "Correo"},
		filters: []field{
			{Name: "search", Label: "Buscar", Kind: "text"},
			{Name: "min_age", Label: "Edad mínima", Kind: "number"},
			{Name: "max_age", Label: "Edad máxima", Kind: "number"},
		},
		fields: []field{
			{Name: "national_id", Label: "Documento", Kind: "text", Required: true},
			{Name: "first_name", Label: "Nombres", Kind: "text", Required: true},
			{Name: "last_name", Label: "Apellidos", Kind: "text", Required: true},
			{Name: "birth_date", Label: "Fecha de nacimiento", Kind: "date", Required: true},
			{Name: "phone", Label: "Teléfono", Kind: "text"},
			{Name: "email", Label: "Correo", Kind: "email"},
			{Name: "address", Label: "Dirección", Kind: "textarea"},
		},
		writers: frontDesk,
		cascade: true,

		list: func(c *gin.Context) (*listing, error) {
			var q dto.PatientQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				return nil, err
			}
			query, err := q.ToQuery(pageSize)
			if err != nil {
				return nil, err
			}
			ctx := c.Request.Context()
			paged, err := h.svc.Patients.List(ctx, query)
			if err != nil {
				return nil, err
			}
			month, err := h.svc.Patients.ConsultationsThisMonth(ctx)
			if err != nil {
				return nil, err
			}
			now := h.now()
			out := newListing(c, paged, func(p *patient.Patient) row {
				return row{ID: p.ID, Cells: []string{
					p.FullName(), p.NationalID, strconv.Itoa(p.AgeAt(now)), plain(p.Phone), plain(p.Email),
				}}
			})
			out.stats = []stat{{Label: "consultas este mes", Value: month}}
			return out, nil
		},

		show: func(c *gin.Context, id uint) (*detailView, error) {
			ctx := c.Request.Context()
			detail, err := h.svc.Patients.Detail(ctx, id)
			if err != nil {
				return nil, err
			}
			appointments, err := h.svc.Appointments.ForPatient(ctx, id)
			if err != nil {
				return nil, err
			}

			p := detail.Patient
			record := item{Label: "Historial clínico", Value: "Crear historial", Link: "/historiales/crear?patient_id=" + idText(id)}
			if detail.Record != nil {
				record.Value = "Ver historial"
				record.Link = "/historiales/" + idText(detail.Record.ID)
			}
			return &detailView{
				Heading: p.FullName(),
				Items: []item{
					{Label: "Documento", Value: p.NationalID},
					{Label: "Fecha de nacimiento", Value: dateText(p.BirthDate)},
					{Label: "Edad", Value: strconv.Itoa(p.AgeAt(h.now()))},
					{Label: "Teléfono", Value: plain(p.Phone)},
					{Label: "Correo", Value: plain(p.Email)},
					{Label: "Dirección", Value: plain(p.Address)},
					record,
				},
				Sections: []section{
					{
						Title:   "Consultas recientes",
						Base:    "/consultas/",
						Columns: []string{"Fecha", "Médico", "Motivo"},
						Rows:    h.consultationRows(detail.RecentConsultations, true),
						AddLink: "/consultas/crear?patient_id=" + idText(id),
					},
					{
						Title:   "Citas",
						Base:    "/citas/",
						Columns: []string{"Fecha", "Médico", "Estado"},
						Rows:    h.appointmentRows(appointments),
						AddLink: "/citas/crear?patient_id=" + idText(id),
					},
				},
			}, nil
		},

		load: func(c *gin.Context, id uint) (map[string]string, error) {
			p, err := h.svc.Patients.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"national_id": p.NationalID,
				"first_name":  p.FirstName,
				"last_name":   p.LastName,
				"birth_date":  dateText(p.BirthDate),
				"phone":       p.Phone,
				"email":       p.Email,
				"address":     p.Address,
			}, nil
		},

		create: func(c *gin.Context, in map[string]string) (uint, error) {
			var req dto.PatientRequest
			if err := decodeForm(in, &req); err != nil {
				return 0, err
			}
			cmd, err := req.CreateCommand()
			if err != nil {
				return 0, err
			}
			p, err := h.svc.Patients.Create(c.Request.Context(), cmd, actorFrom(c))
			if err != nil {
				return 0, err
			}
			return p.ID, nil
		},

		update: func(c *gin.Context, id uint, in map[string]string) error {
			var req dto.PatientRequest
			if err := decodeForm(in, &req); err != nil {
				return err
			}
			cmd, err := req.UpdateCommand(true)
			if err != nil {
				return err
			}
			_, err = h.svc.Patients.Update(c.Request.Context(), id, cmd, actorFrom(c))
			return err
		},

		remove: func(c *gin.Context, id uint) (string, error) {
			cascade := false
			if raw := c.PostForm("cascade"); raw != "" {
				v, err := strconv.ParseBool(raw)
				if err != nil {
					return "", domain.NewFieldError("cascade", "must be true or false")
				}
				cascade = v
			}
			removed, err := h.svc.Patients.Delete(c.Request.Context(), id, cascade, actorFrom(c))
			if err != nil {
				return "", err
			}
			if removed == nil {
				return "Paciente eliminado.", nil
			}
			return fmt.Sprintf("Paciente eliminado junto con %d consultas, %d tratamientos, %d recetas, %d citas y %d historiales.",
				removed.Consultations, removed.Treatments, removed.Prescriptions, removed.Appointments, removed.ClinicalRecords), nil
		},
	}
}

var bloodTypeOptions = func() []option {
	opts := make([]option, 0, len(cr.BloodTypes))
	for _, b := range cr.BloodTypes {
		opts = append(opts, option{Value: string(b), Label: string(b)})
	}
	return opts
}()

func (h *Handler) recordPages() *resource {
	return &resource{
		path:     "historiales",
		title:    "Historiales",
		singular: "historial clínico",
		columns:  []string{"Paciente", "Tipo de sangre", "Alergias", "Condiciones crónicas"},
		filters: []field{
			{Name: "search", Label: "Buscar", Kind: "text"},
			{Name: "blood_type", Label: "Tipo de sangre", Kind: "select", Options: bloodTypeOptions},
		},
		fields: []field{
			{Name: "patient_id", Label: "Paciente", Kind: "select", Required: true},
			{Name: "blood_type", Label: "Tipo de sangre", Kind: "select", Options: bloodTypeOptions},
			{Name: "known_allergies", Label: "Alergias conocidas", Kind: "textarea"},
			{Name: "chronic_conditions", Label: "Condiciones crónicas", Kind: "textarea"},
		},
		writers: clinicians,

		list: func(c *gin.Context) (*listing, error) {
			var q dto.ClinicalRecordQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				return nil, err
			}
			query, err := q.ToQuery(pageSize)
			if err != nil {
				return nil, err
			}
			paged, err := h.svc.ClinicalRecords.List(c.Request.Context(), query)
			if err != nil {
				return nil, err
			}
			return newListing(c, paged, func(r *cr.ClinicalRecord) row {
				return row{ID: r.ID, Cells: []string{
					r.PatientName(), plain(string(r.BloodType)), plain(r.KnownAllergies), plain(r.ChronicConditions),
				}}
			}), nil
		},

		show: func(c *gin.Context, id uint) (*detailView, error) {
			r, err := h.svc.ClinicalRecords.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return &detailView{
				Heading: "Historial de " + r.PatientName(),
				Items: []item{
					{Label: "Paciente", Value: r.PatientName(), Link: "/pacientes/" + idText(r.PatientID)},
					{Label: "Tipo de sangre", Value: plain(string(r.BloodType))},
					{Label: "Alergias conocidas", Value: plain(r.KnownAllergies)},
					{Label: "Condiciones crónicas", Value: plain(r.ChronicConditions)},
				},
			}, nil
		},

		load: func(c *gin.Context, id uint) (map[string]string, error) {
			r, err := h.svc.ClinicalRecords.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"patient_id":         idText(r.PatientID),
				"blood_type":         string(r.BloodType),
				"known_allergies":    r.KnownAllergies,
				"chronic_conditions": r.ChronicConditions,
			}, nil
		},

		options: func(c *gin.Context, _ map[string]string) (map[string][]option, error) {
			patients, err := h.patientOptions(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return map[string][]option{"patient_id": patients}, nil
		},

		create: func(c *gin.Context, in map[string]string) (uint, error) {
			var req dto.ClinicalRecordRequest
			if err := decodeForm(in, &req); err != nil {
				return 0, err
			}
			cmd, err := req.CreateCommand()
			if err != nil {
				return 0, err
			}
			r, err := h.svc.ClinicalRecords.Create(c.Request.Context(), cmd, actorFrom(c))
			if err != nil {
				return 0, err
			}
			return r.ID, nil
		},

		update: func(c *gin.Context, id uint, in map[string]string) error {
			var req dto.ClinicalRecordRequest
			if err := decodeForm(in, &req); err != nil {
				return err
			}
			cmd, err := req.UpdateCommand(true)
			if err != nil {
				return err
			}
			_, err = h.svc.ClinicalRecords.Update(c.Request.Context(), id, cmd, actorFrom(c))
			return err
		},

		remove: func(c *gin.Context, id uint) (string, error) {
			return "Historial eliminado.", h.svc.ClinicalRecords.Delete(c.Request.Context(), id, actorFrom(c))
		},
	}
}

var statusOptions = func() []option {
	opts := make([]option, 0, len(appointment.Statuses))
	for _, s := range appointment.Statuses {
		opts = append(opts, option{Value: string(s), Label: string(s)})
	}
	return opts
}()

func (h *Handler) appointmentRows(appointments []*appointment.Appointment) []row {
	loc := h.now().Location()
	rows := make([]row, 0, len(appointments))
	for _, a := range appointments {
		rows = append(rows, row{ID: a.ID, Cells: []string{
			showDateTime(a.ScheduledAt, loc), plain(a.DoctorName()), string(a.Status),
		}})
	}
	return rows
}

func (h *Handler) appointmentPages() *resource {
	return &resource{
		path:     "citas",
		title:    "Citas",
		singular: "cita",
		columns:  []string{"Fecha", "Paciente", "Médico", "Estado", "Motivo"},
		filters: []field{
			{Name: "search", Label: "Buscar", Kind: "text"},
			{Name: "status", Label: "Estado", Kind: "select", Options: statusOptions},
			{Name: "date_from", Label: "Desde", Kind: "date"},
			{Name: "date_to", Label: "Hasta", Kind: "date"},
		},
		fields: []field{
			{Name: "patient_id", Label: "Paciente", Kind: "select", Required: true},
			{Name: "doctor_id", Label: "Médico", Kind: "select", Required: true},
			{Name: "scheduled_at", Label: "Fecha y hora", Kind: "datetime-local", Required: true},
			{Name: "status", Label: "Estado", Kind: "select", Options: statusOptions, Required: true},
			{Name: "reason", Label: "Motivo", Kind: "textarea"},
			{Name: "notes", Label: "Notas", Kind: "textarea"},
		},
		defaults: map[string]string{"status": string(appointment.StatusScheduled)},
		writers:  frontDesk,

		list: func(c *gin.Context) (*listing, error) {
			var q dto.AppointmentQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				return nil, err
			}
			query, err := q.ToQuery(pageSize)
			if err != nil {
				return nil, err
			}
			ctx := c.Request.Context()
			paged, err := h.svc.Appointments.List(ctx, query)
			if err != nil {
				return nil, err
			}
			stats, err := h.svc.Appointments.Stats(ctx)
			if err != nil {
				return nil, err
			}
			loc := h.now().Location()
			out := newListing(c, paged, func(a *appointment.Appointment) row {
				return row{ID: a.ID, Cells: []string{
					showDateTime(a.ScheduledAt, loc), plain(a.PatientName()), plain(a.DoctorName()),
					string(a.Status), plain(a.Reason),
				}}
			})
			out.stats = []stat{{Label: "citas", Value: stats.Total}, {Label: "citas hoy", Value: stats.Today}}
			return out, nil
		},

		show: func(c *gin.Context, id uint) (*detailView, error) {
			a, err := h.svc.Appointments.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return &detailView{
				Heading: "Cita del " + showDateTime(a.ScheduledAt, h.now().Location()),
				Items: []item{
					{Label: "Paciente", Value: plain(a.PatientName()), Link: "/pacientes/" + idText(a.PatientID)},
					{Label: "Médico", Value: plain(a.DoctorName()), Link: "/medicos/" + idText(a.DoctorID)},
					{Label: "Estado", Value: string(a.Status)},
					{Label: "Motivo", Value: plain(a.Reason)},
					{Label: "Notas", Value: plain(a.Notes)},
					{Label: "Registrar consulta", Value: "Nueva consulta",
						Link: "/consultas/crear?patient_id=" + idText(a.PatientID) + "&doctor_id=" + idText(a.DoctorID) + "&appointment_id=" + idText(a.ID)},
				},
			}, nil
		},

		load: func(c *gin.Context, id uint) (map[string]string, error) {
			a, err := h.svc.Appointments.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"patient_id":   idText(a.PatientID),
				"doctor_id":    idText(a.DoctorID),
				"scheduled_at": inputDateTime(a.ScheduledAt, h.now().Location()),
				"status":       string(a.Status),
				"reason":       a.Reason,
				"notes":        a.Notes,
			}, nil
		},

		options: func(c *gin.Context, _ map[string]string) (map[string][]option, error) {
			ctx := c.Request.Context()
			patients, err := h.patientOptions(ctx)
			if err != nil {
				return nil, err
			}
			doctors, err := h.doctorOptions(ctx)
			if err != nil {
				return nil, err
			}
			return map[string][]option{"patient_id": patients, "doctor_id": doctors}, nil
		},

		create: func(c *gin.Context, in map[string]string) (uint, error) {
			var req dto.AppointmentRequest
			if err := decodeForm(in, &req); err != nil {
				return 0, err
			}
			cmd, err := req.CreateCommand(h.now().Location())
			if err != nil {
				return 0, err
			}
			a, err := h.svc.Appointments.Create(c.Request.Context(), cmd, actorFrom(c))
			if err != nil {
				return 0, err
			}
			return a.ID, nil
		},

		update: func(c *gin.Context, id uint, in map[string]string) error {
			var req dto.AppointmentRequest
			if err := decodeForm(in, &req); err != nil {
				return err
			}
			cmd, err := req.UpdateCommand(h.now().Location(), true)
			if err != nil {
				return err
			}
			_, err = h.svc.Appointments.Update(c.Request.Context(), id, cmd, actorFrom(c))
			return err
		},

		remove: func(c *gin.Context, id uint) (string, error) {
			return "Cita eliminada.", h.svc.Appointments.Delete(c.Request.Context(), id, actorFrom(c))
		},
	}
}
