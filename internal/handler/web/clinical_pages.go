package web

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/dto"
)

// consultationRows lists consultations from a patient's or a doctor's point
// of view; withDoctor picks which counterpart is shown.
func (h *Handler) consultationRows(consultations []*consultation.Consultation, withDoctor bool) []row {
	loc := h.now().Location()
	rows := make([]row, 0, len(consultations))
	for _, c := range consultations {
		other := c.PatientName()
		if withDoctor {
			other = c.DoctorName()
		}
		rows = append(rows, row{ID: c.ID, Cells: []string{showDateTime(c.ConsultedAt, loc), plain(other), c.Reason}})
	}
	return rows
}

func durationText(days *int) string {
	if days == nil {
		return "En curso"
	}
	return strconv.Itoa(*days) + " días"
}

func (h *Handler) consultationPages() *resource {
	return &resource{
		path:     "consultas",
		title:    "Consultas",
		singular: "consulta",
		columns:  []string{"Fecha", "Paciente", "Médico", "Especialidad", "Motivo"},
		filters: []field{
			{Name: "search", Label: "Buscar", Kind: "text"},
			{Name: "patient", Label: "Paciente", Kind: "text"},
			{Name: "doctor", Label: "Médico", Kind: "text"},
			{Name: "specialty", Label: "Especialidad", Kind: "text"},
			{Name: "date_from", Label: "Desde", Kind: "date"},
			{Name: "date_to", Label: "Hasta", Kind: "date"},
		},
		fields: []field{
			{Name: "patient_id", Label: "Paciente", Kind: "select", Required: true},
			{Name: "doctor_id", Label: "Médico", Kind: "select", Required: true},
			{Name: "appointment_id", Label: "Cita", Kind: "select"},
			{Name: "consulted_at", Label: "Fecha y hora", Kind: "datetime-local", Required: true},
			{Name: "reason", Label: "Motivo", Kind: "textarea", Required: true},
			{Name: "diagnosis", Label: "Diagnóstico", Kind: "textarea"},
		},
		writers: clinicians,

		list: func(c *gin.Context) (*listing, error) {
			query, err := consultationQuery(c)
			if err != nil {
				return nil, err
			}
			paged, err := h.svc.Consultations.List(c.Request.Context(), query)
			if err != nil {
				return nil, err
			}
			loc := h.now().Location()
			return newListing(c, paged, func(cs *consultation.Consultation) row {
				return row{ID: cs.ID, Cells: []string{
					showDateTime(cs.ConsultedAt, loc), plain(cs.PatientName()), plain(cs.DoctorName()),
					plain(cs.SpecialtyName()), cs.Reason,
				}}
			}), nil
		},

		show: func(c *gin.Context, id uint) (*detailView, error) {
			detail, err := h.svc.Consultations.Detail(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			cs := detail.Consultation
			now := h.now()

			items := []item{
				{Label: "Paciente", Value: plain(cs.PatientName()), Link: "/pacientes/" + idText(cs.PatientID)},
				{Label: "Médico", Value: plain(cs.DoctorName()), Link: "/medicos/" + idText(cs.DoctorID)},
				{Label: "Especialidad", Value: plain(cs.SpecialtyName())},
			}
			if cs.AppointmentID != nil {
				items = append(items, item{Label: "Cita", Value: "Ver cita", Link: "/citas/" + optIDText(cs.AppointmentID)})
			}
			items = append(items,
				item{Label: "Motivo", Value: cs.Reason},
				item{Label: "Diagnóstico", Value: plain(cs.Diagnosis)},
			)

			rows := make([]row, 0, len(detail.Treatments))
			for _, t := range detail.Treatments {
				tr := dto.NewTreatmentResponse(t, now)
				rows = append(rows, row{ID: t.ID, Cells: []string{t.Description, dateText(t.StartDate), yesNo(tr.IsActive)}})
			}
			return &detailView{
				Heading: "Consulta del " + showDateTime(cs.ConsultedAt, now.Location()),
				Items:   items,
				Sections: []section{{
					Title:   "Tratamientos",
					Base:    "/tratamientos/",
					Columns: []string{"Descripción", "Inicio", "Activo"},
					Rows:    rows,
					AddLink: "/tratamientos/crear?consultation_id=" + idText(id),
				}},
			}, nil
		},

		load: func(c *gin.Context, id uint) (map[string]string, error) {
			cs, err := h.svc.Consultations.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"patient_id":     idText(cs.PatientID),
				"doctor_id":      idText(cs.DoctorID),
				"appointment_id": optIDText(cs.AppointmentID),
				"consulted_at":   inputDateTime(cs.ConsultedAt, h.now().Location()),
				"reason":         cs.Reason,
				"diagnosis":      cs.Diagnosis,
			}, nil
		},

		// Appointments are offered only once the patient is known.
		options: func(c *gin.Context, values map[string]string) (map[string][]option, error) {
			ctx := c.Request.Context()
			patients, err := h.patientOptions(ctx)
			if err != nil {
				return nil, err
			}
			doctors, err := h.doctorOptions(ctx)
			if err != nil {
				return nil, err
			}
			out := map[string][]option{"patient_id": patients, "doctor_id": doctors, "appointment_id": nil}
			if pid, err := strconv.ParseUint(values["patient_id"], 10, 64); err == nil {
				appointments, err := h.svc.Appointments.ForPatient(ctx, uint(pid))
				if err != nil {
					return nil, err
				}
				loc := h.now().Location()
				for _, a := range appointments {
					out["appointment_id"] = append(out["appointment_id"], option{
						Value: idText(a.ID),
						Label: showDateTime(a.ScheduledAt, loc) + " · " + a.DoctorName() + " · " + string(a.Status),
					})
				}
			}
			return out, nil
		},

		create: func(c *gin.Context, in map[string]string) (uint, error) {
			var req dto.ConsultationRequest
			if err := decodeForm(in, &req); err != nil {
				return 0, err
			}
			cmd, err := req.CreateCommand(h.now().Location())
			if err != nil {
				return 0, err
			}
			cs, err := h.svc.Consultations.Create(c.Request.Context(), cmd, actorFrom(c))
			if err != nil {
				return 0, err
			}
			return cs.ID, nil
		},

		update: func(c *gin.Context, id uint, in map[string]string) error {
			var req dto.ConsultationRequest
			if err := decodeForm(in, &req); err != nil {
				return err
			}
			cmd, err := req.UpdateCommand(h.now().Location(), true)
			if err != nil {
				return err
			}
			_, err = h.svc.Consultations.Update(c.Request.Context(), id, cmd, actorFrom(c))
			return err
		},

		remove: func(c *gin.Context, id uint) (string, error) {
			return "Consulta eliminada.", h.svc.Consultations.Delete(c.Request.Context(), id, actorFrom(c))
		},
	}
}

func consultationQuery(c *gin.Context) (*consultation.ListConsultationsQuery, error) {
	var q dto.ConsultationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return nil, err
	}
	return q.ToQuery(pageSize)
}

func (h *Handler) treatmentPages() *resource {
	return &resource{
		path:     "tratamientos",
		title:    "Tratamientos",
		singular: "tratamiento",
		columns:  []string{"Descripción", "Paciente", "Médico", "Inicio", "Fin", "Activo", "Duración"},
		filters: []field{
			{Name: "search", Label: "Buscar", Kind: "text"},
			{Name: "active", Label: "Activo", Kind: "select", Options: yesNoOptions},
			{Name: "date_from", Label: "Desde", Kind: "date"},
			{Name: "date_to", Label: "Hasta", Kind: "date"},
		},
		fields: []field{
			{Name: "consultation_id", Label: "Consulta", Kind: "select", Required: true},
			{Name: "description", Label: "Descripción", Kind: "textarea", Required: true},
			{Name: "start_date", Label: "Inicio", Kind: "date", Required: true},
			{Name: "end_date", Label: "Fin", Kind: "date"},
		},
		writers: clinicians,

		list: func(c *gin.Context) (*listing, error) {
			var q dto.TreatmentQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				return nil, err
			}
			query, err := q.ToQuery(pageSize)
			if err != nil {
				return nil, err
			}
			paged, err := h.svc.Treatments.List(c.Request.Context(), query)
			if err != nil {
				return nil, err
			}
			now := h.now()
			return newListing(c, paged, func(t *treatment.Treatment) row {
				tr := dto.NewTreatmentResponse(t, now)
				return row{ID: t.ID, Cells: []string{
					t.Description, plain(tr.PatientName), plain(tr.DoctorName), dateText(t.StartDate),
					plain(optDateText(t.EndDate)), yesNo(tr.IsActive), durationText(tr.DurationDays),
				}}
			}), nil
		},

		show: func(c *gin.Context, id uint) (*detailView, error) {
			detail, err := h.svc.Treatments.Detail(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			tr := dto.NewTreatmentDetailResponse(detail, h.now())
			t := detail.Treatment

			rows := make([]row, 0, len(tr.Prescriptions))
			for _, p := range tr.Prescriptions {
				rows = append(rows, row{ID: p.ID, Cells: []string{
					plain(p.MedicationName), strconv.Itoa(p.Quantity), p.FrequencyLabel, p.Duration, "$" + p.TotalCost,
				}})
			}
			return &detailView{
				Heading: t.Description,
				Items: []item{
					{Label: "Consulta", Value: "Ver consulta", Link: "/consultas/" + idText(t.ConsultationID)},
					{Label: "Paciente", Value: plain(tr.PatientName)},
					{Label: "Médico", Value: plain(tr.DoctorName)},
					{Label: "Inicio", Value: dateText(t.StartDate)},
					{Label: "Fin", Value: plain(optDateText(t.EndDate))},
					{Label: "Activo", Value: yesNo(tr.IsActive)},
					{Label: "Duración", Value: durationText(tr.DurationDays)},
				},
				Sections: []section{{
					Title:   "Recetas",
					Base:    "/recetas/",
					Columns: []string{"Medicamento", "Cantidad", "Frecuencia", "Duración", "Costo total"},
					Rows:    rows,
					AddLink: "/recetas/crear?treatment_id=" + idText(id),
				}},
			}, nil
		},

		load: func(c *gin.Context, id uint) (map[string]string, error) {
			t, err := h.svc.Treatments.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"consultation_id": idText(t.ConsultationID),
				"description":     t.Description,
				"start_date":      dateText(t.StartDate),
				"end_date":        optDateText(t.EndDate),
			}, nil
		},

		options: func(c *gin.Context, _ map[string]string) (map[string][]option, error) {
			consultations, err := h.svc.Consultations.All(c.Request.Context())
			if err != nil {
				return nil, err
			}
			loc := h.now().Location()
			opts := make([]option, 0, len(consultations))
			for _, cs := range consultations {
				opts = append(opts, option{
					Value: idText(cs.ID),
					Label: showDateTime(cs.ConsultedAt, loc) + " · " + cs.PatientName() + " · " + cs.DoctorName(),
				})
			}
			return map[string][]option{"consultation_id": opts}, nil
		},

		create: func(c *gin.Context, in map[string]string) (uint, error) {
			var req dto.TreatmentRequest
			if err := decodeForm(in, &req); err != nil {
				return 0, err
			}
			cmd, err := req.CreateCommand()
			if err != nil {
				return 0, err
			}
			t, err := h.svc.Treatments.Create(c.Request.Context(), cmd, actorFrom(c))
			if err != nil {
				return 0, err
			}
			return t.ID, nil
		},

		update: func(c *gin.Context, id uint, in map[string]string) error {
			var req dto.TreatmentRequest
			if err := decodeForm(in, &req); err != nil {
				return err
			}
			cmd, err := req.UpdateCommand(true)
			if err != nil {
				return err
			}
			_, err = h.svc.Treatments.Update(c.Request.Context(), id, cmd, actorFrom(c))
			return err
		},

		remove: func(c *gin.Context, id uint) (string, error) {
			return "Tratamiento y sus recetas eliminados.", h.svc.Treatments.Delete(c.Request.Context(), id, actorFrom(c))
		},
	}
}
