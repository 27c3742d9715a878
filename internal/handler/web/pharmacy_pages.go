package web

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/dto"
)

var frequencyOptions = func() []option {
	opts := make([]option, 0, len(prescription.Frequencies))
	for _, f := range prescription.Frequencies {
		opts = append(opts, option{Value: string(f), Label: f.Label()})
	}
	return opts
}()

func (h *Handler) medicationPages() *resource {
	return &resource{
		path:     "medicamentos",
		title:    "Medicamentos",
		singular: "medicamento",
		columns:  []string{"Nombre", "Stock", "Precio unitario", "Vencimiento", "Stock bajo", "Por vencer"},
		filters: []field{
			{Name: "search", Label: "Buscar", Kind: "text"},
			{Name: "low_stock", Label: "Stock bajo", Kind: "select", Options: yesNoOptions},
			{Name: "expiring_soon", Label: "Por vencer", Kind: "select", Options: yesNoOptions},
		},
		fields: []field{
			{Name: "name", Label: "Nombre", Kind: "text", Required: true},
			{Name: "description", Label: "Descripción", Kind: "textarea"},
			{Name: "stock", Label: "Stock", Kind: "number", Required: true},
			{Name: "unit_price", Label: "Precio unitario", Kind: "number", Step: "0.01", Required: true},
			{Name: "expiration_date", Label: "Vencimiento", Kind: "date", Required: true},
		},
		writers: pharmacyEditors,

		list: func(c *gin.Context) (*listing, error) {
			var q dto.MedicationQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				return nil, err
			}
			query, err := q.ToQuery(pageSize)
			if err != nil {
				return nil, err
			}
			paged, err := h.svc.Medications.List(c.Request.Context(), query)
			if err != nil {
				return nil, err
			}
			now := h.now()
			return newListing(c, paged, func(m *medication.Medication) row {
				mr := dto.NewMedicationResponse(m, now)
				return row{ID: m.ID, Cells: []string{
					m.Name, strconv.Itoa(m.Stock), "$" + mr.UnitPrice, dateText(m.ExpirationDate),
					yesNo(mr.IsLowStock), yesNo(mr.IsExpiringSoon),
				}}
			}), nil
		},

		show: func(c *gin.Context, id uint) (*detailView, error) {
			m, err := h.svc.Medications.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			mr := dto.NewMedicationResponse(m, h.now())
			return &detailView{
				Heading: m.Name,
				Items: []item{
					{Label: "Descripción", Value: plain(m.Description)},
					{Label: "Stock", Value: strconv.Itoa(m.Stock)},
					{Label: "Precio unitario", Value: "$" + mr.UnitPrice},
					{Label: "Vencimiento", Value: dateText(m.ExpirationDate)},
					{Label: "Stock bajo", Value: yesNo(mr.IsLowStock)},
					{Label: "Por vencer", Value: yesNo(mr.IsExpiringSoon)},
				},
			}, nil
		},

		load: func(c *gin.Context, id uint) (map[string]string, error) {
			m, err := h.svc.Medications.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"name":            m.Name,
				"description":     m.Description,
				"stock":           strconv.Itoa(m.Stock),
				"unit_price":      m.UnitPrice.StringFixed(2),
				"expiration_date": dateText(m.ExpirationDate),
			}, nil
		},

		create: func(c *gin.Context, in map[string]string) (uint, error) {
			var req dto.MedicationRequest
			if err := decodeForm(in, &req); err != nil {
				return 0, err
			}
			cmd, err := req.CreateCommand()
			if err != nil {
				return 0, err
			}
			m, err := h.svc.Medications.Create(c.Request.Context(), cmd, actorFrom(c))
			if err != nil {
				return 0, err
			}
			return m.ID, nil
		},

		update: func(c *gin.Context, id uint, in map[string]string) error {
			var req dto.MedicationRequest
			if err := decodeForm(in, &req); err != nil {
				return err
			}
			cmd, err := req.UpdateCommand(true)
			if err != nil {
				return err
			}
			_, err = h.svc.Medications.Update(c.Request.Context(), id, cmd, actorFrom(c))
			return err
		},

		remove: func(c *gin.Context, id uint) (string, error) {
			return "Medicamento eliminado.", h.svc.Medications.Delete(c.Request.Context(), id, actorFrom(c))
		},
	}
}

func (h *Handler) prescriptionPages() *resource {
	return &resource{
		path:     "recetas",
		title:    "Recetas",
		singular: "receta",
		columns:  []string{"Fecha", "Paciente", "Médico", "Medicamento", "Cantidad", "Frecuencia", "Costo total"},
		filters: []field{
			{Name: "search", Label: "Buscar", Kind: "text"},
			{Name: "date_from", Label: "Desde", Kind: "date"},
			{Name: "date_to", Label: "Hasta", Kind: "date"},
		},
		fields: []field{
			{Name: "treatment_id", Label: "Tratamiento", Kind: "select", Required: true},
			{Name: "medication_id", Label: "Medicamento", Kind: "select", Required: true},
			{Name: "quantity", Label: "Cantidad", Kind: "number", Required: true},
			{Name: "frequency", Label: "Frecuencia", Kind: "select", Options: frequencyOptions, Required: true},
			{Name: "duration", Label: "Duración", Kind: "text", Required: true},
		},
		writers: prescribers,

		list: func(c *gin.Context) (*listing, error) {
			var q dto.PrescriptionQuery
			if err := c.ShouldBindQuery(&q); err != nil {
				return nil, err
			}
			query, err := q.ToQuery(pageSize)
			if err != nil {
				return nil, err
			}
			ctx := c.Request.Context()
			paged, err := h.svc.Prescriptions.List(ctx, query)
			if err != nil {
				return nil, err
			}
			stats, err := h.svc.Prescriptions.Stats(ctx)
			if err != nil {
				return nil, err
			}
			loc := h.now().Location()
			out := newListing(c, paged, func(p *prescription.Prescription) row {
				pr := dto.NewPrescriptionResponse(p)
				return row{ID: p.ID, Cells: []string{
					showDateTime(p.CreatedAt, loc), plain(pr.PatientName), plain(pr.DoctorName), plain(pr.MedicationName),
					strconv.Itoa(p.Quantity), pr.FrequencyLabel, "$" + pr.TotalCost,
				}}
			})
			out.stats = []stat{
				{Label: "recetas", Value: stats.Total},
				{Label: "últimos 30 días", Value: stats.Last30Days},
				{Label: "hoy", Value: stats.Today},
			}
			return out, nil
		},

		show: func(c *gin.Context, id uint) (*detailView, error) {
			p, err := h.svc.Prescriptions.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			pr := dto.NewPrescriptionResponse(p)
			return &detailView{
				Heading: "Receta de " + plain(pr.MedicationName),
				Items: []item{
					{Label: "Tratamiento", Value: "Ver tratamiento", Link: "/tratamientos/" + idText(p.TreatmentID)},
					{Label: "Paciente", Value: plain(pr.PatientName)},
					{Label: "Médico", Value: plain(pr.DoctorName)},
					{Label: "Medicamento", Value: plain(pr.MedicationName), Link: "/medicamentos/" + idText(p.MedicationID)},
					{Label: "Cantidad", Value: strconv.Itoa(p.Quantity)},
					{Label: "Frecuencia", Value: pr.FrequencyLabel},
					{Label: "Duración", Value: p.Duration},
					{Label: "Costo total", Value: "$" + pr.TotalCost},
				},
			}, nil
		},

		load: func(c *gin.Context, id uint) (map[string]string, error) {
			p, err := h.svc.Prescriptions.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"treatment_id":  idText(p.TreatmentID),
				"medication_id": idText(p.MedicationID),
				"quantity":      strconv.Itoa(p.Quantity),
				"frequency":     string(p.Frequency),
				"duration":      p.Duration,
			}, nil
		},

		options: func(c *gin.Context, _ map[string]string) (map[string][]option, error) {
			ctx := c.Request.Context()
			treatments, err := h.svc.Treatments.All(ctx)
			if err != nil {
				return nil, err
			}
			medications, err := h.svc.Medications.All(ctx)
			if err != nil {
				return nil, err
			}
			tOpts := make([]option, 0, len(treatments))
			for _, t := range treatments {
				tOpts = append(tOpts, option{Value: idText(t.ID), Label: t.Description + " · " + t.PatientName()})
			}
			mOpts := make([]option, 0, len(medications))
			for _, m := range medications {
				mOpts = append(mOpts, option{
					Value: idText(m.ID),
					Label: m.Name + " ($" + m.UnitPrice.StringFixed(2) + ", stock " + strconv.Itoa(m.Stock) + ")",
				})
			}
			return map[string][]option{"treatment_id": tOpts, "medication_id": mOpts}, nil
		},

		create: func(c *gin.Context, in map[string]string) (uint, error) {
			var req dto.PrescriptionRequest
			if err := decodeForm(in, &req); err != nil {
				return 0, err
			}
			cmd, err := req.CreateCommand()
			if err != nil {
				return 0, err
			}
			p, err := h.svc.Prescriptions.Create(c.Request.Context(), cmd, actorFrom(c))
			if err != nil {
				return 0, err
			}
			return p.ID, nil
		},

		update: func(c *gin.Context, id uint, in map[string]string) error {
			var req dto.PrescriptionRequest
			if err := decodeForm(in, &req); err != nil {
				return err
			}
			cmd, err := req.UpdateCommand(true)
			if err != nil {
				return err
			}
			_, err = h.svc.Prescriptions.Update(c.Request.Context(), id, cmd, actorFrom(c))
			return err
		},

		remove: func(c *gin.Context, id uint) (string, error) {
			return "Receta eliminada.", h.svc.Prescriptions.Delete(c.Request.Context(), id, actorFrom(c))
		},
	}
}
