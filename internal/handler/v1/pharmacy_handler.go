package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/dto"
)

type medicationLister func(context.Context, *medication.ListMedicationsQuery) (*domain.Paged[medication.Medication], error)

// medicationList serves the plain list and the low-stock and expiring views,
// which only differ in the filter the service forces on.
func (h *Handler) medicationList(list medicationLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q dto.MedicationQuery
		if !bindQuery(c, &q) {
			return
		}
		query, err := q.ToQuery(domain.DefaultPageSize)
		if err != nil {
			respondServiceError(c, h.log, err)
			return
		}

		page, err := list(c.Request.Context(), query)
		if err != nil {
			respondServiceError(c, h.log, err)
			return
		}
		respondOK(c, dto.NewPage(page, dto.MedicationResponses(h.now())))
	}
}

func (h *Handler) createMedication(c *gin.Context) {
	var req dto.MedicationRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.CreateCommand()
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	m, err := h.svc.Medications.Create(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, dto.NewMedicationResponse(m, h.now()))
}

func (h *Handler) getMedication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.Medications.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewMedicationResponse(m, h.now()))
}

func (h *Handler) updateMedication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.MedicationRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.UpdateCommand(isFullUpdate(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	m, err := h.svc.Medications.Update(c.Request.Context(), id, cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewMedicationResponse(m, h.now()))
}

// deleteMedication fails with 409 while prescriptions reference the medication.
func (h *Handler) deleteMedication(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Medications.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listPrescriptions(c *gin.Context) {
	var q dto.PrescriptionQuery
	if !bindQuery(c, &q) {
		return
	}
	query, err := q.ToQuery(domain.DefaultPageSize)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	ctx := c.Request.Context()
	page, err := h.svc.Prescriptions.List(ctx, query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	stats, err := h.svc.Prescriptions.Stats(ctx)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	out := dto.NewPage(page, dto.NewPrescriptionResponse)
	out.Stats = stats
	respondOK(c, out)
}

func (h *Handler) createPrescription(c *gin.Context) {
	var req dto.PrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.CreateCommand()
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	p, err := h.svc.Prescriptions.Create(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, dto.NewPrescriptionResponse(p))
}

func (h *Handler) getPrescription(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Prescriptions.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPrescriptionResponse(p))
}

func (h *Handler) updatePrescription(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.UpdateCommand(isFullUpdate(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	p, err := h.svc.Prescriptions.Update(c.Request.Context(), id, cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPrescriptionResponse(p))
}

func (h *Handler) deletePrescription(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Prescriptions.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
