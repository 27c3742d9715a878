package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/dto"
)

func (h *Handler) consultationQuery(c *gin.Context) (*consultation.ListConsultationsQuery, bool) {
	var q dto.ConsultationQuery
	if !bindQuery(c, &q) {
		return nil, false
	}
	query, err := q.ToQuery(domain.DefaultPageSize)
	if err != nil {
		respondServiceError(c, h.log, err)
		return nil, false
	}
	return query, true
}

func (h *Handler) listConsultations(c *gin.Context) {
	query, ok := h.consultationQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Consultations.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPage(page, dto.NewConsultationResponse))
}

// todayConsultations lists consultations held on the clinic's current date.
func (h *Handler) todayConsultations(c *gin.Context) {
	query, ok := h.consultationQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Consultations.Today(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPage(page, dto.NewConsultationResponse))
}

func (h *Handler) createConsultation(c *gin.Context) {
	var req dto.ConsultationRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.CreateCommand(h.now().Location())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	cons, err := h.svc.Consultations.Create(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, dto.NewConsultationResponse(cons))
}

func (h *Handler) getConsultation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Consultations.Detail(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewConsultationDetailResponse(detail, h.now()))
}

func (h *Handler) updateConsultation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ConsultationRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.UpdateCommand(h.now().Location(), isFullUpdate(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	cons, err := h.svc.Consultations.Update(c.Request.Context(), id, cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewConsultationResponse(cons))
}

func (h *Handler) deleteConsultation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Consultations.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) treatmentQuery(c *gin.Context) (*treatment.ListTreatmentsQuery, bool) {
	var q dto.TreatmentQuery
	if !bindQuery(c, &q) {
		return nil, false
	}
	query, err := q.ToQuery(domain.DefaultPageSize)
	if err != nil {
		respondServiceError(c, h.log, err)
		return nil, false
	}
	return query, true
}

func (h *Handler) listTreatments(c *gin.Context) {
	query, ok := h.treatmentQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Treatments.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPage(page, dto.TreatmentResponses(h.now())))
}

func (h *Handler) activeTreatments(c *gin.Context) {
	query, ok := h.treatmentQuery(c)
	if !ok {
		return
	}
	page, err := h.svc.Treatments.Active(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPage(page, dto.TreatmentResponses(h.now())))
}

func (h *Handler) createTreatment(c *gin.Context) {
	var req dto.TreatmentRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.CreateCommand()
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	t, err := h.svc.Treatments.Create(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, dto.NewTreatmentResponse(t, h.now()))
}

func (h *Handler) getTreatment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Treatments.Detail(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewTreatmentDetailResponse(detail, h.now()))
}

func (h *Handler) updateTreatment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TreatmentRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.UpdateCommand(isFullUpdate(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	t, err := h.svc.Treatments.Update(c.Request.Context(), id, cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewTreatmentResponse(t, h.now()))
}

// deleteTreatment also removes the treatment's prescriptions.
func (h *Handler) deleteTreatment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Treatments.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
