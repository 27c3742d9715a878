package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/dto"
)

func (h *Handler) listSpecialties(c *gin.Context) {
	var q dto.SpecialtyQuery
	if !bindQuery(c, &q) {
		return
	}
	query, err := q.ToQuery(domain.DefaultPageSize)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	page, err := h.svc.Specialties.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPage(page, dto.NewSpecialtyResponse))
}

func (h *Handler) createSpecialty(c *gin.Context) {
	var req dto.SpecialtyRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.CreateCommand()
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	s, err := h.svc.Specialties.Create(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, dto.NewSpecialtyResponse(s))
}

func (h *Handler) getSpecialty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	s, err := h.svc.Specialties.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewSpecialtyResponse(s))
}

func (h *Handler) updateSpecialty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SpecialtyRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.UpdateCommand(isFullUpdate(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	s, err := h.svc.Specialties.Update(c.Request.Context(), id, cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewSpecialtyResponse(s))
}

func (h *Handler) deleteSpecialty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Specialties.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listDoctors(c *gin.Context) {
	var q dto.DoctorQuery
	if !bindQuery(c, &q) {
		return
	}
	query, err := q.ToQuery(domain.DefaultPageSize)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	page, err := h.svc.Doctors.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPage(page, dto.NewDoctorResponse))
}

func (h *Handler) createDoctor(c *gin.Context) {
	var req dto.DoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.CreateCommand()
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	d, err := h.svc.Doctors.Create(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, dto.NewDoctorResponse(d))
}

// getDoctor returns the doctor with the consultations of the last 30 days.
func (h *Handler) getDoctor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Doctors.Detail(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewDoctorDetailResponse(detail))
}

func (h *Handler) updateDoctor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.DoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.UpdateCommand(isFullUpdate(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	d, err := h.svc.Doctors.Update(c.Request.Context(), id, cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewDoctorResponse(d))
}

func (h *Handler) deleteDoctor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Doctors.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// doctorConsultations lists every consultation of one doctor, paginated and
// filterable like /consultas.
func (h *Handler) doctorConsultations(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.svc.Doctors.Get(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	var q dto.ConsultationQuery
	if !bindQuery(c, &q) {
		return
	}
	query, err := q.ToQuery(domain.DefaultPageSize)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	query.DoctorID = &id

	page, err := h.svc.Consultations.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPage(page, dto.NewConsultationResponse))
}
