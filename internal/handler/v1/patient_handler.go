package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/handler/dto"
)

type patientStats struct {
	ConsultationsThisMonth int64 `json:"consultations_this_month"`
}

func (h *Handler) listPatients(c *gin.Context) {
	var q dto.PatientQuery
	if !bindQuery(c, &q) {
		return
	}
	query, err := q.ToQuery(domain.DefaultPageSize)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	ctx := c.Request.Context()
	page, err := h.svc.Patients.List(ctx, query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	month, err := h.svc.Patients.ConsultationsThisMonth(ctx)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	out := dto.NewPage(page, dto.PatientResponses(h.now()))
	out.Stats = patientStats{ConsultationsThisMonth: month}
	respondOK(c, out)
}

func (h *Handler) createPatient(c *gin.Context) {
	var req dto.PatientRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.CreateCommand()
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	p, err := h.svc.Patients.Create(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, dto.NewPatientResponse(p, h.now()))
}

// getPatient returns the patient with the latest consultations and the
// clinical record, if one exists.
func (h *Handler) getPatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Patients.Detail(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPatientDetailResponse(detail, h.now()))
}

func (h *Handler) updatePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PatientRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.UpdateCommand(isFullUpdate(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	p, err := h.svc.Patients.Update(c.Request.Context(), id, cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPatientResponse(p, h.now()))
}

// deletePatient refuses while the patient has appointments or consultations
// unless ?cascade=true, in which case it reports what was removed.
func (h *Handler) deletePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cascade := false
	if raw := c.Query("cascade"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondServiceError(c, h.log, domain.NewFieldError("cascade", "must be true or false"))
			return
		}
		cascade = v
	}

	removed, err := h.svc.Patients.Delete(c.Request.Context(), id, cascade, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if removed == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Data: removed, Message: "patient and related records deleted"})
}

func (h *Handler) patientConsultations(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.svc.Patients.Get(c.Request.Context(), id); err != nil {
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
	query.PatientID = &id

	page, err := h.svc.Consultations.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPage(page, dto.NewConsultationResponse))
}

func (h *Handler) listRecords(c *gin.Context) {
	var q dto.ClinicalRecordQuery
	if !bindQuery(c, &q) {
		return
	}
	query, err := q.ToQuery(domain.DefaultPageSize)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	page, err := h.svc.ClinicalRecords.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewPage(page, dto.NewClinicalRecordResponse))
}

func (h *Handler) createRecord(c *gin.Context) {
	var req dto.ClinicalRecordRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.CreateCommand()
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	r, err := h.svc.ClinicalRecords.Create(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, dto.NewClinicalRecordResponse(r))
}

func (h *Handler) getRecord(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	r, err := h.svc.ClinicalRecords.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewClinicalRecordResponse(r))
}

func (h *Handler) updateRecord(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ClinicalRecordRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.UpdateCommand(isFullUpdate(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	r, err := h.svc.ClinicalRecords.Update(c.Request.Context(), id, cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewClinicalRecordResponse(r))
}

func (h *Handler) deleteRecord(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.ClinicalRecords.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listAppointments(c *gin.Context) {
	var q dto.AppointmentQuery
	if !bindQuery(c, &q) {
		return
	}
	query, err := q.ToQuery(domain.DefaultPageSize)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	ctx := c.Request.Context()
	page, err := h.svc.Appointments.List(ctx, query)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	stats, err := h.svc.Appointments.Stats(ctx)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	out := dto.NewPage(page, dto.NewAppointmentResponse)
	out.Stats = stats
	respondOK(c, out)
}

func (h *Handler) createAppointment(c *gin.Context) {
	var req dto.AppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.CreateCommand(h.now().Location())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	a, err := h.svc.Appointments.Create(c.Request.Context(), cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, dto.NewAppointmentResponse(a))
}

func (h *Handler) getAppointment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Appointments.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewAppointmentResponse(a))
}

func (h *Handler) updateAppointment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.UpdateCommand(h.now().Location(), isFullUpdate(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	a, err := h.svc.Appointments.Update(c.Request.Context(), id, cmd, actorFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, dto.NewAppointmentResponse(a))
}

func (h *Handler) deleteAppointment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Appointments.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
