package dto

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/appointment"
	cr "github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/clinical_record"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/consultation"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain/treatment"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/service"
)

// Responses embed the entity and add read-only derived fields. The pages
// render the same values, so derived numbers never differ between the two.
// Constructors that depend on the date take now in the clinic's time zone.

type Page[T any] struct {
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	Results    []T   `json:"results"`
	Stats      any   `json:"stats,omitempty"`
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

func NewPage[E, R any](paged *domain.Paged[E], convert func(*E) R) Page[R] {
	return Page[R]{
		Count:      paged.TotalCount,
		Page:       paged.Page,
		PageSize:   paged.PageSize,
		TotalPages: paged.TotalPages,
		Results:    mapAll(paged.Items, convert),
	}
}

func mapAll[E, R any](items []*E, convert func(*E) R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, convert(it))
	}
	return out
}

type SpecialtyResponse struct {
	*specialty.Specialty
}

func NewSpecialtyResponse(s *specialty.Specialty) SpecialtyResponse {
	return SpecialtyResponse{Specialty: s}
}

type DoctorResponse struct {
	*doctor.Doctor
	FullName      string `json:"full_name"`
	SpecialtyName string `json:"specialty_name"`
}

func NewDoctorResponse(d *doctor.Doctor) DoctorResponse {
	return DoctorResponse{Doctor: d, FullName: d.FullName(), SpecialtyName: d.SpecialtyName()}
}

type DoctorDetailResponse struct {
	DoctorResponse
	RecentConsultations []ConsultationResponse `json:"recent_consultations"`
}

func NewDoctorDetailResponse(d *service.DoctorDetail) DoctorDetailResponse {
	return DoctorDetailResponse{
		DoctorResponse:      NewDoctorResponse(d.Doctor),
		RecentConsultations: mapAll(d.RecentConsultations, NewConsultationResponse),
	}
}

type PatientResponse struct {
	*patient.Patient
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
}

func NewPatientResponse(p *patient.Patient, now time.Time) PatientResponse {
	return PatientResponse{Patient: p, FullName: p.FullName(), Age: p.AgeAt(now)}
}

// PatientResponses binds now for use with NewPage.
func PatientResponses(now time.Time) func(*patient.Patient) PatientResponse {
	return func(p *patient.Patient) PatientResponse { return NewPatientResponse(p, now) }
}

type PatientDetailResponse struct {
	PatientResponse
	RecentConsultations []ConsultationResponse  `json:"recent_consultations"`
	ClinicalRecord      *ClinicalRecordResponse `json:"clinical_record"`
}

func NewPatientDetailResponse(d *service.PatientDetail, now time.Time) PatientDetailResponse {
	out := PatientDetailResponse{
		PatientResponse:     NewPatientResponse(d.Patient, now),
		RecentConsultations: mapAll(d.RecentConsultations, NewConsultationResponse),
	}
	if d.Record != nil {
		rec := NewClinicalRecordResponse(d.Record)
		out.ClinicalRecord = &rec
	}
	return out
}

type ClinicalRecordResponse struct {
	*cr.ClinicalRecord
	PatientName string `json:"patient_name"`
}

func NewClinicalRecordResponse(r *cr.ClinicalRecord) ClinicalRecordResponse {
	return ClinicalRecordResponse{ClinicalRecord: r, PatientName: r.PatientName()}
}

type AppointmentResponse struct {
	*appointment.Appointment
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
}

func NewAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{Appointment: a, PatientName: a.PatientName(), DoctorName: a.DoctorName()}
}

type ConsultationResponse struct {
	*consultation.Consultation
	PatientName   string `json:"patient_name"`
	DoctorName    string `json:"doctor_name"`
	SpecialtyName string `json:"specialty_name"`
}

func NewConsultationResponse(c *consultation.Consultation) ConsultationResponse {
	return ConsultationResponse{
		Consultation:  c,
		PatientName:   c.PatientName(),
		DoctorName:    c.DoctorName(),
		SpecialtyName: c.SpecialtyName(),
	}
}

type ConsultationDetailResponse struct {
	ConsultationResponse
	Treatments []TreatmentResponse `json:"treatments"`
}

func NewConsultationDetailResponse(d *service.ConsultationDetail, now time.Time) ConsultationDetailResponse {
	return ConsultationDetailResponse{
		ConsultationResponse: NewConsultationResponse(d.Consultation),
		Treatments:           mapAll(d.Treatments, TreatmentResponses(now)),
	}
}

type TreatmentResponse struct {
	*treatment.Treatment
	PatientName  string `json:"patient_name"`
	DoctorName   string `json:"doctor_name"`
	IsActive     bool   `json:"is_active"`
	DurationDays *int   `json:"duration_days"`
}

func NewTreatmentResponse(t *treatment.Treatment, now time.Time) TreatmentResponse {
	return TreatmentResponse{
		Treatment:    t,
		PatientName:  t.PatientName(),
		DoctorName:   t.DoctorName(),
		IsActive:     t.IsActiveAt(now),
		DurationDays: t.DurationDays(),
	}
}

func TreatmentResponses(now time.Time) func(*treatment.Treatment) TreatmentResponse {
	return func(t *treatment.Treatment) TreatmentResponse { return NewTreatmentResponse(t, now) }
}

type TreatmentDetailResponse struct {
	TreatmentResponse
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
}

func NewTreatmentDetailResponse(d *service.TreatmentDetail, now time.Time) TreatmentDetailResponse {
	return TreatmentDetailResponse{
		TreatmentResponse: NewTreatmentResponse(d.Treatment, now),
		Prescriptions:     mapAll(d.Prescriptions, NewPrescriptionResponse),
	}
}

type MedicationResponse struct {
	*medication.Medication
	UnitPrice      string `json:"unit_price"`
	IsLowStock     bool   `json:"is_low_stock"`
	IsExpiringSoon bool   `json:"is_expiring_soon"`
}

func NewMedicationResponse(m *medication.Medication, now time.Time) MedicationResponse {
	return MedicationResponse{
		Medication:     m,
		UnitPrice:      m.UnitPrice.StringFixed(2),
		IsLowStock:     m.IsLowStock(),
		IsExpiringSoon: m.IsExpiringSoonAt(now),
	}
}

func MedicationResponses(now time.Time) func(*medication.Medication) MedicationResponse {
	return func(m *medication.Medication) MedicationResponse { return NewMedicationResponse(m, now) }
}

type PrescriptionResponse struct {
	*prescription.Prescription
	MedicationName string `json:"medication_name"`
	PatientName    string `json:"patient_name"`
	DoctorName     string `json:"doctor_name"`
	FrequencyLabel string `json:"frequency_label"`
	TotalCost      string `json:"total_cost"`
}

func NewPrescriptionResponse(p *prescription.Prescription) PrescriptionResponse {
	return PrescriptionResponse{
		Prescription:   p,
		MedicationName: p.MedicationName(),
		PatientName:    p.PatientName(),
		DoctorName:     p.DoctorName(),
		FrequencyLabel: p.Frequency.Label(),
		TotalCost:      p.TotalCost().StringFixed(2),
	}
}

type DashboardResponse struct {
	Patients            int64                  `json:"patients"`
	Doctors             int64                  `json:"doctors"`
	Specialties         int64                  `json:"specialties"`
	Consultations       int64                  `json:"consultations"`
	ConsultationsToday  int64                  `json:"consultations_today"`
	RecentConsultations []ConsultationResponse `json:"recent_consultations"`
	TopSpecialties      []specialty.Ranking    `json:"top_specialties"`
}

func NewDashboardResponse(d *service.Dashboard) DashboardResponse {
	top := d.TopSpecialties
	if top == nil {
		top = []specialty.Ranking{}
	}
	return DashboardResponse{
		Patients:            d.Patients,
		Doctors:             d.Doctors,
		Specialties:         d.Specialties,
		Consultations:       d.Consultations,
		ConsultationsToday:  d.ConsultationsToday,
		RecentConsultations: mapAll(d.RecentConsultations, NewConsultationResponse),
		TopSpecialties:      top,
	}
}
