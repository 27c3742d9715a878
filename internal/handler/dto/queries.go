package dto

import (
	"strconv"
	"strings"

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
)

// PageParams are the list parameters every query accepts. Unparseable page
// numbers fall back to the defaults instead of failing the request.
type PageParams struct {
	Page     string `form:"page"`
	PageSize string `form:"page_size"`
	Ordering string `form:"ordering"`
}

func (pp PageParams) request(defaultSize int) domain.PageRequest {
	req := domain.PageRequest{
		Page:     positive(pp.Page, 1),
		PageSize: positive(pp.PageSize, defaultSize),
		Ordering: strings.TrimSpace(pp.Ordering),
	}
	return req.Normalized(defaultSize)
}

func positive(raw string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func param(raw string) Value {
	if strings.TrimSpace(raw) == "" {
		return Value{}
	}
	return Text(raw)
}

type SpecialtyQuery struct {
	Search string `form:"search"`
	PageParams
}

func (q *SpecialtyQuery) ToQuery(defaultSize int) (*specialty.ListSpecialtiesQuery, error) {
	return &specialty.ListSpecialtiesQuery{
		Search:      strings.TrimSpace(q.Search),
		PageRequest: q.request(defaultSize),
	}, nil
}

type DoctorQuery struct {
	Search      string `form:"search"`
	SpecialtyID string `form:"specialty_id"`
	Specialty   string `form:"specialty"`
	FirstName   string `form:"first_name"`
	LastName    string `form:"last_name"`
	Active      string `form:"active"`
	PageParams
}

func (q *DoctorQuery) ToQuery(defaultSize int) (*doctor.ListDoctorsQuery, error) {
	p := newParser(nil, false)
	out := &doctor.ListDoctorsQuery{
		Search:        strings.TrimSpace(q.Search),
		SpecialtyID:   p.id("specialty_id", param(q.SpecialtyID)),
		SpecialtyName: strings.TrimSpace(q.Specialty),
		FirstName:     strings.TrimSpace(q.FirstName),
		LastName:      strings.TrimSpace(q.LastName),
		Active:        p.boolean("active", param(q.Active)),
		PageRequest:   q.request(defaultSize),
	}
	return out, p.err()
}

type PatientQuery struct {
	Search    string `form:"search"`
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	MinAge    string `form:"min_age"`
	MaxAge    string `form:"max_age"`
	PageParams
}

func (q *PatientQuery) ToQuery(defaultSize int) (*patient.ListPatientsQuery, error) {
	p := newParser(nil, false)
	out := &patient.ListPatientsQuery{
		Search:      strings.TrimSpace(q.Search),
		FirstName:   strings.TrimSpace(q.FirstName),
		LastName:    strings.TrimSpace(q.LastName),
		MinAge:      p.integer("min_age", param(q.MinAge)),
		MaxAge:      p.integer("max_age", param(q.MaxAge)),
		PageRequest: q.request(defaultSize),
	}
	return out, p.err()
}

type ClinicalRecordQuery struct {
	Search    string `form:"search"`
	BloodType string `form:"blood_type"`
	PageParams
}

func (q *ClinicalRecordQuery) ToQuery(defaultSize int) (*cr.ListRecordsQuery, error) {
	p := newParser(nil, false)
	out := &cr.ListRecordsQuery{
		Search:      strings.TrimSpace(q.Search),
		PageRequest: q.request(defaultSize),
	}
	if raw := strings.ToUpper(strings.TrimSpace(q.BloodType)); raw != "" {
		bt := cr.BloodType(raw)
		if bt.IsValid() {
			out.BloodType = &bt
		} else {
			p.verr.Add("blood_type", "is not a known blood type")
		}
	}
	return out, p.err()
}

type AppointmentQuery struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	PatientID string `form:"patient_id"`
	DoctorID  string `form:"doctor_id"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	PageParams
}

func (q *AppointmentQuery) ToQuery(defaultSize int) (*appointment.ListAppointmentsQuery, error) {
	p := newParser(nil, false)
	out := &appointment.ListAppointmentsQuery{
		Search:      strings.TrimSpace(q.Search),
		PatientID:   p.id("patient_id", param(q.PatientID)),
		DoctorID:    p.id("doctor_id", param(q.DoctorID)),
		DateFrom:    p.date("date_from", param(q.DateFrom)),
		DateTo:      p.date("date_to", param(q.DateTo)),
		PageRequest: q.request(defaultSize),
	}
	if raw := strings.TrimSpace(q.Status); raw != "" {
		st := appointment.Status(raw)
		if st.IsValid() {
			out.Status = &st
		} else {
			p.verr.Add("status", "is not a known appointment status")
		}
	}
	return out, p.err()
}

type ConsultationQuery struct {
	Search      string `form:"search"`
	PatientID   string `form:"patient_id"`
	DoctorID    string `form:"doctor_id"`
	SpecialtyID string `form:"specialty_id"`
	Patient     string `form:"patient"`
	Doctor      string `form:"doctor"`
	Specialty   string `form:"specialty"`
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
	PageParams
}

func (q *ConsultationQuery) ToQuery(defaultSize int) (*consultation.ListConsultationsQuery, error) {
	p := newParser(nil, false)
	out := &consultation.ListConsultationsQuery{
		Search:        strings.TrimSpace(q.Search),
		PatientID:     p.id("patient_id", param(q.PatientID)),
		DoctorID:      p.id("doctor_id", param(q.DoctorID)),
		SpecialtyID:   p.id("specialty_id", param(q.SpecialtyID)),
		PatientName:   strings.TrimSpace(q.Patient),
		DoctorName:    strings.TrimSpace(q.Doctor),
		SpecialtyName: strings.TrimSpace(q.Specialty),
		DateFrom:      p.date("date_from", param(q.DateFrom)),
		DateTo:        p.date("date_to", param(q.DateTo)),
		PageRequest:   q.request(defaultSize),
	}
	return out, p.err()
}

type TreatmentQuery struct {
	Search         string `form:"search"`
	ConsultationID string `form:"consultation_id"`
	DateFrom       string `form:"date_from"`
	DateTo         string `form:"date_to"`
	Active         string `form:"active"`
	PageParams
}

func (q *TreatmentQuery) ToQuery(defaultSize int) (*treatment.ListTreatmentsQuery, error) {
	p := newParser(nil, false)
	out := &treatment.ListTreatmentsQuery{
		Search:         strings.TrimSpace(q.Search),
		ConsultationID: p.id("consultation_id", param(q.ConsultationID)),
		DateFrom:       p.date("date_from", param(q.DateFrom)),
		DateTo:         p.date("date_to", param(q.DateTo)),
		Active:         p.boolean("active", param(q.Active)),
		PageRequest:    q.request(defaultSize),
	}
	return out, p.err()
}

type MedicationQuery struct {
	Search       string `form:"search"`
	Name         string `form:"name"`
	LowStock     string `form:"low_stock"`
	ExpiringSoon string `form:"expiring_soon"`
	PageParams
}

func (q *MedicationQuery) ToQuery(defaultSize int) (*medication.ListMedicationsQuery, error) {
	p := newParser(nil, false)
	out := &medication.ListMedicationsQuery{
		Search:       strings.TrimSpace(q.Search),
		Name:         strings.TrimSpace(q.Name),
		LowStock:     p.boolean("low_stock", param(q.LowStock)),
		ExpiringSoon: p.boolean("expiring_soon", param(q.ExpiringSoon)),
		PageRequest:  q.request(defaultSize),
	}
	return out, p.err()
}

type PrescriptionQuery struct {
	Search       string `form:"search"`
	DoctorID     string `form:"doctor_id"`
	TreatmentID  string `form:"treatment_id"`
	MedicationID string `form:"medication_id"`
	DateFrom     string `form:"date_from"`
	DateTo       string `form:"date_to"`
	PageParams
}

func (q *PrescriptionQuery) ToQuery(defaultSize int) (*prescription.ListPrescriptionsQuery, error) {
	p := newParser(nil, false)
	out := &prescription.ListPrescriptionsQuery{
		Search:       strings.TrimSpace(q.Search),
		DoctorID:     p.id("doctor_id", param(q.DoctorID)),
		TreatmentID:  p.id("treatment_id", param(q.TreatmentID)),
		MedicationID: p.id("medication_id", param(q.MedicationID)),
		DateFrom:     p.date("date_from", param(q.DateFrom)),
		DateTo:       p.date("date_to", param(q.DateTo)),
		PageRequest:  q.request(defaultSize),
	}
	return out, p.err()
}
