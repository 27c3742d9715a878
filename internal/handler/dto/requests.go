package dto

import (
	"time"

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

// Request bodies. A create reads absent fields as blank; an update with
// full=false (PATCH) only touches the fields present.

type SpecialtyRequest struct {
	Name        Value `json:"name"`
	Description Value `json:"description"`
}

func (r *SpecialtyRequest) CreateCommand() (*specialty.CreateSpecialtyCommand, error) {
	u, err := r.UpdateCommand(true)
	if err != nil {
		return nil, err
	}
	return &specialty.CreateSpecialtyCommand{
		Name:        deref(u.Name),
		Description: deref(u.Description),
	}, nil
}

func (r *SpecialtyRequest) UpdateCommand(full bool) (*specialty.UpdateSpecialtyCommand, error) {
	p := newParser(nil, full)
	cmd := &specialty.UpdateSpecialtyCommand{
		Name:        p.str("name", p.need(r.Name)),
		Description: p.str("description", r.Description),
	}
	return cmd, p.err()
}

type DoctorRequest struct {
	NationalID  Value `json:"national_id"`
	FirstName   Value `json:"first_name"`
	LastName    Value `json:"last_name"`
	Email       Value `json:"email"`
	Phone       Value `json:"phone"`
	Active      Value `json:"active"`
	SpecialtyID Value `json:"specialty_id"`
}

func (r *DoctorRequest) CreateCommand() (*doctor.CreateDoctorCommand, error) {
	u, err := r.UpdateCommand(true)
	if err != nil {
		return nil, err
	}
	return &doctor.CreateDoctorCommand{
		NationalID:  deref(u.NationalID),
		FirstName:   deref(u.FirstName),
		LastName:    deref(u.LastName),
		Email:       deref(u.Email),
		Phone:       deref(u.Phone),
		Active:      u.Active,
		SpecialtyID: deref(u.SpecialtyID),
	}, nil
}

func (r *DoctorRequest) UpdateCommand(full bool) (*doctor.UpdateDoctorCommand, error) {
	p := newParser(nil, full)
	cmd := &doctor.UpdateDoctorCommand{
		NationalID:  p.str("national_id", p.need(r.NationalID)),
		FirstName:   p.str("first_name", p.need(r.FirstName)),
		LastName:    p.str("last_name", p.need(r.LastName)),
		Email:       p.str("email", r.Email),
		Phone:       p.str("phone", r.Phone),
		Active:      p.boolean("active", r.Active),
		SpecialtyID: p.id("specialty_id", p.need(r.SpecialtyID)),
	}
	return cmd, p.err()
}

type PatientRequest struct {
	NationalID Value `json:"national_id"`
	FirstName  Value `json:"first_name"`
	LastName   Value `json:"last_name"`
	BirthDate  Value `json:"birth_date"`
	Phone      Value `json:"phone"`
	Email      Value `json:"email"`
	Address    Value `json:"address"`
}

func (r *PatientRequest) CreateCommand() (*patient.CreatePatientCommand, error) {
	u, err := r.UpdateCommand(true)
	if err != nil {
		return nil, err
	}
	return &patient.CreatePatientCommand{
		NationalID: deref(u.NationalID),
		FirstName:  deref(u.FirstName),
		LastName:   deref(u.LastName),
		BirthDate:  deref(u.BirthDate),
		Phone:      deref(u.Phone),
		Email:      deref(u.Email),
		Address:    deref(u.Address),
	}, nil
}

func (r *PatientRequest) UpdateCommand(full bool) (*patient.UpdatePatientCommand, error) {
	p := newParser(nil, full)
	cmd := &patient.UpdatePatientCommand{
		NationalID: p.str("national_id", p.need(r.NationalID)),
		FirstName:  p.str("first_name", p.need(r.FirstName)),
		LastName:   p.str("last_name", p.need(r.LastName)),
		BirthDate:  p.date("birth_date", p.need(r.BirthDate)),
		Phone:      p.str("phone", r.Phone),
		Email:      p.str("email", r.Email),
		Address:    p.str("address", r.Address),
	}
	return cmd, p.err()
}

type ClinicalRecordRequest struct {
	PatientID         Value `json:"patient_id"`
	BloodType         Value `json:"blood_type"`
	KnownAllergies    Value `json:"known_allergies"`
	ChronicConditions Value `json:"chronic_conditions"`
}

func (r *ClinicalRecordRequest) CreateCommand() (*cr.CreateRecordCommand, error) {
	u, err := r.UpdateCommand(true)
	if err != nil {
		return nil, err
	}
	return &cr.CreateRecordCommand{
		PatientID:         deref(u.PatientID),
		BloodType:         deref(u.BloodType),
		KnownAllergies:    deref(u.KnownAllergies),
		ChronicConditions: deref(u.ChronicConditions),
	}, nil
}

func (r *ClinicalRecordRequest) UpdateCommand(full bool) (*cr.UpdateRecordCommand, error) {
	p := newParser(nil, full)
	cmd := &cr.UpdateRecordCommand{
		PatientID:         p.id("patient_id", p.need(r.PatientID)),
		KnownAllergies:    p.str("known_allergies", r.KnownAllergies),
		ChronicConditions: p.str("chronic_conditions", r.ChronicConditions),
	}
	if s := p.str("blood_type", r.BloodType); s != nil {
		bt := cr.BloodType(*s)
		cmd.BloodType = &bt
	}
	return cmd, p.err()
}

type AppointmentRequest struct {
	PatientID   Value `json:"patient_id"`
	DoctorID    Value `json:"doctor_id"`
	ScheduledAt Value `json:"scheduled_at"`
	Status      Value `json:"status"`
	Reason      Value `json:"reason"`
	Notes       Value `json:"notes"`
}

func (r *AppointmentRequest) CreateCommand(loc *time.Location) (*appointment.CreateAppointmentCommand, error) {
	u, err := r.UpdateCommand(loc, true)
	if err != nil {
		return nil, err
	}
	return &appointment.CreateAppointmentCommand{
		PatientID:   deref(u.PatientID),
		DoctorID:    deref(u.DoctorID),
		ScheduledAt: deref(u.ScheduledAt),
		Status:      deref(u.Status),
		Reason:      deref(u.Reason),
		Notes:       deref(u.Notes),
	}, nil
}

// UpdateCommand reads scheduled_at without an offset in loc.
func (r *AppointmentRequest) UpdateCommand(loc *time.Location, full bool) (*appointment.UpdateAppointmentCommand, error) {
	p := newParser(loc, full)
	cmd := &appointment.UpdateAppointmentCommand{
		PatientID:   p.id("patient_id", p.need(r.PatientID)),
		DoctorID:    p.id("doctor_id", p.need(r.DoctorID)),
		ScheduledAt: p.dateTime("scheduled_at", p.need(r.ScheduledAt)),
		Reason:      p.str("reason", r.Reason),
		Notes:       p.str("notes", r.Notes),
	}
	if s := p.str("status", r.Status); s != nil && *s != "" {
		st := appointment.Status(*s)
		cmd.Status = &st
	}
	return cmd, p.err()
}

type ConsultationRequest struct {
	PatientID     Value `json:"patient_id"`
	DoctorID      Value `json:"doctor_id"`
	AppointmentID Value `json:"appointment_id"`
	ConsultedAt   Value `json:"consulted_at"`
	Reason        Value `json:"reason"`
	Diagnosis     Value `json:"diagnosis"`
}

func (r *ConsultationRequest) CreateCommand(loc *time.Location) (*consultation.CreateConsultationCommand, error) {
	u, err := r.UpdateCommand(loc, true)
	if err != nil {
		return nil, err
	}
	return &consultation.CreateConsultationCommand{
		PatientID:     deref(u.PatientID),
		DoctorID:      deref(u.DoctorID),
		AppointmentID: u.AppointmentID,
		ConsultedAt:   deref(u.ConsultedAt),
		Reason:        deref(u.Reason),
		Diagnosis:     deref(u.Diagnosis),
	}, nil
}

func (r *ConsultationRequest) UpdateCommand(loc *time.Location, full bool) (*consultation.UpdateConsultationCommand, error) {
	p := newParser(loc, full)
	cmd := &consultation.UpdateConsultationCommand{
		PatientID:   p.id("patient_id", p.need(r.PatientID)),
		DoctorID:    p.id("doctor_id", p.need(r.DoctorID)),
		ConsultedAt: p.dateTime("consulted_at", p.need(r.ConsultedAt)),
		Reason:      p.str("reason", p.need(r.Reason)),
		Diagnosis:   p.str("diagnosis", r.Diagnosis),
	}
	cmd.SetAppointment, cmd.AppointmentID = p.optID("appointment_id", r.AppointmentID)
	return cmd, p.err()
}

type TreatmentRequest struct {
	ConsultationID Value `json:"consultation_id"`
	Description    Value `json:"description"`
	StartDate      Value `json:"start_date"`
	EndDate        Value `json:"end_date"`
}

func (r *TreatmentRequest) CreateCommand() (*treatment.CreateTreatmentCommand, error) {
	u, err := r.UpdateCommand(true)
	if err != nil {
		return nil, err
	}
	return &treatment.CreateTreatmentCommand{
		ConsultationID: deref(u.ConsultationID),
		Description:    deref(u.Description),
		StartDate:      deref(u.StartDate),
		EndDate:        u.EndDate,
	}, nil
}

func (r *TreatmentRequest) UpdateCommand(full bool) (*treatment.UpdateTreatmentCommand, error) {
	p := newParser(nil, full)
	cmd := &treatment.UpdateTreatmentCommand{
		ConsultationID: p.id("consultation_id", p.need(r.ConsultationID)),
		Description:    p.str("description", p.need(r.Description)),
		StartDate:      p.date("start_date", p.need(r.StartDate)),
	}
	cmd.SetEndDate, cmd.EndDate = p.optDate("end_date", r.EndDate)
	return cmd, p.err()
}

type MedicationRequest struct {
	Name           Value `json:"name"`
	Description    Value `json:"description"`
	Stock          Value `json:"stock"`
	UnitPrice      Value `json:"unit_price"`
	ExpirationDate Value `json:"expiration_date"`
}

func (r *MedicationRequest) CreateCommand() (*medication.CreateMedicationCommand, error) {
	u, err := r.UpdateCommand(true)
	if err != nil {
		return nil, err
	}
	return &medication.CreateMedicationCommand{
		Name:           deref(u.Name),
		Description:    deref(u.Description),
		Stock:          deref(u.Stock),
		UnitPrice:      deref(u.UnitPrice),
		ExpirationDate: deref(u.ExpirationDate),
	}, nil
}

func (r *MedicationRequest) UpdateCommand(full bool) (*medication.UpdateMedicationCommand, error) {
	p := newParser(nil, full)
	cmd := &medication.UpdateMedicationCommand{
		Name:           p.str("name", p.need(r.Name)),
		Description:    p.str("description", r.Description),
		Stock:          p.integer("stock", r.Stock),
		UnitPrice:      p.amount("unit_price", p.need(r.UnitPrice)),
		ExpirationDate: p.date("expiration_date", p.need(r.ExpirationDate)),
	}
	return cmd, p.err()
}

type PrescriptionRequest struct {
	TreatmentID  Value `json:"treatment_id"`
	MedicationID Value `json:"medication_id"`
	Quantity     Value `json:"quantity"`
	Frequency    Value `json:"frequency"`
	Duration     Value `json:"duration"`
}

func (r *PrescriptionRequest) CreateCommand() (*prescription.CreatePrescriptionCommand, error) {
	u, err := r.UpdateCommand(true)
	if err != nil {
		return nil, err
	}
	return &prescription.CreatePrescriptionCommand{
		TreatmentID:  deref(u.TreatmentID),
		MedicationID: deref(u.MedicationID),
		Quantity:     deref(u.Quantity),
		Frequency:    deref(u.Frequency),
		Duration:     deref(u.Duration),
	}, nil
}

func (r *PrescriptionRequest) UpdateCommand(full bool) (*prescription.UpdatePrescriptionCommand, error) {
	p := newParser(nil, full)
	cmd := &prescription.UpdatePrescriptionCommand{
		TreatmentID:  p.id("treatment_id", p.need(r.TreatmentID)),
		MedicationID: p.id("medication_id", p.need(r.MedicationID)),
		Quantity:     p.integer("quantity", p.need(r.Quantity)),
		Duration:     p.str("duration", p.need(r.Duration)),
	}
	if s := p.str("frequency", p.need(r.Frequency)); s != nil {
		f := prescription.Frequency(*s)
		cmd.Frequency = &f
	}
	return cmd, p.err()
}
