package clinical_record

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
)

type Repository interface {
	// Create returns ErrRecordAlreadyExists when the patient already has one.
	Create(ctx context.Context, r *ClinicalRecord) error
	GetByID(ctx context.Context, id uint) (*ClinicalRecord, error)

	// GetByPatientID returns ErrRecordNotFound when the patient has no record.
	GetByPatientID(ctx context.Context, patientID uint) (*ClinicalRecord, error)
	Update(ctx context.Context, r *ClinicalRecord) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q *ListRecordsQuery) (*domain.Paged[ClinicalRecord], error)
}
