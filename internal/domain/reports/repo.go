package reports

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("report not found")

type Repository interface {
	Create(ctx context.Context, r *MedicalReport) error
	GetByID(ctx context.Context, id int64) (*MedicalReport, error)
	Delete(ctx context.Context, id int64) error
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalReport, int, error)
}
