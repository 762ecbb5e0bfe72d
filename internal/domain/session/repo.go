package session

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrInvalidStatus    = errors.New("invalid status value")
	ErrValidation       = errors.New("invalid payload")
	ErrSessionCompleted = errors.New("session is completed")
)

// SessionUpdate carries a partial update; only non-nil fields change.
type SessionUpdate struct {
	ChiefComplaint *string
	SessionNotes   *string
	Status         *string
}

type Repository interface {
	CreateSession(ctx context.Context, s *MedicalSession) error
	GetSession(ctx context.Context, sessionID int64) (*MedicalSession, error)
	GetSessionByAppointment(ctx context.Context, appointmentID int64) (*MedicalSession, error)
	ListActiveSessionsForDoctor(ctx context.Context, doctorID int64) ([]*MedicalSession, error)
	ListSessionsForPatient(ctx context.Context, patientID int64) ([]*MedicalSession, error)
	UpdateSession(ctx context.Context, sessionID int64, upd SessionUpdate) (*MedicalSession, error)
	CompleteSession(ctx context.Context, sessionID int64) (*MedicalSession, error)

	AddVitalSign(ctx context.Context, v *VitalSign) error
	AddSymptom(ctx context.Context, s *Symptom) error
	AddDiagnosis(ctx context.Context, d *Diagnosis) error
	AddPrescription(ctx context.Context, p *Prescription) error
	AddTreatmentPlan(ctx context.Context, t *TreatmentPlan) error

	GetVitalSigns(ctx context.Context, sessionID int64) ([]*VitalSign, error)
	GetSymptoms(ctx context.Context, sessionID int64) ([]*Symptom, error)
	GetDiagnoses(ctx context.Context, sessionID int64) ([]*Diagnosis, error)
	GetPrescriptions(ctx context.Context, sessionID int64) ([]*Prescription, error)
	GetTreatmentPlans(ctx context.Context, sessionID int64) ([]*TreatmentPlan, error)
}
