package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/domain/scheduling"
	"github.com/clinic/clinic/internal/platform/db"
)

// Appointments is the slice of the scheduling service the session engine
// needs. scheduling.Service satisfies it.
type Appointments interface {
	GetAppointment(ctx context.Context, id int64) (*scheduling.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type Service struct {
	repo  Repository
	appts Appointments
	pool  *pgxpool.Pool
}

func NewService(repo Repository, appts Appointments, pool *pgxpool.Pool) *Service {
	return &Service{repo: repo, appts: appts, pool: pool}
}

// withTx runs fn in a database transaction when a pool is configured. Tests
// run against mock repositories without one.
func (s *Service) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// StartResult reports the session for an appointment and whether it already
// existed before the call.
type StartResult struct {
	Session     *MedicalSession
	PreExisting bool
}

// StartSession begins the clinical encounter for an appointment. When a
// session already exists for the appointment it is returned unchanged.
// Otherwise a new active session is created with the appointment's
// participants and the appointment is flipped to in_progress; both writes
// commit in one transaction.
func (s *Service) StartSession(ctx context.Context, appointmentID int64) (*StartResult, error) {
	appt, err := s.appts.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("resolve appointment: %w", err)
	}

	existing, err := s.repo.GetSessionByAppointment(ctx, appointmentID)
	if err == nil {
		return &StartResult{Session: existing, PreExisting: true}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	sess := &MedicalSession{
		AppointmentID: appointmentID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		Status:        StatusActive,
	}
	err = s.withTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateSession(ctx, sess); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if err := s.appts.UpdateStatus(ctx, appointmentID, scheduling.StatusInProgress); err != nil {
			return fmt.Errorf("mark appointment in progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &StartResult{Session: sess}, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID int64) (*MedicalSession, error) {
	return s.repo.GetSession(ctx, sessionID)
}

// UpdateSession applies a partial edit. Completed sessions reject edits.
func (s *Service) UpdateSession(ctx context.Context, sessionID int64, upd SessionUpdate) (*MedicalSession, error) {
	if upd.Status != nil && !validStatus[*upd.Status] {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusCompleted {
		return nil, ErrSessionCompleted
	}

	return s.repo.UpdateSession(ctx, sessionID, upd)
}

// CompleteSession moves the session to its terminal state. Completing an
// already-completed session succeeds without changing anything.
func (s *Service) CompleteSession(ctx context.Context, sessionID int64) (*MedicalSession, error) {
	return s.repo.CompleteSession(ctx, sessionID)
}

func (s *Service) ListActiveSessionsForDoctor(ctx context.Context, doctorID int64) ([]*MedicalSession, error) {
	return s.repo.ListActiveSessionsForDoctor(ctx, doctorID)
}

func (s *Service) ListSessionsForPatient(ctx context.Context, patientID int64) ([]*MedicalSession, error) {
	return s.repo.ListSessionsForPatient(ctx, patientID)
}

// Child record appends. The session id is taken from the route; a dangling
// id surfaces as a foreign-key error from the store.

func (s *Service) AddVitalSign(ctx context.Context, v *VitalSign) error {
	return s.repo.AddVitalSign(ctx, v)
}

func (s *Service) AddSymptom(ctx context.Context, sym *Symptom) error {
	if sym.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !validSeverity[sym.Severity] {
		return fmt.Errorf("%w: severity %q", ErrInvalidStatus, sym.Severity)
	}
	return s.repo.AddSymptom(ctx, sym)
}

func (s *Service) AddDiagnosis(ctx context.Context, d *Diagnosis) error {
	if d.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !validDiagnosisType[d.Type] {
		return fmt.Errorf("%w: type %q", ErrInvalidStatus, d.Type)
	}
	if !validConfidence[d.Confidence] {
		return fmt.Errorf("%w: confidence %q", ErrInvalidStatus, d.Confidence)
	}
	return s.repo.AddDiagnosis(ctx, d)
}

func (s *Service) AddPrescription(ctx context.Context, p *Prescription) error {
	if p.MedicationName == "" {
		return fmt.Errorf("%w: medication_name is required", ErrValidation)
	}
	if p.Dosage == "" || p.Frequency == "" || p.Duration == "" {
		return fmt.Errorf("%w: dosage, frequency and duration are required", ErrValidation)
	}
	return s.repo.AddPrescription(ctx, p)
}

func (s *Service) AddTreatmentPlan(ctx context.Context, t *TreatmentPlan) error {
	if t.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if t.Status == "" {
		t.Status = "active"
	}
	if !validPlanStatus[t.Status] {
		return fmt.Errorf("%w: plan status %q", ErrInvalidStatus, t.Status)
	}
	return s.repo.AddTreatmentPlan(ctx, t)
}
