package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const sessionCols = `session_id, appointment_id, patient_id, doctor_id, session_date,
	status, chief_complaint, session_notes, created_at, updated_at`

func (r *repoPG) CreateSession(ctx context.Context, s *MedicalSession) error {
	if s.Status == "" {
		s.Status = StatusActive
	}
	if !validStatus[s.Status] {
		return ErrInvalidStatus
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_sessions (appointment_id, patient_id, doctor_id, status, chief_complaint, session_notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING session_id, session_date, created_at, updated_at`,
		s.AppointmentID, s.PatientID, s.DoctorID, s.Status, s.ChiefComplaint, s.SessionNotes,
	).Scan(&s.SessionID, &s.SessionDate, &s.CreatedAt, &s.UpdatedAt)
}

func (r *repoPG) GetSession(ctx context.Context, sessionID int64) (*MedicalSession, error) {
	return scanSession(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM medical_sessions WHERE session_id = $1`, sessionID))
}

func (r *repoPG) GetSessionByAppointment(ctx context.Context, appointmentID int64) (*MedicalSession, error) {
	return scanSession(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM medical_sessions WHERE appointment_id = $1`, appointmentID))
}

func (r *repoPG) ListActiveSessionsForDoctor(ctx context.Context, doctorID int64) ([]*MedicalSession, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sessionCols+` FROM medical_sessions
		 WHERE doctor_id = $1 AND status = $2 ORDER BY session_id`,
		doctorID, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListSessionsForPatient orders by session_date descending so the most
// recent visit leads the patient's history.
func (r *repoPG) ListSessionsForPatient(ctx context.Context, patientID int64) ([]*MedicalSession, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sessionCols+` FROM medical_sessions
		 WHERE patient_id = $1 ORDER BY session_date DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *repoPG) UpdateSession(ctx context.Context, sessionID int64, upd SessionUpdate) (*MedicalSession, error) {
	if upd.Status != nil && !validStatus[*upd.Status] {
		return nil, ErrInvalidStatus
	}
	return scanSession(r.conn(ctx).QueryRow(ctx, `
		UPDATE medical_sessions SET
			chief_complaint = COALESCE($2, chief_complaint),
			session_notes   = COALESCE($3, session_notes),
			status          = COALESCE($4, status),
			updated_at      = NOW()
		WHERE session_id = $1
		RETURNING `+sessionCols,
		sessionID, upd.ChiefComplaint, upd.SessionNotes, upd.Status))
}

func (r *repoPG) CompleteSession(ctx context.Context, sessionID int64) (*MedicalSession, error) {
	return scanSession(r.conn(ctx).QueryRow(ctx, `
		UPDATE medical_sessions SET status = $2, updated_at = NOW()
		WHERE session_id = $1
		RETURNING `+sessionCols,
		sessionID, StatusCompleted))
}

func (r *repoPG) AddVitalSign(ctx context.Context, v *VitalSign) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO vital_signs (session_id, blood_pressure_systolic, blood_pressure_diastolic,
			heart_rate, temperature, weight, height, respiratory_rate, oxygen_saturation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING vital_id, recorded_at`,
		v.SessionID, v.BloodPressureSystolic, v.BloodPressureDiastolic,
		v.HeartRate, v.Temperature, v.Weight, v.Height, v.RespiratoryRate, v.OxygenSaturation,
	).Scan(&v.VitalID, &v.RecordedAt)
}

func (r *repoPG) AddSymptom(ctx context.Context, s *Symptom) error {
	if !validSeverity[s.Severity] {
		return ErrInvalidStatus
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO symptoms (session_id, description, severity, duration, notes)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING symptom_id, recorded_at`,
		s.SessionID, s.Description, s.Severity, s.Duration, s.Notes,
	).Scan(&s.SymptomID, &s.RecordedAt)
}

func (r *repoPG) AddDiagnosis(ctx context.Context, d *Diagnosis) error {
	if !validDiagnosisType[d.Type] || !validConfidence[d.Confidence] {
		return ErrInvalidStatus
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO diagnoses (session_id, code, description, type, confidence, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING diagnosis_id, diagnosed_at`,
		d.SessionID, d.Code, d.Description, d.Type, d.Confidence, d.Notes,
	).Scan(&d.DiagnosisID, &d.DiagnosedAt)
}

func (r *repoPG) AddPrescription(ctx context.Context, p *Prescription) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescriptions (session_id, medication_name, dosage, frequency, duration, instructions)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING prescription_id, prescribed_date`,
		p.SessionID, p.MedicationName, p.Dosage, p.Frequency, p.Duration, p.Instructions,
	).Scan(&p.PrescriptionID, &p.PrescribedDate)
}

func (r *repoPG) AddTreatmentPlan(ctx context.Context, t *TreatmentPlan) error {
	if t.Status == "" {
		t.Status = "active"
	}
	if !validPlanStatus[t.Status] {
		return ErrInvalidStatus
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO treatment_plans (session_id, description, start_date, end_date, status,
			follow_up_required, follow_up_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING plan_id, created_at`,
		t.SessionID, t.Description, t.StartDate, t.EndDate, t.Status,
		t.FollowUpRequired, t.FollowUpDate, t.Notes,
	).Scan(&t.PlanID, &t.CreatedAt)
}

// Child collections come back in insertion order via their serial keys.

func (r *repoPG) GetVitalSigns(ctx context.Context, sessionID int64) ([]*VitalSign, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT vital_id, session_id, blood_pressure_systolic, blood_pressure_diastolic,
			heart_rate, temperature, weight, height, respiratory_rate, oxygen_saturation, recorded_at
		FROM vital_signs WHERE session_id = $1 ORDER BY vital_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vitals []*VitalSign
	for rows.Next() {
		var v VitalSign
		if err := rows.Scan(&v.VitalID, &v.SessionID, &v.BloodPressureSystolic, &v.BloodPressureDiastolic,
			&v.HeartRate, &v.Temperature, &v.Weight, &v.Height, &v.RespiratoryRate, &v.OxygenSaturation, &v.RecordedAt); err != nil {
			return nil, err
		}
		vitals = append(vitals, &v)
	}
	return vitals, rows.Err()
}

func (r *repoPG) GetSymptoms(ctx context.Context, sessionID int64) ([]*Symptom, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT symptom_id, session_id, description, severity, duration, notes, recorded_at
		FROM symptoms WHERE session_id = $1 ORDER BY symptom_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symptoms []*Symptom
	for rows.Next() {
		var s Symptom
		if err := rows.Scan(&s.SymptomID, &s.SessionID, &s.Description, &s.Severity, &s.Duration, &s.Notes, &s.RecordedAt); err != nil {
			return nil, err
		}
		symptoms = append(symptoms, &s)
	}
	return symptoms, rows.Err()
}

func (r *repoPG) GetDiagnoses(ctx context.Context, sessionID int64) ([]*Diagnosis, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT diagnosis_id, session_id, code, description, type, confidence, notes, diagnosed_at
		FROM diagnoses WHERE session_id = $1 ORDER BY diagnosis_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diags []*Diagnosis
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(&d.DiagnosisID, &d.SessionID, &d.Code, &d.Description, &d.Type, &d.Confidence, &d.Notes, &d.DiagnosedAt); err != nil {
			return nil, err
		}
		diags = append(diags, &d)
	}
	return diags, rows.Err()
}

func (r *repoPG) GetPrescriptions(ctx context.Context, sessionID int64) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT prescription_id, session_id, medication_name, dosage, frequency, duration, instructions, prescribed_date
		FROM prescriptions WHERE session_id = $1 ORDER BY prescription_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scripts []*Prescription
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.PrescriptionID, &p.SessionID, &p.MedicationName, &p.Dosage, &p.Frequency, &p.Duration, &p.Instructions, &p.PrescribedDate); err != nil {
			return nil, err
		}
		scripts = append(scripts, &p)
	}
	return scripts, rows.Err()
}

func (r *repoPG) GetTreatmentPlans(ctx context.Context, sessionID int64) ([]*TreatmentPlan, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT plan_id, session_id, description, start_date, end_date, status,
			follow_up_required, follow_up_date, notes, created_at
		FROM treatment_plans WHERE session_id = $1 ORDER BY plan_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*TreatmentPlan
	for rows.Next() {
		var t TreatmentPlan
		if err := rows.Scan(&t.PlanID, &t.SessionID, &t.Description, &t.StartDate, &t.EndDate, &t.Status,
			&t.FollowUpRequired, &t.FollowUpDate, &t.Notes, &t.CreatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, &t)
	}
	return plans, rows.Err()
}

func scanSession(row pgx.Row) (*MedicalSession, error) {
	var s MedicalSession
	err := row.Scan(
		&s.SessionID, &s.AppointmentID, &s.PatientID, &s.DoctorID, &s.SessionDate,
		&s.Status, &s.ChiefComplaint, &s.SessionNotes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]*MedicalSession, error) {
	var sessions []*MedicalSession
	for rows.Next() {
		var s MedicalSession
		if err := rows.Scan(
			&s.SessionID, &s.AppointmentID, &s.PatientID, &s.DoctorID, &s.SessionDate,
			&s.Status, &s.ChiefComplaint, &s.SessionNotes, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}
