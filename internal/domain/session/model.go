package session

import "time"

// Session statuses. A session starts active, may toggle to paused and back,
// and ends completed. Completed is terminal.
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

var validStatus = map[string]bool{
	StatusActive:    true,
	StatusPaused:    true,
	StatusCompleted: true,
}

var validSeverity = map[string]bool{
	"mild":     true,
	"moderate": true,
	"severe":   true,
}

var validDiagnosisType = map[string]bool{
	"primary":      true,
	"secondary":    true,
	"differential": true,
}

var validConfidence = map[string]bool{
	"confirmed": true,
	"probable":  true,
	"possible":  true,
}

var validPlanStatus = map[string]bool{
	"active":       true,
	"completed":    true,
	"discontinued": true,
}

// MedicalSession maps to the medical_sessions table. PatientID and DoctorID
// are copied from the appointment at creation time and never re-derived.
type MedicalSession struct {
	SessionID      int64     `db:"session_id" json:"session_id"`
	AppointmentID  int64     `db:"appointment_id" json:"appointment_id"`
	PatientID      int64     `db:"patient_id" json:"patient_id"`
	DoctorID       int64     `db:"doctor_id" json:"doctor_id"`
	SessionDate    time.Time `db:"session_date" json:"session_date"`
	Status         string    `db:"status" json:"status"`
	ChiefComplaint *string   `db:"chief_complaint" json:"chief_complaint,omitempty"`
	SessionNotes   *string   `db:"session_notes" json:"session_notes,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// VitalSign maps to the vital_signs table. Rows are append-only and never
// edited after recording.
type VitalSign struct {
	VitalID                int64     `db:"vital_id" json:"vital_id"`
	SessionID              int64     `db:"session_id" json:"session_id"`
	BloodPressureSystolic  *int      `db:"blood_pressure_systolic" json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *int      `db:"blood_pressure_diastolic" json:"blood_pressure_diastolic,omitempty"`
	HeartRate              *int      `db:"heart_rate" json:"heart_rate,omitempty"`
	Temperature            *float64  `db:"temperature" json:"temperature,omitempty"`
	Weight                 *float64  `db:"weight" json:"weight,omitempty"`
	Height                 *float64  `db:"height" json:"height,omitempty"`
	RespiratoryRate        *int      `db:"respiratory_rate" json:"respiratory_rate,omitempty"`
	OxygenSaturation       *int      `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	RecordedAt             time.Time `db:"recorded_at" json:"recorded_at"`
}

// Symptom maps to the symptoms table.
type Symptom struct {
	SymptomID   int64     `db:"symptom_id" json:"symptom_id"`
	SessionID   int64     `db:"session_id" json:"session_id"`
	Description string    `db:"description" json:"description"`
	Severity    string    `db:"severity" json:"severity"`
	Duration    *string   `db:"duration" json:"duration,omitempty"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	RecordedAt  time.Time `db:"recorded_at" json:"recorded_at"`
}

// Diagnosis maps to the diagnoses table.
type Diagnosis struct {
	DiagnosisID int64     `db:"diagnosis_id" json:"diagnosis_id"`
	SessionID   int64     `db:"session_id" json:"session_id"`
	Code        *string   `db:"code" json:"code,omitempty"`
	Description string    `db:"description" json:"description"`
	Type        string    `db:"type" json:"type"`
	Confidence  string    `db:"confidence" json:"confidence"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	DiagnosedAt time.Time `db:"diagnosed_at" json:"diagnosed_at"`
}

// Prescription maps to the prescriptions table.
type Prescription struct {
	PrescriptionID int64     `db:"prescription_id" json:"prescription_id"`
	SessionID      int64     `db:"session_id" json:"session_id"`
	MedicationName string    `db:"medication_name" json:"medication_name"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	Duration       string    `db:"duration" json:"duration"`
	Instructions   *string   `db:"instructions" json:"instructions,omitempty"`
	PrescribedDate time.Time `db:"prescribed_date" json:"prescribed_date"`
}

// TreatmentPlan maps to the treatment_plans table. Status is set at creation
// and not transitioned afterwards by this engine.
type TreatmentPlan struct {
	PlanID           int64      `db:"plan_id" json:"plan_id"`
	SessionID        int64      `db:"session_id" json:"session_id"`
	Description      string     `db:"description" json:"description"`
	StartDate        *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate          *time.Time `db:"end_date" json:"end_date,omitempty"`
	Status           string     `db:"status" json:"status"`
	FollowUpRequired bool       `db:"follow_up_required" json:"follow_up_required"`
	FollowUpDate     *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}
