package scheduling

import "time"

// Appointment statuses move through pending -> confirmed -> in_progress ->
// completed, with cancelled reachable from any non-final state. Status is
// stored as free text; these constants cover the values the API writes.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Appointment maps to the appointments table.
type Appointment struct {
	ID              int64     `db:"id" json:"id"`
	PatientID       int64     `db:"patient_id" json:"patient_id"`
	DoctorID        int64     `db:"doctor_id" json:"doctor_id"`
	AppointmentTime time.Time `db:"appointment_time" json:"appointment_time"`
	Status          string    `db:"status" json:"status"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
