package reports

import "time"

// MedicalReport maps to the medical_reports table. The file body lives in
// the blob store under BlobID; the row carries the clinical context.
type MedicalReport struct {
	ID            int64     `db:"id" json:"id"`
	PatientID     int64     `db:"patient_id" json:"patient_id"`
	DoctorID      int64     `db:"doctor_id" json:"doctor_id"`
	AppointmentID *int64    `db:"appointment_id" json:"appointment_id,omitempty"`
	Title         string    `db:"title" json:"title"`
	FileName      string    `db:"file_name" json:"file_name"`
	ContentType   string    `db:"content_type" json:"content_type"`
	Category      string    `db:"category" json:"category"`
	BlobID        string    `db:"blob_id" json:"blob_id"`
	SizeBytes     int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
