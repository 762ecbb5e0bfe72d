package session

import (
	"context"
	"fmt"
	"time"
)

// NameDirectory resolves participant display names. identity.Service
// satisfies it; implementations return "" (not an error) for a missing
// account.
type NameDirectory interface {
	PatientName(ctx context.Context, id int64) (string, error)
	DoctorName(ctx context.Context, id int64) (string, error)
}

// AggregateView is the full read-model of a session: the session row, the
// participant names as of the time of projection, and every child
// collection in insertion order. Timestamps render as ISO-8601 strings,
// null when unset.
type AggregateView struct {
	SessionID      int64   `json:"session_id"`
	AppointmentID  int64   `json:"appointment_id"`
	PatientID      int64   `json:"patient_id"`
	PatientName    string  `json:"patient_name"`
	DoctorID       int64   `json:"doctor_id"`
	DoctorName     string  `json:"doctor_name"`
	SessionDate    *string `json:"session_date"`
	Status         string  `json:"status"`
	ChiefComplaint *string `json:"chief_complaint"`
	SessionNotes   *string `json:"session_notes"`
	CreatedAt      *string `json:"created_at"`
	UpdatedAt      *string `json:"updated_at"`

	VitalSigns     []VitalSignView     `json:"vital_signs"`
	Symptoms       []SymptomView       `json:"symptoms"`
	Diagnoses      []DiagnosisView     `json:"diagnoses"`
	Prescriptions  []PrescriptionView  `json:"prescriptions"`
	TreatmentPlans []TreatmentPlanView `json:"treatment_plans"`
}

// VitalSignView renders blood pressure as "systolic/diastolic" only when
// both parts were recorded.
type VitalSignView struct {
	VitalID          int64    `json:"vital_id"`
	BloodPressure    *string  `json:"blood_pressure"`
	HeartRate        *int     `json:"heart_rate"`
	Temperature      *float64 `json:"temperature"`
	Weight           *float64 `json:"weight"`
	Height           *float64 `json:"height"`
	RespiratoryRate  *int     `json:"respiratory_rate"`
	OxygenSaturation *int     `json:"oxygen_saturation"`
	RecordedAt       *string  `json:"recorded_at"`
}

type SymptomView struct {
	SymptomID   int64   `json:"symptom_id"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	Duration    *string `json:"duration"`
	Notes       *string `json:"notes"`
	RecordedAt  *string `json:"recorded_at"`
}

type DiagnosisView struct {
	DiagnosisID int64   `json:"diagnosis_id"`
	Code        *string `json:"code"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Confidence  string  `json:"confidence"`
	Notes       *string `json:"notes"`
	DiagnosedAt *string `json:"diagnosed_at"`
}

type PrescriptionView struct {
	PrescriptionID int64   `json:"prescription_id"`
	MedicationName string  `json:"medication_name"`
	Dosage         string  `json:"dosage"`
	Frequency      string  `json:"frequency"`
	Duration       string  `json:"duration"`
	Instructions   *string `json:"instructions"`
	PrescribedDate *string `json:"prescribed_date"`
}

type TreatmentPlanView struct {
	PlanID           int64   `json:"plan_id"`
	Description      string  `json:"description"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	Status           string  `json:"status"`
	FollowUpRequired bool    `json:"follow_up_required"`
	FollowUpDate     *string `json:"follow_up_date"`
	Notes            *string `json:"notes"`
	CreatedAt        *string `json:"created_at"`
}

// Projector assembles AggregateViews. It holds no cache: every Project call
// re-reads names and children, so a view is always as fresh as the store.
type Projector struct {
	repo  Repository
	names NameDirectory
}

func NewProjector(repo Repository, names NameDirectory) *Projector {
	return &Projector{repo: repo, names: names}
}

// Project builds the read-model for one session.
func (p *Projector) Project(ctx context.Context, sess *MedicalSession) (*AggregateView, error) {
	patientName, err := p.names.PatientName(ctx, sess.PatientID)
	if err != nil {
		return nil, fmt.Errorf("resolve patient name: %w", err)
	}
	if patientName == "" {
		patientName = "Unknown"
	}
	doctorName, err := p.names.DoctorName(ctx, sess.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("resolve doctor name: %w", err)
	}
	if doctorName == "" {
		doctorName = "Unknown"
	}

	vitals, err := p.repo.GetVitalSigns(ctx, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load vital signs: %w", err)
	}
	symptoms, err := p.repo.GetSymptoms(ctx, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load symptoms: %w", err)
	}
	diagnoses, err := p.repo.GetDiagnoses(ctx, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load diagnoses: %w", err)
	}
	prescriptions, err := p.repo.GetPrescriptions(ctx, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load prescriptions: %w", err)
	}
	plans, err := p.repo.GetTreatmentPlans(ctx, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load treatment plans: %w", err)
	}

	view := &AggregateView{
		SessionID:      sess.SessionID,
		AppointmentID:  sess.AppointmentID,
		PatientID:      sess.PatientID,
		PatientName:    patientName,
		DoctorID:       sess.DoctorID,
		DoctorName:     doctorName,
		SessionDate:    isoTime(sess.SessionDate),
		Status:         sess.Status,
		ChiefComplaint: sess.ChiefComplaint,
		SessionNotes:   sess.SessionNotes,
		CreatedAt:      isoTime(sess.CreatedAt),
		UpdatedAt:      isoTime(sess.UpdatedAt),
		VitalSigns:     make([]VitalSignView, 0, len(vitals)),
		Symptoms:       make([]SymptomView, 0, len(symptoms)),
		Diagnoses:      make([]DiagnosisView, 0, len(diagnoses)),
		Prescriptions:  make([]PrescriptionView, 0, len(prescriptions)),
		TreatmentPlans: make([]TreatmentPlanView, 0, len(plans)),
	}

	for _, v := range vitals {
		view.VitalSigns = append(view.VitalSigns, VitalSignView{
			VitalID:          v.VitalID,
			BloodPressure:    bloodPressure(v.BloodPressureSystolic, v.BloodPressureDiastolic),
			HeartRate:        v.HeartRate,
			Temperature:      v.Temperature,
			Weight:           v.Weight,
			Height:           v.Height,
			RespiratoryRate:  v.RespiratoryRate,
			OxygenSaturation: v.OxygenSaturation,
			RecordedAt:       isoTime(v.RecordedAt),
		})
	}
	for _, s := range symptoms {
		view.Symptoms = append(view.Symptoms, SymptomView{
			SymptomID:   s.SymptomID,
			Description: s.Description,
			Severity:    s.Severity,
			Duration:    s.Duration,
			Notes:       s.Notes,
			RecordedAt:  isoTime(s.RecordedAt),
		})
	}
	for _, d := range diagnoses {
		view.Diagnoses = append(view.Diagnoses, DiagnosisView{
			DiagnosisID: d.DiagnosisID,
			Code:        d.Code,
			Description: d.Description,
			Type:        d.Type,
			Confidence:  d.Confidence,
			Notes:       d.Notes,
			DiagnosedAt: isoTime(d.DiagnosedAt),
		})
	}
	for _, pr := range prescriptions {
		view.Prescriptions = append(view.Prescriptions, PrescriptionView{
			PrescriptionID: pr.PrescriptionID,
			MedicationName: pr.MedicationName,
			Dosage:         pr.Dosage,
			Frequency:      pr.Frequency,
			Duration:       pr.Duration,
			Instructions:   pr.Instructions,
			PrescribedDate: isoTime(pr.PrescribedDate),
		})
	}
	for _, t := range plans {
		view.TreatmentPlans = append(view.TreatmentPlans, TreatmentPlanView{
			PlanID:           t.PlanID,
			Description:      t.Description,
			StartDate:        isoTimePtr(t.StartDate),
			EndDate:          isoTimePtr(t.EndDate),
			Status:           t.Status,
			FollowUpRequired: t.FollowUpRequired,
			FollowUpDate:     isoTimePtr(t.FollowUpDate),
			Notes:            t.Notes,
			CreatedAt:        isoTime(t.CreatedAt),
		})
	}

	return view, nil
}

// ProjectAll builds views for each session, preserving the input order.
func (p *Projector) ProjectAll(ctx context.Context, sessions []*MedicalSession) ([]*AggregateView, error) {
	views := make([]*AggregateView, 0, len(sessions))
	for _, sess := range sessions {
		view, err := p.Project(ctx, sess)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func isoTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func isoTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return isoTime(*t)
}

func bloodPressure(systolic, diastolic *int) *string {
	if systolic == nil || diastolic == nil {
		return nil
	}
	s := fmt.Sprintf("%d/%d", *systolic, *diastolic)
	return &s
}
