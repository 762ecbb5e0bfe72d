package session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/domain/scheduling"
)

type Handler struct {
	svc       *Service
	projector *Projector
}

func NewHandler(svc *Service, projector *Projector) *Handler {
	return &Handler{svc: svc, projector: projector}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments/:id/start-session", h.StartSession)
	api.GET("/medical-sessions/:id", h.GetSession)
	api.PUT("/medical-sessions/:id", h.UpdateSession)
	api.POST("/medical-sessions/:id/complete", h.CompleteSession)
	api.POST("/medical-sessions/:id/vital-signs", h.AddVitalSign)
	api.POST("/medical-sessions/:id/symptoms", h.AddSymptom)
	api.POST("/medical-sessions/:id/diagnoses", h.AddDiagnosis)
	api.POST("/medical-sessions/:id/prescriptions", h.AddPrescription)
	api.POST("/medical-sessions/:id/treatment-plans", h.AddTreatmentPlan)
	api.GET("/doctors/:id/active-sessions", h.ActiveSessionsForDoctor)
	api.GET("/patients/:id/medical-history", h.MedicalHistory)
}

func (h *Handler) StartSession(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	result, err := h.svc.StartSession(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, scheduling.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	message := "Medical session started"
	status := http.StatusCreated
	if result.PreExisting {
		message = "Medical session already exists for this appointment"
		status = http.StatusOK
	}
	return c.JSON(status, map[string]interface{}{
		"session_id":   result.Session.SessionID,
		"message":      message,
		"pre_existing": result.PreExisting,
	})
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	sess, err := h.svc.GetSession(c.Request().Context(), id)
	if err != nil {
		return sessionErr(err)
	}
	view, err := h.projector.Project(c.Request().Context(), sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

type updateSessionRequest struct {
	ChiefComplaint *string `json:"chief_complaint"`
	SessionNotes   *string `json:"session_notes"`
	Status         *string `json:"status"`
}

func (h *Handler) UpdateSession(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req updateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, err := h.svc.UpdateSession(c.Request().Context(), id, SessionUpdate{
		ChiefComplaint: req.ChiefComplaint,
		SessionNotes:   req.SessionNotes,
		Status:         req.Status,
	})
	if err != nil {
		return sessionErr(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "Medical session updated",
		"session_id": sess.SessionID,
		"status":     sess.Status,
	})
}

func (h *Handler) CompleteSession(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.CompleteSession(c.Request().Context(), id)
	if err != nil {
		return sessionErr(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "Medical session completed",
		"session_id": sess.SessionID,
	})
}

type vitalSignRequest struct {
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic"`
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic"`
	HeartRate              *int     `json:"heart_rate"`
	Temperature            *float64 `json:"temperature"`
	Weight                 *float64 `json:"weight"`
	Height                 *float64 `json:"height"`
	RespiratoryRate        *int     `json:"respiratory_rate"`
	OxygenSaturation       *int     `json:"oxygen_saturation"`
}

func (h *Handler) AddVitalSign(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req vitalSignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	v := VitalSign{
		SessionID:              id,
		BloodPressureSystolic:  req.BloodPressureSystolic,
		BloodPressureDiastolic: req.BloodPressureDiastolic,
		HeartRate:              req.HeartRate,
		Temperature:            req.Temperature,
		Weight:                 req.Weight,
		Height:                 req.Height,
		RespiratoryRate:        req.RespiratoryRate,
		OxygenSaturation:       req.OxygenSaturation,
	}
	if err := h.svc.AddVitalSign(c.Request().Context(), &v); err != nil {
		return childErr(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "Vital signs recorded",
		"vital_id": v.VitalID,
	})
}

type symptomRequest struct {
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	Duration    *string `json:"duration"`
	Notes       *string `json:"notes"`
}

func (h *Handler) AddSymptom(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req symptomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	s := Symptom{
		SessionID:   id,
		Description: req.Description,
		Severity:    req.Severity,
		Duration:    req.Duration,
		Notes:       req.Notes,
	}
	if err := h.svc.AddSymptom(c.Request().Context(), &s); err != nil {
		return childErr(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":    "Symptom recorded",
		"symptom_id": s.SymptomID,
	})
}

type diagnosisRequest struct {
	Code        *string `json:"code"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Confidence  string  `json:"confidence"`
	Notes       *string `json:"notes"`
}

func (h *Handler) AddDiagnosis(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req diagnosisRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	d := Diagnosis{
		SessionID:   id,
		Code:        req.Code,
		Description: req.Description,
		Type:        req.Type,
		Confidence:  req.Confidence,
		Notes:       req.Notes,
	}
	if err := h.svc.AddDiagnosis(c.Request().Context(), &d); err != nil {
		return childErr(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":      "Diagnosis recorded",
		"diagnosis_id": d.DiagnosisID,
	})
}

type prescriptionRequest struct {
	MedicationName string  `json:"medication_name"`
	Dosage         string  `json:"dosage"`
	Frequency      string  `json:"frequency"`
	Duration       string  `json:"duration"`
	Instructions   *string `json:"instructions"`
}

func (h *Handler) AddPrescription(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req prescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := Prescription{
		SessionID:      id,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		Duration:       req.Duration,
		Instructions:   req.Instructions,
	}
	if err := h.svc.AddPrescription(c.Request().Context(), &p); err != nil {
		return childErr(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":         "Prescription recorded",
		"prescription_id": p.PrescriptionID,
	})
}

type treatmentPlanRequest struct {
	Description      string     `json:"description"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Status           string     `json:"status"`
	FollowUpRequired bool       `json:"follow_up_required"`
	FollowUpDate     *time.Time `json:"follow_up_date"`
	Notes            *string    `json:"notes"`
}

func (h *Handler) AddTreatmentPlan(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req treatmentPlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t := TreatmentPlan{
		SessionID:        id,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Status:           req.Status,
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     req.FollowUpDate,
		Notes:            req.Notes,
	}
	if err := h.svc.AddTreatmentPlan(c.Request().Context(), &t); err != nil {
		return childErr(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Treatment plan recorded",
		"plan_id": t.PlanID,
	})
}

func (h *Handler) ActiveSessionsForDoctor(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	sessions, err := h.svc.ListActiveSessionsForDoctor(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	views, err := h.projector.ProjectAll(c.Request().Context(), sessions)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) MedicalHistory(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	sessions, err := h.svc.ListSessionsForPatient(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	views, err := h.projector.ProjectAll(c.Request().Context(), sessions)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, views)
}

func sessionErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "medical session not found")
	case errors.Is(err, ErrSessionCompleted):
		return echo.NewHTTPError(http.StatusBadRequest, "medical session is completed")
	case errors.Is(err, ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// childErr separates bad payloads from store failures: only validation
// errors are the client's fault, anything else (FK violation, store
// outage) is a persistence failure.
func childErr(err error) error {
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidStatus) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
