package identity

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts identity routes. public receives the unauthenticated
// register/login endpoints; api is behind the JWT middleware.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/patients/register", h.RegisterPatient)
	public.POST("/doctors/register", h.RegisterDoctor)
	public.POST("/admins/register", h.RegisterAdmin)
	public.POST("/login", h.Login)

	api.GET("/patients", h.ListPatients, auth.RequireAccountType("doctor", "admin"))
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.PUT("/doctors/:id", h.UpdateDoctor, auth.RequireAccountType("doctor", "admin"))
}

type registerPatientRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone"`
	Password       string  `json:"password"`
	Age            *int    `json:"age"`
	BloodGroup     *string `json:"blood_group"`
	MedicalHistory *string `json:"medical_history"`
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req registerPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := Patient{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Age:            req.Age,
		BloodGroup:     req.BloodGroup,
		MedicalHistory: req.MedicalHistory,
	}
	if err := h.svc.RegisterPatient(c.Request().Context(), &p, req.Password); err != nil {
		return registerErr(err)
	}
	return c.JSON(http.StatusCreated, p)
}

type registerDoctorRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	Password    string  `json:"password"`
	Department  *string `json:"department"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var req registerDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	d := Doctor{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Department:  req.Department,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := h.svc.RegisterDoctor(c.Request().Context(), &d, req.Password); err != nil {
		return registerErr(err)
	}
	return c.JSON(http.StatusCreated, d)
}

type registerAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) RegisterAdmin(c echo.Context) error {
	var req registerAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a := Admin{Name: req.Name, Email: req.Email}
	if err := h.svc.RegisterAdmin(c.Request().Context(), &a, req.Password); err != nil {
		return registerErr(err)
	}
	return c.JSON(http.StatusCreated, a)
}

type loginRequest struct {
	AccountType string `json:"account_type"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.AccountType == "" {
		req.AccountType = "patient"
	}

	result, err := h.svc.Login(c.Request().Context(), req.AccountType, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	existing, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req registerPatientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Phone != nil {
		existing.Phone = req.Phone
	}
	if req.Age != nil {
		existing.Age = req.Age
	}
	if req.BloodGroup != nil {
		existing.BloodGroup = req.BloodGroup
	}
	if req.MedicalHistory != nil {
		existing.MedicalHistory = req.MedicalHistory
	}

	if err := h.svc.UpdatePatient(c.Request().Context(), existing); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, existing)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), c.QueryParam("department"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	existing, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req registerDoctorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Phone != nil {
		existing.Phone = req.Phone
	}
	if req.Department != nil {
		existing.Department = req.Department
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.ImageURL != nil {
		existing.ImageURL = req.ImageURL
	}

	if err := h.svc.UpdateDoctor(c.Request().Context(), existing); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, existing)
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func registerErr(err error) error {
	if errors.Is(err, ErrEmailTaken) {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
