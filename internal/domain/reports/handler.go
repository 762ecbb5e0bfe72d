package reports

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/blobstore"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts report routes. The signed download endpoint goes on
// the public group: the URL signature is its access control.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	api.POST("/reports", h.Upload)
	api.GET("/reports/:id", h.Get)
	api.GET("/reports/:id/file", h.Download)
	api.GET("/reports/:id/signed-url", h.SignedURL)
	api.DELETE("/reports/:id", h.Delete)
	api.GET("/patients/:id/reports", h.ListByPatient)

	public.GET("/reports/download/:blobId", h.DownloadSigned)
}

func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open uploaded file")
	}
	defer src.Close()

	patientID, err := strconv.ParseInt(c.FormValue("patient_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	doctorID, err := strconv.ParseInt(c.FormValue("doctor_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
	}
	var appointmentID *int64
	if v := c.FormValue("appointment_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment_id")
		}
		appointmentID = &id
	}

	rep, err := h.svc.Upload(c.Request().Context(), UploadInput{
		PatientID:     patientID,
		DoctorID:      doctorID,
		AppointmentID: appointmentID,
		Title:         c.FormValue("title"),
		FileName:      file.Filename,
		ContentType:   file.Header.Get("Content-Type"),
		Category:      c.FormValue("category"),
	}, src)
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrFileTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, blobstore.ErrInvalidContentType):
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, rep)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	rep, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return reportErr(err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) Download(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	rep, rc, err := h.svc.Download(c.Request().Context(), id)
	if err != nil {
		return reportErr(err)
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.FileName))
	return c.Stream(http.StatusOK, rep.ContentType, rc)
}

func (h *Handler) SignedURL(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	url, err := h.svc.SignedURL(c.Request().Context(), id)
	if err != nil {
		return reportErr(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) DownloadSigned(c echo.Context) error {
	blobID := c.Param("blobId")
	rc, meta, err := h.svc.DownloadByBlob(c.Request().Context(),
		blobID, c.QueryParam("expires"), c.QueryParam("sig"))
	if err != nil {
		if errors.Is(err, blobstore.ErrSignatureInvalid) {
			return echo.NewHTTPError(http.StatusForbidden, "link is invalid or expired")
		}
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "file not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, meta.FileName))
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return reportErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	reps, total, err := h.svc.ListByPatient(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reps, total, pg.Limit, pg.Offset))
}

func reportErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
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
