package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// brokenRepo fails every child append the way an unreachable store would.
type brokenRepo struct {
	Repository
}

func (brokenRepo) AddVitalSign(context.Context, *VitalSign) error {
	return fmt.Errorf("dial tcp 127.0.0.1:5432: connect: connection refused")
}

func postJSON(t *testing.T, h echo.HandlerFunc, sessionID, body string) (int, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(sessionID)
	err := h(c)
	if err == nil {
		return rec.Code, nil
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	return he.Code, err
}

func TestAddVitalSign_StoreFailureIsServerError(t *testing.T) {
	svc := NewService(brokenRepo{}, nil, nil)
	h := NewHandler(svc, nil)

	code, err := postJSON(t, h.AddVitalSign, "1", `{"heart_rate":70}`)
	if err == nil {
		t.Fatal("expected error")
	}
	if code != http.StatusInternalServerError {
		t.Errorf("expected 500 for a store failure, got %d", code)
	}
}

func TestAddSymptom_BadPayloadIsClientError(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc, nil)

	code, err := postJSON(t, h.AddSymptom, "1", `{"description":"fever","severity":"catastrophic"}`)
	if err == nil {
		t.Fatal("expected error")
	}
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for an invalid severity, got %d", code)
	}

	code, err = postJSON(t, h.AddSymptom, "1", `{"severity":"mild"}`)
	if err == nil {
		t.Fatal("expected error")
	}
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for a missing description, got %d", code)
	}
}
