package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soteria/accounts-system/internal/core/domain"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())
	return e
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestErrorHandler_ValidationErrorEnvelope(t *testing.T) {
	e := newTestEcho()
	e.GET("/boom", func(c echo.Context) error {
		return &domain.ValidationError{
			Kind:    domain.TooShort,
			Field:   "password",
			Message: "Must be at least 8 characters long",
		}
	})

	rec := serve(e, http.MethodGet, "/boom")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if env.Code != 422 || env.Reason != "ValidationError" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Location != "password" || env.Message != "Must be at least 8 characters long" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestErrorHandler_DuplicateUsernameEnvelope(t *testing.T) {
	e := newTestEcho()
	e.GET("/boom", func(c echo.Context) error {
		return domain.NewDuplicateUsername()
	})

	rec := serve(e, http.MethodGet, "/boom")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if env.Location != "username" || env.Message != "Username already taken" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestErrorHandler_InternalErrorIsGeneric(t *testing.T) {
	e := newTestEcho()
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("pq: connection refused at 10.0.0.7:5432")
	})

	rec := serve(e, http.MethodGet, "/boom")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.7") {
		t.Fatalf("internal detail leaked to client: %s", rec.Body.String())
	}

	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if env.Code != 500 || env.Reason != "InternalError" || env.Message != "internal server error" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestErrorHandler_SingleResponse(t *testing.T) {
	// A handler that has already written a response must not be answered a
	// second time by the error handler.
	e := newTestEcho()
	e.GET("/half", func(c echo.Context) error {
		if err := c.JSON(http.StatusCreated, map[string]string{"status": "created"}); err != nil {
			return err
		}
		return domain.NewDuplicateUsername()
	})

	rec := serve(e, http.MethodGet, "/half")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected the first response to win, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Username already taken") {
		t.Fatalf("second response appended to body: %s", rec.Body.String())
	}
}

func TestErrorHandler_EchoErrorsPassThrough(t *testing.T) {
	e := newTestEcho()

	rec := serve(e, http.MethodGet, "/no-such-route")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if env.Code != http.StatusNotFound {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
