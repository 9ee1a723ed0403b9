package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/soteria/accounts-system/internal/core/domain"
	"github.com/soteria/accounts-system/internal/core/ports"
)

type stubRegistrationService struct {
	registerFn  func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	availableFn func(ctx context.Context, username string) (bool, error)
}

func (s *stubRegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubRegistrationService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	return s.availableFn(ctx, username)
}

func newRegisterContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/accounts/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAccountHandler_Register_Success(t *testing.T) {
	e := echo.New()
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Password != "goodpassw" || in.Role != "user" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "id-1", Username: in.Username, PasswordHash: "$2a$fake", Role: in.Role}, nil
		},
	}
	h := NewAccountHandler(stub)

	c, rec := newRegisterContext(e, `{"username":"alice","password":"goodpassw","role":"user"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	account, ok := resp["account"].(map[string]any)
	if !ok {
		t.Fatalf("expected account in response")
	}
	if account["username"] != "alice" || account["role"] != "user" || account["id"] != "id-1" {
		t.Fatalf("unexpected account payload: %+v", account)
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("password hash leaked into response: %s", rec.Body.String())
	}
}

func TestAccountHandler_Register_ValidationShortCircuits(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		kind  domain.ValidationKind
		field string
	}{
		{"missing username", `{"password":"goodpassw","role":"user"}`, domain.MissingField, "username"},
		{"numeric password", `{"username":"bob","password":12345678,"role":"user"}`, domain.TypeMismatch, "password"},
		{"untrimmed username", `{"username":" bob","password":"goodpassw","role":"user"}`, domain.UntrimmedField, "username"},
		{"short password", `{"username":"bob","password":"short1","role":"user"}`, domain.TooShort, "password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			stub := &stubRegistrationService{
				registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
					t.Fatalf("service must not be called for invalid input")
					return nil, nil
				},
			}
			h := NewAccountHandler(stub)

			c, _ := newRegisterContext(e, tc.body)
			err := h.Register(c)

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Kind != tc.kind || ve.Field != tc.field {
				t.Fatalf("expected %s on %s, got %v", tc.kind, tc.field, ve)
			}
		})
	}
}

func TestAccountHandler_Register_ExtraKeysIgnored(t *testing.T) {
	e := echo.New()
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return &domain.User{ID: "id-2", Username: in.Username, Role: in.Role}, nil
		},
	}
	h := NewAccountHandler(stub)

	c, rec := newRegisterContext(e, `{"username":"bob","password":"goodpassw","role":"user","remember_me":true}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAccountHandler_Register_DuplicatePropagates(t *testing.T) {
	e := echo.New()
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.NewDuplicateUsername()
		},
	}
	h := NewAccountHandler(stub)

	c, _ := newRegisterContext(e, `{"username":"bob","password":"goodpassw","role":"user"}`)
	err := h.Register(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Kind != domain.DuplicateUsername {
		t.Fatalf("expected DuplicateUsername, got %v", err)
	}
}

func TestAccountHandler_Register_InvalidPayload(t *testing.T) {
	e := echo.New()
	stub := &stubRegistrationService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAccountHandler(stub)

	c, _ := newRegisterContext(e, "not-json")
	err := h.Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAccountHandler_Availability(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubRegistrationService{
		availableFn: func(ctx context.Context, username string) (bool, error) {
			return username != "taken", nil
		},
	}
	h := NewAccountHandler(stub)

	for _, tc := range []struct {
		username  string
		available bool
	}{
		{"free", true},
		{"taken", false},
	} {
		req := httptest.NewRequest(http.MethodGet, "/accounts/"+tc.username+"/availability", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/accounts/:username/availability")
		c.SetParamNames("username")
		c.SetParamValues(tc.username)

		if err := h.Availability(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp availabilityResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if resp.Username != tc.username || resp.Available != tc.available {
			t.Fatalf("unexpected response: %+v", resp)
		}
	}
}
