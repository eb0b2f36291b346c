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

	"github.com/userhub/identity-service/internal/core/domain"
)

type stubIdentityService struct {
	registerFn       func(ctx context.Context, username, email, password string) (*domain.User, error)
	loginFn          func(ctx context.Context, identifier, password string) (string, *domain.User, error)
	forgotPasswordFn func(ctx context.Context, identifier string) error
	resetPasswordFn  func(ctx context.Context, secret, newPassword string) error
}

func (s *stubIdentityService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return s.registerFn(ctx, username, email, password)
}

func (s *stubIdentityService) Authenticate(context.Context, string, string) (*domain.User, error) {
	return nil, nil
}

func (s *stubIdentityService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, identifier, password)
}

func (s *stubIdentityService) ForgotPassword(ctx context.Context, identifier string) error {
	return s.forgotPasswordFn(ctx, identifier)
}

func (s *stubIdentityService) ResetPassword(ctx context.Context, secret, newPassword string) error {
	return s.resetPasswordFn(ctx, secret, newPassword)
}

func newJSONContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubIdentityService{
		registerFn: func(ctx context.Context, username, email, password string) (*domain.User, error) {
			if username != "alice" || email != "a@x.com" || password != "password123" {
				t.Fatalf("unexpected args: %s %s", username, email)
			}
			return &domain.User{ID: "user-1", Username: username, Email: email, Role: domain.RoleUser, IsActive: true}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"a@x.com","password":"password123"}`)

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
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["username"] != "alice" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Register_ValidationRejected(t *testing.T) {
	stub := &stubIdentityService{
		registerFn: func(context.Context, string, string, string) (*domain.User, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	tests := []struct {
		name string
		body string
	}{
		{"short password", `{"username":"alice","email":"a@x.com","password":"short"}`},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"password123"}`},
		{"missing username", `{"email":"a@x.com","password":"password123"}`},
		{"not json", `not-json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newJSONContext(t, http.MethodPost, "/auth/register", tt.body)
			err := h.Register(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	stub := &stubIdentityService{
		registerFn: func(context.Context, string, string, string) (*domain.User, error) {
			return nil, &domain.ConflictError{Field: "email"}
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"a@x.com","password":"password123"}`)

	err := h.Register(c)
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error to propagate, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, identifier, password string) (string, *domain.User, error) {
			if identifier != "alice" {
				t.Fatalf("unexpected identifier: %s", identifier)
			}
			return "signed-token", &domain.User{Username: "alice"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/login",
		`{"identifier":"alice","password":"password123"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "signed-token" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_Unauthorized(t *testing.T) {
	stub := &stubIdentityService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/login",
		`{"identifier":"alice","password":"wrong-pass"}`)

	if err := h.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestAuthHandler_ForgotPassword_IdenticalResponses(t *testing.T) {
	// The handler response must be byte-identical whether or not the account
	// exists; only the stubbed service knows the difference.
	bodies := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		stub := &stubIdentityService{
			forgotPasswordFn: func(context.Context, string) error {
				return nil
			},
		}
		h := NewAuthHandler(stub)

		c, rec := newJSONContext(t, http.MethodPost, "/auth/forgot-password",
			`{"email":"someone@x.com"}`)
		if err := h.ForgotPassword(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("responses differ:\n%s\n%s", bodies[0], bodies[1])
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	stub := &stubIdentityService{
		resetPasswordFn: func(ctx context.Context, secret, newPassword string) error {
			if secret != "the-secret" || newPassword != "newpassword1" {
				t.Fatalf("unexpected args: %s %s", secret, newPassword)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/reset-password",
		`{"reset_token":"the-secret","new_password":"newpassword1"}`)

	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ResetPassword_Invalid(t *testing.T) {
	stub := &stubIdentityService{
		resetPasswordFn: func(context.Context, string, string) error {
			return domain.ErrResetTokenInvalid
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/reset-password",
		`{"reset_token":"bogus-secret","new_password":"newpassword1"}`)

	if err := h.ResetPassword(c); err != domain.ErrResetTokenInvalid {
		t.Fatalf("expected ErrResetTokenInvalid to propagate, got %v", err)
	}
}
