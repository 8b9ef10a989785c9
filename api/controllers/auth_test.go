package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "github.com/omerfdemir/teklifix-backend/internal/auth"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
)

type stubAuthService struct {
	adminLoginFn       func(ctx context.Context, req authsvc.AdminLoginRequest) (*authsvc.AdminLoginResponse, error)
	customerRegisterFn func(ctx context.Context, req authsvc.CustomerRegisterRequest) (*authsvc.CustomerAuthResponse, error)
	customerLoginFn    func(ctx context.Context, req authsvc.CustomerLoginRequest) (*authsvc.CustomerAuthResponse, error)
}

func (s *stubAuthService) AdminLogin(ctx context.Context, req authsvc.AdminLoginRequest) (*authsvc.AdminLoginResponse, error) {
	return s.adminLoginFn(ctx, req)
}

func (s *stubAuthService) CustomerRegister(ctx context.Context, req authsvc.CustomerRegisterRequest) (*authsvc.CustomerAuthResponse, error) {
	return s.customerRegisterFn(ctx, req)
}

func (s *stubAuthService) CustomerLogin(ctx context.Context, req authsvc.CustomerLoginRequest) (*authsvc.CustomerAuthResponse, error) {
	return s.customerLoginFn(ctx, req)
}

func TestAdminLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got authsvc.AdminLoginRequest
		svc := &stubAuthService{adminLoginFn: func(ctx context.Context, req authsvc.AdminLoginRequest) (*authsvc.AdminLoginResponse, error) {
			got = req
			return &authsvc.AdminLoginResponse{AccessToken: "jwt", RefreshToken: "refresh"}, nil
		}}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/admin/login", strings.NewReader(`{"username":"operator","password":"secret-pass"}`))
		rec := httptest.NewRecorder()
		AdminLogin(svc, nil).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", rec.Code)
		}
		if got.Username != "operator" || got.Password != "secret-pass" {
			t.Fatalf("unexpected credentials: %+v", got)
		}

		var envelope struct {
			Data authsvc.AdminLoginResponse `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.AccessToken != "jwt" || envelope.Data.RefreshToken != "refresh" {
			t.Fatalf("unexpected token pair: %+v", envelope.Data)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := &stubAuthService{adminLoginFn: func(ctx context.Context, req authsvc.AdminLoginRequest) (*authsvc.AdminLoginResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/admin/login", strings.NewReader(`{"username":"operator","password":"wrong"}`))
		rec := httptest.NewRecorder()
		AdminLogin(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := &stubAuthService{adminLoginFn: func(ctx context.Context, req authsvc.AdminLoginRequest) (*authsvc.AdminLoginResponse, error) {
			t.Fatal("AdminLogin should not be called with an invalid payload")
			return nil, nil
		}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/admin/login", strings.NewReader(`{"username":"operator"}`))
		rec := httptest.NewRecorder()
		AdminLogin(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})
}

func TestCustomerRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubAuthService{customerRegisterFn: func(ctx context.Context, req authsvc.CustomerRegisterRequest) (*authsvc.CustomerAuthResponse, error) {
			return &authsvc.CustomerAuthResponse{AccessToken: "jwt"}, nil
		}}
		body := `{"name":"Ada Kaya","email":"ada@example.com","password":"long-enough-secret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CustomerRegister(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d", rec.Code)
		}
	})

	t.Run("short password", func(t *testing.T) {
		svc := &stubAuthService{customerRegisterFn: func(ctx context.Context, req authsvc.CustomerRegisterRequest) (*authsvc.CustomerAuthResponse, error) {
			t.Fatal("CustomerRegister should not be called with a short password")
			return nil, nil
		}}
		body := `{"name":"Ada Kaya","email":"ada@example.com","password":"short"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CustomerRegister(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := &stubAuthService{customerRegisterFn: func(ctx context.Context, req authsvc.CustomerRegisterRequest) (*authsvc.CustomerAuthResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}}
		body := `{"name":"Ada Kaya","email":"ada@example.com","password":"long-enough-secret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CustomerRegister(svc, nil).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 got %d", rec.Code)
		}
	})
}

func TestCustomerLogin(t *testing.T) {
	svc := &stubAuthService{customerLoginFn: func(ctx context.Context, req authsvc.CustomerLoginRequest) (*authsvc.CustomerAuthResponse, error) {
		return &authsvc.CustomerAuthResponse{AccessToken: "jwt", RefreshToken: "refresh"}, nil
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"long-enough-secret"}`))
	rec := httptest.NewRecorder()
	CustomerLogin(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
