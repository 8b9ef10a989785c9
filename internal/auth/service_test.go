package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/omerfdemir/teklifix-backend/pkg/auth"
	"github.com/omerfdemir/teklifix-backend/pkg/config"
	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	"github.com/omerfdemir/teklifix-backend/pkg/enums"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "teklifix",
	ExpirationMinutes: 30,
}

func TestAdminLoginIssuesAdminClaims(t *testing.T) {
	password := "admin-secret"
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Username:     "operator",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}

	svc, repo := buildTestService(t, &stubAuthRepo{admin: admin})

	resp, err := svc.AdminLogin(context.Background(), AdminLoginRequest{
		Username: "operator",
		Password: password,
	})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.ActorRoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
	if claims.ActorID != admin.ID {
		t.Fatalf("expected actor id %s, got %s", admin.ID, claims.ActorID)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if resp.Admin == nil || resp.Admin.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
	if !repo.adminLoginTouched {
		t.Fatalf("expected last login write to hit the repository")
	}
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Username:     "operator",
		PasswordHash: mustHashPassword(t, "right-password"),
		IsActive:     true,
	}
	svc, _ := buildTestService(t, &stubAuthRepo{admin: admin})

	_, err := svc.AdminLogin(context.Background(), AdminLoginRequest{
		Username: "operator",
		Password: "wrong-password",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestAdminLoginRejectsInactiveAccount(t *testing.T) {
	password := "admin-secret"
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Username:     "operator",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     false,
	}
	svc, _ := buildTestService(t, &stubAuthRepo{admin: admin})

	_, err := svc.AdminLogin(context.Background(), AdminLoginRequest{
		Username: "operator",
		Password: password,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestCustomerRegisterHashesAndSignsIn(t *testing.T) {
	repo := &stubAuthRepo{}
	svc, _ := buildTestService(t, repo)

	resp, err := svc.CustomerRegister(context.Background(), CustomerRegisterRequest{
		Name:     "Ada Kaya",
		Email:    "Ada@Example.com",
		Password: "long-enough-secret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if repo.createdCustomer == nil {
		t.Fatalf("expected customer row to be created")
	}
	if repo.createdCustomer.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %s", repo.createdCustomer.Email)
	}
	if repo.createdCustomer.PasswordHash == "long-enough-secret" {
		t.Fatalf("password must never be stored in the clear")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.ActorRoleCustomer {
		t.Fatalf("expected customer role claim, got %s", claims.Role)
	}
	if claims.Email != "ada@example.com" {
		t.Fatalf("expected email claim, got %s", claims.Email)
	}
}

func TestCustomerRegisterRejectsDuplicateEmail(t *testing.T) {
	existing := &models.Customer{
		ID:    uuid.New(),
		Email: "ada@example.com",
	}
	svc, _ := buildTestService(t, &stubAuthRepo{customer: existing})

	_, err := svc.CustomerRegister(context.Background(), CustomerRegisterRequest{
		Name:     "Ada Kaya",
		Email:    "ada@example.com",
		Password: "long-enough-secret",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCustomerRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := buildTestService(t, &stubAuthRepo{})

	_, err := svc.CustomerRegister(context.Background(), CustomerRegisterRequest{
		Name:     "Ada Kaya",
		Email:    "ada@example.com",
		Password: "short",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCustomerLoginUnknownEmail(t *testing.T) {
	svc, _ := buildTestService(t, &stubAuthRepo{})

	_, err := svc.CustomerLogin(context.Background(), CustomerLoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestCustomerLoginSucceeds(t *testing.T) {
	password := "customer-secret"
	customer := &models.Customer{
		ID:           uuid.New(),
		Name:         "Ada Kaya",
		Email:        "ada@example.com",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}
	svc, repo := buildTestService(t, &stubAuthRepo{customer: customer})

	resp, err := svc.CustomerLogin(context.Background(), CustomerLoginRequest{
		Email:    "ADA@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("customer login: %v", err)
	}
	if resp.Customer == nil || resp.Customer.Email != "ada@example.com" {
		t.Fatalf("unexpected customer payload: %+v", resp.Customer)
	}
	if !repo.customerLoginTouched {
		t.Fatalf("expected last login write to hit the repository")
	}
}

func buildTestService(t *testing.T, repo *stubAuthRepo) (Service, *stubAuthRepo) {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:           repo,
		SessionManager: &stubSessionManager{refreshToken: "refresh-token"},
		JWTConfig:      testJWTConfig,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubAuthRepo struct {
	admin    *models.AdminUser
	customer *models.Customer

	createdCustomer      *models.Customer
	adminLoginTouched    bool
	customerLoginTouched bool
}

func (s *stubAuthRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAuthRepo) FindAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	if s.admin == nil || s.admin.Username != username {
		return nil, gorm.ErrRecordNotFound
	}
	return s.admin, nil
}

func (s *stubAuthRepo) UpdateAdminLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.adminLoginTouched = true
	return nil
}

func (s *stubAuthRepo) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if s.customer == nil || s.customer.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.customer, nil
}

func (s *stubAuthRepo) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	customer.ID = uuid.New()
	s.createdCustomer = customer
	return customer, nil
}

func (s *stubAuthRepo) UpdateCustomerLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.customerLoginTouched = true
	return nil
}

type stubSessionManager struct {
	refreshToken string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return s.refreshToken, nil
}
