package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/omerfdemir/teklifix-backend/pkg/auth"
	"github.com/omerfdemir/teklifix-backend/pkg/auth/session"
	"github.com/omerfdemir/teklifix-backend/pkg/config"
	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
	"github.com/omerfdemir/teklifix-backend/pkg/enums"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

// Service defines the behavior needed by the auth controllers.
type Service interface {
	AdminLogin(ctx context.Context, req AdminLoginRequest) (*AdminLoginResponse, error)
	CustomerRegister(ctx context.Context, req CustomerRegisterRequest) (*CustomerAuthResponse, error)
	CustomerLogin(ctx context.Context, req CustomerLoginRequest) (*CustomerAuthResponse, error)
}

type service struct {
	repo        Repository
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Repo           Repository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("auth repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		repo:        params.Repo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) AdminLogin(ctx context.Context, req AdminLoginRequest) (*AdminLoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	admin, err := s.repo.FindAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}
	if err := s.checkPassword(req.Password, admin.PasswordHash, admin.IsActive); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateAdminLastLogin(ctx, admin.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	admin.LastLoginAt = &now

	accessToken, refreshToken, err := s.issueTokens(ctx, now, admin.ID, enums.ActorRoleAdmin, "")
	if err != nil {
		return nil, err
	}
	return &AdminLoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Admin:        adminFromModel(admin),
	}, nil
}

// CustomerRegister creates the account and signs the customer straight in,
// so the storefront never needs a second round trip.
func (s *service) CustomerRegister(ctx context.Context, req CustomerRegisterRequest) (*CustomerAuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	if _, err := s.repo.FindCustomerByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	customer, err := s.repo.CreateCustomer(ctx, &models.Customer{
		Name:         name,
		Email:        email,
		Company:      req.Company,
		Phone:        req.Phone,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}

	now := time.Now().UTC()
	accessToken, refreshToken, err := s.issueTokens(ctx, now, customer.ID, enums.ActorRoleCustomer, customer.Email)
	if err != nil {
		return nil, err
	}
	return &CustomerAuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Customer:     customerFromModel(customer),
	}, nil
}

func (s *service) CustomerLogin(ctx context.Context, req CustomerLoginRequest) (*CustomerAuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	customer, err := s.repo.FindCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}
	if err := s.checkPassword(req.Password, customer.PasswordHash, customer.IsActive); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateCustomerLastLogin(ctx, customer.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	customer.LastLoginAt = &now

	accessToken, refreshToken, err := s.issueTokens(ctx, now, customer.ID, enums.ActorRoleCustomer, customer.Email)
	if err != nil {
		return nil, err
	}
	return &CustomerAuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Customer:     customerFromModel(customer),
	}, nil
}

func (s *service) checkPassword(password, hash string, active bool) error {
	valid, err := security.VerifyPassword(password, hash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !active {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, now time.Time, actorID uuid.UUID, role enums.ActorRole, email string) (string, string, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		ActorID: actorID,
		Role:    role,
		Email:   email,
		JTI:     accessID,
	})
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	return accessToken, refreshToken, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
