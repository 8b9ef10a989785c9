package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/omerfdemir/teklifix-backend/pkg/db/models"
)

// AdminLoginRequest captures the back-office credentials.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CustomerLoginRequest captures the storefront credentials.
type CustomerLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CustomerRegisterRequest is the storefront signup payload.
type CustomerRegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Company  *string `json:"company,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// AdminDTO is the admin account shape returned to clients. The password
// hash never leaves the service layer.
type AdminDTO struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CustomerDTO is the customer account shape returned to clients.
type CustomerDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Company     *string    `json:"company,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AdminLoginResponse contains the token pair plus the admin account.
type AdminLoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Admin        *AdminDTO `json:"admin"`
}

// CustomerAuthResponse contains the token pair plus the customer account.
// Register and login return the same shape.
type CustomerAuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Customer     *CustomerDTO `json:"customer"`
}

func adminFromModel(admin *models.AdminUser) *AdminDTO {
	if admin == nil {
		return nil
	}
	return &AdminDTO{
		ID:          admin.ID,
		Username:    admin.Username,
		LastLoginAt: admin.LastLoginAt,
		CreatedAt:   admin.CreatedAt,
	}
}

func customerFromModel(customer *models.Customer) *CustomerDTO {
	if customer == nil {
		return nil
	}
	return &CustomerDTO{
		ID:          customer.ID,
		Name:        customer.Name,
		Email:       customer.Email,
		Company:     customer.Company,
		Phone:       customer.Phone,
		LastLoginAt: customer.LastLoginAt,
		CreatedAt:   customer.CreatedAt,
	}
}
