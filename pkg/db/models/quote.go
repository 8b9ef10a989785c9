package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/omerfdemir/teklifix-backend/pkg/enums"
	"github.com/omerfdemir/teklifix-backend/pkg/types"
)

// Quote is the backend-owned entity a submitted quote request becomes.
// Items are a snapshot copied from the cart at submission time and never
// change afterwards; Pricing appears once an administrator prices the quote.
type Quote struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerName  string             `gorm:"column:customer_name;not null"`
	Company       *string            `gorm:"column:company"`
	Email         string             `gorm:"column:email;not null;index"`
	Phone         *string            `gorm:"column:phone"`
	Message       *string            `gorm:"column:message"`
	FileName      *string            `gorm:"column:file_name"`
	Items         types.QuoteItems   `gorm:"column:items;type:jsonb;serializer:json;not null"`
	Pricing       types.PricingLines `gorm:"column:pricing;type:jsonb;serializer:json"`
	Status        enums.QuoteStatus  `gorm:"column:status;not null;default:'pending'"`
	AdminNote     *string            `gorm:"column:admin_note"`
	SelectedItems pq.StringArray     `gorm:"column:selected_items;type:text[]"`
	ConvertedAt   *time.Time         `gorm:"column:converted_at"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
