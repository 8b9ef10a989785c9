package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a catalog listing shown to browsing customers.
type Product struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string         `gorm:"column:name;not null"`
	Description      *string        `gorm:"column:description"`
	Category         string         `gorm:"column:category;not null"`
	Images           pq.StringArray `gorm:"column:images;type:text[]"`
	Variation        *string        `gorm:"column:variation"`
	Variants         pq.StringArray `gorm:"column:variants;type:text[]"`
	MinOrderQuantity int            `gorm:"column:min_order_quantity;not null;default:1"`
	PriceRange       *string        `gorm:"column:price_range"`
	StockQuantity    *int           `gorm:"column:stock_quantity"`
	IsActive         bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
