package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount rule kinds.
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

// Coupon is a discount code. It is read-only at redemption time; only the
// usage count is incremented, and only on successful payment.
type Coupon struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Code         string    `json:"code" gorm:"uniqueIndex;type:varchar(40)" validate:"required,min=3,max=40"`
	Description  string    `json:"description" validate:"omitempty,max=500"`
	DiscountType string    `json:"discount_type" gorm:"type:varchar(20);default:'PERCENTAGE'" validate:"required,oneof=PERCENTAGE FIXED"`
	Discount     float64   `json:"discount" validate:"required,gt=0"`
	MaxDiscount  float64   `json:"max_discount" validate:"gte=0"` // Cap for percentage coupons, 0 = uncapped
	MinAmount    float64   `json:"min_amount" validate:"gte=0"`
	ExpiresAt    time.Time `json:"expires_at" validate:"required"`
	UsageLimit   int       `json:"usage_limit" validate:"gte=0"` // 0 = unlimited
	UsageCount   int       `json:"usage_count" gorm:"default:0"`
	CarType      string    `json:"car_type,omitempty" gorm:"type:varchar(20)" validate:"omitempty,oneof=SUV SEDAN HATCHBACK"`
	Active       bool      `json:"active" gorm:"default:true"`
	gorm.Model             // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
