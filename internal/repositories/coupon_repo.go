package repositories

import "gorent/internal/models"

// CouponRepository defines the interface for coupon data access.
//
// IncrementUsage is conditional: it only counts a redemption while the coupon
// is still under its usage limit, and reports whether the increment applied.
type CouponRepository interface {
	GetAll() ([]models.Coupon, error)
	GetByID(id string) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	Delete(id string) error
	IncrementUsage(id string) (bool, error)
}
