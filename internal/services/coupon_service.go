package services

import (
	"errors"
	"fmt"
	"time"

	"gorent/internal/models"
	"gorent/internal/repositories"
)

// Coupon rejection reasons. Each maps to a specific message for the user.
var (
	ErrCouponNotFound  = errors.New("invalid coupon code")
	ErrCouponInactive  = errors.New("this coupon is no longer active")
	ErrCouponExpired   = errors.New("this coupon has expired")
	ErrCouponExhausted = errors.New("this coupon has reached its usage limit")
	ErrCouponMinAmount = errors.New("order amount is below the coupon minimum")
	ErrCouponWrongCar  = errors.New("this coupon is not applicable to this car")
)

// CouponService handles coupon validation and redemption.
type CouponService struct {
	couponRepo repositories.CouponRepository
	now        func() time.Time
}

// NewCouponService creates a new CouponService.
func NewCouponService(couponRepo repositories.CouponRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		now:        time.Now,
	}
}

// Validate checks a coupon against the booking and returns it together with
// the discount it grants on the given subtotal. The coupon is read-only here;
// usage is counted separately when payment succeeds.
func (s *CouponService) Validate(code string, car *models.Car, subtotal float64) (*models.Coupon, float64, error) {
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, 0, ErrCouponNotFound
	}
	if !coupon.Active {
		return nil, 0, ErrCouponInactive
	}
	if coupon.ExpiresAt.Before(s.now()) {
		return nil, 0, ErrCouponExpired
	}
	if coupon.UsageLimit > 0 && coupon.UsageCount >= coupon.UsageLimit {
		return nil, 0, ErrCouponExhausted
	}
	if coupon.MinAmount > 0 && subtotal < coupon.MinAmount {
		return nil, 0, ErrCouponMinAmount
	}
	if coupon.CarType != "" && car != nil && coupon.CarType != car.CarType {
		return nil, 0, ErrCouponWrongCar
	}

	return coupon, s.discountFor(coupon, subtotal), nil
}

// discountFor computes the discount a coupon grants on a subtotal.
// Percentage discounts are capped by MaxDiscount when set; fixed discounts
// never exceed the subtotal.
func (s *CouponService) discountFor(coupon *models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		discount = subtotal * coupon.Discount / 100
		if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
			discount = coupon.MaxDiscount
		}
	default: // FIXED
		discount = coupon.Discount
	}
	if discount > subtotal {
		discount = subtotal
	}
	return round2(discount)
}

// Redeem counts one use of the coupon. Called only after a successful payment.
// The increment is guarded at the repository so the usage limit holds under
// concurrent redemptions.
func (s *CouponService) Redeem(couponID string) error {
	applied, err := s.couponRepo.IncrementUsage(couponID)
	if err != nil {
		return fmt.Errorf("failed to redeem coupon %s: %w", couponID, err)
	}
	if !applied {
		return ErrCouponExhausted
	}
	return nil
}

// Admin CRUD passthroughs.

// GetAllCoupons retrieves all coupons.
func (s *CouponService) GetAllCoupons() ([]models.Coupon, error) {
	return s.couponRepo.GetAll()
}

// CreateCoupon creates a new coupon.
func (s *CouponService) CreateCoupon(coupon *models.Coupon) error {
	return s.couponRepo.Create(coupon)
}

// UpdateCoupon updates an existing coupon.
func (s *CouponService) UpdateCoupon(coupon *models.Coupon) error {
	return s.couponRepo.Update(coupon)
}

// DeleteCoupon deletes a coupon by its ID.
func (s *CouponService) DeleteCoupon(id string) error {
	return s.couponRepo.Delete(id)
}
