package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorent/internal/models"
	"gorent/internal/repositories"
)

// Booking rule errors.
var (
	ErrKYCNotApproved  = errors.New("identity verification must be approved before booking")
	ErrInvalidDates    = errors.New("end time must be after start time")
	ErrCarInactive     = errors.New("car is not available for rent")
	ErrNotOrderOwner   = errors.New("order does not belong to this user")
	ErrOrderNotPending = errors.New("order is no longer pending")
)

// BookingRequest is the validated input for creating a booking.
type BookingRequest struct {
	CarID           string    `json:"car_id" validate:"required"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" validate:"required"`
	ProtectionLevel int       `json:"protection_level"`
	DepositType     string    `json:"deposit_type"`
	CouponCode      string    `json:"coupon_code"`
}

// BookingService drives the booking workflow up to the point of payment.
type BookingService struct {
	orderRepo repositories.OrderRepository
	carRepo   repositories.CarRepository
	userRepo  repositories.UserRepository
	pricing   *PricingService
	coupons   *CouponService
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	orderRepo repositories.OrderRepository,
	carRepo repositories.CarRepository,
	userRepo repositories.UserRepository,
	pricing *PricingService,
	coupons *CouponService,
) *BookingService {
	return &BookingService{
		orderRepo: orderRepo,
		carRepo:   carRepo,
		userRepo:  userRepo,
		pricing:   pricing,
		coupons:   coupons,
	}
}

// QuoteBooking computes the price for a prospective booking without creating
// an order. All amounts come from fleet data; client totals are ignored.
func (s *BookingService) QuoteBooking(req BookingRequest) (*Quote, error) {
	car, err := s.carRepo.GetByID(req.CarID)
	if err != nil {
		return nil, err
	}
	hours, err := rentalHours(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	var discount float64
	if req.CouponCode != "" {
		quote, err := s.pricing.Quote(car, hours, req.ProtectionLevel, 0)
		if err != nil {
			return nil, err
		}
		_, d, err := s.coupons.Validate(req.CouponCode, car, quote.Total)
		if err != nil {
			return nil, err
		}
		discount = d
	}
	return s.pricing.Quote(car, hours, req.ProtectionLevel, discount)
}

// CreateBooking validates the request and persists a pending order. The KYC
// gate runs first: a user without approved verification never reaches pricing
// or payment-order creation.
func (s *BookingService) CreateBooking(userID string, req BookingRequest) (*models.Order, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.KYCStatus != models.KYCApproved {
		return nil, ErrKYCNotApproved
	}

	car, err := s.carRepo.GetByID(req.CarID)
	if err != nil {
		return nil, err
	}
	if !car.Active {
		return nil, ErrCarInactive
	}

	hours, err := rentalHours(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	depositType := req.DepositType
	if depositType == "" {
		depositType = "bike_rc"
	}
	if !models.DepositTypes[depositType] {
		return nil, ErrInvalidDepositType
	}

	overlap, err := s.orderRepo.HasOverlap(req.CarID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if overlap {
		return nil, ErrCarUnavailable
	}

	var discount float64
	var couponID string
	if req.CouponCode != "" {
		base, err := s.pricing.Quote(car, hours, req.ProtectionLevel, 0)
		if err != nil {
			return nil, err
		}
		coupon, d, err := s.coupons.Validate(req.CouponCode, car, base.Total)
		if err != nil {
			return nil, err
		}
		discount = d
		couponID = coupon.ID
	}

	quote, err := s.pricing.Quote(car, hours, req.ProtectionLevel, discount)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:        userID,
		CarID:         car.ID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		BaseRental:    quote.BaseRental,
		ProtectionFee: quote.ProtectionFee,
		Discount:      quote.Discount,
		TotalAmount:   quote.Total,
		Deposit:       quote.Deposit,
		DepositType:   depositType,
		CouponID:      couponID,
		PaymentStatus: models.PaymentInitiated,
		BookingStatus: models.BookingPending,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

// GetUserOrders lists a user's orders.
func (s *BookingService) GetUserOrders(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUser(userID)
}

// GetUserOrder fetches one order and checks ownership.
func (s *BookingService) GetUserOrder(userID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

// CancelBooking is the user-initiated cancellation, allowed only while the
// payment is still pre-terminal.
func (s *BookingService) CancelBooking(userID, orderID, reason string) error {
	order, err := s.GetUserOrder(userID, orderID)
	if err != nil {
		return err
	}
	cancelled, err := s.orderRepo.Cancel(order.ID, reason)
	if err != nil {
		return err
	}
	if !cancelled {
		return ErrOrderNotPending
	}
	return nil
}

// GetAllOrders lists every order (admin).
func (s *BookingService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// OverrideStatus force-sets an order's payment and booking status, bypassing
// the pre-terminal guard. Admin only; every call is logged by the handler.
func (s *BookingService) OverrideStatus(orderID string, payment models.PaymentStatus, booking models.BookingStatus) error {
	if _, err := s.orderRepo.GetByID(orderID); err != nil {
		return err
	}
	return s.orderRepo.OverrideStatus(orderID, payment, booking)
}

// rentalHours converts a rental window to whole billable hours, rounding up.
func rentalHours(start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, ErrInvalidDates
	}
	return int(math.Ceil(end.Sub(start).Hours())), nil
}
