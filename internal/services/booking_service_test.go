package services_test

import (
	"testing"
	"time"

	"gorent/internal/models"
	"gorent/internal/repositories"
	"gorent/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCarRepository is a mock implementation of repositories.CarRepository
type MockCarRepository struct {
	mock.Mock
}

func (m *MockCarRepository) GetAll(onlyActive bool) ([]models.Car, error) {
	args := m.Called(onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Car), args.Error(1)
}

func (m *MockCarRepository) GetByID(id string) (*models.Car, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}

func (m *MockCarRepository) Create(car *models.Car) error {
	args := m.Called(car)
	return args.Error(0)
}

func (m *MockCarRepository) Update(car *models.Car) error {
	args := m.Called(car)
	return args.Error(0)
}

func (m *MockCarRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

type bookingFixture struct {
	orderRepo  *repositories.MockOrderRepository
	carRepo    *MockCarRepository
	userRepo   *MockUserRepository
	couponRepo *MockCouponRepository
	service    *services.BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		orderRepo:  repositories.NewMockOrderRepository(),
		carRepo:    new(MockCarRepository),
		userRepo:   new(MockUserRepository),
		couponRepo: new(MockCouponRepository),
	}
	f.service = services.NewBookingService(
		f.orderRepo, f.carRepo, f.userRepo,
		services.NewPricingService(),
		services.NewCouponService(f.couponRepo),
	)
	return f
}

func verifiedUser() *models.User {
	return &models.User{
		ID:        "user-1",
		Username:  "renter",
		FirstName: "Rita",
		Email:     "rita@example.com",
		IsActive:  true,
		KYCStatus: models.KYCApproved,
	}
}

func activeCar() *models.Car {
	return &models.Car{
		ID:          "car-1",
		Brand:       "Maruti",
		CarModel:    "Swift",
		HourlyPrice: 120,
		Deposit:     2000,
		CarType:     "HATCHBACK",
		Active:      true,
	}
}

func bookingWindow() (time.Time, time.Time) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

func TestBookingService_CreateBooking(t *testing.T) {
	f := newBookingFixture()
	start, end := bookingWindow()

	f.userRepo.On("GetByID", "user-1").Return(verifiedUser(), nil)
	f.carRepo.On("GetByID", "car-1").Return(activeCar(), nil)

	order, err := f.service.CreateBooking("user-1", services.BookingRequest{
		CarID:           "car-1",
		StartTime:       start,
		EndTime:         end,
		ProtectionLevel: 277,
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentInitiated, order.PaymentStatus)
	assert.Equal(t, models.BookingPending, order.BookingStatus)
	assert.Equal(t, 2880.0, order.BaseRental) // 24h * 120
	assert.Equal(t, 277.0, order.ProtectionFee)
	assert.Equal(t, 3157.0, order.TotalAmount)
	assert.Equal(t, 2000.0, order.Deposit)
	assert.Equal(t, "bike_rc", order.DepositType) // default when unset
	assert.NotEmpty(t, order.ID)
}

func TestBookingService_CreateBooking_RequiresApprovedKYC(t *testing.T) {
	f := newBookingFixture()
	start, end := bookingWindow()

	for _, status := range []models.KYCStatus{models.KYCNotSubmitted, models.KYCPending, models.KYCRejected} {
		user := verifiedUser()
		user.KYCStatus = status
		f.userRepo.On("GetByID", "user-1").Return(user, nil).Once()

		_, err := f.service.CreateBooking("user-1", services.BookingRequest{
			CarID:     "car-1",
			StartTime: start,
			EndTime:   end,
		})
		assert.ErrorIs(t, err, services.ErrKYCNotApproved, "status %s", status)
	}
	// The car repo was never consulted: the gate runs before everything else.
	f.carRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestBookingService_CreateBooking_InvalidDates(t *testing.T) {
	f := newBookingFixture()
	start, _ := bookingWindow()

	f.userRepo.On("GetByID", "user-1").Return(verifiedUser(), nil)
	f.carRepo.On("GetByID", "car-1").Return(activeCar(), nil)

	_, err := f.service.CreateBooking("user-1", services.BookingRequest{
		CarID:     "car-1",
		StartTime: start,
		EndTime:   start, // zero-length window
	})
	assert.ErrorIs(t, err, services.ErrInvalidDates)

	_, err = f.service.CreateBooking("user-1", services.BookingRequest{
		CarID:     "car-1",
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, services.ErrInvalidDates)
}

func TestBookingService_CreateBooking_InactiveCar(t *testing.T) {
	f := newBookingFixture()
	start, end := bookingWindow()

	car := activeCar()
	car.Active = false
	f.userRepo.On("GetByID", "user-1").Return(verifiedUser(), nil)
	f.carRepo.On("GetByID", "car-1").Return(car, nil)

	_, err := f.service.CreateBooking("user-1", services.BookingRequest{
		CarID:     "car-1",
		StartTime: start,
		EndTime:   end,
	})
	assert.ErrorIs(t, err, services.ErrCarInactive)
}

func TestBookingService_CreateBooking_OverlapRejected(t *testing.T) {
	f := newBookingFixture()
	start, end := bookingWindow()

	f.userRepo.On("GetByID", mock.Anything).Return(verifiedUser(), nil)
	f.carRepo.On("GetByID", "car-1").Return(activeCar(), nil)

	// An existing pending order occupies the slot.
	err := f.orderRepo.Create(&models.Order{
		UserID:        "other-user",
		CarID:         "car-1",
		StartTime:     start.Add(-2 * time.Hour),
		EndTime:       start.Add(2 * time.Hour),
		PaymentStatus: models.PaymentInitiated,
		BookingStatus: models.BookingPending,
	})
	assert.NoError(t, err)

	_, err = f.service.CreateBooking("user-1", services.BookingRequest{
		CarID:     "car-1",
		StartTime: start,
		EndTime:   end,
	})
	assert.ErrorIs(t, err, services.ErrCarUnavailable)

	// An adjacent window that only touches the boundary is fine.
	order, err := f.service.CreateBooking("user-1", services.BookingRequest{
		CarID:     "car-1",
		StartTime: start.Add(2 * time.Hour),
		EndTime:   end,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, order.ID)
}

func TestBookingService_CreateBooking_CancelledOrderDoesNotBlock(t *testing.T) {
	f := newBookingFixture()
	start, end := bookingWindow()

	f.userRepo.On("GetByID", mock.Anything).Return(verifiedUser(), nil)
	f.carRepo.On("GetByID", "car-1").Return(activeCar(), nil)

	err := f.orderRepo.Create(&models.Order{
		UserID:        "other-user",
		CarID:         "car-1",
		StartTime:     start,
		EndTime:       end,
		PaymentStatus: models.PaymentFailed,
		BookingStatus: models.BookingCancelled,
	})
	assert.NoError(t, err)

	_, err = f.service.CreateBooking("user-1", services.BookingRequest{
		CarID:     "car-1",
		StartTime: start,
		EndTime:   end,
	})
	assert.NoError(t, err)
}

func TestBookingService_CreateBooking_WithCoupon(t *testing.T) {
	f := newBookingFixture()
	start, end := bookingWindow()

	f.userRepo.On("GetByID", "user-1").Return(verifiedUser(), nil)
	f.carRepo.On("GetByID", "car-1").Return(activeCar(), nil)

	coupon := validCoupon() // 10% percentage coupon
	f.couponRepo.On("GetByCode", "SAVE10").Return(coupon, nil)

	order, err := f.service.CreateBooking("user-1", services.BookingRequest{
		CarID:      "car-1",
		StartTime:  start,
		EndTime:    end,
		CouponCode: "SAVE10",
	})
	assert.NoError(t, err)
	assert.Equal(t, coupon.ID, order.CouponID)
	assert.Equal(t, 288.0, order.Discount) // 10% of 2880
	assert.Equal(t, 2592.0, order.TotalAmount)

	// Usage is not counted at booking time, only on successful payment.
	f.couponRepo.AssertNotCalled(t, "IncrementUsage", mock.Anything)
}

func TestBookingService_CancelBooking(t *testing.T) {
	f := newBookingFixture()
	start, end := bookingWindow()

	f.userRepo.On("GetByID", "user-1").Return(verifiedUser(), nil)
	f.carRepo.On("GetByID", "car-1").Return(activeCar(), nil)

	order, err := f.service.CreateBooking("user-1", services.BookingRequest{
		CarID:     "car-1",
		StartTime: start,
		EndTime:   end,
	})
	assert.NoError(t, err)

	// Someone else cannot cancel it
	err = f.service.CancelBooking("user-2", order.ID, "changed my mind")
	assert.ErrorIs(t, err, services.ErrNotOrderOwner)

	// The owner can, once
	err = f.service.CancelBooking("user-1", order.ID, "changed my mind")
	assert.NoError(t, err)

	got, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, got.PaymentStatus)
	assert.Equal(t, models.BookingCancelled, got.BookingStatus)

	// A second cancel hits the terminal guard
	err = f.service.CancelBooking("user-1", order.ID, "again")
	assert.ErrorIs(t, err, services.ErrOrderNotPending)
}
