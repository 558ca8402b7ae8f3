package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus tracks the advance payment of an order through the gateway.
// Transitions only move forward: INITIATED -> ORDER_CREATED -> SUCCESSFUL or
// FAILED/CANCELLED. Terminal states are never left except by an explicit
// administrative override.
type PaymentStatus string

const (
	PaymentInitiated    PaymentStatus = "INITIATED"
	PaymentOrderCreated PaymentStatus = "ORDER_CREATED"
	PaymentSuccessful   PaymentStatus = "SUCCESSFUL"
	PaymentFailed       PaymentStatus = "FAILED"
	PaymentCancelled    PaymentStatus = "CANCELLED"
	PaymentRefunded     PaymentStatus = "REFUNDED"
)

// Terminal reports whether a payment status may no longer change.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentSuccessful, PaymentFailed, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

// BookingStatus is the rental lifecycle state of an order.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingBooked    BookingStatus = "BOOKED"
	BookingOngoing   BookingStatus = "ONGOING"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// PaymentStatuses enumerates every valid payment status, for input validation.
var PaymentStatuses = map[PaymentStatus]bool{
	PaymentInitiated:    true,
	PaymentOrderCreated: true,
	PaymentSuccessful:   true,
	PaymentFailed:       true,
	PaymentCancelled:    true,
	PaymentRefunded:     true,
}

// BookingStatuses enumerates every valid booking status, for input validation.
var BookingStatuses = map[BookingStatus]bool{
	BookingPending:   true,
	BookingApproved:  true,
	BookingBooked:    true,
	BookingOngoing:   true,
	BookingCompleted: true,
	BookingCancelled: true,
}

// BlockingBookingStatuses are the statuses that keep a car's time slot occupied.
var BlockingBookingStatuses = []BookingStatus{
	BookingPending, BookingApproved, BookingBooked, BookingOngoing,
}

// ProtectionLevels are the allowed damage-protection fees.
var ProtectionLevels = map[int]bool{0: true, 277: true, 477: true}

// DepositTypes are the accepted refundable-deposit choices.
var DepositTypes = map[string]bool{"bike_rc": true, "laptop": true, "cheque": true, "cash": true}

// Order represents a single rental transaction. It is created when a user
// proceeds to payment, mutated by the payment callback handler, and never
// deleted, only status-transitioned.
type Order struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID string `json:"user_id" gorm:"index;type:varchar(36)" validate:"required"`
	CarID  string `json:"car_id" gorm:"index;type:varchar(36)" validate:"required"`

	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`

	// Price components, computed server-side only.
	BaseRental    float64 `json:"base_rental"`
	ProtectionFee float64 `json:"protection_fee"`
	Discount      float64 `json:"discount"`
	TotalAmount   float64 `json:"total_amount"`
	Deposit       float64 `json:"deposit"`
	DepositType   string  `json:"deposit_type" gorm:"type:varchar(20)"`
	CouponID      string  `json:"coupon_id,omitempty" gorm:"type:varchar(36)"`

	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'INITIATED'"`
	BookingStatus BookingStatus `json:"booking_status" gorm:"type:varchar(20);default:'PENDING'"`

	// Gateway references, filled in by payment initiation and the callback.
	GatewayOrderID string `json:"gateway_order_id,omitempty" gorm:"index;type:varchar(64)"`
	TrackingID     string `json:"tracking_id,omitempty" gorm:"type:varchar(64)"`
	PaymentMode    string `json:"payment_mode,omitempty" gorm:"type:varchar(40)"`
	FailureReason  string `json:"failure_reason,omitempty"`

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	gorm.Model // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
