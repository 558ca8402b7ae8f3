package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"gorent/internal/gateway/ccavenue"
	"gorent/internal/models"
	"gorent/internal/repositories"

	"github.com/google/uuid"
)

// Payment errors.
var (
	ErrPaymentNotPending = errors.New("order is not awaiting payment")
	ErrUnknownOrder      = errors.New("callback references an unknown order")
)

// EventPublisher publishes staff notifications. Satisfied by rabbitmq.Client.
type EventPublisher interface {
	PublishEvent(routingKey string, payload map[string]interface{}) error
}

// ConfirmationMailer sends the booking confirmation email. Satisfied by
// mailer.Mailer.
type ConfirmationMailer interface {
	SendBookingConfirmation(to, userName, orderID, carName, startTime, endTime string, total float64, trackingID string) error
}

// PaymentForm is everything the browser needs to redirect to the hosted
// payment page.
type PaymentForm struct {
	PaymentURL string `json:"payment_url"`
	MerchantID string `json:"merchant_id"`
	AccessCode string `json:"access_code"`
	EncRequest string `json:"enc_request"`
}

// CallbackResult summarizes how a gateway callback was applied.
type CallbackResult struct {
	OrderID   string
	Paid      bool
	Duplicate bool
	Reason    string
}

// PaymentService wraps the gateway protocol around the order lifecycle.
type PaymentService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	carRepo   repositories.CarRepository
	gateway   *ccavenue.Client
	coupons   *CouponService
	publisher EventPublisher
	mail      ConfirmationMailer
}

// NewPaymentService creates a new PaymentService. publisher and mail may be
// nil; side effects are then skipped.
func NewPaymentService(
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	carRepo repositories.CarRepository,
	gateway *ccavenue.Client,
	coupons *CouponService,
	publisher EventPublisher,
	mail ConfirmationMailer,
) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		carRepo:   carRepo,
		gateway:   gateway,
		coupons:   coupons,
		publisher: publisher,
		mail:      mail,
	}
}

// InitiatePayment builds the encrypted gateway request for a pending order.
// The amount is the order's server-computed total; nothing from the client is
// trusted. The order moves to ORDER_CREATED, after which a retry requires a
// fresh order.
func (s *PaymentService) InitiatePayment(userID, orderID string) (*PaymentForm, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.BookingStatus != models.BookingPending || order.PaymentStatus != models.PaymentInitiated {
		return nil, ErrPaymentNotPending
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	gatewayOrderID := "RENT" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])

	form, err := s.gateway.EncodeRequest(ccavenue.OrderRequest{
		OrderID:      gatewayOrderID,
		Amount:       order.TotalAmount,
		BillingName:  user.FullName(),
		BillingEmail: user.Email,
		BillingTel:   user.Phone,
		BillingAddr:  user.Address,
		MerchantParams: [5]string{
			order.ID,
			order.UserID,
			strconv.Itoa(int(order.ProtectionFee)),
			order.DepositType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build payment request: %w", err)
	}

	applied, err := s.orderRepo.SetGatewayOrder(order.ID, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race with another initiation or a cancellation.
		return nil, ErrPaymentNotPending
	}

	return &PaymentForm{
		PaymentURL: s.gateway.PaymentURL(),
		MerchantID: s.gateway.MerchantID(),
		AccessCode: form.AccessCode,
		EncRequest: form.EncRequest,
	}, nil
}

// HandleCallback decrypts and applies a gateway callback. The status update
// is a conditional transition at the store, so a duplicate delivery for an
// already-terminal order is a no-op with zero side effects: no second state
// change, no second email, no second staff notification. A payload that does
// not decrypt cleanly is rejected before any order is touched.
func (s *PaymentService) HandleCallback(encResponse string) (*CallbackResult, error) {
	resp, err := s.gateway.DecodeResponse(encResponse)
	if err != nil {
		return nil, fmt.Errorf("payment callback rejected: %w", err)
	}

	orderID := resp.InternalOrderID()
	if orderID == "" {
		return nil, ErrUnknownOrder
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrUnknownOrder
	}
	if order.GatewayOrderID != "" && order.GatewayOrderID != resp.OrderID {
		return nil, ErrUnknownOrder
	}

	if !resp.Success() {
		reason := resp.FailureMessage
		if reason == "" {
			reason = resp.StatusMessage
		}
		if reason == "" {
			reason = "payment " + strings.ToLower(resp.OrderStatus)
		}
		applied, err := s.orderRepo.MarkFailed(order.ID, resp.TrackingID, reason)
		if err != nil {
			return nil, err
		}
		return &CallbackResult{OrderID: order.ID, Paid: false, Duplicate: !applied, Reason: reason}, nil
	}

	// The gateway reports success: the settled amount must still match the
	// server-computed total before the order is marked paid.
	if amount, err := strconv.ParseFloat(resp.Amount, 64); err != nil || math.Abs(amount-order.TotalAmount) > 0.01 {
		reason := fmt.Sprintf("settled amount %q does not match order total %.2f", resp.Amount, order.TotalAmount)
		applied, ferr := s.orderRepo.MarkFailed(order.ID, resp.TrackingID, reason)
		if ferr != nil {
			return nil, ferr
		}
		return &CallbackResult{OrderID: order.ID, Paid: false, Duplicate: !applied, Reason: reason}, nil
	}

	applied, err := s.orderRepo.MarkPaid(order.ID, resp.TrackingID, resp.PaymentMode)
	if err != nil {
		return nil, err
	}
	if !applied {
		return &CallbackResult{OrderID: order.ID, Paid: true, Duplicate: true}, nil
	}

	s.settleSideEffects(order, resp)
	return &CallbackResult{OrderID: order.ID, Paid: true}, nil
}

// settleSideEffects runs the one-time consequences of a successful payment.
// Failures here are logged, never propagated: the payment is already settled.
func (s *PaymentService) settleSideEffects(order *models.Order, resp *ccavenue.CallbackResponse) {
	if order.CouponID != "" {
		if err := s.coupons.Redeem(order.CouponID); err != nil {
			log.Printf("Warning: failed to redeem coupon %s for order %s: %v", order.CouponID, order.ID, err)
		}
	}

	user, err := s.userRepo.GetByID(order.UserID)
	if err != nil {
		log.Printf("Warning: user lookup failed for confirmation of order %s: %v", order.ID, err)
		return
	}
	carName := "your car"
	if car, err := s.carRepo.GetByID(order.CarID); err == nil {
		carName = car.Brand + " " + car.CarModel
	}

	if s.publisher != nil {
		event := map[string]interface{}{
			"order_id":    order.ID,
			"user_name":   user.FullName(),
			"car_name":    carName,
			"start_time":  order.StartTime.Format(time.RFC3339),
			"total":       order.TotalAmount,
			"tracking_id": resp.TrackingID,
		}
		if err := s.publisher.PublishEvent("booking.confirmed", event); err != nil {
			log.Printf("Warning: failed to publish booking confirmed event for order %s: %v", order.ID, err)
		}
	}

	if s.mail != nil {
		err := s.mail.SendBookingConfirmation(
			user.Email, user.FullName(), order.ID, carName,
			order.StartTime.Format("January 2, 2006 at 3:04 PM"),
			order.EndTime.Format("January 2, 2006 at 3:04 PM"),
			order.TotalAmount, resp.TrackingID,
		)
		if err != nil {
			log.Printf("Warning: failed to send confirmation email for order %s: %v", order.ID, err)
		}
	}
}
