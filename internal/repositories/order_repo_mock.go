package repositories

import (
	"fmt"
	"sync"
	"time"

	"gorent/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// It mirrors the conditional-update semantics of the GORM implementation so
// idempotency behaviour can be exercised without a database.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found", id)
	}
	return &order, nil
}

// GetByUser returns all orders for a user.
func (r *MockOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// HasOverlap reports whether a blocking order intersects the given range.
func (r *MockOrderRepository) HasOverlap(carID string, start, end time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.CarID != carID {
			continue
		}
		blocking := false
		for _, s := range models.BlockingBookingStatuses {
			if order.BookingStatus == s {
				blocking = true
				break
			}
		}
		if blocking && order.EndTime.After(start) && order.StartTime.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

// SetGatewayOrder records the gateway reference while the order is INITIATED.
func (r *MockOrderRepository) SetGatewayOrder(id, gatewayOrderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.PaymentStatus != models.PaymentInitiated {
		return false, nil
	}
	order.GatewayOrderID = gatewayOrderID
	order.PaymentStatus = models.PaymentOrderCreated
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return true, nil
}

// MarkPaid applies the paid transition once; replays are no-ops.
func (r *MockOrderRepository) MarkPaid(id, trackingID, paymentMode string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.PaymentStatus.Terminal() {
		return false, nil
	}
	order.PaymentStatus = models.PaymentSuccessful
	order.BookingStatus = models.BookingBooked
	order.TrackingID = trackingID
	order.PaymentMode = paymentMode
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return true, nil
}

// MarkFailed applies the failed transition once; replays are no-ops.
func (r *MockOrderRepository) MarkFailed(id, trackingID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.PaymentStatus.Terminal() {
		return false, nil
	}
	order.PaymentStatus = models.PaymentFailed
	order.BookingStatus = models.BookingCancelled
	order.TrackingID = trackingID
	order.FailureReason = reason
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return true, nil
}

// Cancel applies the user cancellation while payment is pre-terminal.
func (r *MockOrderRepository) Cancel(id, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.PaymentStatus.Terminal() {
		return false, nil
	}
	now := time.Now()
	order.PaymentStatus = models.PaymentCancelled
	order.BookingStatus = models.BookingCancelled
	order.CancellationReason = reason
	order.CancelledAt = &now
	order.UpdatedAt = now
	r.orders[id] = order
	return true, nil
}

// OverrideStatus force-sets both statuses.
func (r *MockOrderRepository) OverrideStatus(id string, payment models.PaymentStatus, booking models.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for status override", id)
	}
	order.PaymentStatus = payment
	order.BookingStatus = booking
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
