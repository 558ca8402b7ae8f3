package repositories

import (
	"fmt"
	"time"

	"gorent/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// preTerminalStatuses are the payment statuses a gateway callback may still act on.
var preTerminalStatuses = []models.PaymentStatus{
	models.PaymentInitiated, models.PaymentOrderCreated,
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByUser retrieves all orders belonging to a user, newest first.
func (r *GORMOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// Create creates a new order in the database.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// HasOverlap reports whether the car already has an order in a blocking
// booking status whose [start_time, end_time) range intersects [start, end).
func (r *GORMOrderRepository) HasOverlap(carID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("car_id = ?", carID).
		Where("booking_status IN ?", models.BlockingBookingStatuses).
		Where("end_time > ? AND start_time < ?", start, end).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check overlap for car %s: %w", carID, err)
	}
	return count > 0, nil
}

// SetGatewayOrder records the gateway order reference and moves the payment
// status to ORDER_CREATED, but only while the order is still INITIATED.
func (r *GORMOrderRepository) SetGatewayOrder(id, gatewayOrderID string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentInitiated).
		Updates(map[string]interface{}{
			"gateway_order_id": gatewayOrderID,
			"payment_status":   models.PaymentOrderCreated,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to set gateway order for order %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkPaid transitions the order to SUCCESSFUL/BOOKED. The WHERE clause on the
// current payment status is the idempotency guard: two concurrent callback
// deliveries cannot both apply the transition.
func (r *GORMOrderRepository) MarkPaid(id, trackingID, paymentMode string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status IN ?", id, preTerminalStatuses).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentSuccessful,
			"booking_status": models.BookingBooked,
			"tracking_id":    trackingID,
			"payment_mode":   paymentMode,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkFailed transitions the order to FAILED and cancels the booking so the
// car's time slot becomes available again. Guarded like MarkPaid.
func (r *GORMOrderRepository) MarkFailed(id, trackingID, reason string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status IN ?", id, preTerminalStatuses).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentFailed,
			"booking_status": models.BookingCancelled,
			"tracking_id":    trackingID,
			"failure_reason": reason,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s failed: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Cancel is the user-initiated cancellation, allowed only before payment settles.
func (r *GORMOrderRepository) Cancel(id, reason string) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status IN ?", id, preTerminalStatuses).
		Updates(map[string]interface{}{
			"payment_status":      models.PaymentCancelled,
			"booking_status":      models.BookingCancelled,
			"cancellation_reason": reason,
			"cancelled_at":        &now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to cancel order %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// OverrideStatus force-sets both statuses. Administrative use only.
func (r *GORMOrderRepository) OverrideStatus(id string, payment models.PaymentStatus, booking models.BookingStatus) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": payment,
			"booking_status": booking,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to override status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for status override", id)
	}
	return nil
}
