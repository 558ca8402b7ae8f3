package repositories

import (
	"time"

	"gorent/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// MarkPaid, MarkFailed and Cancel are conditional transitions: each applies
// only while the order's payment status is still pre-terminal and reports
// whether a row was actually updated. A false return with no error means the
// order had already reached a terminal state, which callers treat as a
// duplicate delivery. OverrideStatus is the explicit administrative escape
// hatch and ignores the guard.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUser(userID string) ([]models.Order, error)
	Create(order *models.Order) error
	HasOverlap(carID string, start, end time.Time) (bool, error)
	SetGatewayOrder(id, gatewayOrderID string) (bool, error)
	MarkPaid(id, trackingID, paymentMode string) (bool, error)
	MarkFailed(id, trackingID, reason string) (bool, error)
	Cancel(id, reason string) (bool, error)
	OverrideStatus(id string, payment models.PaymentStatus, booking models.BookingStatus) error
}
