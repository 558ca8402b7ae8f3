package models

import "gorm.io/gorm"

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

// TicketStatuses enumerates every valid ticket status, for input validation.
var TicketStatuses = map[TicketStatus]bool{
	TicketOpen:       true,
	TicketInProgress: true,
	TicketResolved:   true,
	TicketClosed:     true,
}

// SupportTicket is a customer support request, optionally tied to an order.
type SupportTicket struct {
	ID       string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID   string          `json:"user_id" gorm:"index;type:varchar(36)" validate:"required"`
	OrderID  string          `json:"order_id,omitempty" gorm:"type:varchar(36)"`
	Subject  string          `json:"subject" validate:"required,min=3,max=200"`
	Status   TicketStatus    `json:"status" gorm:"type:varchar(20);default:'OPEN'"`
	Messages []TicketMessage `json:"messages,omitempty" gorm:"foreignKey:TicketID"`
	gorm.Model
}

// TicketMessage is a single message on a support ticket thread.
type TicketMessage struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	TicketID string `json:"ticket_id" gorm:"index;type:varchar(36)" validate:"required"`
	UserID   string `json:"user_id" gorm:"type:varchar(36)" validate:"required"`
	IsStaff  bool   `json:"is_staff"`
	Body     string `json:"body" validate:"required,min=1,max=2000"`
	gorm.Model
}
