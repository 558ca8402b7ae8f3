package repositories

import (
	"fmt"

	"gorent/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketRepository defines the interface for support ticket data access.
type TicketRepository interface {
	GetAll() ([]models.SupportTicket, error)
	GetByID(id string) (*models.SupportTicket, error)
	GetByUser(userID string) ([]models.SupportTicket, error)
	Create(ticket *models.SupportTicket) error
	AddMessage(message *models.TicketMessage) error
	UpdateStatus(id string, status models.TicketStatus) error
}

// GORMTicketRepository is a GORM implementation of TicketRepository.
type GORMTicketRepository struct {
	db *gorm.DB
}

// NewGORMTicketRepository creates a new instance of GORMTicketRepository.
func NewGORMTicketRepository(db *gorm.DB) *GORMTicketRepository {
	return &GORMTicketRepository{
		db: db,
	}
}

// GetAll retrieves all tickets with their message threads, newest first.
func (r *GORMTicketRepository) GetAll() ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	if err := r.db.Preload("Messages").Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to get all tickets: %w", err)
	}
	return tickets, nil
}

// GetByID retrieves a single ticket with its messages.
func (r *GORMTicketRepository) GetByID(id string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := r.db.Preload("Messages").First(&ticket, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("ticket with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get ticket by ID %s: %w", id, err)
	}
	return &ticket, nil
}

// GetByUser retrieves all tickets opened by a user.
func (r *GORMTicketRepository) GetByUser(userID string) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	if err := r.db.Preload("Messages").Where("user_id = ?", userID).Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to get tickets for user %s: %w", userID, err)
	}
	return tickets, nil
}

// Create creates a new ticket in the database.
func (r *GORMTicketRepository) Create(ticket *models.SupportTicket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}
	for i := range ticket.Messages {
		if ticket.Messages[i].ID == "" {
			ticket.Messages[i].ID = uuid.New().String()
		}
		ticket.Messages[i].TicketID = ticket.ID
	}
	if err := r.db.Create(ticket).Error; err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// AddMessage appends a message to a ticket thread.
func (r *GORMTicketRepository) AddMessage(message *models.TicketMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to add ticket message: %w", err)
	}
	return nil
}

// UpdateStatus updates a ticket's status.
func (r *GORMTicketRepository) UpdateStatus(id string, status models.TicketStatus) error {
	res := r.db.Model(&models.SupportTicket{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update ticket status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ticket with ID %s not found for status update", id)
	}
	return nil
}
