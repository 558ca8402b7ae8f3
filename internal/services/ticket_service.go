package services

import (
	"errors"
	"fmt"

	"gorent/internal/models"
	"gorent/internal/repositories"
)

// ErrNotTicketOwner is returned when a user touches someone else's ticket.
var ErrNotTicketOwner = errors.New("ticket does not belong to this user")

// ErrTicketClosed is returned when writing to a closed ticket.
var ErrTicketClosed = errors.New("ticket is closed")

// validTicketTransitions encodes the allowed status moves.
var validTicketTransitions = map[models.TicketStatus][]models.TicketStatus{
	models.TicketOpen:       {models.TicketInProgress, models.TicketResolved, models.TicketClosed},
	models.TicketInProgress: {models.TicketResolved, models.TicketClosed},
	models.TicketResolved:   {models.TicketClosed, models.TicketInProgress},
}

// TicketService handles support tickets.
type TicketService struct {
	ticketRepo repositories.TicketRepository
}

// NewTicketService creates a new TicketService.
func NewTicketService(ticketRepo repositories.TicketRepository) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
	}
}

// OpenTicket creates a new ticket with its first message.
func (s *TicketService) OpenTicket(userID, orderID, subject, body string) (*models.SupportTicket, error) {
	ticket := &models.SupportTicket{
		UserID:  userID,
		OrderID: orderID,
		Subject: subject,
		Status:  models.TicketOpen,
		Messages: []models.TicketMessage{
			{UserID: userID, Body: body},
		},
	}
	if err := s.ticketRepo.Create(ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// AddMessage appends a message to a ticket. Non-staff users may only write to
// their own tickets.
func (s *TicketService) AddMessage(userID, ticketID, body string, isStaff bool) (*models.TicketMessage, error) {
	ticket, err := s.ticketRepo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if !isStaff && ticket.UserID != userID {
		return nil, ErrNotTicketOwner
	}
	if ticket.Status == models.TicketClosed {
		return nil, ErrTicketClosed
	}

	message := &models.TicketMessage{
		TicketID: ticketID,
		UserID:   userID,
		IsStaff:  isStaff,
		Body:     body,
	}
	if err := s.ticketRepo.AddMessage(message); err != nil {
		return nil, err
	}
	return message, nil
}

// GetUserTickets lists a user's tickets.
func (s *TicketService) GetUserTickets(userID string) ([]models.SupportTicket, error) {
	return s.ticketRepo.GetByUser(userID)
}

// GetAllTickets lists every ticket (admin).
func (s *TicketService) GetAllTickets() ([]models.SupportTicket, error) {
	return s.ticketRepo.GetAll()
}

// UpdateStatus moves a ticket through its lifecycle (admin).
func (s *TicketService) UpdateStatus(ticketID string, status models.TicketStatus) error {
	ticket, err := s.ticketRepo.GetByID(ticketID)
	if err != nil {
		return err
	}
	for _, allowed := range validTicketTransitions[ticket.Status] {
		if allowed == status {
			return s.ticketRepo.UpdateStatus(ticketID, status)
		}
	}
	return fmt.Errorf("cannot move ticket from %s to %s", ticket.Status, status)
}
