package handlers

import (
	"errors"
	"log"

	"gorent/internal/middleware"
	"gorent/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TicketHandler handles HTTP requests for customer support tickets.
type TicketHandler struct {
	ticketService *services.TicketService
	validate      *validator.Validate
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers the ticket routes with the Fiber app.
func (h *TicketHandler) RegisterRoutes(router fiber.Router) {
	ticketRoutes := router.Group("/tickets")
	ticketRoutes.Post("/", h.HandleOpenTicket)
	ticketRoutes.Get("/", h.HandleGetUserTickets)
	ticketRoutes.Post("/:id/messages", h.HandleAddMessage)
}

// OpenTicketRequest is the request body for opening a support ticket.
type OpenTicketRequest struct {
	OrderID string `json:"order_id" validate:"omitempty"`
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Body    string `json:"body" validate:"required,max=5000"`
}

// AddMessageRequest is the request body for replying on a ticket.
type AddMessageRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// HandleOpenTicket opens a new support ticket for the authenticated user.
func (h *TicketHandler) HandleOpenTicket(c *fiber.Ctx) error {
	var req OpenTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	ticket, err := h.ticketService.OpenTicket(middleware.UserID(c), req.OrderID, req.Subject, req.Body)
	if err != nil {
		log.Printf("Error opening ticket: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not open ticket",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

// HandleGetUserTickets lists the authenticated user's tickets.
func (h *TicketHandler) HandleGetUserTickets(c *fiber.Ctx) error {
	tickets, err := h.ticketService.GetUserTickets(middleware.UserID(c))
	if err != nil {
		log.Printf("Error fetching tickets: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch tickets",
			"error":   err.Error(),
		})
	}
	return c.JSON(tickets)
}

// HandleAddMessage appends a message to one of the user's tickets.
func (h *TicketHandler) HandleAddMessage(c *fiber.Ctx) error {
	var req AddMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	message, err := h.ticketService.AddMessage(middleware.UserID(c), c.Params("id"), req.Body, false)
	if err != nil {
		log.Printf("Error adding ticket message: %v", err)
		switch {
		case errors.Is(err, services.ErrNotTicketOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Not authorized for this ticket",
			})
		case errors.Is(err, services.ErrTicketClosed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Ticket is closed",
			})
		case isNotFound(err):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Ticket not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add message",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}
