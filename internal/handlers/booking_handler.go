package handlers

import (
	"errors"
	"log"
	"strings"

	"gorent/internal/middleware"
	"gorent/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *services.BookingService
	validate       *validator.Validate
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the booking routes with the Fiber app.
func (h *BookingHandler) RegisterRoutes(router fiber.Router) {
	bookingRoutes := router.Group("/bookings")
	bookingRoutes.Post("/quote", h.HandleQuote)
	bookingRoutes.Post("/", h.HandleCreateBooking)
	bookingRoutes.Get("/", h.HandleGetMyBookings)
	bookingRoutes.Get("/:id", h.HandleGetBookingByID)
	bookingRoutes.Post("/:id/cancel", h.HandleCancelBooking)
}

// HandleQuote returns the server-side pricing breakdown for a prospective
// booking, including any coupon discount.
func (h *BookingHandler) HandleQuote(c *fiber.Ctx) error {
	var req services.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	quote, err := h.bookingService.QuoteBooking(req)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(quote)
}

// HandleCreateBooking creates a pending booking for the authenticated user.
func (h *BookingHandler) HandleCreateBooking(c *fiber.Ctx) error {
	var req services.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	order, err := h.bookingService.CreateBooking(middleware.UserID(c), req)
	if err != nil {
		log.Printf("Error creating booking: %v", err)
		return bookingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetMyBookings lists the authenticated user's bookings.
func (h *BookingHandler) HandleGetMyBookings(c *fiber.Ctx) error {
	orders, err := h.bookingService.GetUserOrders(middleware.UserID(c))
	if err != nil {
		log.Printf("Error getting bookings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve bookings",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetBookingByID fetches one of the user's own bookings.
func (h *BookingHandler) HandleGetBookingByID(c *fiber.Ctx) error {
	order, err := h.bookingService.GetUserOrder(middleware.UserID(c), c.Params("id"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(order)
}

// HandleCancelBooking cancels one of the user's own pending bookings.
func (h *BookingHandler) HandleCancelBooking(c *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.bookingService.CancelBooking(middleware.UserID(c), c.Params("id"), body.Reason); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Booking cancelled",
	})
}

// bookingError maps booking business-rule errors to HTTP statuses.
func bookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrKYCNotApproved):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Booking blocked",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrNotOrderOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not authorized for this booking",
		})
	case errors.Is(err, services.ErrInvalidDates),
		errors.Is(err, services.ErrCarInactive),
		errors.Is(err, services.ErrCarUnavailable),
		errors.Is(err, services.ErrOrderNotPending),
		errors.Is(err, services.ErrInvalidProtectionLevel),
		errors.Is(err, services.ErrInvalidDepositType),
		errors.Is(err, services.ErrCouponNotFound),
		errors.Is(err, services.ErrCouponInactive),
		errors.Is(err, services.ErrCouponExpired),
		errors.Is(err, services.ErrCouponExhausted),
		errors.Is(err, services.ErrCouponMinAmount),
		errors.Is(err, services.ErrCouponWrongCar):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Booking rejected",
			"error":   err.Error(),
		})
	case strings.Contains(err.Error(), "not found"):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not process booking",
		"error":   err.Error(),
	})
}
