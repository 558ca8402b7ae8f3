package handlers

import (
	"errors"
	"log"

	"gorent/internal/middleware"
	"gorent/internal/models"
	"gorent/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the back office: booking oversight, user and KYC
// administration, fleet management, coupons, review moderation and ticket
// handling. All routes require an admin token.
type AdminHandler struct {
	bookingService *services.BookingService
	authService    *services.AuthService
	kycService     *services.KYCService
	carService     *services.CarService
	couponService  *services.CouponService
	reviewService  *services.ReviewService
	ticketService  *services.TicketService
	validate       *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	bookingService *services.BookingService,
	authService *services.AuthService,
	kycService *services.KYCService,
	carService *services.CarService,
	couponService *services.CouponService,
	reviewService *services.ReviewService,
	ticketService *services.TicketService,
) *AdminHandler {
	return &AdminHandler{
		bookingService: bookingService,
		authService:    authService,
		kycService:     kycService,
		carService:     carService,
		couponService:  couponService,
		reviewService:  reviewService,
		ticketService:  ticketService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the admin routes. The caller is expected to have
// applied AuthRequired and AdminRequired to the router group already.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin")

	adminRoutes.Get("/bookings", h.HandleListBookings)
	adminRoutes.Put("/bookings/:id/status", h.HandleOverrideBookingStatus)

	adminRoutes.Get("/users", h.HandleListUsers)
	adminRoutes.Put("/users/:id/active", h.HandleSetUserActive)
	adminRoutes.Post("/users/:id/kyc-review", h.HandleKYCReview)

	adminRoutes.Post("/cars", h.HandleCreateCar)
	adminRoutes.Put("/cars/:id", h.HandleUpdateCar)
	adminRoutes.Delete("/cars/:id", h.HandleDeleteCar)

	adminRoutes.Get("/coupons", h.HandleListCoupons)
	adminRoutes.Post("/coupons", h.HandleCreateCoupon)
	adminRoutes.Put("/coupons/:id", h.HandleUpdateCoupon)
	adminRoutes.Delete("/coupons/:id", h.HandleDeleteCoupon)

	adminRoutes.Delete("/reviews/:id", h.HandleDeleteReview)

	adminRoutes.Get("/tickets", h.HandleListTickets)
	adminRoutes.Put("/tickets/:id/status", h.HandleUpdateTicketStatus)
	adminRoutes.Post("/tickets/:id/messages", h.HandleStaffReply)
}

// --- Bookings ---

// HandleListBookings lists every order in the system.
func (h *AdminHandler) HandleListBookings(c *fiber.Ctx) error {
	orders, err := h.bookingService.GetAllOrders()
	if err != nil {
		log.Printf("Error fetching all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch bookings",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// OverrideStatusRequest force-sets an order's statuses.
type OverrideStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
	BookingStatus string `json:"booking_status" validate:"required"`
	Reason        string `json:"reason" validate:"required,min=3,max=500"`
}

// HandleOverrideBookingStatus is the administrative escape hatch around the
// forward-only payment transitions. Every use is logged with the acting admin.
func (h *AdminHandler) HandleOverrideBookingStatus(c *fiber.Ctx) error {
	var req OverrideStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	payment := models.PaymentStatus(req.PaymentStatus)
	booking := models.BookingStatus(req.BookingStatus)
	if !models.PaymentStatuses[payment] || !models.BookingStatuses[booking] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown payment or booking status",
		})
	}

	orderID := c.Params("id")
	if err := h.bookingService.OverrideStatus(orderID, payment, booking); err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.Printf("Error overriding order %s status: %v", orderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not override status",
			"error":   err.Error(),
		})
	}

	log.Printf("Admin %s overrode order %s to payment=%s booking=%s: %s",
		middleware.UserID(c), orderID, payment, booking, req.Reason)
	return c.JSON(fiber.Map{"message": "Status overridden"})
}

// --- Users ---

// HandleListUsers lists every registered user.
func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.authService.GetAllUsers()
	if err != nil {
		log.Printf("Error fetching users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch users",
			"error":   err.Error(),
		})
	}
	return c.JSON(users)
}

// SetActiveRequest toggles an account.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// HandleSetUserActive enables or disables an account.
func (h *AdminHandler) HandleSetUserActive(c *fiber.Ctx) error {
	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	if err := h.authService.SetUserActive(c.Params("id"), *req.Active); err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		log.Printf("Error updating user active flag: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update user",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "User updated"})
}

// KYCReviewRequest is the admin decision on a pending verification.
type KYCReviewRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" validate:"omitempty,max=500"`
}

// HandleKYCReview approves or rejects a pending KYC submission.
func (h *AdminHandler) HandleKYCReview(c *fiber.Ctx) error {
	var req KYCReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}
	if !req.Approve && req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A rejection requires a reason",
		})
	}

	err := h.kycService.Review(middleware.UserID(c), c.Params("id"), req.Approve, req.Reason)
	if err != nil {
		switch {
		case isNotFound(err):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		case errors.Is(err, services.ErrKYCNotReviewable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		log.Printf("Error reviewing KYC for user %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not record decision",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Decision recorded"})
}

// --- Cars ---

// HandleCreateCar adds a vehicle to the fleet.
func (h *AdminHandler) HandleCreateCar(c *fiber.Ctx) error {
	var car models.Car
	if err := c.BodyParser(&car); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	car.ID = "" // Always server-assigned
	if err := h.validate.Struct(car); err != nil {
		return validationError(c, err)
	}

	if err := h.carService.CreateCar(&car); err != nil {
		log.Printf("Error creating car: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create car",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(car)
}

// HandleUpdateCar updates a fleet vehicle.
func (h *AdminHandler) HandleUpdateCar(c *fiber.Ctx) error {
	existing, err := h.carService.GetCarByID(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Car not found",
			})
		}
		log.Printf("Error fetching car: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch car",
			"error":   err.Error(),
		})
	}

	var car models.Car
	if err := c.BodyParser(&car); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	car.ID = existing.ID
	if err := h.validate.Struct(car); err != nil {
		return validationError(c, err)
	}

	if err := h.carService.UpdateCar(&car); err != nil {
		log.Printf("Error updating car %s: %v", car.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update car",
			"error":   err.Error(),
		})
	}
	return c.JSON(car)
}

// HandleDeleteCar retires a vehicle from the fleet.
func (h *AdminHandler) HandleDeleteCar(c *fiber.Ctx) error {
	if err := h.carService.DeleteCar(c.Params("id")); err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Car not found",
			})
		}
		log.Printf("Error deleting car %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete car",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Car deleted"})
}

// --- Coupons ---

// HandleListCoupons lists every coupon including inactive ones.
func (h *AdminHandler) HandleListCoupons(c *fiber.Ctx) error {
	coupons, err := h.couponService.GetAllCoupons()
	if err != nil {
		log.Printf("Error fetching coupons: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch coupons",
			"error":   err.Error(),
		})
	}
	return c.JSON(coupons)
}

// HandleCreateCoupon creates a discount code.
func (h *AdminHandler) HandleCreateCoupon(c *fiber.Ctx) error {
	var coupon models.Coupon
	if err := c.BodyParser(&coupon); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	coupon.ID = ""
	coupon.UsageCount = 0
	if err := h.validate.Struct(coupon); err != nil {
		return validationError(c, err)
	}

	if err := h.couponService.CreateCoupon(&coupon); err != nil {
		log.Printf("Error creating coupon: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create coupon",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// HandleUpdateCoupon updates a discount code.
func (h *AdminHandler) HandleUpdateCoupon(c *fiber.Ctx) error {
	var coupon models.Coupon
	if err := c.BodyParser(&coupon); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	coupon.ID = c.Params("id")
	if err := h.validate.Struct(coupon); err != nil {
		return validationError(c, err)
	}

	if err := h.couponService.UpdateCoupon(&coupon); err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Coupon not found",
			})
		}
		log.Printf("Error updating coupon %s: %v", coupon.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update coupon",
			"error":   err.Error(),
		})
	}
	return c.JSON(coupon)
}

// HandleDeleteCoupon removes a discount code.
func (h *AdminHandler) HandleDeleteCoupon(c *fiber.Ctx) error {
	if err := h.couponService.DeleteCoupon(c.Params("id")); err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Coupon not found",
			})
		}
		log.Printf("Error deleting coupon %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete coupon",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Coupon deleted"})
}

// --- Reviews ---

// HandleDeleteReview removes a review (moderation).
func (h *AdminHandler) HandleDeleteReview(c *fiber.Ctx) error {
	if err := h.reviewService.DeleteReview(c.Params("id")); err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Review not found",
			})
		}
		log.Printf("Error deleting review %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete review",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Review deleted"})
}

// --- Tickets ---

// HandleListTickets lists every support ticket.
func (h *AdminHandler) HandleListTickets(c *fiber.Ctx) error {
	tickets, err := h.ticketService.GetAllTickets()
	if err != nil {
		log.Printf("Error fetching all tickets: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not fetch tickets",
			"error":   err.Error(),
		})
	}
	return c.JSON(tickets)
}

// UpdateTicketStatusRequest moves a ticket through its lifecycle.
type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateTicketStatus updates a ticket's status.
func (h *AdminHandler) HandleUpdateTicketStatus(c *fiber.Ctx) error {
	var req UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	status := models.TicketStatus(req.Status)
	if !models.TicketStatuses[status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown ticket status",
		})
	}

	if err := h.ticketService.UpdateStatus(c.Params("id"), status); err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Ticket not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update ticket",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Ticket updated"})
}

// HandleStaffReply posts a staff message on any ticket.
func (h *AdminHandler) HandleStaffReply(c *fiber.Ctx) error {
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

	message, err := h.ticketService.AddMessage(middleware.UserID(c), c.Params("id"), req.Body, true)
	if err != nil {
		switch {
		case isNotFound(err):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Ticket not found",
			})
		case errors.Is(err, services.ErrTicketClosed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Ticket is closed",
			})
		}
		log.Printf("Error adding staff reply: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add message",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}
