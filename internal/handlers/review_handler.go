package handlers

import (
	"errors"
	"log"

	"gorent/internal/middleware"
	"gorent/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for customer reviews.
type ReviewHandler struct {
	reviewService *services.ReviewService
	validate      *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers the review routes with the Fiber app.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Post("/", h.HandleCreateReview)
}

// CreateReviewRequest is the request body for posting a review.
type CreateReviewRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

// HandleCreateReview posts a review for one of the user's completed bookings.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	review, err := h.reviewService.CreateReview(middleware.UserID(c), req.OrderID, req.Rating, req.Comment)
	if err != nil {
		log.Printf("Error creating review: %v", err)
		switch {
		case errors.Is(err, services.ErrNotOrderOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Not authorized for this booking",
			})
		case errors.Is(err, services.ErrBookingNotCompleted), errors.Is(err, services.ErrAlreadyReviewed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Review rejected",
				"error":   err.Error(),
			})
		case isNotFound(err):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create review",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}
