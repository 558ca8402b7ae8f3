package handlers

import (
	"errors"
	"log"

	"gorent/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CouponHandler exposes the public coupon preview endpoint.
type CouponHandler struct {
	couponService *services.CouponService
	carService    *services.CarService
	validate      *validator.Validate
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(couponService *services.CouponService, carService *services.CarService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		carService:    carService,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers the coupon routes with the Fiber app.
func (h *CouponHandler) RegisterRoutes(router fiber.Router) {
	couponRoutes := router.Group("/coupons")
	couponRoutes.Post("/preview", h.HandlePreview)
}

// PreviewCouponRequest is the request body for previewing a coupon discount.
type PreviewCouponRequest struct {
	Code     string  `json:"code" validate:"required"`
	CarID    string  `json:"car_id" validate:"required"`
	Subtotal float64 `json:"subtotal" validate:"required,gt=0"`
}

// HandlePreview validates a coupon against a car and subtotal and reports the
// discount it would grant, without consuming usage.
func (h *CouponHandler) HandlePreview(c *fiber.Ctx) error {
	var req PreviewCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	car, err := h.carService.GetCarByID(req.CarID)
	if err != nil {
		if isNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Car not found",
			})
		}
		log.Printf("Error fetching car for coupon preview: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not preview coupon",
			"error":   err.Error(),
		})
	}

	coupon, discount, err := h.couponService.Validate(req.Code, car, req.Subtotal)
	if err != nil {
		if errors.Is(err, services.ErrCouponNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Coupon not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Coupon rejected",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"code":     coupon.Code,
		"discount": discount,
		"payable":  req.Subtotal - discount,
	})
}
