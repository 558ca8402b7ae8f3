package handlers

import (
	"log"
	"strings"
	"time"

	"gorent/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CarHandler handles HTTP requests for the customer-facing catalog.
type CarHandler struct {
	carService    *services.CarService
	reviewService *services.ReviewService
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(carService *services.CarService, reviewService *services.ReviewService) *CarHandler {
	return &CarHandler{
		carService:    carService,
		reviewService: reviewService,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CarHandler) RegisterRoutes(router fiber.Router) {
	carRoutes := router.Group("/cars")
	carRoutes.Get("/", h.HandleGetCars)
	carRoutes.Get("/:id", h.HandleGetCarByID)
	carRoutes.Get("/:id/availability", h.HandleCheckAvailability)
	carRoutes.Get("/:id/reviews", h.HandleGetCarReviews)
}

// HandleGetCars lists all active cars in the fleet.
func (h *CarHandler) HandleGetCars(c *fiber.Ctx) error {
	cars, err := h.carService.GetAllCars(true)
	if err != nil {
		log.Printf("Error getting all cars: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cars",
			"error":   err.Error(),
		})
	}
	return c.JSON(cars)
}

// HandleGetCarByID retrieves a single car by its ID.
func (h *CarHandler) HandleGetCarByID(c *fiber.Ctx) error {
	carID := c.Params("id")
	car, err := h.carService.GetCarByID(carID)
	if err != nil {
		log.Printf("Error getting car by ID %s: %v", carID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Car not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve car",
			"error":   err.Error(),
		})
	}
	return c.JSON(car)
}

// HandleCheckAvailability reports whether a car is free for a time range
// passed as RFC3339 "start" and "end" query parameters.
func (h *CarHandler) HandleCheckAvailability(c *fiber.Ctx) error {
	carID := c.Params("id")

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter 'start' must be an RFC3339 timestamp",
		})
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Query parameter 'end' must be an RFC3339 timestamp",
		})
	}
	if !end.After(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "'end' must be after 'start'",
		})
	}

	available, err := h.carService.CheckAvailability(carID, start, end)
	if err != nil {
		log.Printf("Error checking availability for car %s: %v", carID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not check availability",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"car_id":    carID,
		"available": available,
	})
}

// HandleGetCarReviews lists reviews for a car.
func (h *CarHandler) HandleGetCarReviews(c *fiber.Ctx) error {
	carID := c.Params("id")
	reviews, err := h.reviewService.GetCarReviews(carID)
	if err != nil {
		log.Printf("Error getting reviews for car %s: %v", carID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve reviews",
			"error":   err.Error(),
		})
	}
	return c.JSON(reviews)
}
