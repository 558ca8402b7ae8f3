package services

import (
	"errors"
	"time"

	"gorent/internal/models"
	"gorent/internal/repositories"
)

// ErrCarUnavailable is returned when a car's time slot is already occupied.
var ErrCarUnavailable = errors.New("car is not available for the selected dates")

// CarService handles business logic related to the fleet.
type CarService struct {
	carRepo   repositories.CarRepository
	orderRepo repositories.OrderRepository
}

// NewCarService creates a new CarService.
func NewCarService(carRepo repositories.CarRepository, orderRepo repositories.OrderRepository) *CarService {
	return &CarService{
		carRepo:   carRepo,
		orderRepo: orderRepo,
	}
}

// GetAllCars retrieves cars, active-only for the customer catalog.
func (s *CarService) GetAllCars(onlyActive bool) ([]models.Car, error) {
	return s.carRepo.GetAll(onlyActive)
}

// GetCarByID retrieves a single car by its ID.
func (s *CarService) GetCarByID(id string) (*models.Car, error) {
	return s.carRepo.GetByID(id)
}

// CheckAvailability reports whether the car is free for [start, end). A car
// is blocked by any order still holding the slot (pending through ongoing).
func (s *CarService) CheckAvailability(carID string, start, end time.Time) (bool, error) {
	overlap, err := s.orderRepo.HasOverlap(carID, start, end)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// CreateCar creates a new car (admin).
func (s *CarService) CreateCar(car *models.Car) error {
	return s.carRepo.Create(car)
}

// UpdateCar updates an existing car (admin).
func (s *CarService) UpdateCar(car *models.Car) error {
	return s.carRepo.Update(car)
}

// DeleteCar deletes a car by its ID (admin).
func (s *CarService) DeleteCar(id string) error {
	return s.carRepo.Delete(id)
}
