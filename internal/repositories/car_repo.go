package repositories

import "gorent/internal/models"

// CarRepository defines the interface for fleet data access.
type CarRepository interface {
	GetAll(onlyActive bool) ([]models.Car, error)
	GetByID(id string) (*models.Car, error)
	Create(car *models.Car) error
	Update(car *models.Car) error
	Delete(id string) error
}
