package repositories

import (
	"fmt"

	"gorent/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCarRepository is a GORM implementation of CarRepository.
type GORMCarRepository struct {
	db *gorm.DB
}

// NewGORMCarRepository creates a new instance of GORMCarRepository.
func NewGORMCarRepository(db *gorm.DB) *GORMCarRepository {
	return &GORMCarRepository{
		db: db,
	}
}

// GetAll retrieves cars from the database, optionally only active ones.
func (r *GORMCarRepository) GetAll(onlyActive bool) ([]models.Car, error) {
	var cars []models.Car
	q := r.db
	if onlyActive {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&cars).Error; err != nil {
		return nil, fmt.Errorf("failed to get all cars: %w", err)
	}
	return cars, nil
}

// GetByID retrieves a single car by its ID from the database.
func (r *GORMCarRepository) GetByID(id string) (*models.Car, error) {
	var car models.Car
	if err := r.db.First(&car, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("car with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get car by ID %s: %w", id, err)
	}
	return &car, nil
}

// Create creates a new car in the database.
func (r *GORMCarRepository) Create(car *models.Car) error {
	if car.ID == "" {
		car.ID = uuid.New().String()
	}
	if err := r.db.Create(car).Error; err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	return nil
}

// Update updates an existing car in the database.
func (r *GORMCarRepository) Update(car *models.Car) error {
	res := r.db.Save(car) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update car: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("car with ID %s not found for update", car.ID)
	}
	return nil
}

// Delete deletes a car by its ID from the database.
func (r *GORMCarRepository) Delete(id string) error {
	res := r.db.Delete(&models.Car{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete car: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("car with ID %s not found for deletion", id)
	}
	return nil
}
