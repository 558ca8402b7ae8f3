package repositories

import (
	"fmt"

	"gorent/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	GetByCar(carID string) ([]models.Review, error)
	GetByOrder(orderID string) (*models.Review, error)
	Create(review *models.Review) error
	Delete(id string) error
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{
		db: db,
	}
}

// GetByCar retrieves all reviews for a car, newest first.
func (r *GORMReviewRepository) GetByCar(carID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.Where("car_id = ?", carID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews for car %s: %w", carID, err)
	}
	return reviews, nil
}

// GetByOrder retrieves the review left for an order, if any.
func (r *GORMReviewRepository) GetByOrder(orderID string) (*models.Review, error) {
	var review models.Review
	if err := r.db.First(&review, "order_id = ?", orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("review for order %s not found", orderID)
		}
		return nil, fmt.Errorf("failed to get review for order %s: %w", orderID, err)
	}
	return &review, nil
}

// Create creates a new review in the database.
func (r *GORMReviewRepository) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// Delete deletes a review by its ID (admin moderation).
func (r *GORMReviewRepository) Delete(id string) error {
	res := r.db.Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %s not found for deletion", id)
	}
	return nil
}
