package services

import (
	"errors"

	"gorent/internal/models"
	"gorent/internal/repositories"
)

// Review rule errors.
var (
	ErrBookingNotCompleted = errors.New("only completed bookings can be reviewed")
	ErrAlreadyReviewed     = errors.New("this booking has already been reviewed")
)

// ReviewService handles customer reviews of completed rentals.
type ReviewService struct {
	reviewRepo repositories.ReviewRepository
	orderRepo  repositories.OrderRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo repositories.ReviewRepository, orderRepo repositories.OrderRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
	}
}

// CreateReview creates a review for the user's own completed booking.
func (s *ReviewService) CreateReview(userID, orderID string, rating int, comment string) (*models.Review, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.BookingStatus != models.BookingCompleted {
		return nil, ErrBookingNotCompleted
	}
	if existing, err := s.reviewRepo.GetByOrder(orderID); err == nil && existing != nil {
		return nil, ErrAlreadyReviewed
	}

	review := &models.Review{
		UserID:  userID,
		CarID:   order.CarID,
		OrderID: orderID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}
	return review, nil
}

// GetCarReviews lists all reviews for a car.
func (s *ReviewService) GetCarReviews(carID string) ([]models.Review, error) {
	return s.reviewRepo.GetByCar(carID)
}

// DeleteReview removes a review (admin moderation).
func (s *ReviewService) DeleteReview(id string) error {
	return s.reviewRepo.Delete(id)
}
