package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

type ReviewStore struct {
	db *gorm.DB
}

func NewReviewStore(db *gorm.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// CreateReview inserts the review. The unique index on (reviewer, reviewee,
// booking) decides concurrent duplicates; the violation comes back as
// AlreadyExists. Requires gorm's TranslateError, which database.InitDB sets.
func (s *ReviewStore) CreateReview(ctx context.Context, r *models.Review) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return engine.AlreadyExists("you have already reviewed this ride")
		}
		return engine.Internal("failed to create review", err)
	}
	return nil
}

func (s *ReviewStore) ReviewsFor(ctx context.Context, revieweeID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.db.WithContext(ctx).
		Where("reviewee_id = ?", revieweeID).
		Preload("Reviewer").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, engine.Internal("failed to fetch reviews", err)
	}
	return reviews, nil
}

func (s *ReviewStore) HasReview(ctx context.Context, reviewerID, revieweeID, bookingID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("reviewer_id = ? AND reviewee_id = ? AND booking_id = ?",
			reviewerID, revieweeID, bookingID).
		Count(&count).Error; err != nil {
		return false, engine.Internal("failed to check review", err)
	}
	return count > 0, nil
}
