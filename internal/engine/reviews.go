package engine

import (
	"context"
	"strings"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

// ReviewService gates review writes on lifecycle state: a review needs a
// completed ride, an owned booking that was not cancelled, and no prior
// review for the same (reviewer, reviewee, booking) triple. Reviews are
// immutable once created.
type ReviewService struct {
	bookings BookingStore
	reviews  ReviewStore
}

func NewReviewService(bookings BookingStore, reviews ReviewStore) *ReviewService {
	return &ReviewService{bookings: bookings, reviews: reviews}
}

// CreateReview writes a review of the ride's driver from the booking's owner.
// The pre-check gives a friendly duplicate error; the store's uniqueness
// constraint is what actually decides the concurrent race.
func (s *ReviewService) CreateReview(ctx context.Context, reviewerID, bookingID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, InvalidArgument("rating must be between 1 and 5")
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != reviewerID {
		return nil, Forbidden("you can only review rides you booked")
	}
	if booking.Status != models.BookingStatusActive {
		return nil, InvalidState("cannot review a cancelled booking")
	}
	if booking.Ride.Status != models.RideStatusCompleted {
		return nil, InvalidState("can only review completed rides")
	}

	revieweeID := booking.Ride.DriverID

	exists, err := s.reviews.HasReview(ctx, reviewerID, revieweeID, bookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, AlreadyExists("you have already reviewed this ride")
	}

	review := &models.Review{
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		BookingID:  bookingID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviewsFor returns the reviews written about a user, newest first.
func (s *ReviewService) ListReviewsFor(ctx context.Context, userID uint) ([]models.Review, error) {
	return s.reviews.ReviewsFor(ctx, userID)
}

// HasReviewed reports whether the booking's owner already reviewed it. Pure
// read used by the presentation layer.
func (s *ReviewService) HasReviewed(ctx context.Context, bookingID, reviewerID uint) (bool, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if booking.UserID != reviewerID {
		return false, Forbidden("not authorized")
	}
	if booking.Status != models.BookingStatusActive {
		return false, nil
	}
	return s.reviews.HasReview(ctx, reviewerID, booking.Ride.DriverID, bookingID)
}
