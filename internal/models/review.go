package models

import (
	"gorm.io/gorm"
)

// Review is immutable once created; there is no update or delete path.
// The composite unique index is what makes the duplicate check race-safe:
// two concurrent submissions for the same booking produce one row and one
// constraint violation.
type Review struct {
	gorm.Model
	ReviewerID uint   `json:"reviewerId" gorm:"not null;uniqueIndex:idx_reviews_reviewer_reviewee_booking"`
	Reviewer   User   `json:"reviewer"`
	RevieweeID uint   `json:"revieweeId" gorm:"not null;uniqueIndex:idx_reviews_reviewer_reviewee_booking;index"`
	Reviewee   User   `json:"reviewee"`
	BookingID  uint   `json:"bookingId" gorm:"not null;uniqueIndex:idx_reviews_reviewer_reviewee_booking"`
	Rating     int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment    string `json:"comment,omitempty"`
}
