package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
)

// CreateReview submits a review of the driver from a completed booking
func CreateReview(reviews *engine.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			BookingID uint   `json:"bookingId" binding:"required"`
			Rating    int    `json:"rating" binding:"required"`
			Comment   string `json:"comment"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		review, err := reviews.CreateReview(c.Request.Context(), userId, input.BookingID, input.Rating, input.Comment)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(201, gin.H{
			"message":  "Review submitted successfully",
			"reviewId": review.ID,
		})
	}
}

// GetUserReviews lists the reviews written about a user, newest first
func GetUserReviews(reviews *engine.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid user ID"})
			return
		}

		found, err := reviews.ListReviewsFor(c.Request.Context(), uint(userID))
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(200, gin.H{"reviews": found})
	}
}

// CheckBookingReview reports whether the caller already reviewed a booking
func CheckBookingReview(reviews *engine.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := bookingParam(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		has, err := reviews.HasReviewed(c.Request.Context(), bookingID, userId)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(200, gin.H{"hasReview": has})
	}
}
