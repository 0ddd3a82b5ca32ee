package handlers

import (
	"context"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/services"
)

func bookingParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("bookingId"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid booking ID"})
		return 0, false
	}
	return uint(id), true
}

// CreateBooking reserves seats on a ride and records the booking
func CreateBooking(bookings *engine.BookingService, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			RideID uint `json:"rideId" binding:"required"`
			Seats  int  `json:"seats"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.Seats == 0 {
			input.Seats = 1
		}

		booking, err := bookings.CreateBooking(c.Request.Context(), input.RideID, userId, input.Seats)
		if err != nil {
			fail(c, err)
			return
		}

		go func() {
			hub.NotifyUser(booking.Ride.DriverID, "booking_created", services.BookingCreated{
				RideID:      booking.RideID,
				BookingID:   booking.ID,
				SeatsBooked: booking.SeatsBooked,
			})
			if err := services.PublishBookingEvent(context.Background(), "created", booking.ID, booking.RideID); err != nil {
				log.Printf("Failed to publish booking event: %v", err)
			}
		}()

		// The start code is deliberately absent here; riders read it from
		// their booking list.
		c.JSON(201, gin.H{
			"message": "Ride booked successfully",
			"booking": gin.H{
				"bookingId":   booking.ID,
				"rideId":      booking.RideID,
				"seatsBooked": booking.SeatsBooked,
			},
		})
	}
}

// GetMyBookings retrieves the caller's bookings with their rides joined
func GetMyBookings(bookings *engine.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		found, err := bookings.ListBookings(c.Request.Context(), userId)
		if err != nil {
			fail(c, err)
			return
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(200, gin.H{"bookings": found})
	}
}

// ModifyBooking changes the seat count on an active booking
func ModifyBooking(bookings *engine.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := bookingParam(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			Seats int `json:"seats" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := bookings.ModifySeats(c.Request.Context(), bookingID, userId, input.Seats)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(200, gin.H{"message": "Booking updated", "booking": booking})
	}
}

// CancelBooking cancels a booking and returns its seats to the ride
func CancelBooking(bookings *engine.BookingService, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := bookingParam(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		booking, err := bookings.CancelBooking(c.Request.Context(), bookingID, userId)
		if err != nil {
			fail(c, err)
			return
		}

		go func() {
			hub.NotifyUser(booking.Ride.DriverID, "booking_cancelled", services.BookingCancelled{
				RideID:    booking.RideID,
				BookingID: booking.ID,
			})
			if err := services.PublishBookingEvent(context.Background(), "cancelled", booking.ID, booking.RideID); err != nil {
				log.Printf("Failed to publish booking event: %v", err)
			}
		}()

		c.JSON(200, gin.H{"message": "Booking cancelled"})
	}
}
