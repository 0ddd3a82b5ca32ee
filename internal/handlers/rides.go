package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/services"
)

func rideParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("rideId"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid ride ID"})
		return 0, false
	}
	return uint(id), true
}

// CreateRide handles the posting of a new ride by a driver
func CreateRide(rides *engine.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			From           string    `json:"from" binding:"required"`
			To             string    `json:"to" binding:"required"`
			Date           time.Time `json:"date" binding:"required"`
			SeatsAvailable int       `json:"seatsAvailable" binding:"required"`
			PricePerSeat   *float64  `json:"pricePerSeat" binding:"required"`
			Notes          string    `json:"notes"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := rides.CreateRide(c.Request.Context(), userId,
			input.From, input.To, input.Date, input.SeatsAvailable, *input.PricePerSeat, input.Notes)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(201, gin.H{"message": "Ride created", "ride": ride})
	}
}

// SearchRides retrieves bookable rides matching origin/destination
func SearchRides(rides *engine.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := engine.RideQuery{
			From: c.Query("from"),
			To:   c.Query("to"),
		}
		if date := c.Query("date"); date != "" {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				c.JSON(400, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			q.Date = day
		}

		found, err := rides.SearchRides(c.Request.Context(), q)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(200, gin.H{"rides": found})
	}
}

// GetMyRides retrieves all rides posted by the calling driver
func GetMyRides(rides *engine.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		found, err := rides.MyRides(c.Request.Context(), userId)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(200, gin.H{"rides": found})
	}
}

// ModifyRide lets the driver adjust a still-posted ride
func ModifyRide(rides *engine.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := rideParam(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			From           *string    `json:"from"`
			To             *string    `json:"to"`
			Date           *time.Time `json:"date"`
			SeatsAvailable *int       `json:"seatsAvailable"`
			PricePerSeat   *float64   `json:"pricePerSeat"`
			Notes          *string    `json:"notes"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := rides.ModifyRide(c.Request.Context(), rideID, userId, engine.RidePatch{
			From:         input.From,
			To:           input.To,
			Date:         input.Date,
			Capacity:     input.SeatsAvailable,
			PricePerSeat: input.PricePerSeat,
			Notes:        input.Notes,
		})
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(200, gin.H{"message": "Ride updated", "ride": ride})
	}
}

// DeleteRide removes a posted ride
func DeleteRide(rides *engine.RideService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := rideParam(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		if err := rides.DeleteRide(c.Request.Context(), rideID, userId); err != nil {
			fail(c, err)
			return
		}

		c.JSON(200, gin.H{"message": "Ride successfully deleted"})
	}
}

// UpdateRideStatus transitions the ride lifecycle on behalf of its driver
func UpdateRideStatus(lifecycle *engine.Lifecycle, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := rideParam(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			Status string `json:"status" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ride, err := lifecycle.Transition(c.Request.Context(), rideID, userId, models.RideStatus(input.Status))
		if err != nil {
			fail(c, err)
			return
		}

		announceRideStatus(hub, ride)

		c.JSON(200, gin.H{"rideId": ride.ID, "status": ride.Status})
	}
}

// StartRide moves a posted ride to ongoing, optionally burning a rider's
// start code first
func StartRide(lifecycle *engine.Lifecycle, bookings *engine.BookingService, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := rideParam(c)
		if !ok {
			return
		}
		userId := c.GetUint("userId")

		var input struct {
			Code string `json:"code"`
		}
		// Body is optional; a missing body means no code to verify.
		_ = c.ShouldBindJSON(&input)

		if input.Code != "" {
			if err := bookings.ConsumeStartCode(c.Request.Context(), rideID, input.Code); err != nil {
				fail(c, err)
				return
			}
		}

		ride, err := lifecycle.Transition(c.Request.Context(), rideID, userId, models.RideStatusOngoing)
		if err != nil {
			fail(c, err)
			return
		}

		announceRideStatus(hub, ride)

		c.JSON(200, gin.H{"message": "Ride started", "ride": ride})
	}
}

// announceRideStatus fans the committed transition out to the hub and the
// event bus without blocking the response.
func announceRideStatus(hub *services.Hub, ride *models.Ride) {
	go func() {
		hub.NotifyUser(ride.DriverID, "ride_status_changed", services.RideStatusChanged{
			RideID: ride.ID,
			Status: string(ride.Status),
		})
		if err := services.PublishRideStatus(context.Background(), ride.ID, string(ride.Status)); err != nil {
			log.Printf("Failed to publish ride status event: %v", err)
		}
	}()
}
