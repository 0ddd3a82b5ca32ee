package handlers

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/services"
)

// CreatePaymentOrder mints a provider order for a completed ride's booking
func CreatePaymentOrder(payments *engine.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			BookingID uint `json:"bookingId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		order, err := payments.CreateOrder(c.Request.Context(), input.BookingID, userId)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(200, order)
	}
}

// VerifyPayment checks a provider callback and records the payment
func VerifyPayment(payments *engine.PaymentService, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			OrderID   string `json:"orderId" binding:"required"`
			PaymentID string `json:"paymentId" binding:"required"`
			Signature string `json:"signature" binding:"required"`
			BookingID uint   `json:"bookingId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := payments.VerifyCallback(c.Request.Context(),
			input.OrderID, input.PaymentID, input.Signature, input.BookingID)
		if err != nil {
			fail(c, err)
			return
		}

		go func() {
			hub.NotifyUser(booking.Ride.DriverID, "payment_recorded", services.PaymentRecorded{
				BookingID: booking.ID,
				Amount:    int64(booking.Ride.PricePerSeat * float64(booking.SeatsBooked) * 100),
			})
			if err := services.PublishBookingEvent(context.Background(), "paid", booking.ID, booking.RideID); err != nil {
				log.Printf("Failed to publish booking event: %v", err)
			}
		}()

		c.JSON(200, gin.H{"ok": true})
	}
}
