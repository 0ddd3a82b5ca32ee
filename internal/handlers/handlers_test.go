package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/handlers"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/middleware"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/services"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/storage/memstore"
	"github.com/just-ritesh-coder/ezyride-sub000/pkg/utils"
)

type fixture struct {
	store    *memstore.Store
	router   *gin.Engine
	payments *engine.PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	hub := services.NewHub()

	inventory := engine.NewSeatInventory(store)
	lifecycle := engine.NewLifecycle(store)
	rides := engine.NewRideService(store)
	bookings := engine.NewBookingService(inventory, store, store, utils.GenerateStartCode)
	reviews := engine.NewReviewService(store, store)
	payments := engine.NewPaymentService(store, stubProvider{}, "rzp_test_key", "test_key_secret")

	r := gin.New()
	api := r.Group("/api")
	api.GET("/rides/search", handlers.SearchRides(rides))
	api.GET("/reviews/user/:userId", handlers.GetUserReviews(reviews))

	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware())
	auth.POST("/rides", handlers.CreateRide(rides))
	auth.GET("/rides/mine", handlers.GetMyRides(rides))
	auth.PUT("/rides/:rideId/status", handlers.UpdateRideStatus(lifecycle, hub))
	auth.POST("/rides/:rideId/start", handlers.StartRide(lifecycle, bookings, hub))
	auth.POST("/bookings", handlers.CreateBooking(bookings, hub))
	auth.GET("/bookings/mybookings", handlers.GetMyBookings(bookings))
	auth.DELETE("/bookings/:bookingId", handlers.CancelBooking(bookings, hub))
	auth.POST("/payments/razorpay/order", handlers.CreatePaymentOrder(payments))
	auth.POST("/payments/razorpay/verify", handlers.VerifyPayment(payments, hub))
	auth.POST("/reviews", handlers.CreateReview(reviews))

	return &fixture{store: store, router: r, payments: payments}
}

type stubProvider struct{}

func (stubProvider) CreateOrder(_ context.Context, req engine.OrderRequest) (*engine.ProviderOrder, error) {
	return &engine.ProviderOrder{ID: "order_stub", Amount: req.Amount, Currency: req.Currency}, nil
}

func token(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := utils.GenerateToken(&models.User{Model: gorm.Model{ID: userID}, Email: "rider@example.com"})
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path string, userID uint, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/bookings/mybookings", 0, nil)
	assert.Equal(t, 401, w.Code)
}

func TestBookingFlow(t *testing.T) {
	f := newFixture(t)
	ride := f.store.SeedRide(models.Ride{
		DriverID: 1, From: "Pune", To: "Mumbai",
		SeatsAvailable: 3, PricePerSeat: 100,
		Status: models.RideStatusPosted,
	})

	w := f.do(t, http.MethodPost, "/api/bookings", 42, gin.H{"rideId": ride.ID, "seats": 2})
	require.Equal(t, 201, w.Code, w.Body.String())

	var resp struct {
		Booking struct {
			BookingID   uint `json:"bookingId"`
			SeatsBooked int  `json:"seatsBooked"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Booking.SeatsBooked)

	current, err := f.store.GetRide(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.SeatsAvailable)

	// Third seat goes, fourth request conflicts.
	w = f.do(t, http.MethodPost, "/api/bookings", 43, gin.H{"rideId": ride.ID, "seats": 1})
	require.Equal(t, 201, w.Code)

	w = f.do(t, http.MethodPost, "/api/bookings", 44, gin.H{"rideId": ride.ID, "seats": 1})
	assert.Equal(t, 409, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient_seats")

	// Cancelling returns the seats.
	w = f.do(t, http.MethodDelete, fmt.Sprintf("/api/bookings/%d", resp.Booking.BookingID), 42, nil)
	require.Equal(t, 200, w.Code, w.Body.String())

	current, err = f.store.GetRide(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.SeatsAvailable)
}

func TestDriverCannotBookOwnRide(t *testing.T) {
	f := newFixture(t)
	ride := f.store.SeedRide(models.Ride{
		DriverID: 1, From: "A", To: "B",
		SeatsAvailable: 2, PricePerSeat: 50,
		Status: models.RideStatusPosted,
	})

	w := f.do(t, http.MethodPost, "/api/bookings", 1, gin.H{"rideId": ride.ID, "seats": 1})
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_argument")
}

func TestBookingUnknownRideIs404(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/bookings", 42, gin.H{"rideId": 999, "seats": 1})
	assert.Equal(t, 404, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestRideStatusSkipRejected(t *testing.T) {
	f := newFixture(t)
	ride := f.store.SeedRide(models.Ride{
		DriverID: 1, From: "A", To: "B",
		SeatsAvailable: 2, PricePerSeat: 50,
		Status: models.RideStatusPosted,
	})

	w := f.do(t, http.MethodPut, fmt.Sprintf("/api/rides/%d/status", ride.ID), 1, gin.H{"status": "completed"})
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_state")

	w = f.do(t, http.MethodPut, fmt.Sprintf("/api/rides/%d/status", ride.ID), 1, gin.H{"status": "ongoing"})
	require.Equal(t, 200, w.Code)

	w = f.do(t, http.MethodPut, fmt.Sprintf("/api/rides/%d/status", ride.ID), 1, gin.H{"status": "completed"})
	assert.Equal(t, 200, w.Code)
}

func TestRideStatusOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ride := f.store.SeedRide(models.Ride{
		DriverID: 1, From: "A", To: "B",
		SeatsAvailable: 2, PricePerSeat: 50,
		Status: models.RideStatusPosted,
	})

	w := f.do(t, http.MethodPut, fmt.Sprintf("/api/rides/%d/status", ride.ID), 7, gin.H{"status": "ongoing"})
	assert.Equal(t, 403, w.Code)
}

func TestPaymentOrderAndVerify(t *testing.T) {
	f := newFixture(t)
	ride := f.store.SeedRide(models.Ride{
		DriverID: 1, From: "A", To: "B",
		SeatsAvailable: 0, PricePerSeat: 150,
		Status: models.RideStatusCompleted,
	})
	booking := f.store.SeedBooking(models.Booking{
		RideID: ride.ID, UserID: 42, SeatsBooked: 2,
		Status: models.BookingStatusActive, PaymentStatus: models.PaymentStatusUnpaid,
	})

	w := f.do(t, http.MethodPost, "/api/payments/razorpay/order", 42, gin.H{"bookingId": booking.ID})
	require.Equal(t, 200, w.Code, w.Body.String())

	var order engine.OrderRef
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, int64(30000), order.Amount)
	assert.Equal(t, "order_stub", order.OrderID)

	// Tampered signature is rejected and changes nothing.
	w = f.do(t, http.MethodPost, "/api/payments/razorpay/verify", 42, gin.H{
		"orderId": order.OrderID, "paymentId": "pay_1",
		"signature": "deadbeef", "bookingId": booking.ID,
	})
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "signature_invalid")

	sig := f.payments.Signature(order.OrderID, "pay_1")
	w = f.do(t, http.MethodPost, "/api/payments/razorpay/verify", 42, gin.H{
		"orderId": order.OrderID, "paymentId": "pay_1",
		"signature": sig, "bookingId": booking.ID,
	})
	require.Equal(t, 200, w.Code, w.Body.String())

	stored, err := f.store.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, stored.PaymentStatus)

	// Replaying the callback does not record twice.
	w = f.do(t, http.MethodPost, "/api/payments/razorpay/verify", 42, gin.H{
		"orderId": order.OrderID, "paymentId": "pay_1",
		"signature": sig, "bookingId": booking.ID,
	})
	assert.Equal(t, 400, w.Code)
}

func TestPaymentOrderBeforeCompletion(t *testing.T) {
	f := newFixture(t)
	ride := f.store.SeedRide(models.Ride{
		DriverID: 1, From: "A", To: "B",
		SeatsAvailable: 1, PricePerSeat: 150,
		Status: models.RideStatusPosted,
	})
	booking := f.store.SeedBooking(models.Booking{
		RideID: ride.ID, UserID: 42, SeatsBooked: 1,
		Status: models.BookingStatusActive, PaymentStatus: models.PaymentStatusUnpaid,
	})

	w := f.do(t, http.MethodPost, "/api/payments/razorpay/order", 42, gin.H{"bookingId": booking.ID})
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_state")
}

func TestDuplicateReviewConflicts(t *testing.T) {
	f := newFixture(t)
	ride := f.store.SeedRide(models.Ride{
		DriverID: 9, From: "A", To: "B",
		PricePerSeat: 100, Status: models.RideStatusCompleted,
	})
	booking := f.store.SeedBooking(models.Booking{
		RideID: ride.ID, UserID: 42, SeatsBooked: 1,
		Status: models.BookingStatusActive,
	})

	w := f.do(t, http.MethodPost, "/api/reviews", 42, gin.H{"bookingId": booking.ID, "rating": 5, "comment": "great"})
	require.Equal(t, 201, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/reviews", 42, gin.H{"bookingId": booking.ID, "rating": 4})
	assert.Equal(t, 409, w.Code)
	assert.Contains(t, w.Body.String(), "already_exists")

	// Public reads need no token.
	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/reviews/user/%d", ride.DriverID), 0, nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "great")
}
