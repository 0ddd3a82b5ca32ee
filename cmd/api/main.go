package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/database"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/handlers"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/middleware"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/payment"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/services"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/storage"
	"github.com/just-ritesh-coder/ezyride-sub000/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Redis only powers event fan-out; the engine runs without it.
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Stores
	rideStore := storage.NewRideStore(db)
	bookingStore := storage.NewBookingStore(db)
	reviewStore := storage.NewReviewStore(db)

	// Engine
	inventory := engine.NewSeatInventory(rideStore)
	rides := engine.NewRideService(rideStore)
	lifecycle := engine.NewLifecycle(rideStore)
	lifecycle.AllowAnyTransition = os.Getenv("RIDE_STATUS_LEGACY_TRANSITIONS") == "true"
	bookings := engine.NewBookingService(inventory, bookingStore, rideStore, utils.GenerateStartCode)
	reviews := engine.NewReviewService(bookingStore, reviewStore)

	provider := payment.NewClient(os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"))
	payments := engine.NewPaymentService(bookingStore, provider,
		os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"))

	// WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	{
		// Public reads
		api.GET("/rides/search", handlers.SearchRides(rides))
		api.GET("/reviews/user/:userId", handlers.GetUserReviews(reviews))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			ridesGroup := protected.Group("/rides")
			{
				ridesGroup.POST("", handlers.CreateRide(rides))
				ridesGroup.GET("/mine", handlers.GetMyRides(rides))
				ridesGroup.PATCH("/:rideId", handlers.ModifyRide(rides))
				ridesGroup.DELETE("/:rideId", handlers.DeleteRide(rides))
				ridesGroup.PUT("/:rideId/status", handlers.UpdateRideStatus(lifecycle, hub))
				ridesGroup.POST("/:rideId/start", handlers.StartRide(lifecycle, bookings, hub))
			}

			bookingsGroup := protected.Group("/bookings")
			{
				bookingsGroup.POST("", handlers.CreateBooking(bookings, hub))
				bookingsGroup.GET("/mybookings", handlers.GetMyBookings(bookings))
				bookingsGroup.PATCH("/:bookingId", handlers.ModifyBooking(bookings))
				bookingsGroup.DELETE("/:bookingId", handlers.CancelBooking(bookings, hub))
			}

			paymentsGroup := protected.Group("/payments/razorpay")
			{
				paymentsGroup.POST("/order", handlers.CreatePaymentOrder(payments))
				paymentsGroup.POST("/verify", handlers.VerifyPayment(payments, hub))
			}

			reviewsGroup := protected.Group("/reviews")
			{
				reviewsGroup.POST("", handlers.CreateReview(reviews))
				reviewsGroup.GET("/booking/:bookingId", handlers.CheckBookingReview(reviews))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
