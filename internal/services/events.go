package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client used for lifecycle event fan-out.
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// Lifecycle events go out on pub/sub channels for the notification and chat
// systems to pick up. Publishing is fire-and-forget from the engine's point
// of view: handlers call these from goroutines after the authoritative write
// commits, and a transition never blocks on a subscriber.

// PublishRideStatus announces a ride status change.
func PublishRideStatus(ctx context.Context, rideID uint, status string) error {
	if RedisClient == nil {
		return nil
	}
	payload := map[string]interface{}{
		"eventId":   uuid.NewString(),
		"rideId":    rideID,
		"status":    status,
		"timestamp": time.Now().Unix(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return RedisClient.Publish(ctx, "ride:status", data).Err()
}

// PublishBookingEvent announces a booking-level event (created, cancelled,
// paid).
func PublishBookingEvent(ctx context.Context, event string, bookingID, rideID uint) error {
	if RedisClient == nil {
		return nil
	}
	payload := map[string]interface{}{
		"eventId":   uuid.NewString(),
		"event":     event,
		"bookingId": bookingID,
		"rideId":    rideID,
		"timestamp": time.Now().Unix(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return RedisClient.Publish(ctx, "booking:events", data).Err()
}
