package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

type BookingStore struct {
	db *gorm.DB
}

func NewBookingStore(db *gorm.DB) *BookingStore {
	return &BookingStore{db: db}
}

func (s *BookingStore) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).
		Preload("Ride").
		Preload("Ride.Driver").
		First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NotFound("booking not found")
		}
		return nil, engine.Internal("failed to fetch booking", err)
	}
	return &booking, nil
}

func (s *BookingStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return engine.Internal("failed to create booking", err)
	}
	return nil
}

func (s *BookingStore) BookingsByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Ride").
		Preload("Ride.Driver").
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, engine.Internal("failed to fetch bookings", err)
	}
	return bookings, nil
}

func (s *BookingStore) MarkCancelled(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, models.BookingStatusActive).
		Update("status", models.BookingStatusCancelled)
	if res.Error != nil {
		return false, engine.Internal("failed to cancel booking", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *BookingStore) UpdateSeats(ctx context.Context, id uint, prev, next int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ? AND seats_booked = ?", id, models.BookingStatusActive, prev).
		Update("seats_booked", next)
	if res.Error != nil {
		return false, engine.Internal("failed to update booking seats", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *BookingStore) SetPaymentOrder(ctx context.Context, id uint, orderID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND payment_order_id = ''", id).
		Update("payment_order_id", orderID)
	if res.Error != nil {
		return false, engine.Internal("failed to store payment order", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *BookingStore) MarkPaid(ctx context.Context, id uint, orderID, paymentID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND payment_order_id = ? AND payment_status = ?",
			id, orderID, models.PaymentStatusUnpaid).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusSucceeded,
			"payment_id":     paymentID,
		})
	if res.Error != nil {
		return false, engine.Internal("failed to record payment", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *BookingStore) ConsumeStartCode(ctx context.Context, rideID uint, code string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("ride_id = ? AND status = ? AND ride_start_code = ? AND ride_start_code_used = ?",
			rideID, models.BookingStatusActive, code, false).
		Update("ride_start_code_used", true)
	if res.Error != nil {
		return false, engine.Internal("failed to verify start code", res.Error)
	}
	return res.RowsAffected >= 1, nil
}
