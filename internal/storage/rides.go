package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

// RideStore is the Postgres-backed implementation of engine.RideStore. Every
// conditional method is a single UPDATE with its precondition in the WHERE
// clause; RowsAffected tells the winner from the loser.
type RideStore struct {
	db *gorm.DB
}

func NewRideStore(db *gorm.DB) *RideStore {
	return &RideStore{db: db}
}

func (s *RideStore) GetRide(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	if err := s.db.WithContext(ctx).Preload("Driver").First(&ride, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.NotFound("ride not found")
		}
		return nil, engine.Internal("failed to fetch ride", err)
	}
	return &ride, nil
}

func (s *RideStore) CreateRide(ctx context.Context, ride *models.Ride) error {
	if err := s.db.WithContext(ctx).Create(ride).Error; err != nil {
		return engine.Internal("failed to create ride", err)
	}
	return nil
}

func (s *RideStore) DeleteRide(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.Ride{}, id).Error; err != nil {
		return engine.Internal("failed to delete ride", err)
	}
	return nil
}

func (s *RideStore) SearchRides(ctx context.Context, q engine.RideQuery) ([]models.Ride, error) {
	query := s.db.WithContext(ctx).Preload("Driver").
		Where("status IN ?", []models.RideStatus{models.RideStatusPosted, models.RideStatusOngoing}).
		Where("seats_available > 0")

	if from := strings.TrimSpace(q.From); from != "" {
		query = query.Where("LOWER(origin) LIKE LOWER(?)", "%"+from+"%")
	}
	if to := strings.TrimSpace(q.To); to != "" {
		query = query.Where("LOWER(destination) LIKE LOWER(?)", "%"+to+"%")
	}
	if !q.Date.IsZero() {
		// Day matching is by UTC calendar day, same as the in-memory store.
		y, m, d := q.Date.UTC().Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		query = query.Where("date >= ? AND date < ?", day, day.Add(24*time.Hour))
	}

	var rides []models.Ride
	if err := query.Order("date ASC").Find(&rides).Error; err != nil {
		return nil, engine.Internal("failed to search rides", err)
	}
	return rides, nil
}

func (s *RideStore) RidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	var rides []models.Ride
	if err := s.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("date DESC").
		Find(&rides).Error; err != nil {
		return nil, engine.Internal("failed to fetch driver rides", err)
	}
	return rides, nil
}

func (s *RideStore) ReserveSeats(ctx context.Context, rideID uint, seats int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Ride{}).
		Where("id = ? AND seats_available >= ? AND status IN ?",
			rideID, seats, []models.RideStatus{models.RideStatusPosted, models.RideStatusOngoing}).
		UpdateColumn("seats_available", gorm.Expr("seats_available - ?", seats))
	if res.Error != nil {
		return false, engine.Internal("failed to reserve seats", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *RideStore) ReleaseSeats(ctx context.Context, rideID uint, seats int) error {
	res := s.db.WithContext(ctx).Model(&models.Ride{}).
		Where("id = ?", rideID).
		UpdateColumn("seats_available", gorm.Expr("seats_available + ?", seats))
	if res.Error != nil {
		return engine.Internal("failed to release seats", res.Error)
	}
	if res.RowsAffected == 0 {
		return engine.NotFound("ride not found")
	}
	return nil
}

func (s *RideStore) UpdateStatus(ctx context.Context, rideID, driverID uint, prev, next models.RideStatus) (bool, error) {
	query := s.db.WithContext(ctx).Model(&models.Ride{}).
		Where("id = ? AND driver_id = ?", rideID, driverID)
	if prev != "" {
		query = query.Where("status = ?", prev)
	}
	res := query.Update("status", next)
	if res.Error != nil {
		return false, engine.Internal("failed to update ride status", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *RideStore) Rebase(ctx context.Context, rideID uint, capacity int) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ride models.Ride
		if err := tx.Clauses(forUpdate()).First(&ride, rideID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return engine.NotFound("ride not found")
			}
			return engine.Internal("failed to lock ride", err)
		}
		if ride.Status != models.RideStatusPosted {
			return engine.InvalidState("only posted rides can be modified")
		}

		var booked int64
		if err := tx.Model(&models.Booking{}).
			Where("ride_id = ? AND status = ?", rideID, models.BookingStatusActive).
			Select("COALESCE(SUM(seats_booked), 0)").
			Scan(&booked).Error; err != nil {
			return engine.Internal("failed to sum booked seats", err)
		}
		if int64(capacity) < booked {
			return engine.InvalidArgument("seatsAvailable cannot be less than seats already booked")
		}

		return tx.Model(&ride).UpdateColumn("seats_available", capacity-int(booked)).Error
	})
	if err != nil {
		if _, ok := err.(*engine.Error); ok {
			return err
		}
		return engine.Internal("failed to rebase ride capacity", err)
	}
	return nil
}

func (s *RideStore) UpdateRideFields(ctx context.Context, rideID uint, updates map[string]interface{}) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Ride{}).
		Where("id = ? AND status = ?", rideID, models.RideStatusPosted).
		Updates(updates)
	if res.Error != nil {
		return false, engine.Internal("failed to update ride", res.Error)
	}
	return res.RowsAffected == 1, nil
}
