package engine

import (
	"context"
	"strings"
	"time"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

// RideService handles ride posting and the driver-side maintenance around it.
// The interesting mutations (seats, status) live in SeatInventory and
// Lifecycle; this keeps the thin reads and writes off the handlers.
type RideService struct {
	rides RideStore
}

func NewRideService(rides RideStore) *RideService {
	return &RideService{rides: rides}
}

// RidePatch carries the optional fields of a ride modification. Nil means
// leave unchanged.
type RidePatch struct {
	From         *string
	To           *string
	Date         *time.Time
	Capacity     *int
	PricePerSeat *float64
	Notes        *string
}

func (s *RideService) CreateRide(ctx context.Context, driverID uint, from, to string, date time.Time, seats int, pricePerSeat float64, notes string) (*models.Ride, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return nil, InvalidArgument("from and to are required")
	}
	if date.IsZero() {
		return nil, InvalidArgument("date is required")
	}
	if seats < 1 {
		return nil, InvalidArgument("seatsAvailable must be a positive integer")
	}
	if pricePerSeat < 0 {
		return nil, InvalidArgument("pricePerSeat must be >= 0")
	}

	ride := &models.Ride{
		DriverID:       driverID,
		From:           from,
		To:             to,
		Date:           date,
		SeatsAvailable: seats,
		PricePerSeat:   pricePerSeat,
		Status:         models.RideStatusPosted,
		Notes:          notes,
	}
	if err := s.rides.CreateRide(ctx, ride); err != nil {
		return nil, err
	}
	return ride, nil
}

// SearchRides is a pure read over posted and ongoing rides with seats left.
func (s *RideService) SearchRides(ctx context.Context, q RideQuery) ([]models.Ride, error) {
	if strings.TrimSpace(q.From) == "" || strings.TrimSpace(q.To) == "" {
		return nil, InvalidArgument("from and to are required")
	}
	return s.rides.SearchRides(ctx, q)
}

func (s *RideService) MyRides(ctx context.Context, driverID uint) ([]models.Ride, error) {
	return s.rides.RidesByDriver(ctx, driverID)
}

// ModifyRide lets the driver adjust a still-posted ride. A capacity change
// rebases seats_available against what is already booked, inside one store
// transaction.
func (s *RideService) ModifyRide(ctx context.Context, rideID, driverID uint, patch RidePatch) (*models.Ride, error) {
	ride, err := s.rides.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, Forbidden("not authorized to modify this ride")
	}
	if ride.Status != models.RideStatusPosted {
		return nil, InvalidState("only posted rides can be modified")
	}

	if patch.Capacity != nil {
		if *patch.Capacity < 1 {
			return nil, InvalidArgument("seatsAvailable must be a positive integer")
		}
		if err := s.rides.Rebase(ctx, rideID, *patch.Capacity); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if patch.From != nil {
		v := strings.TrimSpace(*patch.From)
		if v == "" {
			return nil, InvalidArgument("from cannot be empty")
		}
		updates["origin"] = v
	}
	if patch.To != nil {
		v := strings.TrimSpace(*patch.To)
		if v == "" {
			return nil, InvalidArgument("to cannot be empty")
		}
		updates["destination"] = v
	}
	if patch.Date != nil {
		updates["date"] = *patch.Date
	}
	if patch.PricePerSeat != nil {
		if *patch.PricePerSeat < 0 {
			return nil, InvalidArgument("pricePerSeat must be >= 0")
		}
		updates["price_per_seat"] = *patch.PricePerSeat
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}

	if len(updates) > 0 {
		ok, err := s.rides.UpdateRideFields(ctx, rideID, updates)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, InvalidState("only posted rides can be modified")
		}
	}

	return s.rides.GetRide(ctx, rideID)
}

// DeleteRide removes a posted ride. Ongoing and completed rides stay for the
// bookings and payments that reference them.
func (s *RideService) DeleteRide(ctx context.Context, rideID, driverID uint) error {
	ride, err := s.rides.GetRide(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.DriverID != driverID {
		return Forbidden("not authorized to delete this ride")
	}
	if ride.Status != models.RideStatusPosted {
		return InvalidState("only posted rides can be deleted")
	}
	return s.rides.DeleteRide(ctx, rideID)
}
