package engine

import (
	"context"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

// SeatInventory owns the seat-count invariant: booked seats never exceed the
// ride's capacity, enforced by a single conditional decrement at the store
// rather than a read-then-write round trip.
type SeatInventory struct {
	rides RideStore
}

func NewSeatInventory(rides RideStore) *SeatInventory {
	return &SeatInventory{rides: rides}
}

// Reserve takes seats out of the ride's inventory. When the conditional
// decrement does not match, the ride is re-read once to tell the caller
// whether the ride is gone, closed to bookings, or simply out of seats.
func (s *SeatInventory) Reserve(ctx context.Context, rideID uint, seats int) error {
	if seats < 1 {
		return InvalidArgument("seats must be a positive integer")
	}

	ok, err := s.rides.ReserveSeats(ctx, rideID, seats)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	ride, err := s.rides.GetRide(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.Status == models.RideStatusCompleted {
		return InvalidState("ride is no longer accepting bookings")
	}
	return InsufficientSeats("not enough seats available")
}

// Release puts seats back. It must only be called after the caller has won a
// state flip on the owning booking (cancelled, shrunk), which is what keeps a
// double release out.
func (s *SeatInventory) Release(ctx context.Context, rideID uint, seats int) error {
	if seats < 1 {
		return InvalidArgument("seats must be a positive integer")
	}
	return s.rides.ReleaseSeats(ctx, rideID, seats)
}
