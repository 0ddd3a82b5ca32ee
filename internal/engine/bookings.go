package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

// BookingService coordinates a seat reservation and the booking record it
// backs as one logical unit: the record only exists if the reservation won,
// and a reservation whose record failed to land is released before the error
// returns.
type BookingService struct {
	inventory *SeatInventory
	bookings  BookingStore
	rides     RideStore

	// startCode mints the ride-start confirmation code for a new booking.
	startCode func(seed string) string
}

func NewBookingService(inventory *SeatInventory, bookings BookingStore, rides RideStore, startCode func(string) string) *BookingService {
	return &BookingService{
		inventory: inventory,
		bookings:  bookings,
		rides:     rides,
		startCode: startCode,
	}
}

// CreateBooking reserves seats on the ride and records the booking. The
// returned booking has the ride attached and carries no start code; riders
// read the code from their booking list.
func (s *BookingService) CreateBooking(ctx context.Context, rideID, userID uint, seats int) (*models.Booking, error) {
	if seats < 1 {
		return nil, InvalidArgument("seats must be a positive integer")
	}

	ride, err := s.rides.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID == userID {
		return nil, InvalidArgument("cannot book your own ride")
	}

	if err := s.inventory.Reserve(ctx, rideID, seats); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		RideID:        rideID,
		UserID:        userID,
		SeatsBooked:   seats,
		Status:        models.BookingStatusActive,
		RideStartCode: s.startCode(fmt.Sprintf("%d:%d:%d", rideID, userID, time.Now().UnixNano())),
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		// The reservation already went through; hand the seats back before
		// surfacing the failure.
		if relErr := s.inventory.Release(ctx, rideID, seats); relErr != nil {
			log.Printf("failed to release %d seats on ride %d after booking create failure: %v", seats, rideID, relErr)
		}
		return nil, err
	}

	booking.RideStartCode = ""
	booking.Ride = *ride
	return booking, nil
}

// ListBookings returns the user's bookings, rides joined, newest first.
func (s *BookingService) ListBookings(ctx context.Context, userID uint) ([]models.Booking, error) {
	return s.bookings.BookingsByUser(ctx, userID)
}

// CancelBooking marks the booking cancelled and returns its seats to the
// ride. The active -> cancelled flip is conditional, so a second cancel (or a
// concurrent one) cannot release the seats twice. The cancelled booking comes
// back with its ride attached.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uint) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, Forbidden("not authorized to cancel this booking")
	}
	if booking.Ride.Status == models.RideStatusCompleted {
		return nil, InvalidState("cannot cancel a booking on a completed ride")
	}

	ok, err := s.bookings.MarkCancelled(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, InvalidState("booking is not active")
	}

	if err := s.inventory.Release(ctx, booking.RideID, booking.SeatsBooked); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled
	return booking, nil
}

// ModifySeats changes the seat count on an active booking. Growth goes
// through Reserve first; shrink releases only after the booking row has been
// swapped, so the freed seats cannot be handed out twice.
func (s *BookingService) ModifySeats(ctx context.Context, bookingID, userID uint, seats int) (*models.Booking, error) {
	if seats < 1 {
		return nil, InvalidArgument("seats must be a positive integer")
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, Forbidden("not authorized to modify this booking")
	}
	if booking.Status != models.BookingStatusActive {
		return nil, InvalidState("booking is not active")
	}
	if booking.Ride.Status == models.RideStatusCompleted {
		return nil, InvalidState("cannot modify a booking on a completed ride")
	}

	prev := booking.SeatsBooked
	if seats == prev {
		return booking, nil
	}

	if seats > prev {
		if err := s.inventory.Reserve(ctx, booking.RideID, seats-prev); err != nil {
			return nil, err
		}
		ok, err := s.bookings.UpdateSeats(ctx, bookingID, prev, seats)
		if err != nil || !ok {
			if relErr := s.inventory.Release(ctx, booking.RideID, seats-prev); relErr != nil {
				log.Printf("failed to release %d seats on ride %d after seat update conflict: %v", seats-prev, booking.RideID, relErr)
			}
			if err != nil {
				return nil, err
			}
			return nil, InvalidState("booking changed concurrently, retry")
		}
	} else {
		ok, err := s.bookings.UpdateSeats(ctx, bookingID, prev, seats)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, InvalidState("booking changed concurrently, retry")
		}
		if err := s.inventory.Release(ctx, booking.RideID, prev-seats); err != nil {
			return nil, err
		}
	}

	booking.SeatsBooked = seats
	return booking, nil
}

// ConsumeStartCode burns a rider's ride-start code against the ride. Used by
// the driver when confirming the pickup before moving the ride to ongoing.
func (s *BookingService) ConsumeStartCode(ctx context.Context, rideID uint, code string) error {
	if code == "" {
		return InvalidArgument("code is required")
	}
	ok, err := s.bookings.ConsumeStartCode(ctx, rideID, code)
	if err != nil {
		return err
	}
	if !ok {
		return InvalidArgument("invalid or already used code")
	}
	return nil
}
