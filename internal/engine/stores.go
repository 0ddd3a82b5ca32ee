package engine

import (
	"context"
	"time"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

// The engine coordinates everything through these store ports. The contract
// that matters: any method documented as conditional performs its check and
// its write as one atomic store operation, so two racing callers get exactly
// one success. Implementations must never read-then-save for those methods.
//
// Lookup methods return engine-kinded errors (NotFound for a missing row,
// Internal for anything else).

// RideQuery filters a ride search. From/To match as case-insensitive
// substrings; a zero Date means any day, a set Date matches its UTC
// calendar day.
type RideQuery struct {
	From string
	To   string
	Date time.Time
}

type RideStore interface {
	GetRide(ctx context.Context, id uint) (*models.Ride, error)
	CreateRide(ctx context.Context, ride *models.Ride) error
	DeleteRide(ctx context.Context, id uint) error
	SearchRides(ctx context.Context, q RideQuery) ([]models.Ride, error)
	RidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error)

	// ReserveSeats decrements seats_available by seats only if the ride still
	// has that many free and is in a bookable state. Conditional; false means
	// the precondition did not hold.
	ReserveSeats(ctx context.Context, rideID uint, seats int) (bool, error)

	// ReleaseSeats returns seats to the ride. Callers gate it on a booking
	// state flip so a double release cannot happen.
	ReleaseSeats(ctx context.Context, rideID uint, seats int) error

	// UpdateStatus moves the ride to next, matching driverID and, when prev is
	// non-empty, the current status. Conditional.
	UpdateStatus(ctx context.Context, rideID, driverID uint, prev, next models.RideStatus) (bool, error)

	// Rebase resets seats_available to capacity minus the seats already booked,
	// inside one transaction holding the ride row. Only posted rides may be
	// rebased; a capacity below the booked count is rejected.
	Rebase(ctx context.Context, rideID uint, capacity int) error

	// UpdateRideFields patches mutable ride fields, conditional on the ride
	// still being posted.
	UpdateRideFields(ctx context.Context, rideID uint, updates map[string]interface{}) (bool, error)
}

type BookingStore interface {
	// GetBooking returns the booking with its Ride (and the ride's driver)
	// attached.
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error

	// BookingsByUser returns the user's bookings, rides joined, newest first.
	BookingsByUser(ctx context.Context, userID uint) ([]models.Booking, error)

	// MarkCancelled flips active -> cancelled. Conditional.
	MarkCancelled(ctx context.Context, id uint) (bool, error)

	// UpdateSeats swaps seats_booked from prev to next. Conditional.
	UpdateSeats(ctx context.Context, id uint, prev, next int) (bool, error)

	// SetPaymentOrder records the provider order id, only when none is stored
	// yet. Conditional.
	SetPaymentOrder(ctx context.Context, id uint, orderID string) (bool, error)

	// MarkPaid flips payment_status unpaid -> succeeded and records the
	// provider payment id, only while the stored order id equals orderID.
	// Conditional.
	MarkPaid(ctx context.Context, id uint, orderID, paymentID string) (bool, error)

	// ConsumeStartCode burns an unused ride-start code on an active booking of
	// the ride. Conditional.
	ConsumeStartCode(ctx context.Context, rideID uint, code string) (bool, error)
}

type ReviewStore interface {
	// CreateReview inserts the review, returning an AlreadyExists-kinded error
	// when the (reviewer, reviewee, booking) uniqueness constraint trips.
	CreateReview(ctx context.Context, r *models.Review) error
	ReviewsFor(ctx context.Context, revieweeID uint) ([]models.Review, error)
	HasReview(ctx context.Context, reviewerID, revieweeID, bookingID uint) (bool, error)
}
