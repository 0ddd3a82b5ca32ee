package engine_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/storage/memstore"
)

func newBookingService(store *memstore.Store) *engine.BookingService {
	codes := 0
	return engine.NewBookingService(
		engine.NewSeatInventory(store), store, store,
		func(string) string {
			codes++
			return fmt.Sprintf("%06d", 100000+codes)
		})
}

func TestCreateBookingReservesAndRecords(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 3, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, ride.ID, 42, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, booking.SeatsBooked)
	assert.Equal(t, models.PaymentStatusUnpaid, booking.PaymentStatus)
	assert.Empty(t, booking.RideStartCode, "create response must not leak the start code")
	assert.Equal(t, ride.DriverID, booking.Ride.DriverID, "ride comes back attached so callers can reach the driver")

	gotRide, err := store.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotRide.SeatsAvailable)

	stored, err := store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Len(t, stored.RideStartCode, 6, "stored booking carries the start code")
}

func TestCreateBookingValidation(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 2, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, ride.ID, 42, 0)
	assert.Equal(t, engine.KindInvalidArgument, engine.KindOf(err))

	_, err = svc.CreateBooking(ctx, ride.ID, ride.DriverID, 1)
	assert.Equal(t, engine.KindInvalidArgument, engine.KindOf(err))

	_, err = svc.CreateBooking(ctx, 9999, 42, 1)
	assert.Equal(t, engine.KindNotFound, engine.KindOf(err))
}

func TestCapacityTwoScenario(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 2, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, ride.ID, 42, 2)
	require.NoError(t, err)

	gotRide, err := store.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotRide.SeatsAvailable)

	_, err = svc.CreateBooking(ctx, ride.ID, 43, 1)
	assert.Equal(t, engine.KindInsufficientSeats, engine.KindOf(err))
}

func TestCreateBookingCompensatesOnRecordFailure(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 3, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	store.FailBookingCreate = true
	_, err := svc.CreateBooking(ctx, ride.ID, 42, 2)
	assert.Equal(t, engine.KindInternal, engine.KindOf(err))

	// The reservation must have been rolled back.
	gotRide, err := store.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, gotRide.SeatsAvailable)
}

func TestListBookingsNewestFirst(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 5, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	store.SeedBooking(models.Booking{
		RideID: ride.ID, UserID: 42, SeatsBooked: 1,
		Status: models.BookingStatusActive, PaymentStatus: models.PaymentStatusUnpaid,
		Model: gormModel(time.Now().Add(-time.Hour)),
	})
	store.SeedBooking(models.Booking{
		RideID: ride.ID, UserID: 42, SeatsBooked: 2,
		Status: models.BookingStatusActive, PaymentStatus: models.PaymentStatusUnpaid,
		Model: gormModel(time.Now()),
	})
	store.SeedBooking(models.Booking{
		RideID: ride.ID, UserID: 7, SeatsBooked: 1,
		Status: models.BookingStatusActive, PaymentStatus: models.PaymentStatusUnpaid,
	})

	got, err := svc.ListBookings(ctx, 42)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].SeatsBooked, "newest booking first")
	assert.Equal(t, ride.ID, got[0].Ride.ID, "ride joined onto booking")
}

func TestCancelBookingReleasesOnce(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 3, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, ride.ID, 42, 2)
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(ctx, booking.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, ride.DriverID, cancelled.Ride.DriverID, "ride attached for the driver notification")

	gotRide, err := store.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, gotRide.SeatsAvailable)

	// A second cancel must not release seats again.
	_, err = svc.CancelBooking(ctx, booking.ID, 42)
	assert.Equal(t, engine.KindInvalidState, engine.KindOf(err))

	gotRide, err = store.GetRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, gotRide.SeatsAvailable)
}

func TestCancelBookingAuthorization(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 3, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, ride.ID, 42, 1)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, booking.ID, 43)
	assert.Equal(t, engine.KindForbidden, engine.KindOf(err))
}

func TestCancelBookingRejectsCompletedRide(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 3, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, ride.ID, 42, 1)
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, ride.ID, ride.DriverID, "", models.RideStatusCompleted)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, booking.ID, 42)
	assert.Equal(t, engine.KindInvalidState, engine.KindOf(err))
}

func TestModifySeatsGrowAndShrink(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 5, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, ride.ID, 42, 2)
	require.NoError(t, err)

	got, err := svc.ModifySeats(ctx, booking.ID, 42, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, got.SeatsBooked)

	gotRide, _ := store.GetRide(ctx, ride.ID)
	assert.Equal(t, 1, gotRide.SeatsAvailable)

	got, err = svc.ModifySeats(ctx, booking.ID, 42, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SeatsBooked)

	gotRide, _ = store.GetRide(ctx, ride.ID)
	assert.Equal(t, 4, gotRide.SeatsAvailable)

	// Asking for more than remain fails and changes nothing.
	_, err = svc.ModifySeats(ctx, booking.ID, 42, 6)
	assert.Equal(t, engine.KindInsufficientSeats, engine.KindOf(err))

	gotRide, _ = store.GetRide(ctx, ride.ID)
	assert.Equal(t, 4, gotRide.SeatsAvailable)
}

func TestConsumeStartCode(t *testing.T) {
	store := memstore.New()
	ride := seedRide(store, 3, models.RideStatusPosted)
	svc := newBookingService(store)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, ride.ID, 42, 1)
	require.NoError(t, err)

	stored, err := store.GetBooking(ctx, booking.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ConsumeStartCode(ctx, ride.ID, stored.RideStartCode))

	// Codes are single use.
	err = svc.ConsumeStartCode(ctx, ride.ID, stored.RideStartCode)
	assert.Equal(t, engine.KindInvalidArgument, engine.KindOf(err))

	err = svc.ConsumeStartCode(ctx, ride.ID, "000000")
	assert.Equal(t, engine.KindInvalidArgument, engine.KindOf(err))
}
