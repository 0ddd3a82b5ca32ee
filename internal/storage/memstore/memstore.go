// Package memstore is an in-memory implementation of the engine's store
// ports. It honors the same atomic contract as the Postgres stores (each
// conditional operation checks and writes under one lock acquisition), which
// is what makes it usable for the engine's concurrency tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/engine"
	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

type Store struct {
	mu       sync.Mutex
	rides    map[uint]*models.Ride
	bookings map[uint]*models.Booking
	reviews  map[uint]*models.Review
	nextID   uint

	// FailBookingCreate makes the next CreateBooking call fail, for
	// compensation-path tests.
	FailBookingCreate bool
}

func New() *Store {
	return &Store{
		rides:    make(map[uint]*models.Ride),
		bookings: make(map[uint]*models.Booking),
		reviews:  make(map[uint]*models.Review),
		nextID:   1,
	}
}

func (s *Store) allocID() uint {
	id := s.nextID
	s.nextID++
	return id
}

// ---- engine.RideStore ----

func (s *Store) GetRide(_ context.Context, id uint) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ride, ok := s.rides[id]
	if !ok {
		return nil, engine.NotFound("ride not found")
	}
	cp := *ride
	return &cp, nil
}

func (s *Store) CreateRide(_ context.Context, ride *models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ride.ID = s.allocID()
	ride.CreatedAt = time.Now()
	cp := *ride
	s.rides[ride.ID] = &cp
	return nil
}

func (s *Store) DeleteRide(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rides, id)
	return nil
}

func (s *Store) SearchRides(_ context.Context, q engine.RideQuery) ([]models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ride
	for _, ride := range s.rides {
		if ride.Status == models.RideStatusCompleted || ride.SeatsAvailable <= 0 {
			continue
		}
		if !strings.Contains(strings.ToLower(ride.From), strings.ToLower(strings.TrimSpace(q.From))) {
			continue
		}
		if !strings.Contains(strings.ToLower(ride.To), strings.ToLower(strings.TrimSpace(q.To))) {
			continue
		}
		if !q.Date.IsZero() {
			// UTC calendar day, matching the Postgres store's window.
			y, m, d := q.Date.UTC().Date()
			ry, rm, rd := ride.Date.UTC().Date()
			if y != ry || m != rm || d != rd {
				continue
			}
		}
		out = append(out, *ride)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) RidesByDriver(_ context.Context, driverID uint) ([]models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ride
	for _, ride := range s.rides {
		if ride.DriverID == driverID {
			out = append(out, *ride)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) ReserveSeats(_ context.Context, rideID uint, seats int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ride, ok := s.rides[rideID]
	if !ok || ride.SeatsAvailable < seats || ride.Status == models.RideStatusCompleted {
		return false, nil
	}
	ride.SeatsAvailable -= seats
	return true, nil
}

func (s *Store) ReleaseSeats(_ context.Context, rideID uint, seats int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ride, ok := s.rides[rideID]
	if !ok {
		return engine.NotFound("ride not found")
	}
	ride.SeatsAvailable += seats
	return nil
}

func (s *Store) UpdateStatus(_ context.Context, rideID, driverID uint, prev, next models.RideStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ride, ok := s.rides[rideID]
	if !ok || ride.DriverID != driverID {
		return false, nil
	}
	if prev != "" && ride.Status != prev {
		return false, nil
	}
	ride.Status = next
	return true, nil
}

func (s *Store) Rebase(_ context.Context, rideID uint, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ride, ok := s.rides[rideID]
	if !ok {
		return engine.NotFound("ride not found")
	}
	if ride.Status != models.RideStatusPosted {
		return engine.InvalidState("only posted rides can be modified")
	}
	booked := 0
	for _, b := range s.bookings {
		if b.RideID == rideID && b.Status == models.BookingStatusActive {
			booked += b.SeatsBooked
		}
	}
	if capacity < booked {
		return engine.InvalidArgument("seatsAvailable cannot be less than seats already booked")
	}
	ride.SeatsAvailable = capacity - booked
	return nil
}

func (s *Store) UpdateRideFields(_ context.Context, rideID uint, updates map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ride, ok := s.rides[rideID]
	if !ok || ride.Status != models.RideStatusPosted {
		return false, nil
	}
	for col, v := range updates {
		switch col {
		case "origin":
			ride.From = v.(string)
		case "destination":
			ride.To = v.(string)
		case "date":
			ride.Date = v.(time.Time)
		case "price_per_seat":
			ride.PricePerSeat = v.(float64)
		case "notes":
			ride.Notes = v.(string)
		}
	}
	return true, nil
}

// ---- engine.BookingStore ----

func (s *Store) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, engine.NotFound("booking not found")
	}
	cp := *booking
	if ride, ok := s.rides[booking.RideID]; ok {
		cp.Ride = *ride
	}
	return &cp, nil
}

func (s *Store) CreateBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailBookingCreate {
		s.FailBookingCreate = false
		return engine.Internal("failed to create booking", nil)
	}
	b.ID = s.allocID()
	b.CreatedAt = time.Now()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *Store) BookingsByUser(_ context.Context, userID uint) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		cp := *b
		if ride, ok := s.rides[b.RideID]; ok {
			cp.Ride = *ride
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) MarkCancelled(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != models.BookingStatusActive {
		return false, nil
	}
	b.Status = models.BookingStatusCancelled
	return true, nil
}

func (s *Store) UpdateSeats(_ context.Context, id uint, prev, next int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != models.BookingStatusActive || b.SeatsBooked != prev {
		return false, nil
	}
	b.SeatsBooked = next
	return true, nil
}

func (s *Store) SetPaymentOrder(_ context.Context, id uint, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.PaymentOrderID != "" {
		return false, nil
	}
	b.PaymentOrderID = orderID
	return true, nil
}

func (s *Store) MarkPaid(_ context.Context, id uint, orderID, paymentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.PaymentOrderID != orderID || b.PaymentStatus != models.PaymentStatusUnpaid {
		return false, nil
	}
	b.PaymentStatus = models.PaymentStatusSucceeded
	b.PaymentID = paymentID
	return true, nil
}

func (s *Store) ConsumeStartCode(_ context.Context, rideID uint, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.RideID == rideID && b.Status == models.BookingStatusActive &&
			b.RideStartCode == code && !b.RideStartCodeUsed {
			b.RideStartCodeUsed = true
			return true, nil
		}
	}
	return false, nil
}

// ---- engine.ReviewStore ----

func (s *Store) CreateReview(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reviews {
		if existing.ReviewerID == r.ReviewerID &&
			existing.RevieweeID == r.RevieweeID &&
			existing.BookingID == r.BookingID {
			return engine.AlreadyExists("you have already reviewed this ride")
		}
	}
	r.ID = s.allocID()
	r.CreatedAt = time.Now()
	cp := *r
	s.reviews[r.ID] = &cp
	return nil
}

func (s *Store) ReviewsFor(_ context.Context, revieweeID uint) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Review
	for _, r := range s.reviews {
		if r.RevieweeID == revieweeID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) HasReview(_ context.Context, reviewerID, revieweeID, bookingID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.ReviewerID == reviewerID && r.RevieweeID == revieweeID && r.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

// SeedRide inserts a ride directly, for tests.
func (s *Store) SeedRide(ride models.Ride) *models.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ride.ID == 0 {
		ride.ID = s.allocID()
	} else if ride.ID >= s.nextID {
		s.nextID = ride.ID + 1
	}
	if ride.CreatedAt.IsZero() {
		ride.CreatedAt = time.Now()
	}
	cp := ride
	s.rides[ride.ID] = &cp
	return &cp
}

// SeedBooking inserts a booking directly, for tests.
func (s *Store) SeedBooking(b models.Booking) *models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.allocID()
	} else if b.ID >= s.nextID {
		s.nextID = b.ID + 1
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	cp := b
	s.bookings[b.ID] = &cp
	return &cp
}
