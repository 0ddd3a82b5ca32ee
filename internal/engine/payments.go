package engine

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

// ProviderOrder is the order the external payment provider minted.
type ProviderOrder struct {
	ID       string
	Amount   int64
	Currency string
}

// OrderRequest is what the engine asks the provider to mint. Amount is in
// minor currency units.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// PaymentProvider mints orders with the external provider. Implementations
// surface transient transport failures as ProviderUnavailable-kinded errors.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*ProviderOrder, error)
}

// OrderRef is what the client needs to run the provider's checkout. KeyID is
// the provider's public key identifier; no secret material ever leaves the
// server.
type OrderRef struct {
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	KeyID     string `json:"keyId"`
	BookingID uint   `json:"bookingId"`
}

// The provider rejects orders under one whole currency unit.
const minOrderAmount = 100

// PaymentService reconciles payments: it mints provider orders for completed
// rides and verifies provider callbacks by signature before recording the
// payment. Nothing client-supplied is trusted beyond record lookup; the
// amount charged is always the one computed at order time.
type PaymentService struct {
	bookings BookingStore
	provider PaymentProvider
	keyID    string
	secret   []byte
	currency string
}

func NewPaymentService(bookings BookingStore, provider PaymentProvider, keyID, secret string) *PaymentService {
	return &PaymentService{
		bookings: bookings,
		provider: provider,
		keyID:    keyID,
		secret:   []byte(secret),
		currency: "INR",
	}
}

// orderAmount computes the charge in minor units from what was booked.
func orderAmount(b *models.Booking) int64 {
	return int64(math.Round(b.Ride.PricePerSeat * float64(b.SeatsBooked) * 100))
}

// CreateOrder mints (or re-returns) the provider order for a booking. Payment
// comes after service delivery, so the ride must be completed. Only one order
// is ever minted per booking; asking again returns the stored one.
func (s *PaymentService) CreateOrder(ctx context.Context, bookingID, requesterID uint) (*OrderRef, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != requesterID {
		return nil, Forbidden("not authorized to pay for this booking")
	}
	if booking.Status != models.BookingStatusActive {
		return nil, InvalidState("booking is not active")
	}
	if booking.Ride.Status != models.RideStatusCompleted {
		return nil, InvalidState("ride must be completed before payment")
	}
	if booking.PaymentStatus == models.PaymentStatusSucceeded {
		return nil, InvalidState("booking is already paid")
	}

	amount := orderAmount(booking)
	if amount < minOrderAmount {
		return nil, InvalidArgument("amount is below the provider minimum")
	}

	if booking.PaymentOrderID != "" {
		return s.orderRef(booking.PaymentOrderID, amount, bookingID), nil
	}

	order, err := s.provider.CreateOrder(ctx, OrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  fmt.Sprintf("rcpt_%d", booking.ID),
		Notes: map[string]string{
			"bookingId": fmt.Sprintf("%d", booking.ID),
			"rideId":    fmt.Sprintf("%d", booking.RideID),
		},
	})
	if err != nil {
		return nil, err
	}

	ok, err := s.bookings.SetPaymentOrder(ctx, booking.ID, order.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent request won the mint; serve its order instead.
		current, err := s.bookings.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return s.orderRef(current.PaymentOrderID, amount, bookingID), nil
	}
	return s.orderRef(order.ID, amount, bookingID), nil
}

func (s *PaymentService) orderRef(orderID string, amount int64, bookingID uint) *OrderRef {
	return &OrderRef{
		OrderID:   orderID,
		Amount:    amount,
		Currency:  s.currency,
		KeyID:     s.keyID,
		BookingID: bookingID,
	}
}

// Signature computes the provider's callback signature: hex HMAC-SHA256 over
// "orderID|paymentID" with the server-held secret.
func (s *PaymentService) Signature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCallback checks a provider callback and, only when everything holds,
// flips the booking to paid. The signature is recomputed server-side and
// compared in constant time; a mismatch changes nothing. The stored order id
// must match the callback's, and the unpaid -> succeeded flip is conditional,
// so the payment is recorded exactly once.
func (s *PaymentService) VerifyCallback(ctx context.Context, orderID, paymentID, signature string, bookingID uint) (*models.Booking, error) {
	expected := s.Signature(orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, SignatureInvalid("signature verification failed")
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentOrderID != orderID {
		return nil, OrderMismatch("order does not belong to this booking")
	}

	ok, err := s.bookings.MarkPaid(ctx, booking.ID, orderID, paymentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, InvalidState("payment already recorded for this booking")
	}

	booking.PaymentStatus = models.PaymentStatusSucceeded
	booking.PaymentID = paymentID
	return booking, nil
}
