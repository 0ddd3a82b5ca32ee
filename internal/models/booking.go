package models

import (
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid    PaymentStatus = "unpaid"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
)

type Booking struct {
	gorm.Model
	RideID      uint          `json:"rideId" gorm:"not null;index"`
	Ride        Ride          `json:"ride"`
	UserID      uint          `json:"userId" gorm:"not null;index"`
	User        User          `json:"user"`
	SeatsBooked int           `json:"seatsBooked" gorm:"not null;default:1"`
	Status      BookingStatus `json:"status" gorm:"not null;default:'active'"`

	// Six-digit code the rider hands the driver to confirm the pickup.
	// Returned only on the rider's own booking list, never on create.
	RideStartCode     string `json:"rideStartCode,omitempty" gorm:"column:ride_start_code"`
	RideStartCodeUsed bool   `json:"rideStartCodeUsed" gorm:"column:ride_start_code_used;default:false"`

	PaymentOrderID string        `json:"paymentOrderId,omitempty" gorm:"column:payment_order_id;index"`
	PaymentID      string        `json:"paymentId,omitempty" gorm:"column:payment_id"`
	PaymentStatus  PaymentStatus `json:"paymentStatus" gorm:"not null;default:'unpaid'"`
}
