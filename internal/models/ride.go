package models

import (
	"time"

	"gorm.io/gorm"
)

type RideStatus string

const (
	RideStatusPosted    RideStatus = "posted"
	RideStatusOngoing   RideStatus = "ongoing"
	RideStatusCompleted RideStatus = "completed"
)

// ValidRideStatus reports whether s is one of the known lifecycle states.
func ValidRideStatus(s RideStatus) bool {
	switch s {
	case RideStatusPosted, RideStatusOngoing, RideStatusCompleted:
		return true
	}
	return false
}

type Ride struct {
	gorm.Model
	DriverID       uint       `json:"driverId" gorm:"not null;index"`
	Driver         User       `json:"driver"`
	From           string     `json:"from" gorm:"column:origin;not null;index"`
	To             string     `json:"to" gorm:"column:destination;not null;index"`
	Date           time.Time  `json:"date" gorm:"not null;index"`
	SeatsAvailable int        `json:"seatsAvailable" gorm:"not null;check:seats_available >= 0"`
	PricePerSeat   float64    `json:"pricePerSeat" gorm:"not null;check:price_per_seat >= 0"`
	Status         RideStatus `json:"status" gorm:"not null;default:'posted';index"`
	Notes          string     `json:"notes,omitempty"`
}
