package engine

import (
	"context"
	"fmt"

	"github.com/just-ritesh-coder/ezyride-sub000/internal/models"
)

// Lifecycle drives ride status transitions: posted -> ongoing -> completed.
// Entering completed is what unlocks payment orders and reviews; those
// modules check the status themselves, Lifecycle owns no other side effects.
type Lifecycle struct {
	rides RideStore

	// AllowAnyTransition restores the legacy behavior of accepting any known
	// status regardless of the ride's current one. Default is strict
	// sequencing. Controlled by RIDE_STATUS_LEGACY_TRANSITIONS.
	AllowAnyTransition bool
}

func NewLifecycle(rides RideStore) *Lifecycle {
	return &Lifecycle{rides: rides}
}

// statusPredecessor returns the state a ride must be in before entering next.
func statusPredecessor(next models.RideStatus) (models.RideStatus, bool) {
	switch next {
	case models.RideStatusOngoing:
		return models.RideStatusPosted, true
	case models.RideStatusCompleted:
		return models.RideStatusOngoing, true
	}
	return "", false
}

// Transition moves the ride to next on behalf of callerID. Only the ride's
// driver may transition it. In strict mode the predecessor state is part of
// the conditional update, so two racing transitions serialize at the store.
func (l *Lifecycle) Transition(ctx context.Context, rideID, callerID uint, next models.RideStatus) (*models.Ride, error) {
	if !models.ValidRideStatus(next) {
		return nil, InvalidArgument(fmt.Sprintf("unknown ride status %q", next))
	}

	ride, err := l.rides.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != callerID {
		return nil, Forbidden("only the ride's driver may update its status")
	}

	var prev models.RideStatus
	if !l.AllowAnyTransition {
		p, ok := statusPredecessor(next)
		if !ok {
			return nil, InvalidState("no transition enters the posted state")
		}
		prev = p
	}

	ok, err := l.rides.UpdateStatus(ctx, rideID, callerID, prev, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		if l.AllowAnyTransition {
			return nil, NotFound("ride not found")
		}
		return nil, InvalidState(fmt.Sprintf("ride is %s, cannot move to %s", ride.Status, next))
	}

	ride.Status = next
	return ride, nil
}
