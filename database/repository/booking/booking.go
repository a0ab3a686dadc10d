// File: database/repository/booking/booking.go
package bookingRepo

import (
	"context"
	"errors"

	"fixline/models"
)

// Storage-level outcomes of a compare-and-swap mutation.
var (
	// ErrNotFound means no booking with the given id exists.
	ErrNotFound = errors.New("booking not found")
	// ErrVersionConflict means the record exists but the expected
	// (version, notifiedTo) no longer matches; the write was not applied.
	ErrVersionConflict = errors.New("booking version conflict")
)

// BookingRepository is the durable store for dispatch records. Every mutation
// is a compare-and-swap keyed on the booking id plus the expected version (and,
// for response-driven writes, the expected notified technician). A swap that
// matches nothing is reported as ErrVersionConflict and has no side effect.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	GetByTechnician(ctx context.Context, technicianID string) ([]models.Booking, error)

	// Assign atomically sets the technician and moves pending -> accepted.
	// The swap requires the technician to still be the notified candidate.
	Assign(ctx context.Context, id, technicianID string, expectedVersion int64) error

	// Advance records a rejection by the currently notified technician and
	// moves the cursor. A non-nil next keeps the booking pending and notifies
	// the next candidate; nil next exhausts the cascade (pending -> rejected).
	Advance(ctx context.Context, id, rejectedID string, next *string, expectedVersion int64) error

	// Cancel moves pending -> cancelled.
	Cancel(ctx context.Context, id string, expectedVersion int64) error

	// Complete moves accepted -> completed for the assigned technician.
	Complete(ctx context.Context, id, technicianID string, expectedVersion int64) error
}
