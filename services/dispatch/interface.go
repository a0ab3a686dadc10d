package dispatch

import (
	"context"

	"fixline/models"
)

// DispatchRequest is a customer's create/search request.
type DispatchRequest struct {
	CustomerID    string
	ServiceType   string
	Subproblem    string
	Latitude      float64
	Longitude     float64
	SearchType    string
	Address       string
	PreferredDate string
	PreferredTime string
	EstimatedCost float64
}

// DispatchResult is returned from a successful initiation.
type DispatchResult struct {
	Booking      *models.Booking
	CandidateIDs []string
}

// DispatchService coordinates the cascade from creation to a terminal outcome.
type DispatchService interface {
	// Initiate finds candidates, persists the booking and notifies the first
	// candidate. Returns ErrNoCandidates (nothing persisted) when the
	// directory comes back empty.
	Initiate(ctx context.Context, req DispatchRequest) (*DispatchResult, error)

	// OnResponse is the single entry point for every accept/reject, real or
	// synthesized. Stale or mismatched responses return ErrStaleResponse and
	// mutate nothing.
	OnResponse(ctx context.Context, bookingID, technicianID, response string) error

	// OnTimeout synthesizes an implicit reject for a candidate whose response
	// window expired, guarded by the version the window was opened for.
	OnTimeout(ctx context.Context, bookingID, technicianID string, version int64) error

	// Cancel aborts an in-flight cascade on behalf of the customer.
	Cancel(ctx context.Context, bookingID, customerID string) error

	// Complete moves an accepted booking to completed; assigned technician only.
	Complete(ctx context.Context, bookingID, technicianID string) error

	// Status returns the externally visible projection of a booking.
	Status(ctx context.Context, bookingID string) (*models.BookingProjection, error)

	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ListByTechnician(ctx context.Context, technicianID string) ([]models.Booking, error)
}

// Directory answers "which verified technicians offer this skill near here".
type Directory interface {
	// FindCandidates returns up to limit candidates ordered by distance.
	// An empty result is a nil slice, not an error.
	FindCandidates(ctx context.Context, skill string, origin models.GeoPoint, exclude []string, limit int) ([]models.CandidateSummary, error)
	// StillEligible re-checks a queued candidate before their turn; the queue
	// snapshot is fixed at creation but verification can be revoked later.
	StillEligible(ctx context.Context, technicianID, skill string) (bool, error)
}

// TimeoutScheduler opens a bounded response window for a notified candidate.
type TimeoutScheduler interface {
	Schedule(ctx context.Context, bookingID, technicianID string, version int64) error
}
