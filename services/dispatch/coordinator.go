package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "fixline/database/repository/booking"
	"fixline/models"
	"fixline/services/notification"
	"fixline/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDispatchService is the dispatch coordinator: it turns a new request
// into a cascading sequence of notifications and consumes responses until the
// booking reaches a terminal outcome. All record mutations go through the
// booking repository's compare-and-swap operations, so concurrency is scoped
// per booking id and no locks are held here.
type DefaultDispatchService struct {
	Bookings       bookingRepo.BookingRepository
	Directory      Directory
	Notifier       notification.NotificationService
	Timeouts       TimeoutScheduler
	CandidateLimit int
}

// Initiate runs the candidate search and opens the cascade.
func (s *DefaultDispatchService) Initiate(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	limit := s.CandidateLimit
	if req.SearchType == models.SearchTypeNormal {
		// Single-shot assignment: only the nearest technician is tried.
		limit = 1
	}

	origin := models.NewGeoPoint(req.Latitude, req.Longitude)
	candidates, err := s.Directory.FindCandidates(ctx, req.ServiceType, origin, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("dispatch: candidate lookup failed: %w", err)
	}
	if len(candidates) == 0 {
		// Surfaced as "no technician nearby"; nothing is persisted.
		return nil, ErrNoCandidates
	}

	queue := make([]string, 0, len(candidates))
	for _, c := range candidates {
		queue = append(queue, c.ID)
	}

	first := queue[0]
	booking := &models.Booking{
		ID:             uuid.New().String(),
		CustomerID:     req.CustomerID,
		ServiceType:    req.ServiceType,
		Subproblem:     req.Subproblem,
		Status:         models.StatusPending,
		SearchType:     req.SearchType,
		CandidateQueue: queue,
		RejectedBy:     []string{},
		CurrentIndex:   0,
		NotifiedTo:     &first,
		Version:        1,
		Origin:         origin,
		Address:        req.Address,
		PreferredDate:  req.PreferredDate,
		PreferredTime:  req.PreferredTime,
		EstimatedCost:  req.EstimatedCost,
		NotifiedAt:     time.Now(),
	}

	if err := s.Bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("dispatch: failed to persist booking: %w", err)
	}

	s.notifyCandidate(ctx, booking, first)

	return &DispatchResult{Booking: booking, CandidateIDs: queue}, nil
}

// OnResponse validates and commits a technician's accept/reject.
func (s *DefaultDispatchService) OnResponse(ctx context.Context, bookingID, technicianID, response string) error {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return mapRepoErr(err)
	}

	res, err := resolveResponse(booking, technicianID, response)
	if err != nil {
		if errors.Is(err, ErrStaleResponse) {
			utils.GetLogger().Info("dispatch: stale response dropped",
				zap.String("bookingID", bookingID),
				zap.String("technicianID", technicianID),
				zap.String("response", response))
		}
		return err
	}
	if res == resolutionDuplicateAccept {
		return nil
	}

	if response == models.ResponseAccept {
		return s.accept(ctx, booking, technicianID)
	}
	return s.advanceCascade(ctx, booking, technicianID)
}

// OnTimeout feeds an expired response window back through the response path as
// an implicit reject. The version guard makes windows opened for an earlier
// cascade step inert.
func (s *DefaultDispatchService) OnTimeout(ctx context.Context, bookingID, technicianID string, version int64) error {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return mapRepoErr(err)
	}
	if booking.Version != version {
		return ErrStaleResponse
	}
	utils.GetLogger().Info("dispatch: response window expired, synthesizing reject",
		zap.String("bookingID", bookingID),
		zap.String("technicianID", technicianID))
	return s.OnResponse(ctx, bookingID, technicianID, models.ResponseReject)
}

func (s *DefaultDispatchService) accept(ctx context.Context, booking *models.Booking, technicianID string) error {
	if err := s.Bookings.Assign(ctx, booking.ID, technicianID, booking.Version); err != nil {
		// A concurrent response won the swap; response-driven writes are
		// never retried, the loser is simply too late.
		return mapSwapErr(err)
	}

	event := models.SessionEvent{
		Type:         models.EventBookingUpdate,
		BookingID:    booking.ID,
		Status:       models.StatusAccepted,
		TechnicianID: &technicianID,
		ServiceType:  booking.ServiceType,
	}
	s.notify(ctx, booking.CustomerID, event, false)
	s.notify(ctx, technicianID, event, true)
	return nil
}

// advanceCascade commits a rejection and walks the queue to the next eligible
// candidate, synthesizing rejections for candidates who lost their
// verification after the queue snapshot.
func (s *DefaultDispatchService) advanceCascade(ctx context.Context, booking *models.Booking, rejectedID string) error {
	for {
		var next *string
		if booking.CurrentIndex+1 < len(booking.CandidateQueue) {
			next = &booking.CandidateQueue[booking.CurrentIndex+1]
		}

		if err := s.Bookings.Advance(ctx, booking.ID, rejectedID, next, booking.Version); err != nil {
			return mapSwapErr(err)
		}

		if next == nil {
			// Cascade exhausted.
			s.notify(ctx, booking.CustomerID, models.SessionEvent{
				Type:        models.EventBookingUpdate,
				BookingID:   booking.ID,
				Status:      models.StatusRejected,
				ServiceType: booking.ServiceType,
			}, false)
			return nil
		}

		fresh, err := s.Bookings.GetByID(ctx, booking.ID)
		if err != nil {
			return mapRepoErr(err)
		}

		eligible, err := s.Directory.StillEligible(ctx, *next, booking.ServiceType)
		if err != nil {
			// Directory hiccups should not stall the cascade; notify anyway
			// and let the response window cover a dead candidate.
			utils.GetLogger().Warn("dispatch: eligibility check failed",
				zap.String("technicianID", *next), zap.Error(err))
			eligible = true
		}
		if eligible {
			s.notifyCandidate(ctx, fresh, *next)
			return nil
		}

		booking, rejectedID = fresh, *next
	}
}

// notifyCandidate delivers the booking request and opens the response window.
// Delivery is best-effort: a failed send is logged and the window still
// advances the cascade when no response arrives.
func (s *DefaultDispatchService) notifyCandidate(ctx context.Context, booking *models.Booking, technicianID string) {
	s.notify(ctx, technicianID, models.SessionEvent{
		Type:        models.EventBookingRequest,
		BookingID:   booking.ID,
		ServiceType: booking.ServiceType,
	}, true)

	if err := s.Timeouts.Schedule(ctx, booking.ID, technicianID, booking.Version); err != nil {
		utils.GetLogger().Error("dispatch: failed to schedule response window",
			zap.String("bookingID", booking.ID),
			zap.String("technicianID", technicianID),
			zap.Error(err))
	}
}

func (s *DefaultDispatchService) notify(ctx context.Context, userID string, event models.SessionEvent, technician bool) {
	var err error
	if technician {
		err = s.Notifier.NotifyTechnician(ctx, userID, event)
	} else {
		err = s.Notifier.NotifyCustomer(ctx, userID, event)
	}
	if err != nil {
		utils.GetLogger().Warn("dispatch: notification send failed",
			zap.String("userID", userID),
			zap.String("event", event.Type),
			zap.Error(err))
	}
}

func validateRequest(req DispatchRequest) error {
	if req.CustomerID == "" {
		return fmt.Errorf("%w: missing customer id", ErrInvalidRequest)
	}
	if !models.IsServiceType(req.ServiceType) {
		return fmt.Errorf("%w: unknown service type %q", ErrInvalidRequest, req.ServiceType)
	}
	if req.SearchType != models.SearchTypeRapid && req.SearchType != models.SearchTypeNormal {
		return fmt.Errorf("%w: unknown search type %q", ErrInvalidRequest, req.SearchType)
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidRequest)
	}
	return nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// mapSwapErr translates a lost compare-and-swap on the response path into a
// stale response: the other writer already resolved this step.
func mapSwapErr(err error) error {
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, bookingRepo.ErrVersionConflict) {
		return ErrStaleResponse
	}
	return err
}
