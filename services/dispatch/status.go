package dispatch

import (
	"context"
	"errors"

	bookingRepo "fixline/database/repository/booking"
	"fixline/models"
)

// The operations below are the customer/administrative view of the same
// record: thin status transitions guarded by the same version check as the
// response path. Unlike response-driven writes, a version conflict here is
// retried once against the fresh record before being surfaced.

// Cancel aborts an in-flight cascade. Only the owning customer may cancel,
// and only before a terminal state is reached.
func (s *DefaultDispatchService) Cancel(ctx context.Context, bookingID, customerID string) error {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return mapRepoErr(err)
	}
	if booking.CustomerID != customerID {
		return ErrUnauthorized
	}

	for attempt := 0; ; attempt++ {
		if booking.Status == models.StatusCancelled {
			return nil
		}
		if booking.IsTerminal() {
			// An accept (or exhaustion) won the race against this cancel.
			return ErrConflict
		}

		notified := booking.NotifiedTo
		err := s.Bookings.Cancel(ctx, bookingID, booking.Version)
		if err == nil {
			event := models.SessionEvent{
				Type:        models.EventBookingUpdate,
				BookingID:   bookingID,
				Status:      models.StatusCancelled,
				ServiceType: booking.ServiceType,
			}
			s.notify(ctx, customerID, event, false)
			if notified != nil {
				s.notify(ctx, *notified, event, true)
			}
			return nil
		}
		if !errors.Is(err, bookingRepo.ErrVersionConflict) || attempt >= 1 {
			return mapRepoErr(err)
		}

		// Re-evaluate against the fresh record and retry exactly once.
		booking, err = s.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return mapRepoErr(err)
		}
	}
}

// Complete moves an accepted booking to completed. Only the assigned
// technician may complete.
func (s *DefaultDispatchService) Complete(ctx context.Context, bookingID, technicianID string) error {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return mapRepoErr(err)
	}
	if booking.TechnicianID == nil || *booking.TechnicianID != technicianID {
		return ErrUnauthorized
	}

	for attempt := 0; ; attempt++ {
		if booking.Status == models.StatusCompleted {
			return nil
		}
		if !models.CanTransition(booking.Status, models.StatusCompleted) {
			return ErrConflict
		}

		err := s.Bookings.Complete(ctx, bookingID, technicianID, booking.Version)
		if err == nil {
			s.notify(ctx, booking.CustomerID, models.SessionEvent{
				Type:         models.EventBookingUpdate,
				BookingID:    bookingID,
				Status:       models.StatusCompleted,
				TechnicianID: &technicianID,
				ServiceType:  booking.ServiceType,
			}, false)
			return nil
		}
		if !errors.Is(err, bookingRepo.ErrVersionConflict) || attempt >= 1 {
			return mapRepoErr(err)
		}

		booking, err = s.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return mapRepoErr(err)
		}
	}
}

// Status returns the externally visible projection of a booking.
func (s *DefaultDispatchService) Status(ctx context.Context, bookingID string) (*models.BookingProjection, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	projection := booking.Projection()
	return &projection, nil
}

// ListByCustomer returns a customer's bookings, newest first.
func (s *DefaultDispatchService) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return s.Bookings.GetByCustomer(ctx, customerID)
}

// ListByTechnician returns a technician's assigned bookings, newest first.
func (s *DefaultDispatchService) ListByTechnician(ctx context.Context, technicianID string) ([]models.Booking, error) {
	return s.Bookings.GetByTechnician(ctx, technicianID)
}
