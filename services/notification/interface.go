package notification

import (
	"context"

	"fixline/models"
)

// NotificationService delivers dispatch events to a user's live session(s).
// Delivery is best-effort and at-most-once: there is no delivery ack, the
// domain-level accept/reject response is the acknowledgment. A send to a user
// with no live session is silently dropped; the response-window timeout advances
// the cascade in that case.
type NotificationService interface {
	NotifyTechnician(ctx context.Context, technicianID string, event models.SessionEvent) error
	NotifyCustomer(ctx context.Context, userID string, event models.SessionEvent) error
}
