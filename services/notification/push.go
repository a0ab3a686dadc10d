package notification

import (
	"context"

	technicianRepo "fixline/database/repository/technician"
	userRepo "fixline/database/repository/user"
	"fixline/models"
	"fixline/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// PushService sends FCM wake-up pushes so a device without a live session
// still learns about a booking event. Pushes never fail dispatch: every error
// is logged and swallowed.
type PushService struct {
	Users       userRepo.UserRepository
	Technicians technicianRepo.TechnicianRepository
}

// WakeTechnician pushes a booking event to the technician's registered device.
func (s *PushService) WakeTechnician(ctx context.Context, technicianID string, event models.SessionEvent) {
	t, err := s.Technicians.GetByID(ctx, technicianID)
	if err != nil {
		utils.GetLogger().Warn("push: technician lookup failed", zap.String("technicianID", technicianID), zap.Error(err))
		return
	}
	s.send(ctx, t.FCMToken, titleFor(event), event)
}

// WakeCustomer pushes a booking event to the customer's registered device.
func (s *PushService) WakeCustomer(ctx context.Context, userID string, event models.SessionEvent) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		utils.GetLogger().Warn("push: user lookup failed", zap.String("userID", userID), zap.Error(err))
		return
	}
	s.send(ctx, u.FCMToken, titleFor(event), event)
}

func titleFor(event models.SessionEvent) string {
	switch event.Type {
	case models.EventBookingRequest:
		return "New booking request"
	default:
		return "Booking update"
	}
}

func (s *PushService) send(ctx context.Context, token, title string, event models.SessionEvent) {
	if utils.FCMClient == nil || token == "" {
		return
	}

	data := map[string]string{
		"type":      event.Type,
		"bookingId": event.BookingID,
	}
	if event.Status != "" {
		data["status"] = event.Status
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  "Open the app to respond.",
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		utils.GetLogger().Warn("push: FCM send failed", zap.String("bookingID", event.BookingID), zap.Error(err))
	}
}
