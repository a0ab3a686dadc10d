package models

// Realtime event types delivered over per-user session channels.
const (
	EventBookingRequest = "booking_request"
	EventBookingUpdate  = "booking_update"
)

// Technician responses to a booking request.
const (
	ResponseAccept = "accept"
	ResponseReject = "reject"
)

// SessionEvent is the envelope published to a user's session channel.
type SessionEvent struct {
	Type         string  `json:"type"`
	BookingID    string  `json:"bookingId"`
	Status       string  `json:"status,omitempty"`
	TechnicianID *string `json:"technicianId,omitempty"`
	ServiceType  string  `json:"serviceType,omitempty"`
}
