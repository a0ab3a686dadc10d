package models

import "time"

// Booking statuses visible to customers and technicians.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Search types. Rapid bookings cascade through a snapshot of nearby
// technicians; normal bookings notify only the nearest one.
const (
	SearchTypeRapid  = "rapid"
	SearchTypeNormal = "normal"
)

// ServiceTypes is the fixed skill enumeration.
var ServiceTypes = []string{"plumbing", "electricity", "lockwork", "heating"}

// IsServiceType reports whether s is a known skill.
func IsServiceType(s string) bool {
	for _, t := range ServiceTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Booking is the durable dispatch record for a service request.
type Booking struct {
	ID           string  `bson:"id" json:"id"`
	CustomerID   string  `bson:"customer_id" json:"customerId"`
	TechnicianID *string `bson:"technician_id" json:"technicianId"` // nil until accepted
	ServiceType  string  `bson:"service_type" json:"serviceType"`
	Subproblem   string  `bson:"subproblem" json:"subproblem"`
	Status       string  `bson:"status" json:"status"`
	SearchType   string  `bson:"search_type" json:"searchType"`

	// Cascade state. CandidateQueue is fixed at creation; RejectedBy grows by
	// exactly one entry per advance so len(RejectedBy) == CurrentIndex.
	CandidateQueue []string `bson:"candidate_queue" json:"candidateQueue"`
	RejectedBy     []string `bson:"rejected_by" json:"rejectedBy"`
	CurrentIndex   int      `bson:"current_index" json:"currentIndex"`
	NotifiedTo     *string  `bson:"notified_to" json:"notifiedTo"`

	// Version is the optimistic-concurrency token; every accepted mutation
	// bumps it by exactly 1.
	Version int64 `bson:"version" json:"version"`

	Origin        GeoPoint  `bson:"origin" json:"origin"`
	Address       string    `bson:"address" json:"address"`
	PreferredDate string    `bson:"preferred_date" json:"preferredDate"`
	PreferredTime string    `bson:"preferred_time" json:"preferredTime"`
	EstimatedCost float64   `bson:"estimated_cost" json:"estimatedCost"`
	NotifiedAt    time.Time `bson:"notified_at" json:"notifiedAt"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsTerminal reports whether the booking permits no further dispatch mutation.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the status edge is allowed.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusAccepted || to == StatusRejected || to == StatusCancelled
	case StatusAccepted:
		return to == StatusCompleted
	}
	return false
}

// BookingProjection is the externally visible view returned by status queries.
type BookingProjection struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customerId"`
	TechnicianID *string   `json:"technicianId"`
	ServiceType  string    `json:"serviceType"`
	Status       string    `json:"status"`
	SearchType   string    `json:"searchType"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Projection returns the status-query view of the booking.
func (b *Booking) Projection() BookingProjection {
	return BookingProjection{
		ID:           b.ID,
		CustomerID:   b.CustomerID,
		TechnicianID: b.TechnicianID,
		ServiceType:  b.ServiceType,
		Status:       b.Status,
		SearchType:   b.SearchType,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
