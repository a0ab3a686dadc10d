// File: database/repository/technician/technician.go
package technicianRepo

import (
	"context"

	"fixline/models"
)

// SearchCriteria narrows a geospatial candidate search.
type SearchCriteria struct {
	Skill             string
	Origin            models.GeoPoint
	MaxDistanceMeters float64
	Exclude           []string
	Limit             int
}

// TechnicianRepository is the read side of the technician directory.
type TechnicianRepository interface {
	GetByID(ctx context.Context, id string) (*models.Technician, error)
	// Search returns verified technicians with the given skill ordered by
	// ascending distance from the origin. An empty result is not an error.
	Search(ctx context.Context, criteria SearchCriteria) ([]models.CandidateSummary, error)
	// IsEligible reports whether the technician is still verified and offers
	// the skill. Used before notifying a queued candidate whose verification
	// may have been revoked after the queue snapshot.
	IsEligible(ctx context.Context, id, skill string) (bool, error)
}
