package dispatch

import (
	"context"
	"fmt"

	technicianRepo "fixline/database/repository/technician"
	"fixline/models"
)

// DefaultDirectory implements Directory on top of the technician repository's
// geospatial search.
type DefaultDirectory struct {
	Repo          technicianRepo.TechnicianRepository
	MaxDistanceKm float64
}

// FindCandidates returns up to limit verified technicians offering the skill,
// ordered ascending by distance from the origin.
func (d *DefaultDirectory) FindCandidates(ctx context.Context, skill string, origin models.GeoPoint, exclude []string, limit int) ([]models.CandidateSummary, error) {
	criteria := technicianRepo.SearchCriteria{
		Skill:             skill,
		Origin:            origin,
		MaxDistanceMeters: d.MaxDistanceKm * 1000,
		Exclude:           exclude,
		Limit:             limit,
	}
	candidates, err := d.Repo.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	return candidates, nil
}

// StillEligible reports whether a queued candidate remains verified for the skill.
func (d *DefaultDirectory) StillEligible(ctx context.Context, technicianID, skill string) (bool, error) {
	return d.Repo.IsEligible(ctx, technicianID, skill)
}
