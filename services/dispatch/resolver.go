package dispatch

import (
	"fixline/models"
)

// resolution classifies a validated response before any mutation happens.
type resolution int

const (
	// resolutionApply: the response targets the current cascade step and the
	// compare-and-swap may be attempted.
	resolutionApply resolution = iota
	// resolutionDuplicateAccept: a repeat accept from the technician already
	// assigned; acknowledged as success without touching the record.
	resolutionDuplicateAccept
)

// resolveResponse is the race-resolver validation gate. It decides, against a
// snapshot of the record, whether a response may proceed to the swap. The swap
// itself re-checks (version, notifiedTo) atomically, so passing here is
// necessary but not sufficient to win a race.
//
// A response whose technician is not the currently notified candidate is
// always stale, even if it would have been valid earlier; a slow response must
// never undo a cascade that has already advanced.
func resolveResponse(b *models.Booking, technicianID, response string) (resolution, error) {
	if response != models.ResponseAccept && response != models.ResponseReject {
		return 0, ErrInvalidRequest
	}

	if b.IsTerminal() {
		if response == models.ResponseAccept &&
			b.Status == models.StatusAccepted &&
			b.TechnicianID != nil && *b.TechnicianID == technicianID {
			return resolutionDuplicateAccept, nil
		}
		return 0, ErrStaleResponse
	}

	if b.NotifiedTo == nil || *b.NotifiedTo != technicianID {
		return 0, ErrStaleResponse
	}
	return resolutionApply, nil
}
