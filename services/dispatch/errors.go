package dispatch

import "errors"

// Dispatch error taxonomy. Business-rule violations are surfaced synchronously
// and never retried; transient storage failures are wrapped normally and left
// to the infrastructure layer.
var (
	// ErrNoCandidates: the directory returned nothing, no booking was created.
	ErrNoCandidates = errors.New("no technician available nearby")
	// ErrInvalidRequest: malformed coordinates, unknown skill or search type.
	ErrInvalidRequest = errors.New("invalid dispatch request")
	// ErrStaleResponse: the response no longer matches the current cascade
	// step. Logged and dropped; the responder only gets a "too late" ack.
	ErrStaleResponse = errors.New("response arrived too late")
	// ErrUnauthorized: the caller is not the notified/assigned party.
	ErrUnauthorized = errors.New("caller is not permitted to perform this operation")
	// ErrNotFound: unknown booking id.
	ErrNotFound = errors.New("booking not found")
	// ErrConflict: a concurrent write won; retried once for administrative
	// writes, surfaced when the record went terminal meanwhile.
	ErrConflict = errors.New("booking was modified concurrently")
)
