package models

import "testing"

func TestIsServiceType(t *testing.T) {
	for _, s := range ServiceTypes {
		if !IsServiceType(s) {
			t.Errorf("expected %q to be a known service type", s)
		}
	}
	if IsServiceType("gardening") {
		t.Error("unknown skill accepted")
	}
	if IsServiceType("") {
		t.Error("empty skill accepted")
	}
}

func TestIsTerminal(t *testing.T) {
	b := &Booking{Status: StatusPending}
	if b.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	for _, status := range []string{StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled} {
		b.Status = status
		if !b.IsTerminal() {
			t.Errorf("%s must be terminal", status)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusPending, StatusAccepted},
		{StatusPending, StatusRejected},
		{StatusPending, StatusCancelled},
		{StatusAccepted, StatusCompleted},
	}
	for _, e := range allowed {
		if !CanTransition(e.from, e.to) {
			t.Errorf("expected %s -> %s to be allowed", e.from, e.to)
		}
	}

	forbidden := []struct{ from, to string }{
		{StatusAccepted, StatusCancelled},
		{StatusAccepted, StatusRejected},
		{StatusAccepted, StatusPending},
		{StatusRejected, StatusAccepted},
		{StatusCancelled, StatusPending},
		{StatusCompleted, StatusAccepted},
		{StatusPending, StatusCompleted},
	}
	for _, e := range forbidden {
		if CanTransition(e.from, e.to) {
			t.Errorf("expected %s -> %s to be forbidden", e.from, e.to)
		}
	}
}

func TestProjectionHidesCascadeInternals(t *testing.T) {
	tech := "t1"
	b := &Booking{
		ID:             "b1",
		CustomerID:     "c1",
		TechnicianID:   &tech,
		ServiceType:    "plumbing",
		Status:         StatusAccepted,
		SearchType:     SearchTypeRapid,
		CandidateQueue: []string{"t1", "t2"},
		RejectedBy:     []string{},
	}
	p := b.Projection()
	if p.ID != b.ID || p.Status != b.Status || p.TechnicianID != b.TechnicianID {
		t.Errorf("projection lost fields: %+v", p)
	}
}

func TestGeoPointRoundTrip(t *testing.T) {
	p := NewGeoPoint(48.8566, 2.3522)
	if p.Type != "Point" {
		t.Errorf("unexpected GeoJSON type %q", p.Type)
	}
	if p.Lat() != 48.8566 || p.Lng() != 2.3522 {
		t.Errorf("coordinate order mixed up: lat=%v lng=%v", p.Lat(), p.Lng())
	}
}
