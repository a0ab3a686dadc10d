package dispatch

import (
	"context"
	"sync"
	"testing"

	bookingRepo "fixline/database/repository/booking"
	"fixline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBookingRepo is an in-memory BookingRepository with the same
// compare-and-swap semantics as the Mongo implementation: each mutation
// matches on (id, version, expected state) under one lock, so concurrent
// writers race exactly as they do on UpdateOne.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[string]*models.Booking)}
}

func copyBooking(b *models.Booking) *models.Booking {
	cp := *b
	cp.CandidateQueue = append([]string(nil), b.CandidateQueue...)
	cp.RejectedBy = append([]string(nil), b.RejectedBy...)
	if b.TechnicianID != nil {
		id := *b.TechnicianID
		cp.TechnicianID = &id
	}
	if b.NotifiedTo != nil {
		id := *b.NotifiedTo
		cp.NotifiedTo = &id
	}
	return &cp
}

func (r *memBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = copyBooking(b)
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return copyBooking(b), nil
}

func (r *memBookingRepo) GetByCustomer(_ context.Context, customerID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, *copyBooking(b))
		}
	}
	return out, nil
}

func (r *memBookingRepo) GetByTechnician(_ context.Context, technicianID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.TechnicianID != nil && *b.TechnicianID == technicianID {
			out = append(out, *copyBooking(b))
		}
	}
	return out, nil
}

func (r *memBookingRepo) Assign(_ context.Context, id, technicianID string, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Version != expectedVersion || b.Status != models.StatusPending ||
		b.NotifiedTo == nil || *b.NotifiedTo != technicianID {
		return bookingRepo.ErrVersionConflict
	}
	tech := technicianID
	b.TechnicianID = &tech
	b.Status = models.StatusAccepted
	b.NotifiedTo = nil
	b.Version++
	return nil
}

func (r *memBookingRepo) Advance(_ context.Context, id, rejectedID string, next *string, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Version != expectedVersion || b.Status != models.StatusPending ||
		b.NotifiedTo == nil || *b.NotifiedTo != rejectedID {
		return bookingRepo.ErrVersionConflict
	}
	b.RejectedBy = append(b.RejectedBy, rejectedID)
	b.CurrentIndex++
	if next != nil {
		n := *next
		b.NotifiedTo = &n
	} else {
		b.NotifiedTo = nil
		b.Status = models.StatusRejected
	}
	b.Version++
	return nil
}

func (r *memBookingRepo) Cancel(_ context.Context, id string, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Version != expectedVersion || b.Status != models.StatusPending {
		return bookingRepo.ErrVersionConflict
	}
	b.Status = models.StatusCancelled
	b.NotifiedTo = nil
	b.Version++
	return nil
}

func (r *memBookingRepo) Complete(_ context.Context, id, technicianID string, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Version != expectedVersion || b.Status != models.StatusAccepted ||
		b.TechnicianID == nil || *b.TechnicianID != technicianID {
		return bookingRepo.ErrVersionConflict
	}
	b.Status = models.StatusCompleted
	b.Version++
	return nil
}

// fakeDirectory serves a fixed candidate list and an ineligible set.
type fakeDirectory struct {
	candidates []models.CandidateSummary
	ineligible map[string]bool
	lastLimit  int
}

func (d *fakeDirectory) FindCandidates(_ context.Context, _ string, _ models.GeoPoint, _ []string, limit int) ([]models.CandidateSummary, error) {
	d.lastLimit = limit
	if len(d.candidates) > limit {
		return d.candidates[:limit], nil
	}
	return d.candidates, nil
}

func (d *fakeDirectory) StillEligible(_ context.Context, technicianID, _ string) (bool, error) {
	return !d.ineligible[technicianID], nil
}

type sentEvent struct {
	userID     string
	technician bool
	event      models.SessionEvent
}

// fakeNotifier records every delivered session event.
type fakeNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *fakeNotifier) NotifyTechnician(_ context.Context, technicianID string, event models.SessionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{userID: technicianID, technician: true, event: event})
	return nil
}

func (n *fakeNotifier) NotifyCustomer(_ context.Context, userID string, event models.SessionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{userID: userID, technician: false, event: event})
	return nil
}

func (n *fakeNotifier) sentTo(userID, eventType string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.userID == userID && e.event.Type == eventType {
			return true
		}
	}
	return false
}

// fakeScheduler records opened response windows.
type fakeScheduler struct {
	mu      sync.Mutex
	windows []TimeoutPayload
}

func (s *fakeScheduler) Schedule(_ context.Context, bookingID, technicianID string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append(s.windows, TimeoutPayload{BookingID: bookingID, TechnicianID: technicianID, Version: version})
	return nil
}

type fixture struct {
	repo      *memBookingRepo
	directory *fakeDirectory
	notifier  *fakeNotifier
	scheduler *fakeScheduler
	svc       *DefaultDispatchService
}

func newFixture(candidateIDs ...string) *fixture {
	candidates := make([]models.CandidateSummary, 0, len(candidateIDs))
	for i, id := range candidateIDs {
		candidates = append(candidates, models.CandidateSummary{ID: id, DistanceMeters: float64(i+1) * 100})
	}
	f := &fixture{
		repo:      newMemBookingRepo(),
		directory: &fakeDirectory{candidates: candidates, ineligible: map[string]bool{}},
		notifier:  &fakeNotifier{},
		scheduler: &fakeScheduler{},
	}
	f.svc = &DefaultDispatchService{
		Bookings:       f.repo,
		Directory:      f.directory,
		Notifier:       f.notifier,
		Timeouts:       f.scheduler,
		CandidateLimit: 5,
	}
	return f
}

func rapidRequest() DispatchRequest {
	return DispatchRequest{
		CustomerID:  "cust-1",
		ServiceType: "plumbing",
		Subproblem:  "leaking sink",
		Latitude:    48.8566,
		Longitude:   2.3522,
		SearchType:  models.SearchTypeRapid,
	}
}

// checkInvariants asserts the record-level invariants that must hold at every
// observable point.
func checkInvariants(t *testing.T, b *models.Booking, limit int) {
	t.Helper()
	assert.LessOrEqual(t, len(b.CandidateQueue), limit)
	assert.Equal(t, b.CurrentIndex, len(b.RejectedBy))
	queue := map[string]bool{}
	for _, id := range b.CandidateQueue {
		queue[id] = true
	}
	for _, id := range b.RejectedBy {
		assert.True(t, queue[id], "rejectedBy contains non-candidate %s", id)
	}
	if b.TechnicianID != nil {
		assert.Contains(t, []string{models.StatusAccepted, models.StatusCompleted}, b.Status)
	}
	if b.Status == models.StatusPending && b.SearchType == models.SearchTypeRapid {
		require.NotNil(t, b.NotifiedTo)
		assert.True(t, queue[*b.NotifiedTo])
		for _, id := range b.RejectedBy {
			assert.NotEqual(t, id, *b.NotifiedTo)
		}
	}
}

func TestInitiateNotifiesFirstCandidate(t *testing.T) {
	f := newFixture("t1", "t2", "t3")

	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	require.NotNil(t, result.Booking)
	assert.Equal(t, []string{"t1", "t2", "t3"}, result.CandidateIDs)

	b, err := f.repo.GetByID(context.Background(), result.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, 0, b.CurrentIndex)
	require.NotNil(t, b.NotifiedTo)
	assert.Equal(t, "t1", *b.NotifiedTo)
	assert.Equal(t, int64(1), b.Version)
	checkInvariants(t, b, 5)

	assert.True(t, f.notifier.sentTo("t1", models.EventBookingRequest))
	require.Len(t, f.scheduler.windows, 1)
	assert.Equal(t, TimeoutPayload{BookingID: b.ID, TechnicianID: "t1", Version: 1}, f.scheduler.windows[0])
}

func TestInitiateNoCandidates(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Initiate(context.Background(), rapidRequest())
	assert.ErrorIs(t, err, ErrNoCandidates)
	// ErrNoCandidates must never leave a record behind.
	assert.Empty(t, f.repo.bookings)
}

func TestInitiateValidation(t *testing.T) {
	f := newFixture("t1")

	cases := []struct {
		name   string
		mutate func(*DispatchRequest)
	}{
		{"unknown skill", func(r *DispatchRequest) { r.ServiceType = "gardening" }},
		{"unknown search type", func(r *DispatchRequest) { r.SearchType = "instant" }},
		{"latitude out of range", func(r *DispatchRequest) { r.Latitude = 91 }},
		{"longitude out of range", func(r *DispatchRequest) { r.Longitude = -181 }},
		{"missing customer", func(r *DispatchRequest) { r.CustomerID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := rapidRequest()
			tc.mutate(&req)
			_, err := f.svc.Initiate(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestNormalSearchUsesSingleCandidate(t *testing.T) {
	f := newFixture("t1", "t2", "t3")

	req := rapidRequest()
	req.SearchType = models.SearchTypeNormal
	result, err := f.svc.Initiate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, f.directory.lastLimit)
	assert.Equal(t, []string{"t1"}, result.Booking.CandidateQueue)

	// A single rejection exhausts a normal booking.
	require.NoError(t, f.svc.OnResponse(context.Background(), result.Booking.ID, "t1", models.ResponseReject))
	b, err := f.repo.GetByID(context.Background(), result.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, b.Status)
}

func TestCascadeRejectionsThenAccept(t *testing.T) {
	f := newFixture("t1", "t2", "t3")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	require.NoError(t, f.svc.OnResponse(ctx, id, "t1", models.ResponseReject))
	require.NoError(t, f.svc.OnResponse(ctx, id, "t2", models.ResponseReject))

	b, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, b.NotifiedTo)
	assert.Equal(t, "t3", *b.NotifiedTo)
	assert.Equal(t, 2, b.CurrentIndex)
	checkInvariants(t, b, 5)
	assert.True(t, f.notifier.sentTo("t2", models.EventBookingRequest))
	assert.True(t, f.notifier.sentTo("t3", models.EventBookingRequest))

	require.NoError(t, f.svc.OnResponse(ctx, id, "t3", models.ResponseAccept))
	b, err = f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, b.Status)
	require.NotNil(t, b.TechnicianID)
	assert.Equal(t, "t3", *b.TechnicianID)
	checkInvariants(t, b, 5)

	assert.True(t, f.notifier.sentTo("cust-1", models.EventBookingUpdate))
	assert.True(t, f.notifier.sentTo("t3", models.EventBookingUpdate))
}

func TestCascadeExhaustion(t *testing.T) {
	f := newFixture("t1", "t2")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	require.NoError(t, f.svc.OnResponse(ctx, id, "t1", models.ResponseReject))
	require.NoError(t, f.svc.OnResponse(ctx, id, "t2", models.ResponseReject))

	b, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, b.Status)
	assert.Nil(t, b.TechnicianID)
	assert.Equal(t, 2, b.CurrentIndex)
	checkInvariants(t, b, 5)
	assert.True(t, f.notifier.sentTo("cust-1", models.EventBookingUpdate))
}

func TestConcurrentAcceptsExactlyOneWins(t *testing.T) {
	f := newFixture("t1", "t2")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, tech := range []string{"t1", "t2"} {
		wg.Add(1)
		go func(i int, tech string) {
			defer wg.Done()
			errs[i] = f.svc.OnResponse(context.Background(), id, tech, models.ResponseAccept)
		}(i, tech)
	}
	wg.Wait()

	// t1 is the notified candidate: t1's accept wins, t2's is stale.
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], ErrStaleResponse)

	b, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, b.Status)
	require.NotNil(t, b.TechnicianID)
	assert.Equal(t, "t1", *b.TechnicianID)
	assert.Equal(t, int64(2), b.Version)
	checkInvariants(t, b, 5)
}

func TestConcurrentAcceptAndRejectSameStep(t *testing.T) {
	// Hammer the same step with conflicting responses from the notified
	// technician; the swap must apply exactly one of them.
	f := newFixture("t1")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID

	var wg sync.WaitGroup
	for _, response := range []string{models.ResponseAccept, models.ResponseReject} {
		wg.Add(1)
		go func(response string) {
			defer wg.Done()
			_ = f.svc.OnResponse(context.Background(), id, "t1", response)
		}(response)
	}
	wg.Wait()

	b, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, b.IsTerminal())
	assert.Equal(t, int64(2), b.Version, "exactly one mutation must commit")
	checkInvariants(t, b, 5)
}

func TestDuplicateAcceptIsIdempotent(t *testing.T) {
	f := newFixture("t1")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	require.NoError(t, f.svc.OnResponse(ctx, id, "t1", models.ResponseAccept))
	// Repeat accept from the winner: no-op success, no version bump.
	require.NoError(t, f.svc.OnResponse(ctx, id, "t1", models.ResponseAccept))

	b, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.Version)

	// Accept from anyone else after assignment is stale.
	err = f.svc.OnResponse(ctx, id, "t2", models.ResponseAccept)
	assert.ErrorIs(t, err, ErrStaleResponse)
}

func TestNonNotifiedResponderNeverMutates(t *testing.T) {
	f := newFixture("t1", "t2")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	before, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)

	err = f.svc.OnResponse(ctx, id, "t2", models.ResponseAccept)
	assert.ErrorIs(t, err, ErrStaleResponse)
	err = f.svc.OnResponse(ctx, id, "t2", models.ResponseReject)
	assert.ErrorIs(t, err, ErrStaleResponse)

	after, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.Status, after.Status)
}

func TestTimeoutSynthesizesReject(t *testing.T) {
	f := newFixture("t1")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	// Window expires with no response: implicit reject exhausts the cascade.
	require.NoError(t, f.svc.OnTimeout(ctx, id, "t1", 1))
	b, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, b.Status)
	assert.Equal(t, []string{"t1"}, b.RejectedBy)

	// A genuine response arriving after the synthetic timeout is stale.
	err = f.svc.OnResponse(ctx, id, "t1", models.ResponseAccept)
	assert.ErrorIs(t, err, ErrStaleResponse)
}

func TestTimeoutForSupersededStepIsInert(t *testing.T) {
	f := newFixture("t1", "t2")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	// t1 responds before the window fires; the stored version moves on.
	require.NoError(t, f.svc.OnResponse(ctx, id, "t1", models.ResponseReject))

	err = f.svc.OnTimeout(ctx, id, "t1", 1)
	assert.ErrorIs(t, err, ErrStaleResponse)

	b, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, b.NotifiedTo)
	assert.Equal(t, "t2", *b.NotifiedTo)
}

func TestCascadeSkipsCandidateNoLongerEligible(t *testing.T) {
	f := newFixture("t1", "t2", "t3")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	// t2 loses verification after the queue snapshot.
	f.directory.ineligible["t2"] = true

	require.NoError(t, f.svc.OnResponse(ctx, id, "t1", models.ResponseReject))

	b, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, b.NotifiedTo)
	assert.Equal(t, "t3", *b.NotifiedTo)
	assert.Equal(t, []string{"t1", "t2"}, b.RejectedBy)
	checkInvariants(t, b, 5)
	assert.False(t, f.notifier.sentTo("t2", models.EventBookingRequest))
	assert.True(t, f.notifier.sentTo("t3", models.EventBookingRequest))
}

func TestCancelInFlightCascade(t *testing.T) {
	f := newFixture("t1", "t2")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	require.NoError(t, f.svc.Cancel(ctx, id, "cust-1"))
	b, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
	assert.Nil(t, b.NotifiedTo)

	// Idempotent for the owner; a late accept is stale.
	require.NoError(t, f.svc.Cancel(ctx, id, "cust-1"))
	err = f.svc.OnResponse(ctx, id, "t1", models.ResponseAccept)
	assert.ErrorIs(t, err, ErrStaleResponse)
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture("t1")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), result.Booking.ID, "someone-else")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCancelLosesRaceAgainstAccept(t *testing.T) {
	f := newFixture("t1")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	require.NoError(t, f.svc.OnResponse(ctx, id, "t1", models.ResponseAccept))

	err = f.svc.Cancel(ctx, id, "cust-1")
	assert.ErrorIs(t, err, ErrConflict)

	b, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, b.Status)
}

// conflictOnceRepo forces one version conflict on Cancel to exercise the
// single administrative retry.
type conflictOnceRepo struct {
	*memBookingRepo
	conflicted bool
}

func (r *conflictOnceRepo) Cancel(ctx context.Context, id string, expectedVersion int64) error {
	if !r.conflicted {
		r.conflicted = true
		return bookingRepo.ErrVersionConflict
	}
	return r.memBookingRepo.Cancel(ctx, id, expectedVersion)
}

func TestCancelRetriesOnceOnVersionConflict(t *testing.T) {
	f := newFixture("t1")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)

	f.svc.Bookings = &conflictOnceRepo{memBookingRepo: f.repo}

	require.NoError(t, f.svc.Cancel(context.Background(), result.Booking.ID, "cust-1"))
	b, err := f.repo.GetByID(context.Background(), result.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
}

func TestCompleteByAssignedTechnician(t *testing.T) {
	f := newFixture("t1")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID
	ctx := context.Background()

	// Not assignable before acceptance.
	err = f.svc.Complete(ctx, id, "t1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, f.svc.OnResponse(ctx, id, "t1", models.ResponseAccept))

	err = f.svc.Complete(ctx, id, "t2")
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, f.svc.Complete(ctx, id, "t1"))
	b, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, b.Status)

	// Idempotent.
	require.NoError(t, f.svc.Complete(ctx, id, "t1"))
}

func TestStatusProjection(t *testing.T) {
	f := newFixture("t1")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)

	projection, err := f.svc.Status(context.Background(), result.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Booking.ID, projection.ID)
	assert.Equal(t, models.StatusPending, projection.Status)

	_, err = f.svc.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResponseToUnknownBooking(t *testing.T) {
	f := newFixture("t1")
	err := f.svc.OnResponse(context.Background(), "missing", "t1", models.ResponseAccept)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidResponseValue(t *testing.T) {
	f := newFixture("t1")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)

	err = f.svc.OnResponse(context.Background(), result.Booking.ID, "t1", "maybe")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAtMostOneWinnerUnderLoad(t *testing.T) {
	// Every candidate fires an accept and a reject concurrently; whatever
	// interleaving happens, at most one technician may end up assigned and
	// the version trail must account for every committed mutation.
	f := newFixture("t1", "t2", "t3", "t4", "t5")
	result, err := f.svc.Initiate(context.Background(), rapidRequest())
	require.NoError(t, err)
	id := result.Booking.ID

	var wg sync.WaitGroup
	for _, tech := range result.CandidateIDs {
		for _, response := range []string{models.ResponseAccept, models.ResponseReject} {
			wg.Add(1)
			go func(tech, response string) {
				defer wg.Done()
				_ = f.svc.OnResponse(context.Background(), id, tech, response)
			}(tech, response)
		}
	}
	wg.Wait()

	b, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	checkInvariants(t, b, 5)
	if b.TechnicianID != nil {
		assert.Equal(t, models.StatusAccepted, b.Status)
	}
	// Versions: 1 at creation plus one per committed mutation.
	assert.Equal(t, int64(1)+int64(b.CurrentIndex)+boolToInt64(b.Status == models.StatusAccepted), b.Version)
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
