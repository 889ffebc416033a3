package servicerequest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myhometech/internal/database"
	"myhometech/internal/domain/notification"
	"myhometech/internal/pkg/apperr"
)

const (
	clientID  int64 = 10
	otherID   int64 = 11
	techA     int64 = 20
	techB     int64 = 21
	adminID   int64 = 1
	applID    int64 = 3
	addrID    int64 = 4
	foreignID int64 = 5
)

type stubAppliances struct{}

func (stubAppliances) Exists(_ context.Context, id int64) (bool, error) { return id == applID, nil }

type stubAddresses struct{}

func (stubAddresses) OwnedBy(_ context.Context, id, owner int64) (bool, error) {
	return id == addrID && owner == clientID, nil
}

type recorder struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (r *recorder) Dispatch(msgs ...notification.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msgs...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}

func (r *recorder) eventTypes() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventType
	for _, m := range r.msgs {
		if ev, ok := m.Event.(Event); ok {
			out = append(out, ev.Type)
		}
	}
	return out
}

type fixture struct {
	svc   *Service
	repo  *Repository
	rec   *recorder
	clock time.Time
}

// newFixture starts the clock at 2030-05-10 09:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenTest(t.Name(), &ServiceRequest{}, &Proposal{})
	require.NoError(t, err)

	f := &fixture{
		repo:  NewRepository(db),
		rec:   &recorder{},
		clock: time.Date(2030, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, stubAppliances{}, stubAddresses{}, f.rec, DefaultRules(), nil)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func tomorrow(hh, mm int) time.Time {
	return time.Date(2030, 5, 11, hh, mm, 0, 0, time.UTC)
}

func (f *fixture) create(t *testing.T, when time.Time) *ServiceRequest {
	t.Helper()
	sr, err := f.svc.Create(context.Background(), clientID, CreateRequest{
		ApplianceID:      applID,
		AddressID:        addrID,
		Description:      "Washing machine leaks",
		ProposedDateTime: when,
	})
	require.NoError(t, err)
	return sr
}

func (f *fixture) propose(techID, requestID int64, when time.Time) (*ProposalResult, error) {
	return f.svc.ProposeAlternativeDate(context.Background(), requestID, techID, ProposeRequest{NewDateTime: when})
}

func sameTime(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got), "want %s, got %s", want, *got)
}

func client() Actor { return Actor{UserID: clientID, Role: "client"} }
func tech(id int64) Actor { return Actor{UserID: id, Role: "technician"} }

func TestWorkedExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sr := f.create(t, tomorrow(10, 0))
	assert.Equal(t, StatusPending, sr.Status)
	assert.True(t, sr.ExpiresAt.Equal(sr.CreatedAt.Add(24*time.Hour)))
	assert.Equal(t, []EventType{EventNew}, f.rec.eventTypes())

	first, err := f.svc.ProposeAlternativeDate(ctx, sr.ID, techA, ProposeRequest{
		NewDateTime: tomorrow(14, 0),
		Comment:     "prefer afternoon",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Proposal.ProposalCount)
	assert.Equal(t, ProposalPending, first.Proposal.Status)
	assert.Equal(t, "prefer afternoon", first.Proposal.Comment)

	_, err = f.propose(techA, sr.ID, tomorrow(14, 20))
	assert.ErrorIs(t, err, ErrProposalSpacing)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	accepted, err := f.svc.AcceptAlternativeDateProposal(ctx, first.Proposal.ID, clientID)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, accepted.ServiceRequest.Status)
	sameTime(t, tomorrow(14, 0), accepted.ServiceRequest.ScheduledAt)
	require.NotNil(t, accepted.ServiceRequest.TechnicianID)
	assert.Equal(t, techA, *accepted.ServiceRequest.TechnicianID)
	assert.Equal(t, ProposalAccepted, accepted.Proposal.Status)
	assert.NotNil(t, accepted.Proposal.ResolvedAt)

	proposals, err := f.repo.ListProposals(ctx, sr.ID, 0)
	require.NoError(t, err)
	for _, p := range proposals {
		assert.NotEqual(t, ProposalPending, p.Status)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := CreateRequest{ApplianceID: applID, AddressID: addrID, Description: "Oven", ProposedDateTime: tomorrow(10, 0)}

	req := base
	req.ProposedDateTime = f.clock.Add(-time.Hour)
	_, err := f.svc.Create(ctx, clientID, req)
	assert.ErrorIs(t, err, ErrDateInPast)

	req = base
	req.ProposedDateTime = tomorrow(19, 0)
	_, err = f.svc.Create(ctx, clientID, req)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req = base
	req.ApplianceID = 999
	_, err = f.svc.Create(ctx, clientID, req)
	assert.ErrorIs(t, err, ErrApplianceNotFound)

	req = base
	req.AddressID = foreignID
	_, err = f.svc.Create(ctx, clientID, req)
	assert.ErrorIs(t, err, ErrAddressNotFound)

	_, err = f.svc.Create(ctx, otherID, base)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPropose_CapAndWindow(t *testing.T) {
	f := newFixture(t)
	sr := f.create(t, tomorrow(10, 0))

	for _, when := range []time.Time{tomorrow(8, 0), tomorrow(11, 0), tomorrow(13, 0)} {
		_, err := f.propose(techA, sr.ID, when)
		require.NoError(t, err)
	}
	_, err := f.propose(techA, sr.ID, tomorrow(16, 0))
	assert.ErrorIs(t, err, ErrProposalCap)

	// The cap is per technician.
	res, err := f.propose(techB, sr.ID, tomorrow(8, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Proposal.ProposalCount)

	_, err = f.propose(techB, sr.ID, tomorrow(5, 30))
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	_, err = f.propose(techB, sr.ID, f.clock.Add(-time.Minute))
	assert.ErrorIs(t, err, ErrDateInPast)
}

func TestAcceptDirectly_RaceAndOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, tomorrow(10, 0))
	_, err := f.propose(techB, first.ID, tomorrow(15, 0))
	require.NoError(t, err)
	f.rec.reset()

	got, err := f.svc.AcceptDirectly(ctx, first.ID, techA)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, got.Status)
	sameTime(t, tomorrow(10, 0), got.ScheduledAt)
	assert.Equal(t, []EventType{EventUpdated, EventRemoved, EventProposalRejected}, f.rec.eventTypes())

	_, err = f.svc.AcceptDirectly(ctx, first.ID, techB)
	assert.ErrorIs(t, err, ErrNotPending)

	second := f.create(t, tomorrow(11, 0))
	_, err = f.svc.AcceptDirectly(ctx, second.ID, techA)
	assert.ErrorIs(t, err, ErrScheduleOverlap)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.svc.AcceptDirectly(ctx, second.ID, techB)
	assert.NoError(t, err)

	_, err = f.svc.AcceptDirectly(ctx, 9999, techA)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptProposal_RejectsSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sr := f.create(t, tomorrow(10, 0))

	a, err := f.propose(techA, sr.ID, tomorrow(14, 0))
	require.NoError(t, err)
	b, err := f.propose(techB, sr.ID, tomorrow(15, 0))
	require.NoError(t, err)

	_, err = f.svc.AcceptAlternativeDateProposal(ctx, b.Proposal.ID, otherID)
	assert.ErrorIs(t, err, ErrProposalNotFound)

	f.rec.reset()
	res, err := f.svc.AcceptAlternativeDateProposal(ctx, b.Proposal.ID, clientID)
	require.NoError(t, err)
	assert.Equal(t, techB, *res.ServiceRequest.TechnicianID)
	sameTime(t, tomorrow(15, 0), res.ServiceRequest.ScheduledAt)
	assert.Equal(t, []EventType{EventProposalAccepted, EventRemoved, EventProposalRejected}, f.rec.eventTypes())

	other, err := f.repo.GetProposal(ctx, a.Proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalRejected, other.Status)

	_, err = f.svc.AcceptAlternativeDateProposal(ctx, a.Proposal.ID, clientID)
	assert.ErrorIs(t, err, ErrProposalResolved)
	_, err = f.svc.RejectAlternativeDateProposal(ctx, b.Proposal.ID, clientID)
	assert.ErrorIs(t, err, ErrProposalResolved)
}

func TestRejectProposal_KeepsRequestPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sr := f.create(t, tomorrow(10, 0))

	p, err := f.propose(techA, sr.ID, tomorrow(14, 0))
	require.NoError(t, err)

	res, err := f.svc.RejectAlternativeDateProposal(ctx, p.Proposal.ID, clientID)
	require.NoError(t, err)
	assert.Equal(t, ProposalRejected, res.Proposal.Status)
	assert.Equal(t, StatusPending, res.ServiceRequest.Status)

	// Rejected proposals still count against spacing and the cap.
	_, err = f.propose(techA, sr.ID, tomorrow(14, 10))
	assert.ErrorIs(t, err, ErrProposalSpacing)
	next, err := f.propose(techA, sr.ID, tomorrow(16, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, next.Proposal.ProposalCount)
}

func TestLazyExpiryAndSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := f.create(t, tomorrow(10, 0))
	p, err := f.propose(techA, stale.ID, tomorrow(14, 0))
	require.NoError(t, err)

	f.clock = f.clock.Add(2 * time.Hour)
	fresh := f.create(t, tomorrow(12, 0))

	f.clock = f.clock.Add(23 * time.Hour)
	f.rec.reset()

	got, err := f.svc.Get(ctx, stale.ID, client())
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
	assert.Nil(t, got.ScheduledAt)
	assert.Equal(t, []EventType{EventUpdated, EventRemoved, EventProposalRejected}, f.rec.eventTypes())

	prop, err := f.repo.GetProposal(ctx, p.Proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, ProposalRejected, prop.Status)

	_, err = f.svc.AcceptDirectly(ctx, stale.ID, techA)
	assert.ErrorIs(t, err, ErrNotPending)

	n, err := f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock = f.clock.Add(2 * time.Hour)
	n, err = f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err = f.repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
}

func TestCompleteAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sr := f.create(t, tomorrow(10, 0))

	_, err := f.svc.CompleteByClient(ctx, sr.ID, clientID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Cancel(ctx, sr.ID, tech(techA), "")
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = f.svc.AcceptDirectly(ctx, sr.ID, techA)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, sr.ID, tech(techB), "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Cancel(ctx, sr.ID, Actor{UserID: otherID, Role: "client"}, "")
	assert.ErrorIs(t, err, ErrNotFound)

	done, err := f.svc.CompleteByClient(ctx, sr.ID, clientID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	sameTime(t, f.clock, done.CompletedAt)
	assert.Nil(t, done.CancelledAt)

	_, err = f.svc.Cancel(ctx, sr.ID, client(), "too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	second := f.create(t, tomorrow(14, 0))
	_, err = f.svc.AcceptDirectly(ctx, second.ID, techA)
	require.NoError(t, err)
	f.rec.reset()

	cancelled, err := f.svc.Cancel(ctx, second.ID, tech(techA), " sick ")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.ScheduledAt)
	sameTime(t, f.clock, cancelled.CancelledAt)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "sick", *cancelled.CancellationReason)

	require.Len(t, f.rec.msgs, 1)
	assert.Equal(t, []int64{clientID}, f.rec.msgs[0].UserIDs)
	assert.Equal(t, notification.TypeRequestCancelled, f.rec.msgs[0].Type)

	third := f.create(t, tomorrow(16, 0))
	res, err := f.svc.Cancel(ctx, third.ID, Actor{UserID: adminID, Role: "admin"}, "")
	require.NoError(t, err)
	assert.Nil(t, res.CancellationReason)
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open := f.create(t, tomorrow(10, 0))
	capped := f.create(t, tomorrow(11, 0))
	taken := f.create(t, tomorrow(12, 0))

	for _, when := range []time.Time{tomorrow(7, 0), tomorrow(8, 0), tomorrow(9, 0)} {
		_, err := f.propose(techA, capped.ID, when)
		require.NoError(t, err)
	}
	_, err := f.svc.AcceptDirectly(ctx, taken.ID, techB)
	require.NoError(t, err)

	avail, err := f.svc.AvailableFor(ctx, techA, 0, 0)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, open.ID, avail[0].ID)

	avail, err = f.svc.AvailableFor(ctx, techB, 0, 0)
	require.NoError(t, err)
	assert.Len(t, avail, 2)

	mine, err := f.svc.ListMine(ctx, client(), "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	mine, err = f.svc.ListMine(ctx, tech(techB), StatusScheduled, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, taken.ID, mine[0].ID)

	_, err = f.svc.ListMine(ctx, client(), "bogus", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	props, err := f.svc.ListProposals(ctx, capped.ID, client())
	require.NoError(t, err)
	assert.Len(t, props, 3)
	props, err = f.svc.ListProposals(ctx, capped.ID, tech(techB))
	require.NoError(t, err)
	assert.Empty(t, props)
	_, err = f.svc.ListProposals(ctx, capped.ID, Actor{UserID: otherID, Role: "client"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Get(ctx, taken.ID, tech(techA))
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := f.svc.Get(ctx, open.ID, tech(techA))
	require.NoError(t, err)
	assert.Equal(t, open.ID, got.ID)
}

type failingStore struct {
	*Repository
}

func (s failingStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.Repository.Transaction(ctx, func(tx Store) error {
		return fn(lostRace{tx})
	})
}

// lostRace simulates another writer winning every compare-and-set.
type lostRace struct {
	Store
}

func (lostRace) TransitionStatus(context.Context, int64, []Status, Status, map[string]any) (bool, error) {
	return false, nil
}

func TestAcceptDirectly_LostCompareAndSet(t *testing.T) {
	f := newFixture(t)
	sr := f.create(t, tomorrow(10, 0))

	f.svc.store = failingStore{f.repo}
	f.rec.reset()
	_, err := f.svc.AcceptDirectly(context.Background(), sr.ID, techA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConcurrentUpdate))
	assert.Empty(t, f.rec.eventTypes())

	got, err := f.repo.GetByID(context.Background(), sr.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}
