package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/remote"
)

// fakeClock advances only when told to
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

// fakeFetcher serves a configurable snapshot. When gate is non-nil each
// ListCampaigns call blocks until a value is received on it.
type fakeFetcher struct {
	mu        sync.Mutex
	campaigns []models.Campaign
	users     []models.User
	err       error
	gate      chan struct{}
	entered   chan struct{}
	calls     atomic.Int32
}

func (f *fakeFetcher) set(campaigns ...models.Campaign) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns = campaigns
}

func (f *fakeFetcher) ListCampaigns(ctx context.Context) ([]models.Campaign, int, error) {
	f.calls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}
	return append([]models.Campaign(nil), f.campaigns...), 0, nil
}

func (f *fakeFetcher) ListUsers(context.Context) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.User(nil), f.users...), 0, nil
}

func (f *fakeFetcher) GetStats(context.Context) (*models.Stats, error) { return nil, nil }

func ptr[T any](v T) *T { return &v }

func campaign(id int64, status models.Status) models.Campaign {
	c := models.Campaign{ID: id, Status: status, Name: "c"}
	if status.Analyzed() {
		c.Verdict = ptr(models.VerdictMalicious)
		c.Confidence = ptr(0.9)
	}
	return c
}

func event(t *testing.T, typ models.EventType, data any) models.Event {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return models.Event{Type: typ, Data: raw}
}

func ids(st State) []int64 {
	out := make([]int64, 0, len(st.Campaigns))
	for _, c := range st.Campaigns {
		out = append(out, c.ID)
	}
	return out
}

func newTestController(clock *fakeClock, f Fetcher) *Controller {
	return New(f, nil, Options{Workflow: models.WorkflowReport, Now: clock.Now})
}

func TestApplySnapshotIdempotent(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, &fakeFetcher{})
	snap := Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusPending), campaign(2, models.StatusComplete)},
		Users:          []models.User{{ID: 5, RiskScore: 80}},
		FetchStartedAt: clock.Now(),
	}

	c.ApplySnapshot(snap)
	first := c.State()
	c.ApplySnapshot(snap)
	second := c.State()

	assert.Equal(t, first.Campaigns, second.Campaigns)
	assert.Equal(t, first.Users, second.Users)
	assert.Equal(t, 1, second.Stats.HighRiskUsers)
	assert.Greater(t, second.Seq, first.Seq)
}

func TestSnapshotIsExhaustive(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, &fakeFetcher{})
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusPending), campaign(2, models.StatusPending)},
		FetchStartedAt: clock.Now(),
	})
	clock.Advance(time.Second)
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusProcessing)},
		FetchStartedAt: clock.Now(),
	})

	st := c.State()
	assert.Equal(t, []int64{1}, ids(st))
	assert.Equal(t, models.StatusProcessing, st.Campaigns[0].Status)
}

func TestFreshnessTieBreak(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, &fakeFetcher{})
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusPending)},
		FetchStartedAt: clock.Now(),
	})

	// arrives before the next fetch starts: the snapshot wins
	clock.Advance(time.Second)
	require.NoError(t, c.ApplyEvent(event(t, models.EventCampaignCreated, map[string]any{"id": 9, "status": "pending"})))
	// arrives exactly at fetch start: still considered reflected by the snapshot
	fetchStart := clock.Advance(time.Second)
	require.NoError(t, c.ApplyEvent(event(t, models.EventCampaignCreated, map[string]any{"id": 10, "status": "pending"})))
	// arrives after the fetch started: wins over the snapshot value
	clock.Advance(time.Second)
	require.NoError(t, c.ApplyEvent(event(t, models.EventCampaignUpdated, map[string]any{"id": 1, "status": "processing", "name": "fresh"})))
	require.NoError(t, c.ApplyEvent(event(t, models.EventCampaignCreated, map[string]any{"id": 11, "status": "pending"})))

	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusPending)},
		FetchStartedAt: fetchStart,
	})

	st := c.State()
	assert.ElementsMatch(t, []int64{1, 11}, ids(st))
	one, ok := st.Campaign(1)
	require.True(t, ok)
	assert.Equal(t, models.StatusProcessing, one.Status)
	assert.Equal(t, "fresh", one.Name)
	eleven, _ := st.Campaign(11)
	assert.True(t, eleven.Provisional)

	// a later snapshot that started after every delta is fully authoritative
	clock.Advance(time.Second)
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusPending)},
		FetchStartedAt: clock.Now(),
	})
	st = c.State()
	assert.Equal(t, []int64{1}, ids(st))
	assert.Equal(t, models.StatusPending, st.Campaigns[0].Status)
}

func TestSnapshotThenEventThenSnapshot(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, &fakeFetcher{})

	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusPending)},
		FetchStartedAt: clock.Now(),
	})
	clock.Advance(time.Second)
	require.NoError(t, c.ApplyEvent(event(t, models.EventCampaignCreated, map[string]any{"id": 2, "status": "pending"})))

	st := c.State()
	assert.ElementsMatch(t, []int64{1, 2}, ids(st))
	two, _ := st.Campaign(2)
	assert.Equal(t, models.StatusPending, two.Status)

	clock.Advance(time.Second)
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusComplete)},
		FetchStartedAt: clock.Now(),
	})
	st = c.State()
	assert.Equal(t, []int64{1}, ids(st))
	assert.Equal(t, models.StatusComplete, st.Campaigns[0].Status)
}

func TestDeltaStatusNeverRegresses(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, &fakeFetcher{})
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusProcessing)},
		FetchStartedAt: clock.Now(),
	})
	clock.Advance(time.Second)
	require.NoError(t, c.ApplyEvent(event(t, models.EventCampaignUpdated, map[string]any{"id": 1, "status": "pending"})))

	one, _ := c.State().Campaign(1)
	assert.Equal(t, models.StatusProcessing, one.Status)
}

func TestDeltaStatusStaysInWorkflow(t *testing.T) {
	clock := newFakeClock()
	c := New(&fakeFetcher{}, nil, Options{Workflow: models.WorkflowCampaign, Now: clock.Now})
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusActive)},
		FetchStartedAt: clock.Now(),
	})
	clock.Advance(time.Second)

	err := c.ApplyEvent(event(t, models.EventCampaignUpdated, map[string]any{
		"id": 1, "status": "complete", "verdict": "Safe", "confidence": 0.5,
	}))
	assert.ErrorIs(t, err, models.ErrInvalidEntity)
	one, _ := c.State().Campaign(1)
	assert.Equal(t, models.StatusActive, one.Status)
	assert.Nil(t, one.Verdict)

	require.NoError(t, c.ApplyEvent(event(t, models.EventCampaignUpdated, map[string]any{
		"id": 1, "status": "completed", "verdict": "Safe", "confidence": 0.5,
	})))
	one, _ = c.State().Campaign(1)
	assert.Equal(t, models.StatusCompleted, one.Status)
	require.NotNil(t, one.Verdict)
	assert.Equal(t, models.VerdictSafe, *one.Verdict)
}

func TestLaunchedEventPerWorkflow(t *testing.T) {
	clock := newFakeClock()

	campaigns := New(&fakeFetcher{}, nil, Options{Workflow: models.WorkflowCampaign, Now: clock.Now})
	campaigns.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusDraft)},
		FetchStartedAt: clock.Now(),
	})
	reports := newTestController(clock, &fakeFetcher{})
	reports.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(2, models.StatusPending)},
		FetchStartedAt: clock.Now(),
	})
	clock.Advance(time.Second)

	require.NoError(t, campaigns.ApplyEvent(event(t, models.EventCampaignLaunched, map[string]any{"id": 1})))
	one, _ := campaigns.State().Campaign(1)
	assert.Equal(t, models.StatusActive, one.Status)

	require.NoError(t, reports.ApplyEvent(event(t, models.EventCampaignLaunched, map[string]any{"id": 2})))
	two, _ := reports.State().Campaign(2)
	assert.Equal(t, models.StatusPending, two.Status)
}

func TestAdvances(t *testing.T) {
	tests := []struct {
		cur, next models.Status
		want      bool
	}{
		{models.StatusDraft, models.StatusActive, true},
		{models.StatusActive, models.StatusActive, false},
		{models.StatusActive, models.StatusScheduled, false},
		{models.StatusActive, models.StatusComplete, false},
		{models.StatusPending, models.StatusActive, false},
		{models.StatusPending, models.StatusError, true},
		{models.StatusComplete, models.StatusError, false},
		{models.StatusCompleted, models.StatusCompleted, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, advances(tt.cur, tt.next), "%s -> %s", tt.cur, tt.next)
	}
}

func TestInvalidDeltaLeavesStateUntouched(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, &fakeFetcher{})
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{campaign(1, models.StatusProcessing)},
		FetchStartedAt: clock.Now(),
	})
	before := c.State()

	// complete without a verdict breaks the entity invariant
	err := c.ApplyEvent(event(t, models.EventCampaignUpdated, map[string]any{"id": 1, "status": "complete"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidEntity)
	assert.Equal(t, before.Campaigns, c.State().Campaigns)

	// unknown types are ignored without error
	assert.NoError(t, c.ApplyEvent(event(t, "heartbeat", map[string]any{})))
}

func TestClickEventsIncrementCampaign(t *testing.T) {
	clock := newFakeClock()
	c := New(&fakeFetcher{}, nil, Options{Now: clock.Now})
	sent := 4
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{{ID: 3, Status: models.StatusActive, SentCount: &sent}},
		Users:          []models.User{{ID: 8, CampaignsSent: 2}},
		FetchStartedAt: clock.Now(),
	})
	clock.Advance(time.Second)
	require.NoError(t, c.ApplyEvent(event(t, models.EventUserClicked, map[string]any{"campaign_id": 3, "user_id": 8})))
	require.NoError(t, c.ApplyEvent(event(t, models.EventUserClicked, map[string]any{"campaign_id": 3, "click_count": 3})))

	st := c.State()
	camp, _ := st.Campaign(3)
	require.NotNil(t, camp.ClickCount)
	assert.Equal(t, 3, *camp.ClickCount)
	assert.InDelta(t, 0.75, st.Stats.AvgClickRate, 1e-9)
	u, _ := st.User(8)
	assert.Equal(t, 1, u.CampaignsClicked)
}

func TestInsertProvisionalSurvivesStaleSnapshot(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, &fakeFetcher{})
	fetchStart := clock.Now()
	clock.Advance(time.Second)
	c.InsertProvisional(models.Campaign{ID: 50, Name: "new", Status: models.StatusPending})

	c.ApplySnapshot(Snapshot{FetchStartedAt: fetchStart})
	got, ok := c.State().Campaign(50)
	require.True(t, ok, "placeholder dropped by a snapshot that started before it")
	assert.True(t, got.Provisional)

	clock.Advance(time.Second)
	c.ApplySnapshot(Snapshot{
		Campaigns:      []models.Campaign{{ID: 50, Name: "new", Status: models.StatusProcessing}},
		FetchStartedAt: clock.Now(),
	})
	got, ok = c.State().Campaign(50)
	require.True(t, ok)
	assert.False(t, got.Provisional, "confirmed by snapshot")
}

func TestSubscribersReceiveCopiesInMergeOrder(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(clock, &fakeFetcher{})

	var mu sync.Mutex
	var seqs []uint64
	unsub := c.Subscribe(func(st State) {
		mu.Lock()
		seqs = append(seqs, st.Seq)
		mu.Unlock()
		if len(st.Campaigns) > 0 {
			st.Campaigns[0].Name = "mutated by listener"
		}
	})

	c.ApplySnapshot(Snapshot{Campaigns: []models.Campaign{campaign(1, models.StatusPending)}, FetchStartedAt: clock.Now()})
	clock.Advance(time.Second)
	require.NoError(t, c.ApplyEvent(event(t, models.EventCampaignUpdated, map[string]any{"id": 1, "status": "processing"})))
	unsub()
	clock.Advance(time.Second)
	require.NoError(t, c.ApplyEvent(event(t, models.EventCampaignCreated, map[string]any{"id": 2, "status": "pending"})))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2}, seqs)
	one, _ := c.State().Campaign(1)
	assert.Equal(t, "c", one.Name)
}

func TestRefreshCoalescesWhileInFlight(t *testing.T) {
	clock := newFakeClock()
	f := &fakeFetcher{gate: make(chan struct{}), entered: make(chan struct{}, 4)}
	f.set(campaign(1, models.StatusPending))
	c := newTestController(clock, f)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-f.entered

	// second refresh returns immediately without a second fetch
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, int32(1), f.calls.Load())

	f.gate <- struct{}{}
	require.NoError(t, <-done)
	assert.Equal(t, []int64{1}, ids(c.State()))
}

func TestFetchFailureKeepsCache(t *testing.T) {
	clock := newFakeClock()
	f := &fakeFetcher{}
	f.set(campaign(1, models.StatusPending))
	var reported atomic.Int32
	c := New(f, nil, Options{Workflow: models.WorkflowReport, Now: clock.Now, OnError: func(error) { reported.Add(1) }})

	require.NoError(t, c.Refresh(context.Background()))
	f.mu.Lock()
	f.err = &remote.NetworkError{Op: "list campaigns", Err: errors.New("connection refused")}
	f.mu.Unlock()

	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, remote.IsTransient(err))
	st := c.State()
	assert.Equal(t, []int64{1}, ids(st))
	assert.Error(t, st.LastError)
	assert.Equal(t, int32(1), reported.Load())
}

func TestStopDiscardsInFlightResult(t *testing.T) {
	clock := newFakeClock()
	f := &fakeFetcher{gate: make(chan struct{}), entered: make(chan struct{}, 4)}
	f.set(campaign(1, models.StatusPending))
	c := New(f, nil, Options{Workflow: models.WorkflowReport, Now: clock.Now, PollInterval: time.Hour})

	// an out-of-band refresh is not tied to the loop context
	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-f.entered

	c.Start(context.Background())
	c.Stop()
	close(f.gate)
	require.NoError(t, <-done)

	assert.Empty(t, c.State().Campaigns)
	assert.False(t, c.Running())
}

// fakePush hands out scripted sessions. Each session yields its events and
// then fails; Connect blocks once the script is exhausted.
type fakePush struct {
	mu       sync.Mutex
	sessions [][]models.Event
	connects atomic.Int32
}

func (p *fakePush) Connect(ctx context.Context) (remote.EventStream, error) {
	p.connects.Add(1)
	p.mu.Lock()
	if len(p.sessions) == 0 {
		p.mu.Unlock()
		<-ctx.Done()
		return nil, &remote.ChannelError{Op: "dial", Err: ctx.Err()}
	}
	evs := p.sessions[0]
	p.sessions = p.sessions[1:]
	p.mu.Unlock()
	return &fakeStream{events: evs}, nil
}

type fakeStream struct {
	events []models.Event
}

func (s *fakeStream) Next() (models.Event, error) {
	if len(s.events) == 0 {
		return models.Event{}, &remote.ChannelError{Op: "read", Err: errors.New("connection reset")}
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

func (s *fakeStream) Close() error { return nil }

func TestPushReconnectKeepsCache(t *testing.T) {
	clock := newFakeClock()
	// the service is unreachable for polls, so the cache is built from deltas only
	f := &fakeFetcher{err: &remote.NetworkError{Op: "list campaigns", Err: errors.New("connection refused")}}
	p := &fakePush{sessions: [][]models.Event{
		{event(t, models.EventCampaignUpdated, map[string]any{"id": 1, "status": "processing"})},
		{event(t, models.EventCampaignCreated, map[string]any{"id": 2, "status": "pending"})},
	}}

	var got []models.EventType
	var mu sync.Mutex
	c := New(f, p, Options{
		Workflow:       models.WorkflowReport,
		Now:            clock.Now,
		PollInterval:   time.Hour,
		MaxPushBackoff: 10 * time.Millisecond,
		OnEvent: func(ev models.Event) {
			mu.Lock()
			got = append(got, ev.Type)
			mu.Unlock()
		},
	})
	c.Start(context.Background())
	defer c.Stop()

	require.Eventually(t, func() bool { return p.connects.Load() >= 3 }, 5*time.Second, 5*time.Millisecond)

	st := c.State()
	assert.ElementsMatch(t, []int64{1, 2}, ids(st))
	one, _ := st.Campaign(1)
	assert.Equal(t, models.StatusProcessing, one.Status)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.EventType{models.EventCampaignUpdated, models.EventCampaignCreated}, got)
}

func TestStartIsIdempotent(t *testing.T) {
	f := &fakeFetcher{}
	c := New(f, nil, Options{PollInterval: time.Hour})
	c.Start(context.Background())
	c.Start(context.Background())
	require.Eventually(t, func() bool { return f.calls.Load() >= 1 }, time.Second, time.Millisecond)
	c.Stop()
	c.Stop()
	assert.Equal(t, int32(1), f.calls.Load())
}
