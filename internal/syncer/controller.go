// Package syncer keeps the canonical campaign and user collections consistent
// with the remote service. Three sources feed it: periodic snapshots, push
// deltas, and optimistic local inserts.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/remote"
)

const (
	DefaultPollInterval   = 10 * time.Second
	DefaultMaxPushBackoff = 30 * time.Second
)

// Fetcher retrieves one snapshot's worth of collections
type Fetcher interface {
	ListCampaigns(ctx context.Context) ([]models.Campaign, int, error)
	ListUsers(ctx context.Context) ([]models.User, int, error)
	GetStats(ctx context.Context) (*models.Stats, error)
}

// Subscriber opens push sessions
type Subscriber interface {
	Connect(ctx context.Context) (remote.EventStream, error)
}

// Options configures a Controller. Zero values take defaults.
type Options struct {
	Workflow       models.Workflow
	PollInterval   time.Duration
	MaxPushBackoff time.Duration

	// Now is the controller clock used to stamp arrivals and fetch starts
	Now func() time.Time

	// OnEvent receives every event that was merged, after the merge
	OnEvent func(models.Event)

	// OnError receives snapshot fetch failures
	OnError func(error)
}

// Controller owns the canonical collections
type Controller struct {
	fetch Fetcher
	push  Subscriber
	opts  Options

	// mergeMu serializes merges and subscriber notification
	mergeMu sync.Mutex
	canon   *canonical
	seq     uint64
	meta    State // bookkeeping fields carried into every published State

	mu    sync.RWMutex
	state State

	inFlight atomic.Bool
	epoch    atomic.Uint64

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a controller. push may be nil for poll-only operation.
func New(fetch Fetcher, push Subscriber, opts Options) *Controller {
	if opts.Workflow == "" {
		opts.Workflow = models.WorkflowCampaign
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxPushBackoff <= 0 {
		opts.MaxPushBackoff = DefaultMaxPushBackoff
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		fetch: fetch,
		push:  push,
		opts:  opts,
		canon: newCanonical(opts.Workflow),
		subs:  make(map[int]func(State)),
	}
}

// Start begins polling and, when a push subscriber is configured, the push
// loop. Calling Start on a running controller does nothing.
func (c *Controller) Start(ctx context.Context) {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.pollLoop(ctx)
	}()
	if c.push != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.pushLoop(ctx)
		}()
	}
}

// Stop cancels the loops. Results of fetches already in flight are
// discarded when they arrive.
func (c *Controller) Stop() {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.cancel == nil {
		return
	}
	c.mergeMu.Lock()
	c.epoch.Add(1)
	c.mergeMu.Unlock()
	c.cancel()
	c.cancel = nil
	c.wg.Wait()
}

// Running reports whether Start has been called without a matching Stop
func (c *Controller) Running() bool {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	return c.cancel != nil
}

// State returns the current canonical value
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Subscribe registers fn to be called once per completed merge, in merge
// order. fn runs with the merge lock held and must not call back into the
// controller's mutating methods.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

// Refresh runs an out-of-band poll. If a fetch is already in flight the call
// is coalesced into it and returns immediately.
func (c *Controller) Refresh(ctx context.Context) error {
	_, err := c.poll(ctx)
	return err
}

// ApplySnapshot merges a complete snapshot
func (c *Controller) ApplySnapshot(s Snapshot) {
	c.mergeMu.Lock()
	defer c.mergeMu.Unlock()
	c.applySnapshotLocked(s)
}

func (c *Controller) applySnapshotLocked(s Snapshot) {
	c.canon.replaceWith(s)
	c.meta.ServerStats = nil
	if s.Stats != nil {
		st := *s.Stats
		c.meta.ServerStats = &st
	}
	c.meta.LastSync = c.opts.Now()
	c.meta.LastError = nil
	c.meta.Quarantined = s.Quarantined
	c.publishLocked()
}

// ApplyEvent decodes and merges one push event. The arrival time is taken
// from the controller clock. Unknown event types are ignored; malformed
// events are dropped and logged.
func (c *Controller) ApplyEvent(ev models.Event) error {
	return c.applyEvent(ev, nil)
}

// applyEvent merges ev unless the controller's liveness epoch has moved past
// wantEpoch.
func (c *Controller) applyEvent(ev models.Event, wantEpoch *uint64) error {
	d, err := ev.Decode()
	if err != nil {
		if errors.Is(err, models.ErrUnknownEvent) {
			slog.Debug("sync: ignoring event", "type", ev.Type)
			return nil
		}
		slog.Warn("sync: dropped malformed event", "type", ev.Type, "err", err)
		return err
	}

	c.mergeMu.Lock()
	if wantEpoch != nil && c.epoch.Load() != *wantEpoch {
		c.mergeMu.Unlock()
		return nil
	}
	ev.ReceivedAt = c.opts.Now()
	if err := c.canon.apply(d); err != nil {
		c.mergeMu.Unlock()
		slog.Warn("sync: rejected delta", "type", d.Type, "id", d.EntityID(), "err", err)
		return err
	}
	c.canon.remember(pendingDelta{at: ev.ReceivedAt, delta: d})
	c.publishLocked()
	c.mergeMu.Unlock()

	if c.opts.OnEvent != nil {
		c.opts.OnEvent(ev)
	}
	return nil
}

// InsertProvisional adds an optimistic placeholder for a locally created
// campaign. It is kept until a snapshot started after the insert omits it.
func (c *Controller) InsertProvisional(camp models.Campaign) {
	c.mergeMu.Lock()
	defer c.mergeMu.Unlock()
	now := c.opts.Now()
	if camp.CreatedAt.IsZero() {
		camp.CreatedAt = now
	}
	camp.Provisional = true
	c.canon.insertLocal(camp)
	c.canon.remember(pendingDelta{at: now, local: &camp})
	c.publishLocked()
}

func (c *Controller) setPushConnected(connected bool) {
	c.mergeMu.Lock()
	defer c.mergeMu.Unlock()
	if c.meta.PushConnected == connected {
		return
	}
	c.meta.PushConnected = connected
	c.publishLocked()
}

// publishLocked installs a new State and notifies subscribers. Caller holds
// mergeMu.
func (c *Controller) publishLocked() {
	c.seq++
	st := buildState(c.canon.campaigns, c.canon.users)
	st.ServerStats = c.meta.ServerStats
	st.LastSync = c.meta.LastSync
	st.LastError = c.meta.LastError
	st.Quarantined = c.meta.Quarantined
	st.PushConnected = c.meta.PushConnected
	st.Seq = c.seq

	c.mu.Lock()
	c.state = st
	c.mu.Unlock()

	c.subMu.Lock()
	fns := make([]func(State), 0, len(c.subs))
	for id := 0; id < c.nextSub; id++ {
		if fn, ok := c.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(st.Clone())
	}
}
