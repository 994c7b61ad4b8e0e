// Package notify turns sync events and failures into user-visible notices and
// tracks the health of the remote service.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
)

const (
	DefaultDedupWindow = 5 * time.Second
	DefaultRingSize    = 50
)

// Kind classifies a notice for styling
type Kind string

const (
	KindEvent Kind = "event"
	KindError Kind = "error"
	KindInfo  Kind = "info"
)

// Notice is one user-visible notification
type Notice struct {
	Seq       uint64
	Kind      Kind
	Message   string
	EventType models.EventType
	EntityID  int64
	At        time.Time
}

type dedupKey struct {
	typ models.EventType
	id  int64
}

// Dispatcher produces notices. Event notices are deduplicated on
// (event type, entity id) within a window; error and info notices are not.
type Dispatcher struct {
	window time.Duration
	size   int
	now    func() time.Time

	mu      sync.Mutex
	seq     uint64
	last    map[dedupKey]time.Time
	ring    []Notice
	subs    map[int]func(Notice)
	nextSub int
}

// NewDispatcher creates a dispatcher. A zero window or size takes the default.
// now may be nil.
func NewDispatcher(window time.Duration, size int, now func() time.Time) *Dispatcher {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if size <= 0 {
		size = DefaultRingSize
	}
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		window: window,
		size:   size,
		now:    now,
		last:   make(map[dedupKey]time.Time),
		subs:   make(map[int]func(Notice)),
	}
}

// Dispatch produces a notice for ev unless an identical (type, id) notice was
// produced within the window. Events that do not decode produce nothing.
func (d *Dispatcher) Dispatch(ev models.Event) (Notice, bool) {
	delta, err := ev.Decode()
	if err != nil {
		return Notice{}, false
	}
	key := dedupKey{typ: delta.Type, id: delta.EntityID()}

	d.mu.Lock()
	now := d.now()
	if at, ok := d.last[key]; ok && now.Sub(at) < d.window {
		d.mu.Unlock()
		return Notice{}, false
	}
	d.last[key] = now
	d.pruneLocked(now)
	n := d.appendLocked(Notice{
		Kind:      KindEvent,
		Message:   eventMessage(delta),
		EventType: delta.Type,
		EntityID:  key.id,
		At:        now,
	})
	fns := d.subscribersLocked()
	d.mu.Unlock()

	deliver(fns, n)
	return n, true
}

// ServerError produces an error notice for a failed operation
func (d *Dispatcher) ServerError(op string, err error) Notice {
	return d.emit(KindError, fmt.Sprintf("Failed to %s: %v", op, err))
}

// Info produces an informational notice
func (d *Dispatcher) Info(msg string) Notice {
	return d.emit(KindInfo, msg)
}

func (d *Dispatcher) emit(kind Kind, msg string) Notice {
	d.mu.Lock()
	n := d.appendLocked(Notice{Kind: kind, Message: msg, At: d.now()})
	fns := d.subscribersLocked()
	d.mu.Unlock()
	deliver(fns, n)
	return n
}

// Recent returns up to the last ring-size notices, oldest first
func (d *Dispatcher) Recent() []Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Notice(nil), d.ring...)
}

// Subscribe registers fn for every produced notice
func (d *Dispatcher) Subscribe(fn func(Notice)) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *Dispatcher) appendLocked(n Notice) Notice {
	d.seq++
	n.Seq = d.seq
	d.ring = append(d.ring, n)
	if over := len(d.ring) - d.size; over > 0 {
		d.ring = append(d.ring[:0], d.ring[over:]...)
	}
	return n
}

// pruneLocked forgets dedup keys whose window has passed
func (d *Dispatcher) pruneLocked(now time.Time) {
	for k, at := range d.last {
		if now.Sub(at) >= d.window {
			delete(d.last, k)
		}
	}
}

func (d *Dispatcher) subscribersLocked() []func(Notice) {
	fns := make([]func(Notice), 0, len(d.subs))
	for id := 0; id < d.nextSub; id++ {
		if fn, ok := d.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

func deliver(fns []func(Notice), n Notice) {
	for _, fn := range fns {
		fn(n)
	}
}

func eventMessage(d models.Delta) string {
	switch d.Type {
	case models.EventCampaignCreated:
		if d.Campaign.Name != nil && *d.Campaign.Name != "" {
			return fmt.Sprintf("Campaign created: %s", *d.Campaign.Name)
		}
		return fmt.Sprintf("Campaign #%d created", d.Campaign.ID)
	case models.EventCampaignUpdated:
		if d.Campaign.Status != nil {
			return fmt.Sprintf("Campaign #%d is now %s", d.Campaign.ID, *d.Campaign.Status)
		}
		return fmt.Sprintf("Campaign #%d updated", d.Campaign.ID)
	case models.EventCampaignLaunched:
		return fmt.Sprintf("Campaign #%d launched", d.Campaign.ID)
	case models.EventUserClicked:
		return fmt.Sprintf("A user clicked the link in campaign #%d", d.Click.CampaignID)
	case models.EventUserUpdated:
		if d.User.Name != nil && *d.User.Name != "" {
			return fmt.Sprintf("User %s updated", *d.User.Name)
		}
		return fmt.Sprintf("User #%d updated", d.User.ID)
	}
	return string(d.Type)
}
