package dashboard

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/notify"
	"github.com/sentinel-sim/sentinel/internal/syncer"
)

const maxQueuedNotices = 64

// feed bridges callbacks from background components into Bubble Tea
// messages. Callbacks never block: state and health keep only the newest
// value, notices queue up to a bound.
type feed struct {
	mu      sync.Mutex
	state   *syncer.State
	health  *models.ServiceStatus
	notices []notify.Notice

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	unsubs    []func()
}

func newFeed() *feed {
	return &feed{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (f *feed) signal() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *feed) pushState(s syncer.State) {
	f.mu.Lock()
	f.state = &s
	f.mu.Unlock()
	f.signal()
}

func (f *feed) pushHealth(s models.ServiceStatus) {
	f.mu.Lock()
	f.health = &s
	f.mu.Unlock()
	f.signal()
}

func (f *feed) pushNotice(n notify.Notice) {
	f.mu.Lock()
	f.notices = append(f.notices, n)
	if over := len(f.notices) - maxQueuedNotices; over > 0 {
		f.notices = f.notices[over:]
	}
	f.mu.Unlock()
	f.signal()
}

// track keeps an unsubscribe func to run on close
func (f *feed) track(unsub func()) {
	f.unsubs = append(f.unsubs, unsub)
}

// wait returns a command that blocks until something was published
func (f *feed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.wake:
		case <-f.done:
			return nil
		}
		return f.drain()
	}
}

func (f *feed) drain() feedMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := feedMsg{State: f.state, Health: f.health, Notices: f.notices}
	f.state, f.health, f.notices = nil, nil, nil
	return msg
}

func (f *feed) close() {
	f.closeOnce.Do(func() {
		for _, unsub := range f.unsubs {
			unsub()
		}
		close(f.done)
	})
}
