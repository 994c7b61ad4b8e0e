// Package dashboard is the terminal dashboard: a Bubble Tea model over the
// sync controller's canonical state, the view router and the create
// campaign wizard.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/notify"
	"github.com/sentinel-sim/sentinel/internal/remote"
	"github.com/sentinel-sim/sentinel/internal/syncer"
	"github.com/sentinel-sim/sentinel/pkg/dashboard/keymap"
)

const (
	tickInterval = time.Second
	maxToasts    = 4
)

// StateSource is the sync controller as seen by the UI. The UI only reads
// canonical state; the one write is the optimistic placeholder after create.
type StateSource interface {
	State() syncer.State
	Subscribe(fn func(syncer.State)) func()
	Refresh(ctx context.Context) error
	InsertProvisional(c models.Campaign)
}

// Actions are the mutating remote calls
type Actions interface {
	Creator
	LaunchCampaign(ctx context.Context, id int64) (*models.Campaign, error)
	SimulateClick(ctx context.Context, id int64) (*remote.SimulateClickResponse, error)
}

// NoticeSource produces user-visible notices
type NoticeSource interface {
	Recent() []notify.Notice
	Subscribe(fn func(notify.Notice)) func()
	ServerError(op string, err error) notify.Notice
	Info(msg string) notify.Notice
}

// HealthSource reports the service status
type HealthSource interface {
	Status() models.ServiceStatus
	Subscribe(fn func(models.ServiceStatus)) func()
}

// Prefs persists UI preferences
type Prefs interface {
	LastView() (string, error)
	SetLastView(v string) error
	SearchQuery() (string, error)
	SetSearchQuery(q string) error
}

// SessionInfo is shown on the settings view
type SessionInfo struct {
	APIURL       string
	PushURL      string
	Workflow     models.Workflow
	PollInterval time.Duration
	StateStore   string
	StateDir     string
	Version      string
}

// Options wires a Model. Sync, Actions and Notices are required.
type Options struct {
	Sync    StateSource
	Actions Actions
	Notices NoticeSource
	Health  HealthSource
	Gate    OnboardingGate
	Prefs   Prefs
	Keymap  *keymap.Registry
	Info    SessionInfo
	Context context.Context
	Now     func() time.Time
}

// Model is the main Bubble Tea model for the dashboard
type Model struct {
	Sync    StateSource
	Actions Actions
	Notices NoticeSource
	Health  HealthSource
	Prefs   Prefs
	Keymap  *keymap.Registry
	Info    SessionInfo

	router *Router
	feed   *feed
	ctx    context.Context
	now    func() time.Time

	// Window dimensions
	Width  int
	Height int

	// Mirrored state
	State   syncer.State
	Service models.ServiceStatus
	Toasts  []notify.Notice

	// UI state
	Cursor      map[View]int
	ModalScroll int

	// Search state
	SearchMode   bool
	SearchQuery  string
	searchBefore string
	SearchInput  textinput.Model

	// Create campaign wizard, non-nil while its modal is on the stack
	Wizard *WizardForm

	// Pre-rendered markdown keyed by target, with the source it came from
	rendered    map[string]string
	renderedSrc map[string]string

	StatusMessage string
	StatusIsError bool
	statusSeq     int
}

// NewModel creates the dashboard model and subscribes it to its sources.
// Call Close when the program exits.
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	km := opts.Keymap
	if km == nil {
		km = keymap.NewRegistry()
		keymap.RegisterDefaults(km)
	}

	si := textinput.New()
	si.Placeholder = "filter campaigns and users..."
	si.Prompt = "/ "
	si.CharLimit = 120

	m := Model{
		Sync:        opts.Sync,
		Actions:     opts.Actions,
		Notices:     opts.Notices,
		Health:      opts.Health,
		Prefs:       opts.Prefs,
		Keymap:      km,
		Info:        opts.Info,
		router:      NewRouter(opts.Gate),
		feed:        newFeed(),
		ctx:         ctx,
		now:         now,
		State:       opts.Sync.State(),
		Service:     models.ServiceHealthy,
		Cursor:      make(map[View]int),
		SearchInput: si,
		rendered:    make(map[string]string),
		renderedSrc: make(map[string]string),
	}
	if opts.Health != nil {
		m.Service = opts.Health.Status()
	}
	m.restorePrefs()

	m.feed.track(opts.Sync.Subscribe(m.feed.pushState))
	m.feed.track(opts.Notices.Subscribe(m.feed.pushNotice))
	if opts.Health != nil {
		m.feed.track(opts.Health.Subscribe(m.feed.pushHealth))
	}
	return m
}

func (m *Model) restorePrefs() {
	if m.Prefs == nil {
		return
	}
	if q, err := m.Prefs.SearchQuery(); err == nil {
		m.SearchQuery = q
		m.SearchInput.SetValue(q)
	} else {
		slog.Warn("dashboard: read search query", "err", err)
	}
	if m.router.Onboarding() {
		return
	}
	name, err := m.Prefs.LastView()
	if err != nil {
		slog.Warn("dashboard: read last view", "err", err)
		return
	}
	if v, ok := ParseView(name); ok {
		_ = m.router.SelectView(v)
	}
}

// Close unsubscribes from all sources and unblocks the feed command
func (m Model) Close() {
	m.feed.close()
}

// Router exposes the view state machine
func (m Model) Router() *Router { return m.router }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.feed.wait(),
		m.scheduleTick(),
		m.ensureRendered(),
	)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The tick and feed chains must survive every overlay, so they are
	// handled before the wizard gets a chance to intercept messages.
	switch msg := msg.(type) {
	case TickMsg:
		m.expireToasts()
		return m, m.scheduleTick()

	case feedMsg:
		m.applyFeed(msg)
		return m, tea.Batch(m.feed.wait(), m.ensureRendered())

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.Wizard != nil {
			m.Wizard.SetWidth(m.modalContentWidth())
		}
		// Width changed; cached markdown is wrapped for the old width
		m.rendered = make(map[string]string)
		m.renderedSrc = make(map[string]string)
		return m, m.ensureRendered()

	case CampaignCreatedMsg:
		return m.handleCampaignCreated(msg)

	case ActionResultMsg:
		return m.handleActionResult(msg)

	case RefreshDoneMsg:
		if msg.Err != nil {
			return m.setStatus(fmt.Sprintf("Refresh failed: %v", msg.Err), true)
		}
		return m, nil

	case MarkdownRenderedMsg:
		m.rendered[msg.Key] = msg.Rendered
		return m, nil

	case PrefsSavedMsg:
		if msg.Err != nil {
			slog.Warn("dashboard: save preferences", "err", msg.Err)
		}
		return m, nil

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMessage = ""
			m.StatusIsError = false
		}
		return m, nil
	}

	// Wizard mode: the huh form gets everything not bound in the wizard context
	if top, ok := m.router.Top(); ok && top.Kind == ModalCreateCampaign && m.Wizard != nil {
		return m.handleWizardUpdate(msg)
	}

	// Search mode: forward non-key messages to textinput (cursor blink, etc.)
	if m.SearchMode {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			var cmd tea.Cmd
			m.SearchInput, cmd = m.SearchInput.Update(msg)
			return m, cmd
		}
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	return m.renderView()
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) applyFeed(msg feedMsg) {
	if msg.State != nil {
		m.State = *msg.State
		m.clampCursors()
	}
	if msg.Health != nil {
		m.Service = *msg.Health
	}
	if len(msg.Notices) > 0 {
		m.Toasts = append(m.Toasts, msg.Notices...)
		if over := len(m.Toasts) - maxToasts; over > 0 {
			m.Toasts = m.Toasts[over:]
		}
	}
}

func (m *Model) expireToasts() {
	now := m.now()
	keep := m.Toasts[:0]
	for _, n := range m.Toasts {
		if now.Sub(n.At) < noticeTTL {
			keep = append(keep, n)
		}
	}
	m.Toasts = keep
}

// setStatus shows a transient status line message
func (m Model) setStatus(msg string, isError bool) (tea.Model, tea.Cmd) {
	m.statusSeq++
	m.StatusMessage = msg
	m.StatusIsError = isError
	seq := m.statusSeq
	return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// refresh asks the sync controller for an out-of-band poll
func (m Model) refresh() tea.Cmd {
	src, ctx := m.Sync, m.ctx
	return func() tea.Msg {
		return RefreshDoneMsg{Err: src.Refresh(ctx)}
	}
}

func (m Model) savePref(fn func() error) tea.Cmd {
	if m.Prefs == nil {
		return nil
	}
	return func() tea.Msg {
		return PrefsSavedMsg{Err: fn()}
	}
}

func (m Model) saveView() tea.Cmd {
	prefs, name := m.Prefs, m.router.ActiveView().String()
	return m.savePref(func() error { return prefs.SetLastView(name) })
}

func (m Model) saveSearch() tea.Cmd {
	prefs, q := m.Prefs, m.SearchQuery
	return m.savePref(func() error { return prefs.SetSearchQuery(q) })
}

// modalContentWidth is the usable width inside a modal box
func (m Model) modalContentWidth() int {
	w := m.Width - 10
	if w > 90 {
		w = 90
	}
	if w < 30 {
		w = 30
	}
	return w - 6 // border and padding
}

// ensureRendered schedules markdown rendering for whatever needs it now:
// the onboarding page or the report on top of the modal stack
func (m Model) ensureRendered() tea.Cmd {
	key, src := m.markdownTarget()
	if key == "" || m.renderedSrc[key] == src {
		return nil
	}
	m.renderedSrc[key] = src
	width := m.modalContentWidth()
	if m.router.Onboarding() {
		width = min(m.Width-8, 72)
		if width < 30 {
			width = 30
		}
	}
	return renderMarkdownAsync(key, src, width)
}

func (m Model) markdownTarget() (key, src string) {
	if m.router.Onboarding() {
		return fmt.Sprintf("onboarding:%d", m.router.Page()), onboardingMarkdown(m.router.CurrentPage())
	}
	top, ok := m.router.Top()
	if !ok || top.Kind != ModalReport {
		return "", ""
	}
	c, ok := m.State.Campaign(top.ID)
	if !ok {
		return "", ""
	}
	return reportKey(top.ID), reportMarkdown(c, m.State.Users)
}

func reportKey(id int64) string {
	return fmt.Sprintf("report:%d", id)
}
