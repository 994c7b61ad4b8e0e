package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

// MaxModalDepth bounds the modal stack
const MaxModalDepth = 4

var (
	// ErrOnboardingPending is returned for dashboard transitions attempted
	// before onboarding is complete
	ErrOnboardingPending = errors.New("onboarding not completed")
	// ErrModalStackFull is returned when opening a modal past MaxModalDepth
	ErrModalStackFull = errors.New("modal stack full")
)

// Phase is the top-level router state
type Phase int

const (
	PhaseOnboarding Phase = iota
	PhaseDashboard
)

// View is a dashboard tab
type View int

const (
	ViewDashboard View = iota
	ViewCampaigns
	ViewUsers
	ViewAnalytics
	ViewSettings
)

var allViews = []View{ViewDashboard, ViewCampaigns, ViewUsers, ViewAnalytics, ViewSettings}

var viewNames = map[View]string{
	ViewDashboard: "dashboard",
	ViewCampaigns: "campaigns",
	ViewUsers:     "users",
	ViewAnalytics: "analytics",
	ViewSettings:  "settings",
}

func (v View) String() string {
	if s, ok := viewNames[v]; ok {
		return s
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// Title is the tab label
func (v View) Title() string {
	s := v.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseView maps a persisted view name back to a View
func ParseView(s string) (View, bool) {
	for v, name := range viewNames {
		if name == s {
			return v, true
		}
	}
	return ViewDashboard, false
}

// ModalKind tags a Modal
type ModalKind int

const (
	ModalCreateCampaign ModalKind = iota
	ModalReport
	ModalUserDetail
	ModalHelp
)

// Modal is an entry on the modal stack. ID is the campaign id for
// ModalReport and the user id for ModalUserDetail.
type Modal struct {
	Kind ModalKind
	ID   int64
}

func CreateCampaignModal() Modal         { return Modal{Kind: ModalCreateCampaign} }
func ReportModal(campaignID int64) Modal { return Modal{Kind: ModalReport, ID: campaignID} }
func UserDetailModal(userID int64) Modal { return Modal{Kind: ModalUserDetail, ID: userID} }
func HelpModal() Modal                   { return Modal{Kind: ModalHelp} }

func (m Modal) String() string {
	switch m.Kind {
	case ModalCreateCampaign:
		return "create-campaign"
	case ModalReport:
		return fmt.Sprintf("report(%d)", m.ID)
	case ModalUserDetail:
		return fmt.Sprintf("user(%d)", m.ID)
	case ModalHelp:
		return "help"
	}
	return "modal"
}

// OnboardingGate is the persisted first-run flag
type OnboardingGate interface {
	Pending() bool
	Complete() error
}

// OnboardingPage is one screen of the first-run intro
type OnboardingPage struct {
	Title       string
	Description string
	Features    []string
}

// OnboardingPages is the intro shown before the dashboard
var OnboardingPages = []OnboardingPage{
	{
		Title:       "Welcome to Project Sentinel",
		Description: "Your AI-powered phishing simulation platform. Train your team to recognize and report phishing attacks.",
	},
	{
		Title:       "Manage Your Team",
		Description: "Import users, organize them by department, and track individual risk scores.",
	},
	{
		Title:       "Real-time Analytics",
		Description: "Monitor campaign performance, click rates, and training progress with live dashboards.",
	},
	{
		Title:       "Ready to Start",
		Description: "Let's create your first phishing simulation campaign. It only takes 2 minutes!",
		Features: []string{
			"Create realistic phishing emails",
			"Track user interactions in real-time",
			"Generate comprehensive reports",
		},
	},
}

// Router is the view/modal state machine. It starts in PhaseOnboarding
// unless the gate says the intro was already completed.
type Router struct {
	gate  OnboardingGate
	phase Phase
	page  int

	view  View
	stack []Modal
}

// NewRouter creates a router. A nil gate skips onboarding.
func NewRouter(gate OnboardingGate) *Router {
	r := &Router{gate: gate, phase: PhaseDashboard, view: ViewDashboard}
	if gate != nil && gate.Pending() {
		r.phase = PhaseOnboarding
	}
	return r
}

// Phase returns the current top-level state
func (r *Router) Phase() Phase { return r.phase }

// Onboarding reports whether the intro is showing
func (r *Router) Onboarding() bool { return r.phase == PhaseOnboarding }

// CompleteOnboarding persists the flag and enters Dashboard{dashboard, []}.
// If persisting fails the router stays in onboarding.
func (r *Router) CompleteOnboarding() error {
	if r.phase != PhaseOnboarding {
		return nil
	}
	if r.gate != nil {
		if err := r.gate.Complete(); err != nil {
			return err
		}
	}
	r.phase = PhaseDashboard
	r.view = ViewDashboard
	r.stack = nil
	r.page = 0
	return nil
}

// Page returns the current onboarding page index
func (r *Router) Page() int { return r.page }

// CurrentPage returns the onboarding page being shown
func (r *Router) CurrentPage() OnboardingPage { return OnboardingPages[r.page] }

// LastPage reports whether the intro is on its final page
func (r *Router) LastPage() bool { return r.page == len(OnboardingPages)-1 }

// NextPage advances the intro; on the last page it completes onboarding
func (r *Router) NextPage() error {
	if r.phase != PhaseOnboarding {
		return nil
	}
	if r.LastPage() {
		return r.CompleteOnboarding()
	}
	r.page++
	return nil
}

// PrevPage steps the intro back, floored at the first page
func (r *Router) PrevPage() {
	if r.page > 0 {
		r.page--
	}
}

// ActiveView returns the view rendered beneath any modal
func (r *Router) ActiveView() View { return r.view }

// SelectView switches the active view. The modal stack is untouched.
func (r *Router) SelectView(v View) error {
	if r.phase == PhaseOnboarding {
		return ErrOnboardingPending
	}
	if _, ok := viewNames[v]; !ok {
		return fmt.Errorf("unknown view %d", int(v))
	}
	r.view = v
	return nil
}

// NextView cycles to the following tab
func (r *Router) NextView() error {
	return r.SelectView(allViews[(int(r.view)+1)%len(allViews)])
}

// PrevView cycles to the preceding tab
func (r *Router) PrevView() error {
	return r.SelectView(allViews[(int(r.view)+len(allViews)-1)%len(allViews)])
}

// OpenModal pushes m. Opening the modal already on top is a no-op so a
// fast double-open does not stack duplicates.
func (r *Router) OpenModal(m Modal) error {
	if r.phase == PhaseOnboarding {
		return ErrOnboardingPending
	}
	if top, ok := r.Top(); ok && top == m {
		return nil
	}
	if len(r.stack) >= MaxModalDepth {
		return ErrModalStackFull
	}
	r.stack = append(r.stack, m)
	return nil
}

// CloseModal pops the top modal; no-op when the stack is empty
func (r *Router) CloseModal() {
	if len(r.stack) == 0 {
		return
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// CloseModalKind pops the top modal only if it has the given kind
func (r *Router) CloseModalKind(kind ModalKind) bool {
	top, ok := r.Top()
	if !ok || top.Kind != kind {
		return false
	}
	r.CloseModal()
	return true
}

// Top returns the visible modal, if any
func (r *Router) Top() (Modal, bool) {
	if len(r.stack) == 0 {
		return Modal{}, false
	}
	return r.stack[len(r.stack)-1], true
}

// ModalOpen returns true if any modal is open
func (r *Router) ModalOpen() bool { return len(r.stack) > 0 }

// ModalDepth returns the current modal stack depth
func (r *Router) ModalDepth() int { return len(r.stack) }

// Stack returns a copy of the modal stack, bottom first
func (r *Router) Stack() []Modal {
	out := make([]Modal, len(r.stack))
	copy(out, r.stack)
	return out
}
