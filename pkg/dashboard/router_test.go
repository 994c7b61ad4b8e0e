package dashboard

import (
	"errors"
	"testing"
)

// fakeGate is an in-memory OnboardingGate
type fakeGate struct {
	pending  bool
	err      error
	complete int
}

func (g *fakeGate) Pending() bool { return g.pending }

func (g *fakeGate) Complete() error {
	if g.err != nil {
		return g.err
	}
	g.complete++
	g.pending = false
	return nil
}

func TestRouterInitialPhase(t *testing.T) {
	tests := []struct {
		name string
		gate OnboardingGate
		want Phase
	}{
		{"nil gate", nil, PhaseDashboard},
		{"pending", &fakeGate{pending: true}, PhaseOnboarding},
		{"completed", &fakeGate{pending: false}, PhaseDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(tt.gate)
			if r.Phase() != tt.want {
				t.Errorf("Phase() = %v, want %v", r.Phase(), tt.want)
			}
			if r.ActiveView() != ViewDashboard || r.ModalOpen() {
				t.Errorf("initial dashboard state = %v, stack %v", r.ActiveView(), r.Stack())
			}
		})
	}
}

func TestCompleteOnboardingPersistsOnce(t *testing.T) {
	g := &fakeGate{pending: true}
	r := NewRouter(g)

	if err := r.SelectView(ViewUsers); !errors.Is(err, ErrOnboardingPending) {
		t.Errorf("SelectView during onboarding: %v", err)
	}
	if err := r.OpenModal(HelpModal()); !errors.Is(err, ErrOnboardingPending) {
		t.Errorf("OpenModal during onboarding: %v", err)
	}

	if err := r.CompleteOnboarding(); err != nil {
		t.Fatal(err)
	}
	if err := r.CompleteOnboarding(); err != nil {
		t.Fatal(err)
	}
	if g.complete != 1 {
		t.Errorf("gate completed %d times, want 1", g.complete)
	}
	if r.Onboarding() {
		t.Error("still onboarding")
	}
}

func TestCompleteOnboardingFailureStays(t *testing.T) {
	r := NewRouter(&fakeGate{pending: true, err: errors.New("read-only fs")})
	if err := r.CompleteOnboarding(); err == nil {
		t.Fatal("expected persist error")
	}
	if !r.Onboarding() {
		t.Error("router left onboarding without persisting the flag")
	}
}

func TestOnboardingPages(t *testing.T) {
	r := NewRouter(&fakeGate{pending: true})
	r.PrevPage()
	if r.Page() != 0 {
		t.Errorf("PrevPage on first page = %d", r.Page())
	}
	for i := 0; i < len(OnboardingPages)-1; i++ {
		if err := r.NextPage(); err != nil {
			t.Fatal(err)
		}
	}
	if !r.LastPage() || !r.Onboarding() {
		t.Fatalf("page %d, onboarding %v", r.Page(), r.Onboarding())
	}
	if len(r.CurrentPage().Features) == 0 {
		t.Error("last page should list features")
	}
	if err := r.NextPage(); err != nil {
		t.Fatal(err)
	}
	if r.Onboarding() {
		t.Error("next on the last page should complete onboarding")
	}
}

func TestSelectViewKeepsModalStack(t *testing.T) {
	r := NewRouter(nil)
	if err := r.OpenModal(ReportModal(4)); err != nil {
		t.Fatal(err)
	}
	if err := r.SelectView(ViewAnalytics); err != nil {
		t.Fatal(err)
	}
	if top, _ := r.Top(); top != ReportModal(4) {
		t.Errorf("top = %v after view change", top)
	}
	if err := r.SelectView(View(42)); err == nil {
		t.Error("expected error for unknown view")
	}
	if r.ActiveView() != ViewAnalytics {
		t.Errorf("unknown view changed active view to %v", r.ActiveView())
	}
}

func TestViewCycling(t *testing.T) {
	r := NewRouter(nil)
	_ = r.PrevView()
	if r.ActiveView() != ViewSettings {
		t.Errorf("PrevView from dashboard = %v", r.ActiveView())
	}
	_ = r.NextView()
	if r.ActiveView() != ViewDashboard {
		t.Errorf("NextView from settings = %v", r.ActiveView())
	}
}

func TestModalStack(t *testing.T) {
	r := NewRouter(nil)

	r.CloseModal() // empty stack is a no-op
	if r.ModalOpen() {
		t.Fatal("modal open after closing empty stack")
	}

	_ = r.OpenModal(ReportModal(1))
	_ = r.OpenModal(ReportModal(1))
	if r.ModalDepth() != 1 {
		t.Errorf("duplicate open stacked: depth %d", r.ModalDepth())
	}

	_ = r.OpenModal(UserDetailModal(2))
	_ = r.OpenModal(CreateCampaignModal())
	_ = r.OpenModal(HelpModal())
	if err := r.OpenModal(ReportModal(9)); !errors.Is(err, ErrModalStackFull) {
		t.Errorf("open past max depth: %v", err)
	}
	if r.ModalDepth() != MaxModalDepth {
		t.Errorf("depth = %d", r.ModalDepth())
	}

	if r.CloseModalKind(ModalReport) {
		t.Error("CloseModalKind popped a modal that was not on top")
	}
	if !r.CloseModalKind(ModalHelp) {
		t.Error("CloseModalKind(help) = false")
	}
	r.CloseModal()
	if top, _ := r.Top(); top != UserDetailModal(2) {
		t.Errorf("top = %v", top)
	}
}

func TestParseView(t *testing.T) {
	for _, v := range allViews {
		got, ok := ParseView(v.String())
		if !ok || got != v {
			t.Errorf("ParseView(%q) = %v, %v", v.String(), got, ok)
		}
	}
	if _, ok := ParseView("reports"); ok {
		t.Error("ParseView accepted unknown name")
	}
	if ViewUsers.Title() != "Users" {
		t.Errorf("Title = %q", ViewUsers.Title())
	}
}
