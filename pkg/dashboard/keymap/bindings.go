package keymap

// DefaultBindings returns the default key bindings for the dashboard.
func DefaultBindings() []Binding {
	return []Binding{
		// ============================================================
		// GLOBAL BINDINGS
		// ============================================================
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextGlobal, Description: "Toggle help"},
		{Key: "ctrl+r", Command: CmdRefresh, Context: ContextGlobal, Description: "Refresh now"},

		// ============================================================
		// MAIN VIEW BINDINGS
		// Active when no modal is open and not in search mode
		// ============================================================
		{Key: "q", Command: CmdQuit, Context: ContextMain, Description: "Quit"},
		{Key: "tab", Command: CmdNextView, Context: ContextMain, Description: "Next view"},
		{Key: "shift+tab", Command: CmdPrevView, Context: ContextMain, Description: "Previous view"},
		{Key: "1", Command: CmdViewDashboard, Context: ContextMain, Description: "Dashboard"},
		{Key: "2", Command: CmdViewCampaigns, Context: ContextMain, Description: "Campaigns"},
		{Key: "3", Command: CmdViewUsers, Context: ContextMain, Description: "Users"},
		{Key: "4", Command: CmdViewAnalytics, Context: ContextMain, Description: "Analytics"},
		{Key: "5", Command: CmdViewSettings, Context: ContextMain, Description: "Settings"},

		// Cursor movement
		{Key: "j", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "down", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "k", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "up", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "G", Command: CmdCursorBottom, Context: ContextMain, Description: "Go to bottom"},
		{Key: "g g", Command: CmdCursorTop, Context: ContextMain, Description: "Go to top"},
		{Key: "home", Command: CmdCursorTop, Context: ContextMain, Description: "Go to top"},
		{Key: "end", Command: CmdCursorBottom, Context: ContextMain, Description: "Go to bottom"},

		// Actions
		{Key: "enter", Command: CmdOpenDetails, Context: ContextMain, Description: "Open details"},
		{Key: "n", Command: CmdNewCampaign, Context: ContextMain, Description: "New campaign"},
		{Key: "L", Command: CmdLaunch, Context: ContextMain, Description: "Launch campaign"},
		{Key: "c", Command: CmdSimulateClick, Context: ContextMain, Description: "Simulate click"},
		{Key: "r", Command: CmdRefresh, Context: ContextMain, Description: "Refresh"},
		{Key: "/", Command: CmdSearch, Context: ContextMain, Description: "Search"},
		{Key: "esc", Command: CmdSearchClear, Context: ContextMain, Description: "Clear search filter"},

		// ============================================================
		// MODAL BINDINGS (report / user detail)
		// ============================================================
		{Key: "esc", Command: CmdClose, Context: ContextModal, Description: "Close modal"},
		{Key: "q", Command: CmdClose, Context: ContextModal, Description: "Close modal"},
		{Key: "j", Command: CmdScrollDown, Context: ContextModal, Description: "Scroll down"},
		{Key: "down", Command: CmdScrollDown, Context: ContextModal, Description: "Scroll down"},
		{Key: "k", Command: CmdScrollUp, Context: ContextModal, Description: "Scroll up"},
		{Key: "up", Command: CmdScrollUp, Context: ContextModal, Description: "Scroll up"},
		{Key: "L", Command: CmdLaunch, Context: ContextModal, Description: "Launch campaign"},
		{Key: "c", Command: CmdSimulateClick, Context: ContextModal, Description: "Simulate click"},
		{Key: "n", Command: CmdNewCampaign, Context: ContextModal, Description: "New campaign"},
		{Key: "r", Command: CmdRefresh, Context: ContextModal, Description: "Refresh"},

		// ============================================================
		// WIZARD BINDINGS
		// Everything not listed here goes to the form fields
		// ============================================================
		{Key: "ctrl+s", Command: CmdWizardSubmit, Context: ContextWizard, Description: "Create campaign"},
		{Key: "ctrl+n", Command: CmdWizardNext, Context: ContextWizard, Description: "Next step"},
		{Key: "ctrl+p", Command: CmdWizardBack, Context: ContextWizard, Description: "Previous step"},
		{Key: "esc", Command: CmdWizardCancel, Context: ContextWizard, Description: "Cancel"},

		// ============================================================
		// SEARCH MODE BINDINGS
		// ============================================================
		{Key: "enter", Command: CmdSearchConfirm, Context: ContextSearch, Description: "Apply search"},
		{Key: "esc", Command: CmdSearchCancel, Context: ContextSearch, Description: "Cancel search"},
		{Key: "ctrl+u", Command: CmdSearchClear, Context: ContextSearch, Description: "Clear search"},

		// ============================================================
		// ONBOARDING BINDINGS
		// ============================================================
		{Key: "right", Command: CmdOnboardingNext, Context: ContextOnboarding, Description: "Next page"},
		{Key: "l", Command: CmdOnboardingNext, Context: ContextOnboarding, Description: "Next page"},
		{Key: "enter", Command: CmdOnboardingNext, Context: ContextOnboarding, Description: "Next page"},
		{Key: "space", Command: CmdOnboardingNext, Context: ContextOnboarding, Description: "Next page"},
		{Key: "left", Command: CmdOnboardingPrev, Context: ContextOnboarding, Description: "Previous page"},
		{Key: "h", Command: CmdOnboardingPrev, Context: ContextOnboarding, Description: "Previous page"},
		{Key: "s", Command: CmdOnboardingFinish, Context: ContextOnboarding, Description: "Skip intro"},
		{Key: "esc", Command: CmdOnboardingFinish, Context: ContextOnboarding, Description: "Skip intro"},

		// ============================================================
		// HELP MODAL BINDINGS
		// ============================================================
		{Key: "esc", Command: CmdClose, Context: ContextHelp, Description: "Close help"},
		{Key: "q", Command: CmdClose, Context: ContextHelp, Description: "Close help"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
		{Key: "j", Command: CmdScrollDown, Context: ContextHelp, Description: "Scroll down"},
		{Key: "down", Command: CmdScrollDown, Context: ContextHelp, Description: "Scroll down"},
		{Key: "k", Command: CmdScrollUp, Context: ContextHelp, Description: "Scroll up"},
		{Key: "up", Command: CmdScrollUp, Context: ContextHelp, Description: "Scroll up"},
	}
}

// RegisterDefaults registers all default bindings with the registry
func RegisterDefaults(r *Registry) {
	r.RegisterBindings(DefaultBindings())
}
