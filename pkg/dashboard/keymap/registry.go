// Package keymap maps key presses to dashboard commands per UI context.
package keymap

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

const sequenceTimeout = 500 * time.Millisecond

// Context represents a UI context for keybindings
type Context string

const (
	ContextGlobal     Context = "global"
	ContextMain       Context = "main"
	ContextModal      Context = "modal"       // report or user detail modal
	ContextWizard     Context = "wizard"      // create campaign wizard (huh form has focus)
	ContextSearch     Context = "search"      // search input focused
	ContextOnboarding Context = "onboarding"  // first-run intro
	ContextHelp       Context = "help"        // help modal
)

// Command represents a named command that can be triggered by key bindings
type Command string

const (
	// Global
	CmdQuit       Command = "quit"
	CmdToggleHelp Command = "toggle-help"
	CmdRefresh    Command = "refresh"

	// Views
	CmdNextView      Command = "next-view"
	CmdPrevView      Command = "prev-view"
	CmdViewDashboard Command = "view-dashboard"
	CmdViewCampaigns Command = "view-campaigns"
	CmdViewUsers     Command = "view-users"
	CmdViewAnalytics Command = "view-analytics"
	CmdViewSettings  Command = "view-settings"

	// Cursor
	CmdCursorDown   Command = "cursor-down"
	CmdCursorUp     Command = "cursor-up"
	CmdCursorTop    Command = "cursor-top"
	CmdCursorBottom Command = "cursor-bottom"
	CmdScrollDown   Command = "scroll-down"
	CmdScrollUp     Command = "scroll-up"

	// Actions
	CmdOpenDetails   Command = "open-details"
	CmdNewCampaign   Command = "new-campaign"
	CmdLaunch        Command = "launch"
	CmdSimulateClick Command = "simulate-click"
	CmdSearch        Command = "search"
	CmdClose         Command = "close"

	// Search
	CmdSearchConfirm Command = "search-confirm"
	CmdSearchCancel  Command = "search-cancel"
	CmdSearchClear   Command = "search-clear"

	// Wizard
	CmdWizardNext   Command = "wizard-next"
	CmdWizardBack   Command = "wizard-back"
	CmdWizardSubmit Command = "wizard-submit"
	CmdWizardCancel Command = "wizard-cancel"

	// Onboarding
	CmdOnboardingNext   Command = "onboarding-next"
	CmdOnboardingPrev   Command = "onboarding-prev"
	CmdOnboardingFinish Command = "onboarding-finish"
)

// Binding maps a key or key sequence to a command in a specific context
type Binding struct {
	Key         string  // e.g., "tab", "ctrl+s", "g g"
	Command     Command // Command ID
	Context     Context
	Description string // Human-readable description for help text
}

// Registry manages key bindings and command dispatch
type Registry struct {
	bindings      map[Context][]Binding // context -> bindings
	userOverrides map[string]Command    // "context:key" -> command
	pendingKey    string
	pendingTime   time.Time
	mu            sync.RWMutex
}

// NewRegistry creates a new keymap registry
func NewRegistry() *Registry {
	return &Registry{
		bindings:      make(map[Context][]Binding),
		userOverrides: make(map[string]Command),
	}
}

// RegisterBindings adds key bindings
func (r *Registry) RegisterBindings(bindings []Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bindings {
		r.bindings[b.Context] = append(r.bindings[b.Context], b)
	}
}

// SetUserOverride sets a user-configured key override for a specific context
func (r *Registry) SetUserOverride(context Context, key string, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userOverrides[string(context)+":"+key] = cmd
}

// Lookup finds the command for a key in the active context.
// Precedence: user overrides, context bindings, global bindings.
func (r *Registry) Lookup(key tea.KeyMsg, activeContext Context) (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keyStr := KeyToString(key)

	if r.pendingKey != "" {
		if time.Since(r.pendingTime) < sequenceTimeout {
			seq := r.pendingKey + " " + keyStr
			r.pendingKey = ""
			if cmd, found := r.findCommand(seq, activeContext); found {
				return cmd, true
			}
		} else {
			r.pendingKey = ""
		}
	}

	if r.isSequenceStart(keyStr, activeContext) {
		r.pendingKey = keyStr
		r.pendingTime = time.Now()
		return "", false
	}

	return r.findCommand(keyStr, activeContext)
}

func (r *Registry) findCommand(key string, activeContext Context) (Command, bool) {
	if activeContext != "" && activeContext != ContextGlobal {
		if cmd, ok := r.userOverrides[string(activeContext)+":"+key]; ok {
			return cmd, true
		}
	}
	if cmd, ok := r.userOverrides[string(ContextGlobal)+":"+key]; ok {
		return cmd, true
	}

	if activeContext != "" && activeContext != ContextGlobal {
		if cmd, found := r.findInContext(key, activeContext); found {
			return cmd, true
		}
		// Text-entry contexts keep single characters for the input.
		if activeContext.capturesText() && utf8.RuneCountInString(key) == 1 {
			return "", false
		}
	}

	return r.findInContext(key, ContextGlobal)
}

func (c Context) capturesText() bool {
	return c == ContextSearch || c == ContextWizard
}

func (r *Registry) findInContext(key string, context Context) (Command, bool) {
	for _, b := range r.bindings[context] {
		if b.Key == key {
			return b.Command, true
		}
	}
	return "", false
}

// isSequenceStart checks if this key could start a multi-key sequence
func (r *Registry) isSequenceStart(key string, activeContext Context) bool {
	prefix := key + " "

	contexts := []Context{ContextGlobal}
	if activeContext != "" && activeContext != ContextGlobal {
		contexts = append(contexts, activeContext)
	}

	for _, ctx := range contexts {
		for _, b := range r.bindings[ctx] {
			if strings.HasPrefix(b.Key, prefix) {
				return true
			}
		}
	}

	for k := range r.userOverrides {
		parts := strings.SplitN(k, ":", 2)
		if len(parts) == 2 && strings.HasPrefix(parts[1], prefix) {
			return true
		}
	}

	return false
}

// PendingKey returns the current pending key (for UI display)
func (r *Registry) PendingKey() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pendingKey != "" && time.Since(r.pendingTime) < sequenceTimeout {
		return r.pendingKey
	}
	return ""
}

// KeyToString converts a tea.KeyMsg to a string representation
func KeyToString(key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeyCtrlC:
		return "ctrl+c"
	case tea.KeyCtrlN:
		return "ctrl+n"
	case tea.KeyCtrlP:
		return "ctrl+p"
	case tea.KeyCtrlR:
		return "ctrl+r"
	case tea.KeyCtrlS:
		return "ctrl+s"
	case tea.KeyCtrlU:
		return "ctrl+u"
	case tea.KeyCtrlD:
		return "ctrl+d"
	case tea.KeyTab:
		return "tab"
	case tea.KeyShiftTab:
		return "shift+tab"
	case tea.KeyEnter:
		return "enter"
	case tea.KeyEsc:
		return "esc"
	case tea.KeySpace:
		return "space"
	case tea.KeyBackspace:
		return "backspace"
	case tea.KeyUp:
		return "up"
	case tea.KeyDown:
		return "down"
	case tea.KeyLeft:
		return "left"
	case tea.KeyRight:
		return "right"
	case tea.KeyHome:
		return "home"
	case tea.KeyEnd:
		return "end"
	case tea.KeyPgUp:
		return "pgup"
	case tea.KeyPgDown:
		return "pgdown"
	case tea.KeyRunes:
		return string(key.Runes)
	default:
		return key.String()
	}
}
