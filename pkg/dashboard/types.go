package dashboard

import (
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/notify"
	"github.com/sentinel-sim/sentinel/internal/syncer"
)

// Minimum terminal size for the full layout
const (
	MinWidth  = 60
	MinHeight = 18
)

// noticeTTL is how long a toast stays in the footer
const noticeTTL = 6 * time.Second

// TickMsg drives clock-dependent rendering (relative times, toast expiry)
type TickMsg time.Time

// feedMsg carries everything published by the background components since
// the last wake-up. Only the newest state and health are kept.
type feedMsg struct {
	State   *syncer.State
	Health  *models.ServiceStatus
	Notices []notify.Notice
}

// RefreshDoneMsg is sent when an out-of-band refresh returns
type RefreshDoneMsg struct {
	Err error
}

// CampaignCreatedMsg carries the result of the wizard's create request
type CampaignCreatedMsg struct {
	Wizard   *Wizard
	Campaign *models.Campaign
	Err      error
}

// ActionResultMsg carries the result of launch / simulate-click
type ActionResultMsg struct {
	Op         string
	CampaignID int64
	Message    string
	Err        error
}

// MarkdownRenderedMsg carries pre-rendered markdown for the report modal or
// the onboarding page
type MarkdownRenderedMsg struct {
	Key      string
	Rendered string
}

// PrefsSavedMsg is sent after a preference write
type PrefsSavedMsg struct {
	Err error
}

// ClearStatusMsg clears the status line
type ClearStatusMsg struct {
	Seq int
}
