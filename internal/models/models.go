package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Workflow selects which remote entity shape the dashboard mirrors
type Workflow string

const (
	WorkflowCampaign Workflow = "campaign" // /campaigns, draft -> completed
	WorkflowReport   Workflow = "report"   // /api/v1/reports, pending -> complete
)

// Status represents campaign/report status
type Status string

const (
	// Campaign workflow
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"

	// Report workflow
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// statusRank orders each workflow. Ranks are only comparable between
// statuses of the same workflow; see Status.Workflow.
var statusRank = map[Status]int{
	StatusDraft:     1,
	StatusScheduled: 2,
	StatusActive:    3,
	StatusCompleted: 4,

	StatusPending:    1,
	StatusProcessing: 2,
	StatusComplete:   3,
	StatusError:      3,
}

// Rank returns the position of the status along its workflow (0 = unknown)
func (s Status) Rank() int {
	return statusRank[s]
}

// Valid returns true for any known status
func (s Status) Valid() bool {
	return statusRank[s] > 0
}

// Workflow returns the workflow the status belongs to
func (s Status) Workflow() Workflow {
	switch s {
	case StatusPending, StatusProcessing, StatusComplete, StatusError:
		return WorkflowReport
	default:
		return WorkflowCampaign
	}
}

// Terminal returns true when no further transition is possible
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusComplete, StatusError:
		return true
	}
	return false
}

// Analyzed returns true for the terminal state that carries a verdict
func (s Status) Analyzed() bool {
	return s == StatusComplete
}

// Verdict is the terminal classification of an analyzed report
type Verdict string

const (
	VerdictMalicious Verdict = "Malicious"
	VerdictSpam      Verdict = "Spam"
	VerdictSafe      Verdict = "Safe"
)

// Valid returns true for a known verdict
func (v Verdict) Valid() bool {
	switch v {
	case VerdictMalicious, VerdictSpam, VerdictSafe:
		return true
	}
	return false
}

// Difficulty controls how convincing the simulated phishing email is
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ScheduleType controls when a new campaign is sent
type ScheduleType string

const (
	ScheduleNow       ScheduleType = "now"
	ScheduleAt        ScheduleType = "scheduled"
	ScheduleRecurring ScheduleType = "recurring"
)

// Campaign represents a phishing-simulation campaign (or an analyzed report
// when mirroring the report workflow)
type Campaign struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name,omitempty"`
	Status      Status     `json:"status"`
	Verdict     *Verdict   `json:"verdict,omitempty"`
	Confidence  *float64   `json:"confidence,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	SentCount   *int       `json:"sent_count,omitempty"`
	ClickCount  *int       `json:"click_count,omitempty"`
	Provisional bool       `json:"-"` // inserted locally, awaiting snapshot confirmation
}

// Title returns a display name, falling back to the id
func (c Campaign) Title() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return "Campaign #" + strconv.FormatInt(c.ID, 10)
}

// ClickRate returns clicks/sent in [0,1], or 0 when nothing was sent
func (c Campaign) ClickRate() float64 {
	if c.SentCount == nil || *c.SentCount == 0 || c.ClickCount == nil {
		return 0
	}
	return float64(*c.ClickCount) / float64(*c.SentCount)
}

// Clone returns a deep copy so pointer fields are never shared between
// canonical states
func (c Campaign) Clone() Campaign {
	out := c
	if c.Verdict != nil {
		v := *c.Verdict
		out.Verdict = &v
	}
	if c.Confidence != nil {
		f := *c.Confidence
		out.Confidence = &f
	}
	if c.SentCount != nil {
		n := *c.SentCount
		out.SentCount = &n
	}
	if c.ClickCount != nil {
		n := *c.ClickCount
		out.ClickCount = &n
	}
	return out
}

// RiskLevel buckets a user's risk score
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// User represents a targeted employee (read-only mirror of the remote service)
type User struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Department        string  `json:"department"`
	RiskScore         float64 `json:"risk_score"`
	CampaignsSent     int     `json:"campaigns_sent"`
	CampaignsClicked  int     `json:"campaigns_clicked"`
	TrainingCompleted bool    `json:"training_completed"`
}

// HighRiskThreshold is the risk score above which a user counts as high risk
const HighRiskThreshold = 70

// RiskLevel returns the bucket for the user's risk score
func (u User) RiskLevel() RiskLevel {
	switch {
	case u.RiskScore > HighRiskThreshold:
		return RiskHigh
	case u.RiskScore > 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// TopRisk returns up to n users by descending risk score
func TopRisk(users []User, n int) []User {
	sorted := append([]User(nil), users...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RiskScore > sorted[j].RiskScore
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Stats is the aggregate shown on the dashboard header
type Stats struct {
	TotalCampaigns  int     `json:"total_campaigns"`
	ActiveCampaigns int     `json:"active_campaigns"`
	HighRiskUsers   int     `json:"high_risk_users"`
	AvgClickRate    float64 `json:"avg_click_rate"`
}

// VerdictCounts tallies analyzed reports by verdict
type VerdictCounts struct {
	Malicious int
	Spam      int
	Safe      int
}

// ServiceStatus is the health of the remote service
type ServiceStatus string

const (
	ServiceHealthy  ServiceStatus = "healthy"
	ServiceDegraded ServiceStatus = "degraded"
	ServiceOffline  ServiceStatus = "offline"
)

// Label returns the indicator text for the status
func (s ServiceStatus) Label() string {
	switch s {
	case ServiceDegraded:
		return "Degraded Performance"
	case ServiceOffline:
		return "Service Offline"
	default:
		return "All Systems Operational"
	}
}

// Config represents the local config state
type Config struct {
	OnboardingCompleted bool   `json:"onboarding_completed,omitempty"`
	LastView            string `json:"last_view,omitempty"`
	SearchQuery         string `json:"search_query,omitempty"`
	APIURL              string `json:"api_url,omitempty"`
}

// SortNewestFirst orders campaigns by creation time descending, id breaking
// ties
func SortNewestFirst(campaigns []Campaign) {
	sort.Slice(campaigns, func(i, j int) bool {
		a, b := campaigns[i], campaigns[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
