package remote

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
)

// campaignWire is the JSON shape of both workflow variants. Report
// endpoints spell summary/confidence with an ai_ prefix.
type campaignWire struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Verdict      *string   `json:"verdict"`
	Confidence   *float64  `json:"confidence"`
	AIConfidence *float64  `json:"ai_confidence"`
	Summary      *string   `json:"summary"`
	AISummary    *string   `json:"ai_summary"`
	Difficulty   string    `json:"difficulty"`
	CreatedAt    time.Time `json:"created_at"`
	SentCount    *int      `json:"sent_count"`
	ClickCount   *int      `json:"click_count"`
}

// toModel converts and validates one entry. A status from the other
// workflow is rejected like any other malformed field.
func (w campaignWire) toModel(workflow models.Workflow) (models.Campaign, error) {
	c := models.Campaign{
		ID:         w.ID,
		Name:       w.Name,
		Status:     models.Status(w.Status),
		Difficulty: models.Difficulty(w.Difficulty),
		CreatedAt:  w.CreatedAt,
		SentCount:  w.SentCount,
		ClickCount: w.ClickCount,
	}
	if w.Verdict != nil {
		v := models.Verdict(*w.Verdict)
		c.Verdict = &v
	}
	c.Confidence = w.Confidence
	if c.Confidence == nil {
		c.Confidence = w.AIConfidence
	}
	switch {
	case w.Summary != nil:
		c.Summary = *w.Summary
	case w.AISummary != nil:
		c.Summary = *w.AISummary
	}
	if err := c.Validate(); err != nil {
		return models.Campaign{}, err
	}
	if c.Status.Workflow() != workflow {
		return models.Campaign{}, fmt.Errorf("%w: campaign %d: status %s outside the %s workflow", models.ErrInvalidEntity, c.ID, c.Status, workflow)
	}
	return c, nil
}

// decodeCampaigns converts wire entries, quarantining any that fail validation.
// Returns the valid campaigns and the number dropped.
func decodeCampaigns(ws []campaignWire, workflow models.Workflow) ([]models.Campaign, int) {
	out := make([]models.Campaign, 0, len(ws))
	dropped := 0
	for _, w := range ws {
		c, err := w.toModel(workflow)
		if err != nil {
			dropped++
			slog.Warn("remote: quarantined campaign", "id", w.ID, "err", err)
			continue
		}
		out = append(out, c)
	}
	return out, dropped
}

// decodeUsers validates users, quarantining malformed entries
func decodeUsers(us []models.User) ([]models.User, int) {
	out := make([]models.User, 0, len(us))
	dropped := 0
	for _, u := range us {
		if err := u.Validate(); err != nil {
			dropped++
			slog.Warn("remote: quarantined user", "id", u.ID, "err", err)
			continue
		}
		out = append(out, u)
	}
	return out, dropped
}

// CreateCampaignRequest is the body for POST /campaigns
type CreateCampaignRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Difficulty   string   `json:"difficulty"`
	TargetUsers  []string `json:"target_users"`
	ScheduleType string   `json:"schedule_type"`
	Recurring    string   `json:"recurring,omitempty"`
	ScheduleDate string   `json:"schedule_date,omitempty"`
}

// reportCreateRequest is the body for POST /api/v1/reports. The report
// service only accepts a raw email, so the campaign fields are folded into it.
type reportCreateRequest struct {
	RawEmail string `json:"raw_email"`
}

// HealthResponse is the response from GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// SimulateClickResponse is the response from POST /simulate-click/{id}
type SimulateClickResponse struct {
	CampaignID int64 `json:"campaign_id"`
	ClickCount int   `json:"click_count"`
}
