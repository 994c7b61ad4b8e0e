package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventType is the tag of a push-channel message
type EventType string

const (
	EventCampaignCreated  EventType = "campaign_created"
	EventCampaignUpdated  EventType = "campaign_updated"
	EventCampaignLaunched EventType = "campaign_launched"
	EventUserClicked      EventType = "user_clicked"
	EventUserUpdated      EventType = "user_updated"
)

// ErrUnknownEvent is returned when decoding an event type the client does not handle
var ErrUnknownEvent = errors.New("unknown event type")

// Event is a push-channel message {event, data}
type Event struct {
	Type       EventType       `json:"event"`
	Data       json.RawMessage `json:"data"`
	ReceivedAt time.Time       `json:"-"`
}

// CampaignPatch is a partial campaign update. Nil fields are left untouched.
type CampaignPatch struct {
	ID         int64      `json:"id"`
	Name       *string    `json:"name,omitempty"`
	Status     *Status    `json:"status,omitempty"`
	Verdict    *Verdict   `json:"verdict,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	Summary    *string    `json:"summary,omitempty"`
	Difficulty *string    `json:"difficulty,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	SentCount  *int       `json:"sent_count,omitempty"`
	ClickCount *int       `json:"click_count,omitempty"`

	// report workflow spellings
	AISummary    *string  `json:"ai_summary,omitempty"`
	AIConfidence *float64 `json:"ai_confidence,omitempty"`
}

// UserPatch is a partial user update
type UserPatch struct {
	ID                int64    `json:"id"`
	Name              *string  `json:"name,omitempty"`
	Email             *string  `json:"email,omitempty"`
	Department        *string  `json:"department,omitempty"`
	RiskScore         *float64 `json:"risk_score,omitempty"`
	CampaignsSent     *int     `json:"campaigns_sent,omitempty"`
	CampaignsClicked  *int     `json:"campaigns_clicked,omitempty"`
	TrainingCompleted *bool    `json:"training_completed,omitempty"`
}

// ClickPatch records that a user clicked a simulated phishing link
type ClickPatch struct {
	CampaignID int64 `json:"campaign_id"`
	UserID     int64 `json:"user_id,omitempty"`
	ClickCount *int  `json:"click_count,omitempty"` // absolute count when the server sends one
}

// Delta is a decoded event. Exactly one of the patch pointers is set.
type Delta struct {
	Type     EventType
	Campaign *CampaignPatch
	User     *UserPatch
	Click    *ClickPatch
}

// EntityID returns the id of the entity the delta targets
func (d Delta) EntityID() int64 {
	switch {
	case d.Campaign != nil:
		return d.Campaign.ID
	case d.Click != nil:
		return d.Click.CampaignID
	case d.User != nil:
		return d.User.ID
	}
	return 0
}

// Decode parses the event payload into its tagged variant
func (e Event) Decode() (Delta, error) {
	d := Delta{Type: e.Type}
	switch e.Type {
	case EventCampaignCreated, EventCampaignUpdated, EventCampaignLaunched:
		var p CampaignPatch
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return d, fmt.Errorf("decode %s: %w", e.Type, err)
		}
		if p.Summary == nil {
			p.Summary = p.AISummary
		}
		if p.Confidence == nil {
			p.Confidence = p.AIConfidence
		}
		if p.Status != nil && !p.Status.Valid() {
			return d, fmt.Errorf("%w: %s: unknown status %q", ErrInvalidEntity, e.Type, *p.Status)
		}
		d.Campaign = &p
	case EventUserClicked:
		var p ClickPatch
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return d, fmt.Errorf("decode %s: %w", e.Type, err)
		}
		if p.CampaignID == 0 {
			// some servers send the campaign as "id"
			var alt struct {
				ID int64 `json:"id"`
			}
			if json.Unmarshal(e.Data, &alt) == nil {
				p.CampaignID = alt.ID
			}
		}
		d.Click = &p
	case EventUserUpdated:
		var p UserPatch
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return d, fmt.Errorf("decode %s: %w", e.Type, err)
		}
		d.User = &p
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	if d.EntityID() <= 0 {
		return d, fmt.Errorf("%w: %s without entity id", ErrInvalidEntity, e.Type)
	}
	return d, nil
}
