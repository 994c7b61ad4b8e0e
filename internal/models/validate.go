package models

import (
	"errors"
	"fmt"
)

// ErrInvalidEntity marks a payload rejected at the service boundary
var ErrInvalidEntity = errors.New("invalid entity")

func invalid(kind string, id int64, format string, args ...any) error {
	return fmt.Errorf("%w: %s %d: %s", ErrInvalidEntity, kind, id, fmt.Sprintf(format, args...))
}

// Validate checks the campaign invariants: a known status, and a verdict plus
// confidence present if and only if the status is the analyzed terminal state.
// A completed campaign may optionally carry either.
func (c Campaign) Validate() error {
	if c.ID <= 0 {
		return invalid("campaign", c.ID, "id must be positive")
	}
	if !c.Status.Valid() {
		return invalid("campaign", c.ID, "unknown status %q", c.Status)
	}
	if c.Status.Analyzed() {
		if c.Verdict == nil || c.Confidence == nil {
			return invalid("campaign", c.ID, "status %s requires verdict and confidence", c.Status)
		}
	} else if c.Status != StatusCompleted && (c.Verdict != nil || c.Confidence != nil) {
		return invalid("campaign", c.ID, "verdict/confidence set on non-analyzed status %s", c.Status)
	}
	if c.Verdict != nil && !c.Verdict.Valid() {
		return invalid("campaign", c.ID, "unknown verdict %q", *c.Verdict)
	}
	if c.Confidence != nil && (*c.Confidence < 0 || *c.Confidence > 1) {
		return invalid("campaign", c.ID, "confidence %v out of [0,1]", *c.Confidence)
	}
	if c.SentCount != nil && *c.SentCount < 0 {
		return invalid("campaign", c.ID, "negative sent count")
	}
	if c.ClickCount != nil && *c.ClickCount < 0 {
		return invalid("campaign", c.ID, "negative click count")
	}
	return nil
}

// Validate checks user invariants
func (u User) Validate() error {
	if u.ID <= 0 {
		return invalid("user", u.ID, "id must be positive")
	}
	if u.RiskScore < 0 || u.RiskScore > 100 {
		return invalid("user", u.ID, "risk score %v out of [0,100]", u.RiskScore)
	}
	if u.CampaignsSent < 0 || u.CampaignsClicked < 0 {
		return invalid("user", u.ID, "negative campaign counters")
	}
	if u.CampaignsClicked > u.CampaignsSent {
		return invalid("user", u.ID, "clicked %d > sent %d", u.CampaignsClicked, u.CampaignsSent)
	}
	return nil
}
