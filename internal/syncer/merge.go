package syncer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
)

// maxPendingDeltas bounds the replay log when snapshots keep failing
const maxPendingDeltas = 1024

// Snapshot is one complete poll result. It is authoritative and exhaustive
// as of FetchStartedAt.
type Snapshot struct {
	Campaigns      []models.Campaign
	Users          []models.User
	Stats          *models.Stats
	Quarantined    int
	FetchStartedAt time.Time
}

// pendingDelta is a delta remembered so it can be replayed over a snapshot
// whose fetch started before the delta arrived.
type pendingDelta struct {
	at    time.Time
	delta models.Delta
	local *models.Campaign // optimistic insert from a local create
}

// canonical is owned by the merge lock; readers only ever see State copies.
type canonical struct {
	workflow  models.Workflow
	campaigns map[int64]models.Campaign
	users     map[int64]models.User
	pending   []pendingDelta
}

func newCanonical(workflow models.Workflow) *canonical {
	return &canonical{
		workflow:  workflow,
		campaigns: make(map[int64]models.Campaign),
		users:     make(map[int64]models.User),
	}
}

// replaceWith installs a snapshot, then replays every delta that arrived
// strictly after the fetch started. Older deltas are discarded since the
// snapshot already reflects them.
func (c *canonical) replaceWith(s Snapshot) {
	campaigns := make(map[int64]models.Campaign, len(s.Campaigns))
	for _, camp := range s.Campaigns {
		camp = camp.Clone()
		camp.Provisional = false
		campaigns[camp.ID] = camp
	}
	users := make(map[int64]models.User, len(s.Users))
	for _, u := range s.Users {
		users[u.ID] = u
	}

	kept := c.pending[:0]
	for _, p := range c.pending {
		if p.at.After(s.FetchStartedAt) {
			kept = append(kept, p)
		}
	}
	c.campaigns = campaigns
	c.users = users
	c.pending = kept

	for _, p := range c.pending {
		if p.local != nil {
			c.insertLocal(*p.local)
			continue
		}
		if err := c.apply(p.delta); err != nil {
			slog.Debug("sync: replay dropped delta", "type", p.delta.Type, "id", p.delta.EntityID(), "err", err)
		}
	}
}

func (c *canonical) remember(p pendingDelta) {
	c.pending = append(c.pending, p)
	if over := len(c.pending) - maxPendingDeltas; over > 0 {
		c.pending = append(c.pending[:0], c.pending[over:]...)
	}
}

// apply merges one delta by id. The candidate entity is validated before it
// is installed, so a rejected delta leaves the collection untouched.
func (c *canonical) apply(d models.Delta) error {
	switch {
	case d.Campaign != nil:
		p := d.Campaign
		if d.Type == models.EventCampaignLaunched && p.Status == nil && c.workflow == models.WorkflowCampaign {
			cp := *p
			active := models.StatusActive
			cp.Status = &active
			p = &cp
		}
		return c.applyCampaign(p)
	case d.Click != nil:
		return c.applyClick(d.Click)
	case d.User != nil:
		return c.applyUser(d.User)
	}
	return fmt.Errorf("empty delta %s", d.Type)
}

func (c *canonical) initialStatus() models.Status {
	if c.workflow == models.WorkflowReport {
		return models.StatusPending
	}
	return models.StatusDraft
}

func (c *canonical) applyCampaign(p *models.CampaignPatch) error {
	if p.Status != nil && p.Status.Workflow() != c.workflow {
		return fmt.Errorf("%w: campaign %d: status %s outside the %s workflow", models.ErrInvalidEntity, p.ID, *p.Status, c.workflow)
	}
	cur, ok := c.campaigns[p.ID]
	if ok {
		cur = cur.Clone()
	} else {
		cur = models.Campaign{ID: p.ID, Status: c.initialStatus(), Provisional: true}
	}

	if p.Name != nil {
		cur.Name = *p.Name
	}
	if p.Status != nil && advances(cur.Status, *p.Status) {
		cur.Status = *p.Status
	}
	if p.Verdict != nil {
		v := *p.Verdict
		cur.Verdict = &v
	}
	if p.Confidence != nil {
		f := *p.Confidence
		cur.Confidence = &f
	}
	if p.Summary != nil {
		cur.Summary = *p.Summary
	}
	if p.Difficulty != nil {
		cur.Difficulty = models.Difficulty(*p.Difficulty)
	}
	if p.CreatedAt != nil {
		cur.CreatedAt = *p.CreatedAt
	}
	if p.SentCount != nil {
		n := *p.SentCount
		cur.SentCount = &n
	}
	if p.ClickCount != nil {
		n := *p.ClickCount
		cur.ClickCount = &n
	}

	if err := cur.Validate(); err != nil {
		return err
	}
	c.campaigns[cur.ID] = cur
	return nil
}

// advances reports whether a delta may move a status from cur to next.
// Terminal states are final, ranks only move forward, and a status never
// crosses into the other workflow.
func advances(cur, next models.Status) bool {
	if cur.Terminal() || next.Workflow() != cur.Workflow() {
		return false
	}
	return next.Rank() > cur.Rank()
}

func (c *canonical) applyClick(p *models.ClickPatch) error {
	cur, ok := c.campaigns[p.CampaignID]
	if ok {
		cur = cur.Clone()
	} else {
		cur = models.Campaign{ID: p.CampaignID, Status: models.StatusActive, Provisional: true}
		if c.workflow == models.WorkflowReport {
			cur.Status = c.initialStatus()
		}
	}

	clicks := 0
	if cur.ClickCount != nil {
		clicks = *cur.ClickCount
	}
	if p.ClickCount != nil {
		if *p.ClickCount > clicks {
			clicks = *p.ClickCount
		}
	} else {
		clicks++
	}
	cur.ClickCount = &clicks

	if err := cur.Validate(); err != nil {
		return err
	}
	c.campaigns[cur.ID] = cur

	if u, ok := c.users[p.UserID]; ok && p.UserID > 0 && u.CampaignsClicked < u.CampaignsSent {
		u.CampaignsClicked++
		c.users[u.ID] = u
	}
	return nil
}

func (c *canonical) applyUser(p *models.UserPatch) error {
	cur, ok := c.users[p.ID]
	if !ok {
		cur = models.User{ID: p.ID}
	}
	if p.Name != nil {
		cur.Name = *p.Name
	}
	if p.Email != nil {
		cur.Email = *p.Email
	}
	if p.Department != nil {
		cur.Department = *p.Department
	}
	if p.RiskScore != nil {
		cur.RiskScore = *p.RiskScore
	}
	if p.CampaignsSent != nil {
		cur.CampaignsSent = *p.CampaignsSent
	}
	if p.CampaignsClicked != nil {
		cur.CampaignsClicked = *p.CampaignsClicked
	}
	if p.TrainingCompleted != nil {
		cur.TrainingCompleted = *p.TrainingCompleted
	}
	if err := cur.Validate(); err != nil {
		return err
	}
	c.users[cur.ID] = cur
	return nil
}

// insertLocal adds an optimistic placeholder. An entity already known under
// the same id wins, since it came from the service.
func (c *canonical) insertLocal(camp models.Campaign) {
	if _, ok := c.campaigns[camp.ID]; ok {
		return
	}
	camp = camp.Clone()
	camp.Provisional = true
	c.campaigns[camp.ID] = camp
}
