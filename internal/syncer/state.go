package syncer

import (
	"sort"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
)

// State is a render-ready copy of the canonical collections. Values handed
// to subscribers never alias controller memory.
type State struct {
	Campaigns []models.Campaign // newest first
	Users     []models.User     // by id
	Stats     models.Stats      // derived from the collections after every merge

	// ServerStats is the last /stats response, nil when the service has none
	ServerStats *models.Stats

	LastSync      time.Time
	LastError     error
	Quarantined   int // entities dropped at the boundary by the last snapshot
	PushConnected bool
	Seq           uint64 // merge counter, strictly increasing
}

// Campaign looks up a campaign by id
func (s State) Campaign(id int64) (models.Campaign, bool) {
	for _, c := range s.Campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return models.Campaign{}, false
}

// User looks up a user by id
func (s State) User(id int64) (models.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// VerdictCounts tallies analyzed campaigns by verdict
func (s State) VerdictCounts() models.VerdictCounts {
	var vc models.VerdictCounts
	for _, c := range s.Campaigns {
		if c.Verdict == nil {
			continue
		}
		switch *c.Verdict {
		case models.VerdictMalicious:
			vc.Malicious++
		case models.VerdictSpam:
			vc.Spam++
		case models.VerdictSafe:
			vc.Safe++
		}
	}
	return vc
}

// Clone deep-copies the state
func (s State) Clone() State {
	out := s
	out.Campaigns = make([]models.Campaign, len(s.Campaigns))
	for i, c := range s.Campaigns {
		out.Campaigns[i] = c.Clone()
	}
	out.Users = append([]models.User(nil), s.Users...)
	if s.ServerStats != nil {
		st := *s.ServerStats
		out.ServerStats = &st
	}
	return out
}

func buildState(campaigns map[int64]models.Campaign, users map[int64]models.User) State {
	var st State
	st.Campaigns = make([]models.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		st.Campaigns = append(st.Campaigns, c.Clone())
	}
	models.SortNewestFirst(st.Campaigns)
	st.Users = make([]models.User, 0, len(users))
	for _, u := range users {
		st.Users = append(st.Users, u)
	}
	sort.Slice(st.Users, func(i, j int) bool { return st.Users[i].ID < st.Users[j].ID })
	st.Stats = deriveStats(st.Campaigns, st.Users)
	return st
}

func deriveStats(campaigns []models.Campaign, users []models.User) models.Stats {
	stats := models.Stats{TotalCampaigns: len(campaigns)}
	var rateSum float64
	var rated int
	for _, c := range campaigns {
		if c.Status == models.StatusActive || c.Status == models.StatusProcessing {
			stats.ActiveCampaigns++
		}
		if c.SentCount != nil && *c.SentCount > 0 {
			rateSum += c.ClickRate()
			rated++
		}
	}
	if rated > 0 {
		stats.AvgClickRate = rateSum / float64(rated)
	}
	for _, u := range users {
		if u.RiskLevel() == models.RiskHigh {
			stats.HighRiskUsers++
		}
	}
	return stats
}
