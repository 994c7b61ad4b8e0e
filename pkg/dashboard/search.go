package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/sentinel-sim/sentinel/internal/models"
)

// campaignSource adapts campaigns to fuzzy.Source. Each campaign is matched
// on its name, summary, status and id.
type campaignSource []models.Campaign

func (s campaignSource) String(i int) string {
	c := s[i]
	return strings.Join([]string{c.Name, c.Summary, string(c.Status), strconv.FormatInt(c.ID, 10)}, " ")
}

func (s campaignSource) Len() int { return len(s) }

// filterCampaigns returns the campaigns matching query, keeping the input
// order. An empty query matches everything.
func filterCampaigns(campaigns []models.Campaign, query string) []models.Campaign {
	query = strings.TrimSpace(query)
	if query == "" {
		return campaigns
	}
	matches := fuzzy.FindFromNoSort(query, campaignSource(campaigns))
	idx := make([]int, 0, len(matches))
	for _, m := range matches {
		idx = append(idx, m.Index)
	}
	sort.Ints(idx)

	out := make([]models.Campaign, 0, len(idx))
	for _, i := range idx {
		out = append(out, campaigns[i])
	}
	return out
}

type userSource []models.User

func (s userSource) String(i int) string {
	u := s[i]
	return u.Name + " " + u.Email + " " + u.Department
}

func (s userSource) Len() int { return len(s) }

// filterUsers is filterCampaigns for the users view
func filterUsers(users []models.User, query string) []models.User {
	query = strings.TrimSpace(query)
	if query == "" {
		return users
	}
	matches := fuzzy.FindFromNoSort(query, userSource(users))
	idx := make([]int, 0, len(matches))
	for _, m := range matches {
		idx = append(idx, m.Index)
	}
	sort.Ints(idx)

	out := make([]models.User, 0, len(idx))
	for _, i := range idx {
		out = append(out, users[i])
	}
	return out
}
