package output

import (
	"strings"
	"testing"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
)

func intp(n int) *int { return &n }

// TestFormatTimeSince covers each bucket
func TestFormatTimeSince(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago      time.Duration
		expected string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{time.Minute, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{time.Hour, "1h ago"},
		{23 * time.Hour, "23h ago"},
		{24 * time.Hour, "1d ago"},
		{6 * 24 * time.Hour, "6d ago"},
	}

	for _, tc := range tests {
		if got := FormatTimeSince(now.Add(-tc.ago), now); got != tc.expected {
			t.Errorf("FormatTimeSince(-%v) = %q, want %q", tc.ago, got, tc.expected)
		}
	}
}

// TestFormatTimeSinceDate falls back to a date after a week
func TestFormatTimeSinceDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-8 * 24 * time.Hour)
	if got := FormatTimeSince(old, now); got != old.Format("2006-01-02") {
		t.Errorf("got %q", got)
	}
}

func TestFormatClickRate(t *testing.T) {
	tests := []struct {
		name string
		c    models.Campaign
		want string
	}{
		{"nothing sent", models.Campaign{}, "-"},
		{"zero sent", models.Campaign{SentCount: intp(0), ClickCount: intp(0)}, "-"},
		{"quarter", models.Campaign{SentCount: intp(40), ClickCount: intp(10)}, "25.0%"},
		{"no clicks yet", models.Campaign{SentCount: intp(8)}, "0.0%"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatClickRate(tc.c); got != tc.want {
				t.Errorf("FormatClickRate = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	for _, s := range []models.Status{models.StatusDraft, models.StatusActive, models.StatusComplete, models.StatusError} {
		if got := FormatStatus(s); !strings.Contains(got, string(s)) {
			t.Errorf("FormatStatus(%s) = %q", s, got)
		}
	}
	if got := FormatStatus("bogus"); got != "[bogus]" {
		t.Errorf("unknown status = %q", got)
	}
}

func TestStatusBadge(t *testing.T) {
	tests := map[models.Status]string{
		models.StatusDraft:     "○",
		models.StatusActive:    "▶",
		models.StatusCompleted: "✓",
		models.StatusError:     "✗",
	}
	for status, symbol := range tests {
		if got := StatusBadge(status); !strings.Contains(got, symbol) {
			t.Errorf("StatusBadge(%s) = %q, want symbol %s", status, got, symbol)
		}
	}
	if got := StatusBadge("weird"); got != "? weird" {
		t.Errorf("unknown badge = %q", got)
	}
}

func TestFormatCampaignShort(t *testing.T) {
	v := models.VerdictSpam
	c := models.Campaign{
		ID:          7,
		Name:        "Q1 Training",
		Status:      models.StatusActive,
		Difficulty:  models.DifficultyHard,
		SentCount:   intp(4),
		ClickCount:  intp(1),
		Verdict:     &v,
		Provisional: true,
	}
	got := FormatCampaignShort(c)
	for _, want := range []string{"#7", "Q1 Training", "active", "hard", "25.0%", "Spam", "unconfirmed"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatCampaignShort missing %q: %s", want, got)
		}
	}
}

func TestFormatCampaignLongNoOptional(t *testing.T) {
	got := FormatCampaignLong(models.Campaign{ID: 3, Status: models.StatusDraft})
	if !strings.Contains(got, "Campaign #3") {
		t.Errorf("missing fallback title: %s", got)
	}
	for _, absent := range []string{"Clicks:", "Verdict:", "Summary:", "Created:"} {
		if strings.Contains(got, absent) {
			t.Errorf("unexpected %q in %s", absent, got)
		}
	}
}

func TestCampaignMarkdown(t *testing.T) {
	v := models.VerdictMalicious
	conf := 0.92
	c := models.Campaign{
		ID:         1,
		Name:       "Invoice lure",
		Status:     models.StatusComplete,
		Verdict:    &v,
		Confidence: &conf,
		Summary:    "Spoofed sender domain.",
		SentCount:  intp(10),
		ClickCount: intp(3),
	}
	users := []models.User{
		{ID: 1, Name: "Low", RiskScore: 10},
		{ID: 2, Name: "High", RiskScore: 90},
	}
	md := CampaignMarkdown(c, users)
	for _, want := range []string{"# Invoice lure", "**Verdict:** Malicious (92% confidence)", "## Summary", "3 of 10 sent (30.0%)", "1. High"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestSectionHeader(t *testing.T) {
	if got := SectionHeader("campaigns"); got != "\nCAMPAIGNS:\n" {
		t.Errorf("SectionHeader = %q", got)
	}
}

func TestIndentString(t *testing.T) {
	if got := IndentString("a\nb", 2); got != "  a\n  b" {
		t.Errorf("IndentString = %q", got)
	}
	if got := IndentString("", 4); got != "" {
		t.Errorf("IndentString empty = %q", got)
	}
}
