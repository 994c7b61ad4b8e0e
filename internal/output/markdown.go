package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/sentinel-sim/sentinel/internal/models"
)

const (
	defaultMarkdownWidth = 80
	minMarkdownWidth     = 20
)

// TerminalWidth returns the current terminal width or a fallback when unavailable.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultMarkdownWidth
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}

	return fallback
}

// RenderMarkdown renders markdown using Glamour with terminal-aware wrapping.
func RenderMarkdown(text string) (string, error) {
	return RenderMarkdownWithWidth(text, TerminalWidth(defaultMarkdownWidth))
}

// RenderMarkdownWithWidth renders markdown using Glamour with explicit wrapping.
func RenderMarkdownWithWidth(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if width < minMarkdownWidth {
		width = minMarkdownWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(rendered, "\n"), nil
}

// CampaignMarkdown is the report body for a campaign: header fields, the
// analysis verdict, the summary and the riskiest recipients
func CampaignMarkdown(c models.Campaign, users []models.User) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", c.Title())

	fmt.Fprintf(&sb, "- **Status:** %s\n", c.Status)
	if c.Provisional {
		sb.WriteString("- *Awaiting confirmation from the service*\n")
	}
	if c.Difficulty != "" {
		fmt.Fprintf(&sb, "- **Difficulty:** %s\n", c.Difficulty)
	}
	if !c.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Created:** %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if c.SentCount != nil {
		clicks := 0
		if c.ClickCount != nil {
			clicks = *c.ClickCount
		}
		fmt.Fprintf(&sb, "- **Clicks:** %d of %d sent (%.1f%%)\n", clicks, *c.SentCount, c.ClickRate()*100)
	}

	if c.Verdict != nil {
		sb.WriteString("\n## Analysis\n\n")
		fmt.Fprintf(&sb, "**Verdict:** %s", *c.Verdict)
		if c.Confidence != nil {
			fmt.Fprintf(&sb, " (%.0f%% confidence)", *c.Confidence*100)
		}
		sb.WriteString("\n")
	}
	if strings.TrimSpace(c.Summary) != "" {
		sb.WriteString("\n## Summary\n\n")
		sb.WriteString(c.Summary)
		sb.WriteString("\n")
	}

	if len(users) > 0 && c.SentCount != nil {
		sb.WriteString("\n## Highest risk recipients\n\n")
		for i, u := range models.TopRisk(users, 5) {
			fmt.Fprintf(&sb, "%d. %s (%s) risk %.0f\n", i+1, u.Name, u.Department, u.RiskScore)
		}
	}
	return sb.String()
}
