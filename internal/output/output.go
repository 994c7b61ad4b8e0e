// Package output provides styled terminal output helpers (success, error,
// warning, campaign and user formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/notify"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyles = map[models.Status]lipgloss.Style{
		models.StatusDraft:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		models.StatusScheduled:  lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		models.StatusActive:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		models.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.StatusProcessing: lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		models.StatusComplete:   lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		models.StatusError:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	verdictStyles = map[models.Verdict]lipgloss.Style{
		models.VerdictMalicious: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		models.VerdictSpam:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.VerdictSafe:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
	serviceStyles = map[models.ServiceStatus]lipgloss.Style{
		models.ServiceHealthy:  successStyle,
		models.ServiceDegraded: warningStyle,
		models.ServiceOffline:  errorStyle,
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeServerError  = "server_error"
	ErrCodeNetworkError = "network_error"
	ErrCodeConfigError  = "config_error"
)

// JSONError outputs an error as JSON
func JSONError(code, message string) {
	JSONErrorWithDetails(code, message, nil)
}

// JSONErrorWithDetails outputs an error as JSON with additional context
func JSONErrorWithDetails(code, message string, details map[string]interface{}) {
	errObj := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if len(details) > 0 {
		errObj["details"] = details
	}
	data, _ := json.MarshalIndent(map[string]interface{}{"error": errObj}, "", "  ")
	fmt.Println(string(data))
}

// FormatStatus formats a status with color
func FormatStatus(s models.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return fmt.Sprintf("[%s]", s)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// FormatVerdict formats an analysis verdict, "-" when there is none
func FormatVerdict(v *models.Verdict) string {
	if v == nil {
		return subtleStyle.Render("-")
	}
	return verdictStyles[*v].Render(string(*v))
}

// FormatService formats the service health indicator
func FormatService(s models.ServiceStatus) string {
	style, ok := serviceStyles[s]
	if !ok {
		style = subtleStyle
	}
	return style.Render("● " + s.Label())
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	return FormatTimeSince(t, time.Now())
}

// FormatTimeSince is FormatTimeAgo relative to now
func FormatTimeSince(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// FormatClickRate returns "12.5%" or "-" when nothing was sent
func FormatClickRate(c models.Campaign) string {
	if c.SentCount == nil || *c.SentCount == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", c.ClickRate()*100)
}

// FormatCampaignShort formats a campaign in one line
func FormatCampaignShort(c models.Campaign) string {
	parts := []string{
		titleStyle.Render(fmt.Sprintf("#%d", c.ID)),
		c.Title(),
		FormatStatus(c.Status),
	}
	if c.Difficulty != "" {
		parts = append(parts, subtleStyle.Render(string(c.Difficulty)))
	}
	if c.SentCount != nil {
		parts = append(parts, subtleStyle.Render("clicks "+FormatClickRate(c)))
	}
	if c.Verdict != nil {
		parts = append(parts, FormatVerdict(c.Verdict))
	}
	if c.Provisional {
		parts = append(parts, warningStyle.Render("(unconfirmed)"))
	}
	return strings.Join(parts, "  ")
}

// FormatCampaignLong formats a campaign with all known fields
func FormatCampaignLong(c models.Campaign) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("#%d: %s", c.ID, c.Title())))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Status: %s\n", StatusBadge(c.Status)))
	if c.Difficulty != "" {
		sb.WriteString(fmt.Sprintf("Difficulty: %s\n", c.Difficulty))
	}
	if !c.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Created: %s (%s)\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), FormatTimeAgo(c.CreatedAt)))
	}
	if c.SentCount != nil {
		clicks := 0
		if c.ClickCount != nil {
			clicks = *c.ClickCount
		}
		sb.WriteString(fmt.Sprintf("Clicks: %d / %d sent (%s)\n", clicks, *c.SentCount, FormatClickRate(c)))
	}
	if c.Verdict != nil {
		sb.WriteString(fmt.Sprintf("Verdict: %s", FormatVerdict(c.Verdict)))
		if c.Confidence != nil {
			sb.WriteString(fmt.Sprintf(" (%.0f%% confidence)", *c.Confidence*100))
		}
		sb.WriteString("\n")
	}
	if c.Summary != "" {
		sb.WriteString("\n")
		sb.WriteString(subtleStyle.Render("Summary:"))
		sb.WriteString("\n")
		sb.WriteString(c.Summary)
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatUserShort formats a user in one line
func FormatUserShort(u models.User) string {
	risk := fmt.Sprintf("risk %.0f", u.RiskScore)
	switch u.RiskLevel() {
	case models.RiskHigh:
		risk = errorStyle.Render(risk)
	case models.RiskMedium:
		risk = warningStyle.Render(risk)
	default:
		risk = successStyle.Render(risk)
	}
	return fmt.Sprintf("%s  %s  %s  %s  %s",
		titleStyle.Render(u.Name),
		subtleStyle.Render(u.Email),
		u.Department,
		risk,
		subtleStyle.Render(fmt.Sprintf("%d/%d clicked", u.CampaignsClicked, u.CampaignsSent)))
}

// FormatNotice formats a notice as a timestamped log line
func FormatNotice(n notify.Notice) string {
	line := fmt.Sprintf("[%s] %s", n.At.Local().Format("15:04:05"), n.Message)
	switch n.Kind {
	case notify.KindError:
		return errorStyle.Render(line)
	case notify.KindInfo:
		return successStyle.Render(line)
	}
	return line
}

// StatusBadge returns a status indicator with symbol
// e.g., "○ draft", "▶ active", "✓ completed", "✗ error"
func StatusBadge(status models.Status) string {
	symbols := map[models.Status]string{
		models.StatusDraft:      "○",
		models.StatusScheduled:  "◷",
		models.StatusActive:     "▶",
		models.StatusCompleted:  "✓",
		models.StatusPending:    "○",
		models.StatusProcessing: "◎",
		models.StatusComplete:   "✓",
		models.StatusError:      "✗",
	}
	symbol, ok := symbols[status]
	if !ok {
		symbol = "?"
	}
	style, hasStyle := statusStyles[status]
	if hasStyle {
		return style.Render(fmt.Sprintf("%s %s", symbol, status))
	}
	return fmt.Sprintf("%s %s", symbol, status)
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nCAMPAIGNS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// IndentString indents each line in a string by the specified number of spaces
func IndentString(s string, spaces int) string {
	if s == "" {
		return ""
	}
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
