package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/notify"
)

var (
	// Base colors
	primaryColor   = lipgloss.Color("212")
	secondaryColor = lipgloss.Color("141")
	mutedColor     = lipgloss.Color("241")
	successColor   = lipgloss.Color("42")
	warningColor   = lipgloss.Color("214")
	errorColor     = lipgloss.Color("196")
	cyanColor      = lipgloss.Color("45")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)

	tabStyle       = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).
			Background(primaryColor).Padding(0, 1)

	// Text styles
	titleStyle     = lipgloss.NewStyle().Bold(true)
	subtleStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle     = lipgloss.NewStyle().Foreground(errorColor)
	successStyle   = lipgloss.NewStyle().Foreground(successColor)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			MarginTop(1)

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	// Stat cards
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	cardLabelStyle = lipgloss.NewStyle().Foreground(mutedColor)
	cardValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))

	barFilled = "█"
	barEmpty  = "░"

	statusStyles = map[models.Status]lipgloss.Style{
		models.StatusDraft:      lipgloss.NewStyle().Foreground(mutedColor),
		models.StatusScheduled:  lipgloss.NewStyle().Foreground(cyanColor),
		models.StatusActive:     lipgloss.NewStyle().Foreground(successColor),
		models.StatusCompleted:  lipgloss.NewStyle().Foreground(secondaryColor),
		models.StatusPending:    lipgloss.NewStyle().Foreground(warningColor),
		models.StatusProcessing: lipgloss.NewStyle().Foreground(cyanColor),
		models.StatusComplete:   lipgloss.NewStyle().Foreground(secondaryColor),
		models.StatusError:      lipgloss.NewStyle().Foreground(errorColor),
	}

	verdictStyles = map[models.Verdict]lipgloss.Style{
		models.VerdictMalicious: lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		models.VerdictSpam:      lipgloss.NewStyle().Foreground(warningColor),
		models.VerdictSafe:      lipgloss.NewStyle().Foreground(successColor),
	}

	riskStyles = map[models.RiskLevel]lipgloss.Style{
		models.RiskHigh:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		models.RiskMedium: lipgloss.NewStyle().Foreground(warningColor),
		models.RiskLow:    lipgloss.NewStyle().Foreground(successColor),
	}

	serviceStyles = map[models.ServiceStatus]lipgloss.Style{
		models.ServiceHealthy:  lipgloss.NewStyle().Foreground(successColor),
		models.ServiceDegraded: lipgloss.NewStyle().Foreground(warningColor),
		models.ServiceOffline:  lipgloss.NewStyle().Foreground(errorColor),
	}

	noticeStyles = map[notify.Kind]lipgloss.Style{
		notify.KindEvent: lipgloss.NewStyle().Foreground(cyanColor),
		notify.KindError: lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		notify.KindInfo:  lipgloss.NewStyle().Foreground(successColor),
	}

	breadcrumbStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
)

func formatStatus(s models.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(string(s))
}

func formatVerdict(v *models.Verdict) string {
	if v == nil {
		return subtleStyle.Render("-")
	}
	return verdictStyles[*v].Render(string(*v))
}

func formatService(s models.ServiceStatus) string {
	return serviceStyles[s].Render("● " + s.Label())
}
