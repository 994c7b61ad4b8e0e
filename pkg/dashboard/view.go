package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/output"
	"github.com/sentinel-sim/sentinel/pkg/dashboard/keymap"
)

// renderView renders the entire UI
func (m Model) renderView() string {
	if m.Width == 0 || m.Height == 0 {
		return "Loading..."
	}
	if m.Width < MinWidth || m.Height < MinHeight {
		return m.renderCompact()
	}
	if m.router.Onboarding() {
		return m.renderOnboarding()
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	searchBar := m.renderSearchBar()

	bodyHeight := m.Height - lipgloss.Height(header) - lipgloss.Height(footer)
	parts := []string{header}
	if searchBar != "" {
		bodyHeight -= lipgloss.Height(searchBar)
		parts = append(parts, searchBar)
	}
	body := lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(m.renderBody(bodyHeight))
	parts = append(parts, body, footer)
	base := lipgloss.JoinVertical(lipgloss.Left, parts...)

	// Only the top of the stack is drawn; the active view stays underneath
	top, ok := m.router.Top()
	if !ok {
		return base
	}
	return placeOverlay(m.Width, m.Height, m.renderModal(top), dimBackground(base))
}

// renderCompact renders a minimal view for small terminals
func (m Model) renderCompact() string {
	var s strings.Builder

	s.WriteString("sentinel (resize for full view)\n\n")
	if m.router.Onboarding() {
		s.WriteString(m.router.CurrentPage().Title + "\n\n")
		s.WriteString("enter:next s:skip")
		return s.String()
	}

	st := m.State.Stats
	s.WriteString(fmt.Sprintf("Campaigns: %d (%d active)\n", st.TotalCampaigns, st.ActiveCampaigns))
	s.WriteString(fmt.Sprintf("High risk users: %d | Avg click rate: %.1f%%\n", st.HighRiskUsers, st.AvgClickRate*100))
	s.WriteString(m.Service.Label() + "\n")
	s.WriteString("\nq:quit r:refresh ?:help")
	return s.String()
}

func (m Model) renderOnboarding() string {
	page := m.router.CurrentPage()
	key := fmt.Sprintf("onboarding:%d", m.router.Page())
	body := m.rendered[key]
	if body == "" {
		body = titleStyle.Render(page.Title) + "\n\n" + page.Description
	}

	var dots []string
	for i := range OnboardingPages {
		if i == m.router.Page() {
			dots = append(dots, brandStyle.Render("●"))
		} else {
			dots = append(dots, subtleStyle.Render("○"))
		}
	}

	hints := m.Keymap.FooterHints(keymap.ContextOnboarding, 3)
	footer := helpStyle.Render(strings.Join(hints, "  "))
	if m.router.LastPage() {
		footer = successStyle.Render("enter get started") + "  " + footer
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		brandStyle.Render("◆ PROJECT SENTINEL"),
		"",
		body,
		"",
		strings.Join(dots, " "),
		"",
		footer,
	)
	if m.StatusMessage != "" {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", m.renderStatus())
	}

	box := panelStyle.BorderForeground(primaryColor).Padding(1, 3).Render(content)
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderHeader() string {
	brand := brandStyle.Render("◆ Sentinel")

	right := []string{formatService(m.Service)}
	if m.State.PushConnected {
		right = append(right, successStyle.Render("● live"))
	} else {
		right = append(right, subtleStyle.Render("○ polling"))
	}
	switch {
	case m.State.LastSync.IsZero():
		right = append(right, subtleStyle.Render("not synced"))
	case m.State.LastError != nil:
		right = append(right, errorStyle.Render("stale, synced "+output.FormatTimeSince(m.State.LastSync, m.now())))
	default:
		right = append(right, timestampStyle.Render("synced "+output.FormatTimeSince(m.State.LastSync, m.now())))
	}
	rightStr := strings.Join(right, "  ")

	gap := m.Width - lipgloss.Width(brand) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		gap = 1
	}
	top := " " + brand + strings.Repeat(" ", gap) + rightStr

	var tabs []string
	for i, v := range allViews {
		label := fmt.Sprintf("%d %s", i+1, v.Title())
		if v == m.router.ActiveView() {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, " "+strings.Join(tabs, " "))
}

func (m Model) renderSearchBar() string {
	if m.SearchMode {
		return " " + m.SearchInput.View()
	}
	if m.SearchQuery == "" {
		return ""
	}
	return " " + subtleStyle.Render(fmt.Sprintf("filter: %q  (/ to edit, esc to clear)", m.SearchQuery))
}

func (m Model) renderBody(height int) string {
	switch m.router.ActiveView() {
	case ViewCampaigns:
		return m.renderCampaignsView(height)
	case ViewUsers:
		return m.renderUsersView(height)
	case ViewAnalytics:
		return m.renderAnalyticsView(height)
	case ViewSettings:
		return m.renderSettingsView(height)
	default:
		return m.renderDashboardView(height)
	}
}

func (m Model) renderDashboardView(height int) string {
	st := m.State.Stats
	cards := []string{
		m.renderCard("Total Campaigns", fmt.Sprintf("%d", st.TotalCampaigns)),
		m.renderCard("Active", fmt.Sprintf("%d", st.ActiveCampaigns)),
		m.renderCard("High Risk Users", fmt.Sprintf("%d", st.HighRiskUsers)),
		m.renderCard("Avg Click Rate", fmt.Sprintf("%.1f%%", st.AvgClickRate*100)),
	}
	cardRow := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	notices := m.Notices.Recent()
	noticeLines := 0
	if len(notices) > 0 {
		noticeLines = min(len(notices), 5) + 3
	}

	listHeight := height - lipgloss.Height(cardRow) - noticeLines
	campaigns := m.renderCampaignPanel("RECENT CAMPAIGNS", ViewDashboard, listHeight)

	parts := []string{cardRow, campaigns}
	if len(notices) > 0 {
		var sb strings.Builder
		start := max(len(notices)-5, 0)
		for i := len(notices) - 1; i >= start; i-- {
			n := notices[i]
			line := timestampStyle.Render(n.At.Local().Format("15:04:05")) + " " + noticeStyles[n.Kind].Render(n.Message)
			sb.WriteString(truncateString(line, m.Width-6))
			if i > start {
				sb.WriteString("\n")
			}
		}
		parts = append(parts, m.wrapPanel("NOTIFICATIONS", sb.String(), noticeLines))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderCard(label, value string) string {
	w := max((m.Width-2)/4-2, 12)
	return cardStyle.Width(w).Render(cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func (m Model) renderCampaignsView(height int) string {
	return m.renderCampaignPanel("CAMPAIGNS", ViewCampaigns, height)
}

// renderCampaignPanel renders the filtered campaign table for view v
func (m Model) renderCampaignPanel(title string, v View, height int) string {
	campaigns := m.visibleCampaigns()
	if len(campaigns) == 0 {
		msg := "No campaigns yet. Press n to create one."
		if m.SearchQuery != "" {
			title += " (no matches)"
			msg = "No campaigns match the filter"
		}
		return m.wrapPanel(title, subtleStyle.Render(msg), height)
	}

	nameWidth := max(m.Width-72, 12)
	header := subtleStyle.Render(fmt.Sprintf("  %-6s %s %-10s %-6s %6s %6s %7s  %s",
		"ID", padRight("NAME", nameWidth), "STATUS", "DIFF", "SENT", "CLICKS", "RATE", "VERDICT"))

	rows := make([]string, len(campaigns))
	for i, c := range campaigns {
		rows[i] = m.campaignRow(c, nameWidth)
	}
	return m.renderRows(title, header, rows, m.Cursor[v], height)
}

func (m Model) campaignRow(c models.Campaign, nameWidth int) string {
	name := c.Title()
	if c.Provisional {
		name += " …"
	}
	return fmt.Sprintf("%-6s %s %s %-6s %6s %6s %7s  %s",
		fmt.Sprintf("#%d", c.ID),
		padRight(truncateString(name, nameWidth), nameWidth),
		padRight(formatStatus(c.Status), 10),
		string(c.Difficulty),
		formatCount(c.SentCount),
		formatCount(c.ClickCount),
		output.FormatClickRate(c),
		formatVerdict(c.Verdict),
	)
}

func formatCount(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}

func (m Model) renderUsersView(height int) string {
	users := m.visibleUsers()
	title := "USERS"
	if len(users) == 0 {
		msg := "No users"
		if m.SearchQuery != "" {
			title += " (no matches)"
			msg = "No users match the filter"
		}
		return m.wrapPanel(title, subtleStyle.Render(msg), height)
	}

	nameWidth := max((m.Width-60)/2, 10)
	header := subtleStyle.Render(fmt.Sprintf("  %s %s %-12s %-10s %9s  %s",
		padRight("NAME", nameWidth), padRight("EMAIL", nameWidth), "DEPARTMENT", "RISK", "CLICKED", "TRAINING"))

	rows := make([]string, len(users))
	for i, u := range users {
		training := errorStyle.Render("✗")
		if u.TrainingCompleted {
			training = successStyle.Render("✓")
		}
		risk := riskStyles[u.RiskLevel()].Render(fmt.Sprintf("%-6s %3.0f", u.RiskLevel(), u.RiskScore))
		rows[i] = fmt.Sprintf("%s %s %-12s %s %9s  %s",
			padRight(truncateString(u.Name, nameWidth), nameWidth),
			padRight(truncateString(u.Email, nameWidth), nameWidth),
			truncateString(u.Department, 12),
			padRight(risk, 10),
			fmt.Sprintf("%d/%d", u.CampaignsClicked, u.CampaignsSent),
			training,
		)
	}
	return m.renderRows(title, header, rows, m.Cursor[ViewUsers], height)
}

// renderRows renders a scrollable, selectable table inside a panel
func (m Model) renderRows(title, header string, rows []string, cursor, height int) string {
	maxLines := height - 4 // border, title, column header
	if maxLines < 1 {
		maxLines = 1
	}
	total := len(rows)

	offset := 0
	if cursor >= maxLines {
		offset = cursor - maxLines + 1
	}
	if total > maxLines {
		title = fmt.Sprintf("%s (%d-%d of %d)", title, offset+1, min(offset+maxLines, total), total)
	} else if m.SearchQuery != "" {
		title = fmt.Sprintf("%s (%d results)", title, total)
	}

	var content strings.Builder
	content.WriteString(header)
	for i := offset; i < total && i < offset+maxLines; i++ {
		content.WriteString("\n")
		if i == cursor {
			content.WriteString(selectedRowStyle.Render(padRight("> "+ansi.Strip(rows[i]), m.Width-6)))
		} else {
			content.WriteString("  " + rows[i])
		}
	}
	return m.wrapPanel(title, content.String(), height)
}

func (m Model) renderAnalyticsView(height int) string {
	barWidth := max(m.Width/2-24, 10)
	var sb strings.Builder

	vc := m.State.VerdictCounts()
	total := vc.Malicious + vc.Spam + vc.Safe
	sb.WriteString(sectionHeader.MarginTop(0).Render("VERDICTS"))
	sb.WriteString("\n")
	for _, row := range []struct {
		verdict models.Verdict
		n       int
	}{
		{models.VerdictMalicious, vc.Malicious},
		{models.VerdictSpam, vc.Spam},
		{models.VerdictSafe, vc.Safe},
	} {
		style := verdictStyles[row.verdict]
		sb.WriteString(fmt.Sprintf("  %-10s %s %d\n", row.verdict, renderBar(fraction(row.n, total), barWidth, style), row.n))
	}

	sb.WriteString(sectionHeader.Render("CLICK RATES"))
	sb.WriteString("\n")
	var sent []models.Campaign
	for _, c := range m.State.Campaigns {
		if c.SentCount != nil && *c.SentCount > 0 {
			sent = append(sent, c)
		}
	}
	if len(sent) == 0 {
		sb.WriteString(subtleStyle.Render("  No campaigns have been sent"))
		sb.WriteString("\n")
	}
	sort.SliceStable(sent, func(i, j int) bool { return sent[i].ClickRate() > sent[j].ClickRate() })
	for i, c := range sent {
		if i == 8 {
			sb.WriteString(subtleStyle.Render(fmt.Sprintf("  ... %d more", len(sent)-8)))
			sb.WriteString("\n")
			break
		}
		style := successStyle
		switch {
		case c.ClickRate() > 0.3:
			style = errorStyle
		case c.ClickRate() > 0.15:
			style = lipgloss.NewStyle().Foreground(warningColor)
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			padRight(truncateString(c.Title(), 20), 20),
			renderBar(c.ClickRate(), barWidth, style),
			output.FormatClickRate(c)))
	}

	sb.WriteString(sectionHeader.Render("STATUS"))
	sb.WriteString("\n")
	counts := make(map[models.Status]int)
	var order []models.Status
	for _, c := range m.State.Campaigns {
		if counts[c.Status] == 0 {
			order = append(order, c.Status)
		}
		counts[c.Status]++
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].Rank() < order[j].Rank() })
	for _, s := range order {
		sb.WriteString(fmt.Sprintf("  %s %d\n", padRight(formatStatus(s), 12), counts[s]))
	}

	return m.wrapPanel("ANALYTICS", strings.TrimRight(sb.String(), "\n"), height)
}

func fraction(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// renderBar draws a horizontal bar filled to frac of width
func renderBar(frac float64, width int, style lipgloss.Style) string {
	frac = max(0, min(frac, 1))
	filled := int(frac*float64(width) + 0.5)
	return style.Render(strings.Repeat(barFilled, filled)) + subtleStyle.Render(strings.Repeat(barEmpty, width-filled))
}

func (m Model) renderSettingsView(height int) string {
	info := m.Info
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", cardLabelStyle.Render(padRight(label, 18)), value)
	}
	orDash := func(s string) string {
		if s == "" {
			return subtleStyle.Render("-")
		}
		return s
	}

	push := errorStyle.Render("disconnected")
	if m.State.PushConnected {
		push = successStyle.Render("connected")
	}
	lastSync := subtleStyle.Render("never")
	if !m.State.LastSync.IsZero() {
		lastSync = m.State.LastSync.Local().Format("2006-01-02 15:04:05")
	}
	lastErr := successStyle.Render("none")
	if m.State.LastError != nil {
		lastErr = errorStyle.Render(truncateString(m.State.LastError.Error(), m.Width-30))
	}
	poll := "-"
	if info.PollInterval > 0 {
		poll = info.PollInterval.String()
	}

	lines := []string{
		sectionHeader.MarginTop(0).Render("CONNECTION"),
		row("API URL", orDash(info.APIURL)),
		row("Push URL", orDash(info.PushURL)),
		row("Workflow", orDash(string(info.Workflow))),
		row("Poll interval", poll),
		row("Service", formatService(m.Service)),
		row("Push channel", push),
		row("Last sync", lastSync),
		row("Last error", lastErr),
		row("Quarantined", fmt.Sprintf("%d", m.State.Quarantined)),
		sectionHeader.Render("LOCAL STATE"),
		row("State store", orDash(info.StateStore)),
		row("State dir", orDash(info.StateDir)),
	}
	if info.StateDir != "" {
		lines = append(lines, row("Key overrides", keymap.ConfigPath(info.StateDir)))
	}
	lines = append(lines,
		row("Onboarding", "completed"),
		row("Version", orDash(info.Version)),
	)
	return m.wrapPanel("SETTINGS", strings.Join(lines, "\n"), height)
}

// wrapPanel wraps content in a panel with title and border
func (m Model) wrapPanel(title, content string, height int) string {
	inner := height - 2
	if inner < 1 {
		inner = 1
	}
	body := panelTitleStyle.Render(title) + "\n" + content
	return panelStyle.
		Width(m.Width - 2).
		Height(inner).
		MaxHeight(height).
		Render(body)
}

// renderModal renders the modal on top of the stack
func (m Model) renderModal(top Modal) string {
	width := m.modalContentWidth()
	maxHeight := m.Height - 6

	var title, content string
	var hints []string
	switch top.Kind {
	case ModalReport:
		title, content = m.renderReportModal(top.ID)
		hints = m.Keymap.FooterHints(keymap.ContextModal, 5)
	case ModalUserDetail:
		title, content = m.renderUserModal(top.ID, width)
		hints = m.Keymap.FooterHints(keymap.ContextModal, 3)
	case ModalCreateCampaign:
		title, content = m.renderWizardModal()
		hints = m.Keymap.FooterHints(keymap.ContextWizard, 4)
		maxHeight = 0
	case ModalHelp:
		title, content = "Help", m.Keymap.GenerateHelp()
		hints = m.Keymap.FooterHints(keymap.ContextHelp, 1)
	}

	if maxHeight > 0 {
		content = scrollLines(content, m.ModalScroll, maxHeight-6)
	}
	return m.wrapModalWithDepth(title, content, hints, width)
}

func (m Model) renderReportModal(id int64) (string, string) {
	c, ok := m.State.Campaign(id)
	if !ok {
		return fmt.Sprintf("Campaign #%d", id), subtleStyle.Render("This campaign is no longer available.")
	}
	body := m.rendered[reportKey(id)]
	if body == "" {
		body = reportMarkdown(c, m.State.Users)
	}
	return c.Title(), body
}

func (m Model) renderUserModal(id int64, width int) (string, string) {
	u, ok := m.State.User(id)
	if !ok {
		return fmt.Sprintf("User #%d", id), subtleStyle.Render("This user is no longer available.")
	}
	barWidth := max(width-24, 10)
	training := errorStyle.Render("not completed")
	if u.TrainingCompleted {
		training = successStyle.Render("completed")
	}
	risk := riskStyles[u.RiskLevel()]

	lines := []string{
		subtleStyle.Render(u.Email),
		"",
		fmt.Sprintf("%s %s", cardLabelStyle.Render(padRight("Department", 12)), u.Department),
		fmt.Sprintf("%s %s %s", cardLabelStyle.Render(padRight("Risk", 12)),
			renderBar(u.RiskScore/100, barWidth, risk), risk.Render(fmt.Sprintf("%.0f (%s)", u.RiskScore, u.RiskLevel()))),
		fmt.Sprintf("%s %d of %d campaigns", cardLabelStyle.Render(padRight("Clicked", 12)), u.CampaignsClicked, u.CampaignsSent),
		fmt.Sprintf("%s %s", cardLabelStyle.Render(padRight("Training", 12)), training),
	}
	return u.Name, strings.Join(lines, "\n")
}

func (m Model) renderWizardModal() (string, string) {
	if m.Wizard == nil {
		return "Create Campaign", ""
	}
	w := m.Wizard.Wizard

	var steps []string
	for i, name := range []string{"Details", "Content", "Schedule"} {
		step := i + 1
		switch {
		case step == w.Step:
			steps = append(steps, activeTabStyle.Render(fmt.Sprintf("%d %s", step, name)))
		case step < w.Step:
			steps = append(steps, successStyle.Render(fmt.Sprintf("✓ %s", name)))
		default:
			steps = append(steps, tabStyle.Render(fmt.Sprintf("%d %s", step, name)))
		}
	}

	parts := []string{strings.Join(steps, subtleStyle.Render(" › ")), "", m.Wizard.Form.View()}

	switch w.Submission.State {
	case SubmissionSubmitting:
		parts = append(parts, "", subtleStyle.Render("Creating campaign..."))
	case SubmissionFailed:
		parts = append(parts, "", errorStyle.Render(wrapText("Create failed: "+w.Submission.Reason, m.modalContentWidth())))
	default:
		if m.Wizard.Err != nil {
			parts = append(parts, "", errorStyle.Render(wrapText(m.Wizard.Err.Error(), m.modalContentWidth())))
		}
	}
	return "Create Campaign", strings.Join(parts, "\n")
}

// scrollLines returns at most height lines of s starting at offset. The
// offset is clamped so the last page stays full.
func scrollLines(s string, offset, height int) string {
	if height < 1 {
		height = 1
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= height {
		return s
	}
	offset = max(0, min(offset, len(lines)-height))
	visible := lines[offset : offset+height]
	if offset+height < len(lines) {
		visible[len(visible)-1] = subtleStyle.Render("  ▼ more below")
	}
	if offset > 0 {
		visible[0] = subtleStyle.Render("  ▲ more above")
	}
	return strings.Join(visible, "\n")
}

// wrapModalWithDepth wraps content in a modal box with depth-aware styling
func (m Model) wrapModalWithDepth(title, content string, hints []string, width int) string {
	depth := m.router.ModalDepth()

	var borderColor lipgloss.Color
	switch depth {
	case 1:
		borderColor = primaryColor
	case 2:
		borderColor = cyanColor
	default:
		borderColor = warningColor
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Width(width + 4)

	var footerParts []string
	if depth > 1 {
		var crumbs []string
		for _, md := range m.router.Stack() {
			crumbs = append(crumbs, md.String())
		}
		footerParts = append(footerParts, breadcrumbStyle.Render(strings.Join(crumbs, " › ")))
	}
	footerParts = append(footerParts, subtleStyle.Render(strings.Join(hints, "  ")))

	inner := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		content,
		"",
		strings.Join(footerParts, "\n"),
	)
	return modalStyle.Render(inner)
}

// renderFooter renders toasts, the status line and key hints
func (m Model) renderFooter() string {
	var lines []string
	for _, n := range m.Toasts {
		lines = append(lines, " "+truncateString(noticeStyles[n.Kind].Render("▸ "+n.Message), m.Width-2))
	}

	hints := m.Keymap.FooterHints(m.currentContext(), 8)
	keys := helpStyle.Render(strings.Join(hints, "  "))
	if pending := m.Keymap.PendingKey(); pending != "" {
		keys = titleStyle.Render(pending+" …") + "  " + keys
	}

	status := m.renderStatus()
	padding := m.Width - lipgloss.Width(keys) - lipgloss.Width(status) - 2
	if padding < 1 {
		keys = truncateString(keys, m.Width-lipgloss.Width(status)-3)
		padding = 1
	}
	lines = append(lines, " "+keys+strings.Repeat(" ", padding)+status)
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	if m.StatusMessage == "" {
		return ""
	}
	if m.StatusIsError {
		return errorStyle.Render(m.StatusMessage)
	}
	return successStyle.Render(m.StatusMessage)
}
