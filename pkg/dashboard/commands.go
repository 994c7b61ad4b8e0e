package dashboard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/pkg/dashboard/keymap"
)

// currentContext returns the keymap context for the visible UI layer
func (m Model) currentContext() keymap.Context {
	if m.router.Onboarding() {
		return keymap.ContextOnboarding
	}
	if top, ok := m.router.Top(); ok {
		switch top.Kind {
		case ModalHelp:
			return keymap.ContextHelp
		case ModalCreateCampaign:
			return keymap.ContextWizard
		default:
			return keymap.ContextModal
		}
	}
	if m.SearchMode {
		return keymap.ContextSearch
	}
	return keymap.ContextMain
}

// CurrentContextString returns the active keymap context
func (m Model) CurrentContextString() string {
	return string(m.currentContext())
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.currentContext()
	if cmd, ok := m.Keymap.Lookup(msg, ctx); ok {
		return m.executeCommand(cmd)
	}

	if ctx == keymap.ContextSearch {
		var cmd tea.Cmd
		m.SearchInput, cmd = m.SearchInput.Update(msg)
		if q := m.SearchInput.Value(); q != m.SearchQuery {
			m.SearchQuery = q
			m.clampCursors()
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handleWizardUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if cmd, found := m.Keymap.Lookup(key, keymap.ContextWizard); found {
			return m.executeCommand(cmd)
		}
		// Input is frozen while the create request is in flight
		if m.Wizard.Wizard.Submitting() {
			return m, nil
		}
	}

	form, cmd := m.Wizard.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Wizard.Form = f
	}

	// Enter on the last field of a step
	if m.Wizard.Completed() {
		if m.Wizard.Wizard.Step == StepSchedule {
			return m.submitWizard()
		}
		return m.executeCommand(keymap.CmdWizardNext)
	}
	return m, cmd
}

func (m Model) executeCommand(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		m.ModalScroll = 0
		if m.router.CloseModalKind(ModalHelp) {
			return m, nil
		}
		if err := m.router.OpenModal(HelpModal()); err != nil {
			return m.setStatus(err.Error(), true)
		}
		return m, nil

	case keymap.CmdRefresh:
		mm, statusCmd := m.setStatus("Refreshing...", false)
		return mm, tea.Batch(statusCmd, m.refresh())

	// Views
	case keymap.CmdNextView:
		return m.changeView(m.router.NextView)
	case keymap.CmdPrevView:
		return m.changeView(m.router.PrevView)
	case keymap.CmdViewDashboard:
		return m.selectView(ViewDashboard)
	case keymap.CmdViewCampaigns:
		return m.selectView(ViewCampaigns)
	case keymap.CmdViewUsers:
		return m.selectView(ViewUsers)
	case keymap.CmdViewAnalytics:
		return m.selectView(ViewAnalytics)
	case keymap.CmdViewSettings:
		return m.selectView(ViewSettings)

	// Cursor
	case keymap.CmdCursorDown:
		m.moveCursor(1)
	case keymap.CmdCursorUp:
		m.moveCursor(-1)
	case keymap.CmdCursorTop:
		m.Cursor[m.router.ActiveView()] = 0
	case keymap.CmdCursorBottom:
		m.Cursor[m.router.ActiveView()] = m.rowCount() - 1
		m.clampCursors()

	case keymap.CmdScrollDown:
		m.ModalScroll++
	case keymap.CmdScrollUp:
		if m.ModalScroll > 0 {
			m.ModalScroll--
		}

	case keymap.CmdOpenDetails:
		return m.openDetails()

	case keymap.CmdClose:
		m.router.CloseModal()
		m.ModalScroll = 0
		return m, m.ensureRendered()

	case keymap.CmdNewCampaign:
		return m.openWizard()

	case keymap.CmdLaunch:
		if c, ok := m.targetCampaign(); ok {
			return m, m.launchCmd(c.ID)
		}
		return m.setStatus("No campaign selected", true)

	case keymap.CmdSimulateClick:
		if c, ok := m.targetCampaign(); ok {
			return m, m.simulateClickCmd(c.ID)
		}
		return m.setStatus("No campaign selected", true)

	// Search
	case keymap.CmdSearch:
		m.SearchMode = true
		m.searchBefore = m.SearchQuery
		m.SearchInput.SetValue(m.SearchQuery)
		m.SearchInput.CursorEnd()
		return m, m.SearchInput.Focus()
	case keymap.CmdSearchConfirm:
		m.SearchMode = false
		m.SearchInput.Blur()
		return m, m.saveSearch()
	case keymap.CmdSearchCancel:
		m.SearchMode = false
		m.SearchInput.Blur()
		m.SearchQuery = m.searchBefore
		m.SearchInput.SetValue(m.SearchQuery)
		m.clampCursors()
	case keymap.CmdSearchClear:
		if m.SearchQuery == "" && !m.SearchMode {
			return m, nil
		}
		m.SearchQuery = ""
		m.SearchInput.SetValue("")
		m.clampCursors()
		if !m.SearchMode {
			return m, m.saveSearch()
		}

	// Wizard
	case keymap.CmdWizardNext:
		if m.Wizard == nil {
			return m, nil
		}
		next, _ := m.Wizard.Next()
		return m, next
	case keymap.CmdWizardBack:
		if m.Wizard == nil {
			return m, nil
		}
		back, _ := m.Wizard.Back()
		return m, back
	case keymap.CmdWizardSubmit:
		if m.Wizard == nil {
			return m, nil
		}
		if m.Wizard.Wizard.Step != StepSchedule {
			next, _ := m.Wizard.Next()
			return m, next
		}
		return m.submitWizard()
	case keymap.CmdWizardCancel:
		if m.Wizard == nil {
			return m, nil
		}
		if m.Wizard.Wizard.Submitting() {
			return m.setStatus("Creating campaign...", false)
		}
		m.router.CloseModalKind(ModalCreateCampaign)
		m.Wizard = nil

	// Onboarding
	case keymap.CmdOnboardingNext:
		if err := m.router.NextPage(); err != nil {
			return m.setStatus(fmt.Sprintf("Could not save onboarding: %v", err), true)
		}
		return m, m.ensureRendered()
	case keymap.CmdOnboardingPrev:
		m.router.PrevPage()
		return m, m.ensureRendered()
	case keymap.CmdOnboardingFinish:
		if err := m.router.CompleteOnboarding(); err != nil {
			return m.setStatus(fmt.Sprintf("Could not save onboarding: %v", err), true)
		}
	}

	return m, nil
}

func (m Model) changeView(step func() error) (tea.Model, tea.Cmd) {
	if err := step(); err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.clampCursors()
	return m, m.saveView()
}

func (m Model) selectView(v View) (tea.Model, tea.Cmd) {
	return m.changeView(func() error { return m.router.SelectView(v) })
}

func (m Model) openDetails() (tea.Model, tea.Cmd) {
	var modal Modal
	switch m.router.ActiveView() {
	case ViewUsers:
		users := m.visibleUsers()
		i := m.Cursor[ViewUsers]
		if i >= len(users) {
			return m, nil
		}
		modal = UserDetailModal(users[i].ID)
	case ViewDashboard, ViewCampaigns:
		c, ok := m.selectedCampaign()
		if !ok {
			return m, nil
		}
		modal = ReportModal(c.ID)
	default:
		return m, nil
	}
	if err := m.router.OpenModal(modal); err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.ModalScroll = 0
	return m, m.ensureRendered()
}

func (m Model) openWizard() (tea.Model, tea.Cmd) {
	if err := m.router.OpenModal(CreateCampaignModal()); err != nil {
		return m.setStatus(err.Error(), true)
	}
	if m.Wizard != nil {
		return m, nil
	}
	w := NewWizard()
	router, src := m.router, m.Sync
	w.OnSucceeded(func(c models.Campaign) {
		router.CloseModalKind(ModalCreateCampaign)
		if c.ID != 0 {
			src.InsertProvisional(c)
		}
	})
	m.Wizard = NewWizardForm(w, m.modalContentWidth())
	return m, m.Wizard.Init()
}

func (m Model) submitWizard() (tea.Model, tea.Cmd) {
	wf := m.Wizard
	req, err := wf.Wizard.BeginSubmit()
	if err != nil {
		wf.Err = err
		if wf.Completed() && !wf.Wizard.Submitting() {
			return m, wf.Reopen()
		}
		return m, nil
	}
	wf.Err = nil
	w, actions, ctx := wf.Wizard, m.Actions, m.ctx
	return m, func() tea.Msg {
		created, err := actions.CreateCampaign(ctx, req)
		return CampaignCreatedMsg{Wizard: w, Campaign: created, Err: err}
	}
}

func (m Model) handleCampaignCreated(msg CampaignCreatedMsg) (tea.Model, tea.Cmd) {
	msg.Wizard.Resolve(msg.Campaign, msg.Err)
	if m.Wizard == nil || m.Wizard.Wizard != msg.Wizard {
		return m, nil
	}
	if msg.Err != nil {
		m.Notices.ServerError("create campaign", msg.Err)
		m.Wizard.Err = msg.Err
		return m, m.Wizard.Reopen()
	}
	name := msg.Wizard.Fields.Name
	m.Wizard = nil
	m.Notices.Info(fmt.Sprintf("Campaign %q created", name))
	return m, tea.Batch(m.refresh(), m.ensureRendered())
}

func (m Model) launchCmd(id int64) tea.Cmd {
	actions, ctx := m.Actions, m.ctx
	return func() tea.Msg {
		_, err := actions.LaunchCampaign(ctx, id)
		return ActionResultMsg{
			Op:         "launch campaign",
			CampaignID: id,
			Message:    fmt.Sprintf("Campaign #%d launched", id),
			Err:        err,
		}
	}
}

func (m Model) simulateClickCmd(id int64) tea.Cmd {
	actions, ctx := m.Actions, m.ctx
	return func() tea.Msg {
		resp, err := actions.SimulateClick(ctx, id)
		msg := ActionResultMsg{Op: "simulate click", CampaignID: id, Err: err}
		if err == nil {
			msg.Message = fmt.Sprintf("Simulated click on campaign #%d (%d total)", id, resp.ClickCount)
		}
		return msg
	}
}

func (m Model) handleActionResult(msg ActionResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Notices.ServerError(msg.Op, msg.Err)
		return m, nil
	}
	m.Notices.Info(msg.Message)
	return m, m.refresh()
}

// visibleCampaigns is the campaign list after the search filter
func (m Model) visibleCampaigns() []models.Campaign {
	return filterCampaigns(m.State.Campaigns, m.SearchQuery)
}

func (m Model) visibleUsers() []models.User {
	return filterUsers(m.State.Users, m.SearchQuery)
}

func (m Model) rowCount() int {
	switch m.router.ActiveView() {
	case ViewDashboard, ViewCampaigns:
		return len(m.visibleCampaigns())
	case ViewUsers:
		return len(m.visibleUsers())
	}
	return 0
}

func (m *Model) moveCursor(delta int) {
	v := m.router.ActiveView()
	m.Cursor[v] += delta
	m.clampCursors()
}

// clampCursors keeps every cursor inside its (filtered) list
func (m *Model) clampCursors() {
	limits := map[View]int{
		ViewDashboard: len(m.visibleCampaigns()),
		ViewCampaigns: len(m.visibleCampaigns()),
		ViewUsers:     len(m.visibleUsers()),
	}
	for v, n := range limits {
		c := m.Cursor[v]
		if c >= n {
			c = n - 1
		}
		if c < 0 {
			c = 0
		}
		m.Cursor[v] = c
	}
}

func (m Model) selectedCampaign() (models.Campaign, bool) {
	v := m.router.ActiveView()
	if v != ViewDashboard && v != ViewCampaigns {
		return models.Campaign{}, false
	}
	list := m.visibleCampaigns()
	i := m.Cursor[v]
	if i < 0 || i >= len(list) {
		return models.Campaign{}, false
	}
	return list[i], true
}

// targetCampaign is the campaign an action applies to: the open report if
// any, otherwise the selected row
func (m Model) targetCampaign() (models.Campaign, bool) {
	if top, ok := m.router.Top(); ok {
		if top.Kind != ModalReport {
			return models.Campaign{}, false
		}
		return m.State.Campaign(top.ID)
	}
	return m.selectedCampaign()
}
