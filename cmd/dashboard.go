package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sentinel-sim/sentinel/internal/onboarding"
	"github.com/sentinel-sim/sentinel/internal/output"
	"github.com/sentinel-sim/sentinel/pkg/dashboard"
	"github.com/sentinel-sim/sentinel/pkg/dashboard/keymap"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the live campaign dashboard",
	Long: `Launch the live TUI dashboard:
- Dashboard: totals, recent campaigns and the notification feed
- Campaigns, Users: filterable tables with detail reports
- Analytics: verdict mix and click rates
- Settings: connection and local state

Key bindings:
  1-5, Tab       Switch view
  ↑/↓, j/k       Select row
  Enter          Open details
  n              New campaign
  L / c          Launch / simulate click on the selection
  /              Filter
  r              Force refresh
  ?              Toggle help
  q              Quit

Overrides are read from keymap.json in the state directory.`,
	GroupID: "core",
	RunE:    runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		err := errors.New("the dashboard needs a terminal; use 'sentinel status' or 'sentinel watch'")
		output.Error("%v", err)
		return err
	}

	logs, err := openLogFile(settings)
	if err != nil {
		output.Error("%v", err)
		return err
	}
	defer logs.Close()

	store, closeStore, err := openStateStore(settings)
	if err != nil {
		output.Error("%v", err)
		return err
	}
	defer closeStore()

	gate, err := onboarding.NewGate(store)
	if err != nil {
		slog.Warn("onboarding state unreadable, showing intro", "err", err)
	}

	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	if kc, err := keymap.LoadConfig(keymap.ConfigPath(settings.StateDir)); err != nil {
		slog.Warn("ignoring keymap overrides", "err", err)
	} else {
		keymap.ApplyConfig(km, kc)
	}

	sess, err := newSession(settings)
	if err != nil {
		output.Error("%v", err)
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess.sync.Start(ctx)
	defer sess.sync.Stop()
	go sess.health.Run(ctx)

	model := dashboard.NewModel(dashboard.Options{
		Sync:    sess.sync,
		Actions: sess.client,
		Notices: sess.notices,
		Health:  sess.health,
		Gate:    gate,
		Prefs:   store,
		Keymap:  km,
		Context: ctx,
		Info: dashboard.SessionInfo{
			APIURL:       settings.APIURL,
			PushURL:      sess.pushURL,
			Workflow:     settings.Workflow,
			PollInterval: settings.PollInterval,
			StateStore:   settings.StateStore,
			StateDir:     settings.StateDir,
			Version:      version,
		},
	})
	defer model.Close()

	slog.Info("dashboard started", "api", settings.APIURL, "push", sess.pushURL, "workflow", settings.Workflow)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}
	return nil
}
