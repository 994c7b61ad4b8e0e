package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sentinel-sim/sentinel/internal/onboarding"
	"github.com/sentinel-sim/sentinel/internal/output"
)

var onboardingCmd = &cobra.Command{
	Use:     "onboarding",
	Short:   "Inspect or reset the first-run intro",
	GroupID: "system",
}

var onboardingStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the intro will be shown",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGate(func(g *onboarding.Gate) error {
			if g.Pending() {
				output.Info("onboarding: pending (shown on next dashboard launch)")
			} else {
				output.Info("onboarding: completed")
			}
			return nil
		})
	},
}

var onboardingResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Show the intro again on next launch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGate(func(g *onboarding.Gate) error {
			if err := g.Reset(); err != nil {
				output.Error("%v", err)
				return err
			}
			output.Success("Onboarding reset")
			return nil
		})
	},
}

var onboardingCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Skip the intro",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGate(func(g *onboarding.Gate) error {
			if err := g.Complete(); err != nil {
				output.Error("%v", err)
				return err
			}
			output.Success("Onboarding marked complete")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(onboardingCmd)
	onboardingCmd.AddCommand(onboardingStatusCmd, onboardingResetCmd, onboardingCompleteCmd)
}

// withGate opens the configured state store for the duration of fn. An
// unreadable flag is reported but fn still runs against a pending gate.
func withGate(fn func(*onboarding.Gate) error) error {
	store, closeStore, err := openStateStore(settings)
	if err != nil {
		output.Error("%v", err)
		return err
	}
	defer closeStore()

	g, err := onboarding.NewGate(store)
	if err != nil {
		output.Warning("%v", err)
	}
	return fn(g)
}
