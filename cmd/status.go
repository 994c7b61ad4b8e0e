package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/output"
	"github.com/sentinel-sim/sentinel/internal/syncer"
)

const statusTimeout = 15 * time.Second

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"stats"},
	Short:   "Show service health, totals and recent campaigns",
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		limit, _ := cmd.Flags().GetInt("limit")
		setupLogging(settings, os.Stderr)

		sess, err := newSession(settings)
		if err != nil {
			return reportError(jsonOut, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
		defer cancel()

		service := sess.health.Check(ctx)
		if err := sess.sync.Refresh(ctx); err != nil {
			return reportError(jsonOut, err)
		}
		state := sess.sync.State()

		if jsonOut {
			return output.JSON(statusJSON(state, service))
		}
		printStatus(os.Stdout, state, service, limit, time.Now())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("json", false, "JSON output")
	statusCmd.Flags().Int("limit", 5, "Recent campaigns to show")
}

func statusJSON(state syncer.State, service models.ServiceStatus) map[string]interface{} {
	verdicts := state.VerdictCounts()
	result := map[string]interface{}{
		"service":     service,
		"api_url":     settings.APIURL,
		"workflow":    settings.Workflow,
		"stats":       state.Stats,
		"campaigns":   state.Campaigns,
		"users":       len(state.Users),
		"quarantined": state.Quarantined,
		"verdicts": map[string]int{
			"malicious": verdicts.Malicious,
			"spam":      verdicts.Spam,
			"safe":      verdicts.Safe,
		},
	}
	if state.ServerStats != nil {
		result["server_stats"] = state.ServerStats
	}
	if !state.LastSync.IsZero() {
		result["last_sync"] = state.LastSync.UTC().Format(time.RFC3339)
	}
	return result
}

func printStatus(w io.Writer, state syncer.State, service models.ServiceStatus, limit int, now time.Time) {
	fmt.Fprintf(w, "SERVICE: %s  %s\n", output.FormatService(service), settings.APIURL)
	if !state.LastSync.IsZero() {
		fmt.Fprintf(w, "  synced %s\n", output.FormatTimeSince(state.LastSync, now))
	}
	fmt.Fprint(w, output.SectionHeader("Totals"))
	fmt.Fprintf(w, "  Campaigns:       %d\n", state.Stats.TotalCampaigns)
	fmt.Fprintf(w, "  Active:          %d\n", state.Stats.ActiveCampaigns)
	fmt.Fprintf(w, "  High-risk users: %d\n", state.Stats.HighRiskUsers)
	fmt.Fprintf(w, "  Avg click rate:  %.1f%%\n", state.Stats.AvgClickRate)
	if settings.Workflow == models.WorkflowReport {
		v := state.VerdictCounts()
		fmt.Fprintf(w, "  Verdicts:        %d malicious, %d spam, %d safe\n", v.Malicious, v.Spam, v.Safe)
	}
	if state.Quarantined > 0 {
		fmt.Fprintf(w, "  Skipped:         %d malformed entities\n", state.Quarantined)
	}
	fmt.Fprintln(w)

	if len(state.Campaigns) == 0 {
		fmt.Fprintln(w, "No campaigns")
		return
	}
	fmt.Fprintf(w, "RECENT (%d):\n", len(state.Campaigns))
	for i, c := range state.Campaigns {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "  ... and %d more\n", len(state.Campaigns)-limit)
			break
		}
		fmt.Fprintf(w, "  %s\n", output.FormatCampaignShort(c))
	}
}
