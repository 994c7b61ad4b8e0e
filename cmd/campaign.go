package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sentinel-sim/sentinel/internal/input"
	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/output"
	"github.com/sentinel-sim/sentinel/internal/remote"
	"github.com/sentinel-sim/sentinel/pkg/dashboard"
)

const requestTimeout = 30 * time.Second

var campaignCmd = &cobra.Command{
	Use:     "campaign",
	Aliases: []string{"c"},
	Short:   "Create, launch and inspect campaigns",
	GroupID: "campaign",
}

var campaignCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign",
	Example: `  sentinel campaign create --name "Q3 invoice lure" --difficulty hard
  sentinel campaign create --name "Payroll" --targets Sales\ Team,Engineering \
    --schedule scheduled --date "2026-11-02 09:00"
  sentinel campaign create --name "Weekly" --schedule recurring --recurring "Every Monday"
  sentinel campaign create --name "Onboarding" --targets @groups.txt --description - < brief.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		w, err := wizardFromFlags(cmd.Flags(), input.New())
		if err != nil {
			return reportError(jsonOut, err)
		}

		var created models.Campaign
		w.OnSucceeded(func(c models.Campaign) { created = c })

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		if err := w.Submit(ctx, newClient()); err != nil {
			return reportError(jsonOut, err)
		}

		if jsonOut {
			return output.JSON(created)
		}
		output.Success("CREATED %s", output.FormatCampaignShort(created))
		return nil
	},
}

var campaignLaunchCmd = &cobra.Command{
	Use:   "launch <id>",
	Short: "Launch a draft or scheduled campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		id, err := parseCampaignID(args[0])
		if err != nil {
			return reportError(jsonOut, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		c, err := newClient().LaunchCampaign(ctx, id)
		if err != nil {
			return reportError(jsonOut, err)
		}

		if jsonOut {
			return output.JSON(c)
		}
		output.Success("LAUNCHED %s", output.FormatCampaignShort(*c))
		return nil
	},
}

var campaignSimulateCmd = &cobra.Command{
	Use:     "simulate-click <id>",
	Aliases: []string{"click"},
	Short:   "Record a simulated click on a campaign",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		id, err := parseCampaignID(args[0])
		if err != nil {
			return reportError(jsonOut, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		resp, err := newClient().SimulateClick(ctx, id)
		if err != nil {
			return reportError(jsonOut, err)
		}

		if jsonOut {
			return output.JSON(resp)
		}
		output.Success("Simulated click on #%d (%d clicks)", resp.CampaignID, resp.ClickCount)
		return nil
	},
}

var campaignShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the campaign report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		id, err := parseCampaignID(args[0])
		if err != nil {
			return reportError(jsonOut, err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		client := newClient()
		found, err := client.GetCampaign(ctx, id)
		if err != nil {
			return reportError(jsonOut, err)
		}

		if jsonOut {
			return output.JSON(found)
		}
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Println(output.FormatCampaignLong(*found))
			return nil
		}

		users, _, err := client.ListUsers(ctx)
		if err != nil {
			output.Warning("users unavailable: %v", err)
		}
		md := output.CampaignMarkdown(*found, users)
		rendered, err := output.RenderMarkdownWithWidth(md, output.TerminalWidth(80))
		if err != nil {
			fmt.Println(md)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

var campaignListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List campaigns, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		status, _ := cmd.Flags().GetString("status")

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		campaigns, dropped, err := newClient().ListCampaigns(ctx)
		if err != nil {
			return reportError(jsonOut, err)
		}
		campaigns = filterByStatus(campaigns, models.Status(status))
		models.SortNewestFirst(campaigns)

		if jsonOut {
			return output.JSON(campaigns)
		}
		if len(campaigns) == 0 {
			fmt.Println("No campaigns")
		}
		for _, c := range campaigns {
			fmt.Println(output.FormatCampaignShort(c))
		}
		if dropped > 0 {
			fmt.Fprintf(os.Stderr, "%d malformed entries skipped\n", dropped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(campaignCmd)
	campaignCmd.AddCommand(campaignCreateCmd, campaignLaunchCmd, campaignSimulateCmd, campaignShowCmd, campaignListCmd)

	for _, c := range []*cobra.Command{campaignCreateCmd, campaignLaunchCmd, campaignSimulateCmd, campaignShowCmd, campaignListCmd} {
		c.Flags().Bool("json", false, "JSON output")
	}

	addCreateFlags(campaignCreateCmd.Flags())

	campaignShowCmd.Flags().Bool("raw", false, "Plain text instead of rendered markdown")
	campaignListCmd.Flags().String("status", "", "Only campaigns with this status")
}

func addCreateFlags(f *pflag.FlagSet) {
	f.StringP("name", "n", "", "Campaign name (required)")
	f.StringP("description", "d", "", "Description (- reads stdin, @file reads a file)")
	f.String("difficulty", string(models.DifficultyMedium), "easy, medium or hard")
	f.StringSlice("targets", nil, "Target groups, one per line via - or @file (default All Users)")
	f.String("schedule", string(models.ScheduleNow), "now, scheduled or recurring")
	f.String("date", "", "Send time for --schedule scheduled (YYYY-MM-DD HH:MM or RFC3339, local time)")
	f.String("recurring", dashboard.RecurringOptions[0], "Rule for --schedule recurring")
}

func newClient() *remote.Client {
	return remote.New(settings.APIURL, settings.Workflow)
}

func parseCampaignID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid campaign id %q", s)
	}
	return id, nil
}

// wizardFromFlags fills a wizard from create flags and walks it to the
// final step, so the CLI and the dashboard share validation
func wizardFromFlags(f *pflag.FlagSet, in *input.Expander) (*dashboard.Wizard, error) {
	w := dashboard.NewWizard()
	w.Fields.Name, _ = f.GetString("name")

	description, _ := f.GetString("description")
	text, err := in.Text(description)
	if err != nil {
		return nil, err
	}
	w.Fields.Description = text

	targets, _ := f.GetStringSlice("targets")
	if w.Fields.Targets, err = in.Lines(targets); err != nil {
		return nil, err
	}
	w.Fields.ScheduleDate, _ = f.GetString("date")
	w.Fields.Recurring, _ = f.GetString("recurring")

	difficulty, _ := f.GetString("difficulty")
	switch d := models.Difficulty(difficulty); d {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		w.Fields.Difficulty = d
	default:
		return nil, &dashboard.ValidationError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", difficulty)}
	}
	schedule, _ := f.GetString("schedule")
	w.Fields.Schedule = models.ScheduleType(schedule)

	for w.Step < dashboard.StepSchedule {
		if err := w.Next(); err != nil {
			return nil, err
		}
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func filterByStatus(campaigns []models.Campaign, status models.Status) []models.Campaign {
	if status == "" {
		return campaigns
	}
	var out []models.Campaign
	for _, c := range campaigns {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}
