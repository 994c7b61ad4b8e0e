package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/sentinel-sim/sentinel/internal/config"
	"github.com/sentinel-sim/sentinel/internal/output"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Show or change local settings",
	GroupID: "system",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		pushURL := settings.PushURL
		if pushURL == "" {
			pushURL = "(derived from api url)"
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(map[string]interface{}{
				"api_url":         settings.APIURL,
				"push_url":        settings.PushURL,
				"workflow":        settings.Workflow,
				"poll_interval":   settings.PollInterval.String(),
				"health_interval": settings.HealthInterval.String(),
				"dedup_window":    settings.DedupWindow.String(),
				"state_store":     settings.StateStore,
				"state_dir":       settings.StateDir,
				"log_level":       settings.LogLevel,
				"log_format":      settings.LogFormat,
			})
		}
		fmt.Printf("api_url:         %s\n", settings.APIURL)
		fmt.Printf("push_url:        %s\n", pushURL)
		fmt.Printf("workflow:        %s\n", settings.Workflow)
		fmt.Printf("poll_interval:   %s\n", settings.PollInterval)
		fmt.Printf("health_interval: %s\n", settings.HealthInterval)
		fmt.Printf("dedup_window:    %s\n", settings.DedupWindow)
		fmt.Printf("state_store:     %s\n", settings.StateStore)
		fmt.Printf("state_dir:       %s\n", settings.StateDir)
		fmt.Printf("log:             %s (%s)\n", settings.LogLevel, settings.LogFormat)
		return nil
	},
}

var configSetAPIURLCmd = &cobra.Command{
	Use:   "set-api-url <url>",
	Short: "Save the default service URL to config.json",
	Long: `Saves the service URL used when neither --api-url nor SENTINEL_API_URL
is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.Parse(args[0])
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			err := fmt.Errorf("invalid url %q: want http(s)://host[:port]", args[0])
			output.Error("%v", err)
			return err
		}
		if err := config.SetAPIURL(settings.StateDir, args[0]); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("API URL set to %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetAPIURLCmd)
	configShowCmd.Flags().Bool("json", false, "JSON output")
}
