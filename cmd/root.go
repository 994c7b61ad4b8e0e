package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sentinel-sim/sentinel/internal/config"
	"github.com/sentinel-sim/sentinel/internal/models"
)

var (
	version string

	// settings is resolved once per invocation in PersistentPreRunE
	settings *config.Settings
	flags    globalFlags
)

// globalFlags are the persistent flags that override environment settings
type globalFlags struct {
	apiURL       string
	pushURL      string
	workflow     string
	pollInterval time.Duration
	stateStore   string
	stateDir     string
	logLevel     string
	logFormat    string
	envFile      string
}

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Phishing simulation dashboard",
	Long: `sentinel - terminal dashboard for phishing simulation campaigns.

Tracks campaigns, simulated clicks and user risk from the campaign service,
merging snapshot polls with the live push channel.

Running sentinel with no command opens the dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSettings(cmd.Flags(), flags)
		if err != nil {
			return err
		}
		settings = s
		return nil
	},
	RunE: runDashboard,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

func init() {
	// Add custom template function for showing aliases
	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)

	// Custom usage template that shows aliases inline
	usageTemplate := `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

Additional Commands:{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

	// Need to add the 'add' function for padding calculation
	cobra.AddTemplateFunc("add", func(a, b int) int { return a + b })

	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "campaign", Title: "Campaign Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)

	// Assign built-in commands to system group
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")

	bindGlobalFlags(rootCmd.PersistentFlags(), &flags)
}

// bindGlobalFlags registers the settings overrides on fs
func bindGlobalFlags(fs *pflag.FlagSet, f *globalFlags) {
	fs.StringVar(&f.apiURL, "api-url", "", "campaign service base URL (env SENTINEL_API_URL)")
	fs.StringVar(&f.pushURL, "push-url", "", "websocket push URL, derived from --api-url when empty")
	fs.StringVar(&f.workflow, "workflow", "", "entity kind to track: campaign or report")
	fs.DurationVar(&f.pollInterval, "poll-interval", 0, "snapshot poll interval")
	fs.StringVar(&f.stateStore, "state-store", "", "local state backend: file or sqlite")
	fs.StringVar(&f.stateDir, "state-dir", "", "local state directory (default ~/.sentinel)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	fs.StringVar(&f.envFile, "env-file", "", "load environment from this file instead of ./.env")
}

// resolveSettings layers settings: .env file, then environment, then the
// saved API URL from config.json, then explicitly set flags.
func resolveSettings(fs *pflag.FlagSet, f globalFlags) (*config.Settings, error) {
	var files []string
	if f.envFile != "" {
		if _, err := os.Stat(f.envFile); err != nil {
			return nil, fmt.Errorf("env file: %w", err)
		}
		files = append(files, f.envFile)
	}
	if err := config.LoadDotEnv(files...); err != nil {
		return nil, err
	}

	s, err := config.ParseSettings()
	if err != nil {
		return nil, err
	}

	if fs.Changed("state-dir") {
		s.StateDir = f.stateDir
	}
	switch {
	case fs.Changed("api-url"):
		s.APIURL = f.apiURL
	case os.Getenv("SENTINEL_API_URL") == "":
		if cfg, err := config.Load(s.StateDir); err == nil && cfg.APIURL != "" {
			s.APIURL = cfg.APIURL
		}
	}
	if fs.Changed("push-url") {
		s.PushURL = f.pushURL
	}
	if fs.Changed("workflow") {
		s.Workflow = models.Workflow(f.workflow)
	}
	if fs.Changed("poll-interval") {
		s.PollInterval = f.pollInterval
	}
	if fs.Changed("state-store") {
		s.StateStore = f.stateStore
	}
	if fs.Changed("log-level") {
		s.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		s.LogFormat = f.logFormat
	}

	if s.APIURL == "" {
		return nil, errors.New("api url is empty")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
