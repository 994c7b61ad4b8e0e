package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/notify"
	"github.com/sentinel-sim/sentinel/internal/output"
	"github.com/sentinel-sim/sentinel/internal/syncer"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"tail"},
	Short:   "Stream notifications without the dashboard",
	Long: `Runs the sync core headless and prints each notification as it is
produced: simulated clicks, launches and completions from the push channel,
plus service health changes. Stops on Ctrl-C.`,
	GroupID: "core",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(settings, os.Stderr)

		sess, err := newSession(settings)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return watch(ctx, sess)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watch(ctx context.Context, sess *session) error {
	defer sess.notices.Subscribe(func(n notify.Notice) {
		fmt.Println(output.FormatNotice(n))
	})()

	defer sess.health.Subscribe(func(s models.ServiceStatus) {
		fmt.Println(output.FormatService(s))
	})()

	connected := false
	defer sess.sync.Subscribe(func(s syncer.State) {
		if s.PushConnected != connected {
			connected = s.PushConnected
			if connected {
				output.Info("push channel connected")
			} else {
				output.Warning("push channel lost, polling every %s", settings.PollInterval)
			}
		}
	})()

	output.Info("watching %s (Ctrl-C to stop)", settings.APIURL)

	sess.sync.Start(ctx)
	defer sess.sync.Stop()
	go sess.health.Run(ctx)

	<-ctx.Done()
	return nil
}
