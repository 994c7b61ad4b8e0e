package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sentinel-sim/sentinel/internal/config"
	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/notify"
	"github.com/sentinel-sim/sentinel/internal/remote"
	"github.com/sentinel-sim/sentinel/internal/syncer"
)

// session is the wired client core shared by the dashboard and the
// headless commands
type session struct {
	client  *remote.Client
	pushURL string
	sync    *syncer.Controller
	notices *notify.Dispatcher
	health  *notify.HealthMonitor
}

func newSession(s *config.Settings) (*session, error) {
	pushURL := s.PushURL
	if pushURL == "" {
		derived, err := remote.PushURL(s.APIURL)
		if err != nil {
			return nil, fmt.Errorf("derive push url: %w", err)
		}
		pushURL = derived
	}

	client := remote.New(s.APIURL, s.Workflow)
	notices := notify.NewDispatcher(s.DedupWindow, 0, time.Now)
	ctrl := syncer.New(client, remote.NewPush(pushURL), syncer.Options{
		Workflow:     s.Workflow,
		PollInterval: s.PollInterval,
		OnEvent: func(ev models.Event) {
			notices.Dispatch(ev)
		},
		OnError: func(err error) {
			slog.Debug("snapshot fetch failed", "err", err)
		},
	})

	return &session{
		client:  client,
		pushURL: pushURL,
		sync:    ctrl,
		notices: notices,
		health:  notify.NewHealthMonitor(client, s.HealthInterval),
	}, nil
}
