package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sentinel-sim/sentinel/internal/remote"
)

func (c *Controller) pollLoop(ctx context.Context) {
	if _, err := c.poll(ctx); err != nil {
		slog.Debug("sync: initial poll", "err", err)
	}

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.poll(ctx); err != nil {
				slog.Debug("sync: poll", "err", err)
			}
		}
	}
}

// poll fetches and merges one snapshot. ran is false when another fetch was
// already in flight and this call was coalesced into it.
func (c *Controller) poll(ctx context.Context) (ran bool, err error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return false, nil
	}
	defer c.inFlight.Store(false)

	epoch := c.epoch.Load()
	started := c.opts.Now()

	snap, err := c.fetchSnapshot(ctx)
	snap.FetchStartedAt = started

	c.mergeMu.Lock()
	defer c.mergeMu.Unlock()
	if c.epoch.Load() != epoch {
		slog.Debug("sync: discarding result from stopped session")
		return true, nil
	}
	if err != nil {
		// cache is kept; next tick retries
		c.meta.LastError = err
		c.publishLocked()
		if c.opts.OnError != nil && !errors.Is(err, context.Canceled) {
			c.opts.OnError(err)
		}
		return true, err
	}
	c.applySnapshotLocked(snap)
	return true, nil
}

// fetchSnapshot reads every collection. A failure on any of them fails the
// whole snapshot so partial data is never merged as exhaustive.
func (c *Controller) fetchSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	campaigns, dropped, err := c.fetch.ListCampaigns(ctx)
	if err != nil {
		return snap, err
	}
	users, droppedUsers, err := c.fetch.ListUsers(ctx)
	if err != nil {
		return snap, err
	}
	stats, err := c.fetch.GetStats(ctx)
	if err != nil {
		return snap, err
	}
	snap.Campaigns = campaigns
	snap.Users = users
	snap.Stats = stats
	snap.Quarantined = dropped + droppedUsers
	return snap, nil
}

func (c *Controller) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(500*time.Millisecond, c.opts.MaxPushBackoff)
	b.MaxInterval = c.opts.MaxPushBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// pushLoop keeps one push session open, reconnecting with bounded
// exponential backoff. The cache is never dropped on disconnect.
func (c *Controller) pushLoop(ctx context.Context) {
	epoch := c.epoch.Load()
	b := c.newBackoff()
	for {
		if ctx.Err() != nil {
			return
		}
		stream, err := c.push.Connect(ctx)
		if err == nil {
			b.Reset()
			c.setPushConnected(true)
			err = c.readStream(ctx, stream, epoch)
			_ = stream.Close()
			c.setPushConnected(false)
		}
		if ctx.Err() != nil {
			return
		}
		wait := b.NextBackOff()
		slog.Debug("sync: push disconnected", "err", err, "retry_in", wait)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (c *Controller) readStream(ctx context.Context, stream remote.EventStream, epoch uint64) error {
	for {
		ev, err := stream.Next()
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = c.applyEvent(ev, &epoch)
	}
}
