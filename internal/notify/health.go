package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/remote"
)

const DefaultHealthInterval = 30 * time.Second

// Prober probes the service health endpoint
type Prober interface {
	Health(ctx context.Context) (*remote.HealthResponse, error)
}

// HealthMonitor polls the health endpoint independently of snapshot polling.
// Status starts healthy and changes are published to subscribers.
type HealthMonitor struct {
	probe    Prober
	interval time.Duration

	mu      sync.Mutex
	status  models.ServiceStatus
	subs    map[int]func(models.ServiceStatus)
	nextSub int
}

// NewHealthMonitor creates a monitor. A zero interval takes the default.
func NewHealthMonitor(p Prober, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	return &HealthMonitor{
		probe:    p,
		interval: interval,
		status:   models.ServiceHealthy,
		subs:     make(map[int]func(models.ServiceStatus)),
	}
}

// Run probes immediately and then on every interval until ctx is done
func (h *HealthMonitor) Run(ctx context.Context) {
	h.Check(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Check runs one probe and records the result
func (h *HealthMonitor) Check(ctx context.Context) models.ServiceStatus {
	resp, err := h.probe.Health(ctx)
	if ctx.Err() != nil {
		return h.Status()
	}
	status := Classify(resp, err)
	if err != nil {
		slog.Debug("health: probe failed", "status", status, "err", err)
	}
	h.set(status)
	return status
}

// Classify maps a probe outcome onto the three-state status: transport
// failures are offline, any other failure or an unhealthy body is degraded.
func Classify(resp *remote.HealthResponse, err error) models.ServiceStatus {
	if err != nil {
		var ne *remote.NetworkError
		if errors.As(err, &ne) {
			return models.ServiceOffline
		}
		return models.ServiceDegraded
	}
	if resp != nil && resp.Status != "" {
		switch strings.ToLower(resp.Status) {
		case "healthy", "ok":
		default:
			return models.ServiceDegraded
		}
	}
	return models.ServiceHealthy
}

// Status returns the last recorded status
func (h *HealthMonitor) Status() models.ServiceStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Subscribe registers fn for status changes
func (h *HealthMonitor) Subscribe(fn func(models.ServiceStatus)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *HealthMonitor) set(status models.ServiceStatus) {
	h.mu.Lock()
	if h.status == status {
		h.mu.Unlock()
		return
	}
	h.status = status
	fns := make([]func(models.ServiceStatus), 0, len(h.subs))
	for id := 0; id < h.nextSub; id++ {
		if fn, ok := h.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(status)
	}
}
