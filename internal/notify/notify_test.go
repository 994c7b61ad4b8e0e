package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-sim/sentinel/internal/models"
	"github.com/sentinel-sim/sentinel/internal/remote"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func clickEvent(campaignID int64) models.Event {
	data, _ := json.Marshal(map[string]any{"campaign_id": campaignID, "user_id": 3})
	return models.Event{Type: models.EventUserClicked, Data: data}
}

func TestDispatchDedupWithinWindow(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := NewDispatcher(5*time.Second, 0, clock.Now)

	n, ok := d.Dispatch(clickEvent(7))
	require.True(t, ok)
	assert.Equal(t, KindEvent, n.Kind)
	assert.Equal(t, int64(7), n.EntityID)

	clock.now = clock.now.Add(2 * time.Second)
	_, ok = d.Dispatch(clickEvent(7))
	assert.False(t, ok, "duplicate inside window should be suppressed")

	_, ok = d.Dispatch(clickEvent(8))
	assert.True(t, ok, "different entity is not a duplicate")

	clock.now = clock.now.Add(4 * time.Second)
	_, ok = d.Dispatch(clickEvent(7))
	assert.True(t, ok, "window has passed since the first notice")

	assert.Len(t, d.Recent(), 3)
}

func TestDispatchIgnoresUndecodableEvents(t *testing.T) {
	d := NewDispatcher(0, 0, nil)
	_, ok := d.Dispatch(models.Event{Type: "heartbeat", Data: json.RawMessage(`{}`)})
	assert.False(t, ok)
	assert.Empty(t, d.Recent())
}

func TestErrorsAreNotDeduplicated(t *testing.T) {
	d := NewDispatcher(time.Minute, 0, nil)
	var got atomic.Int32
	unsub := d.Subscribe(func(Notice) { got.Add(1) })
	defer unsub()

	err := &remote.ServerError{Op: "create campaign", StatusCode: 500}
	d.ServerError("create campaign", err)
	d.ServerError("create campaign", err)
	d.Info("Campaign created successfully!")

	assert.Equal(t, int32(3), got.Load())
	recent := d.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, KindError, recent[0].Kind)
	assert.Less(t, recent[0].Seq, recent[2].Seq)
}

func TestRingIsBounded(t *testing.T) {
	d := NewDispatcher(0, 3, nil)
	for i := 0; i < 5; i++ {
		d.Info("n")
	}
	recent := d.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, uint64(3), recent[0].Seq)
	assert.Equal(t, uint64(5), recent[2].Seq)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		resp *remote.HealthResponse
		err  error
		want models.ServiceStatus
	}{
		{"ok body", &remote.HealthResponse{Status: "healthy"}, nil, models.ServiceHealthy},
		{"empty body", &remote.HealthResponse{}, nil, models.ServiceHealthy},
		{"unhealthy body", &remote.HealthResponse{Status: "degraded"}, nil, models.ServiceDegraded},
		{"server error", nil, &remote.ServerError{Op: "health", StatusCode: 503}, models.ServiceDegraded},
		{"network error", nil, &remote.NetworkError{Op: "health", Err: errors.New("refused")}, models.ServiceOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.resp, tt.err))
		})
	}
}

func TestHealthMonitorPublishesChanges(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	h := NewHealthMonitor(remote.New(srv.URL, models.WorkflowCampaign), time.Hour)
	var changes []models.ServiceStatus
	h.Subscribe(func(s models.ServiceStatus) { changes = append(changes, s) })

	ctx := context.Background()
	assert.Equal(t, models.ServiceHealthy, h.Check(ctx))
	status.Store(http.StatusServiceUnavailable)
	assert.Equal(t, models.ServiceDegraded, h.Check(ctx))
	assert.Equal(t, models.ServiceDegraded, h.Check(ctx))
	srv.Close()
	assert.Equal(t, models.ServiceOffline, h.Check(ctx))

	assert.Equal(t, []models.ServiceStatus{models.ServiceDegraded, models.ServiceOffline}, changes)
}
