package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-sim/sentinel/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ptr[T any](v T) *T { return &v }

func newTestServer(t *testing.T, r chi.Router) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestListCampaignsQuarantinesInvalid(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/campaigns", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "Q1 Phish", "status": "active", "sent_count": 10, "click_count": 2},
			{"id": 2, "name": "bad", "status": "exploded"},
			{"id": 3, "name": "Q2", "status": "draft"},
		})
	})
	c := New(newTestServer(t, r).URL, models.WorkflowCampaign)

	got, dropped, err := c.ListCampaigns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.InDelta(t, 0.2, got[0].ClickRate(), 1e-9)
	assert.Equal(t, models.StatusDraft, got[1].Status)
}

func TestListCampaignsReportWorkflow(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/reports", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 7, "status": "complete", "verdict": "Malicious", "ai_confidence": 0.93, "ai_summary": "Credential harvest"},
			{"id": 8, "status": "complete", "ai_summary": "no verdict"},
		})
	})
	c := New(newTestServer(t, r).URL, models.WorkflowReport)

	got, dropped, err := c.ListCampaigns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, got, 1)
	assert.Equal(t, "Credential harvest", got[0].Summary)
	require.NotNil(t, got[0].Verdict)
	assert.Equal(t, models.VerdictMalicious, *got[0].Verdict)

	users, _, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDecodeCampaignsChecksWorkflow(t *testing.T) {
	tests := []struct {
		name        string
		workflow    models.Workflow
		in          campaignWire
		wantDropped int
	}{
		{"report status in campaign workflow", models.WorkflowCampaign, campaignWire{ID: 1, Status: "processing"}, 1},
		{"campaign status in report workflow", models.WorkflowReport, campaignWire{ID: 2, Status: "active"}, 1},
		{"completed with verdict", models.WorkflowCampaign, campaignWire{ID: 7, Status: "completed", Verdict: ptr("Safe"), Confidence: ptr(0.8)}, 0},
		{"completed without verdict", models.WorkflowCampaign, campaignWire{ID: 8, Status: "completed"}, 0},
		{"pending report", models.WorkflowReport, campaignWire{ID: 9, Status: "pending"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, dropped := decodeCampaigns([]campaignWire{tt.in}, tt.workflow)
			assert.Equal(t, tt.wantDropped, dropped)
			assert.Len(t, kept, 1-tt.wantDropped)
		})
	}
}

func TestGetCampaign(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/reports/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "7" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Report not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 7, "status": "complete", "verdict": "Spam", "ai_confidence": 0.6,
			"raw_email": "Subject: hi", "extracted_urls": []string{"http://x"},
		})
	})
	r.Get("/campaigns", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 3, "name": "Q3", "status": "scheduled"}})
	})
	url := newTestServer(t, r).URL

	reports := New(url, models.WorkflowReport)
	got, err := reports.GetCampaign(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, got.Status)
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.6, *got.Confidence, 1e-9)
	_, err = reports.GetCampaign(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)

	campaigns := New(url, models.WorkflowCampaign)
	got, err = campaigns.GetCampaign(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Q3", got.Name)
	_, err = campaigns.GetCampaign(context.Background(), 4)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCampaignServerError(t *testing.T) {
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Post("/campaigns", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "name taken"})
	})
	c := New(newTestServer(t, r).URL, "")

	_, err := c.CreateCampaign(context.Background(), &CreateCampaignRequest{Name: "dup"})
	require.Error(t, err)
	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
	assert.Equal(t, "name taken", se.Message)
	assert.False(t, IsTransient(err))
	assert.Equal(t, int32(1), calls.Load(), "create must not be retried")
}

func TestCreateCampaignSendsFields(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/campaigns", func(w http.ResponseWriter, req *http.Request) {
		var body CreateCampaignRequest
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "Q3 Payroll", body.Name)
		assert.Equal(t, []string{"Sales Team"}, body.TargetUsers)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 42, "name": body.Name, "status": "draft"})
	})
	c := New(newTestServer(t, r).URL, models.WorkflowCampaign)

	got, err := c.CreateCampaign(context.Background(), &CreateCampaignRequest{
		Name:         "Q3 Payroll",
		Difficulty:   "medium",
		TargetUsers:  []string{"Sales Team"},
		ScheduleType: "now",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
}

func TestLaunchAndSimulateClick(t *testing.T) {
	r := chi.NewRouter()
	r.Put("/campaigns/{id}/launch", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "5", chi.URLParam(req, "id"))
		writeJSON(w, http.StatusOK, map[string]any{"id": 5, "status": "active"})
	})
	r.Post("/simulate-click/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"click_count": 3})
	})
	c := New(newTestServer(t, r).URL, models.WorkflowCampaign)

	launched, err := c.LaunchCampaign(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, launched.Status)

	click, err := c.SimulateClick(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), click.CampaignID)
	assert.Equal(t, 3, click.ClickCount)
}

func TestNotFoundUnwraps(t *testing.T) {
	c := New(newTestServer(t, chi.NewRouter()).URL, models.WorkflowCampaign)
	_, err := c.LaunchCampaign(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(chi.NewRouter())
	url := srv.URL
	srv.Close()

	_, err := New(url, models.WorkflowCampaign).Health(context.Background())
	require.Error(t, err)
	var ne *NetworkError
	assert.True(t, errors.As(err, &ne))
	assert.True(t, IsTransient(err))
}
