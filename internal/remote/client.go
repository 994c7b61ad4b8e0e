package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sentinel-sim/sentinel/internal/models"
)

// Client is an HTTP client for the campaign service.
type Client struct {
	BaseURL  string
	Workflow models.Workflow
	HTTP     *http.Client
}

// New creates a new client. An empty workflow defaults to campaigns.
func New(baseURL string, workflow models.Workflow) *Client {
	if workflow == "" {
		workflow = models.WorkflowCampaign
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Workflow: workflow,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) collectionPath() string {
	if c.Workflow == models.WorkflowReport {
		return "/api/v1/reports"
	}
	return "/campaigns"
}

// --- Read methods ---

// ListCampaigns fetches the full campaign snapshot. Malformed entries are
// quarantined and counted in dropped.
func (c *Client) ListCampaigns(ctx context.Context) (campaigns []models.Campaign, dropped int, err error) {
	var resp []campaignWire
	if err := c.do(ctx, "list campaigns", http.MethodGet, c.collectionPath(), nil, &resp); err != nil {
		return nil, 0, err
	}
	campaigns, dropped = decodeCampaigns(resp, c.Workflow)
	return campaigns, dropped, nil
}

// GetCampaign fetches one entity. The report service serves it directly;
// the campaign service has no single-campaign route, so the snapshot is
// searched instead. A missing id wraps ErrNotFound.
func (c *Client) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	if c.Workflow == models.WorkflowReport {
		var resp campaignWire
		if err := c.do(ctx, "get campaign", http.MethodGet, fmt.Sprintf("%s/%d", c.collectionPath(), id), nil, &resp); err != nil {
			return nil, err
		}
		got, err := resp.toModel(c.Workflow)
		if err != nil {
			return nil, fmt.Errorf("get campaign: %w", err)
		}
		return &got, nil
	}

	campaigns, _, err := c.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	for i := range campaigns {
		if campaigns[i].ID == id {
			return &campaigns[i], nil
		}
	}
	return nil, fmt.Errorf("campaign #%d: %w", id, ErrNotFound)
}

// ListUsers fetches all targeted users. The report service has no user
// directory, so an empty list is returned for that workflow.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, int, error) {
	if c.Workflow == models.WorkflowReport {
		return nil, 0, nil
	}
	var resp []models.User
	if err := c.do(ctx, "list users", http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, 0, err
	}
	users, dropped := decodeUsers(resp)
	return users, dropped, nil
}

// GetStats fetches the aggregate header numbers. Returns nil stats for the
// report workflow; callers derive them from the snapshot instead.
func (c *Client) GetStats(ctx context.Context) (*models.Stats, error) {
	if c.Workflow == models.WorkflowReport {
		return nil, nil
	}
	var resp models.Stats
	if err := c.do(ctx, "get stats", http.MethodGet, "/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Mutations ---

// CreateCampaign creates a campaign. Exactly one request is issued; non-2xx
// responses come back as *ServerError.
func (c *Client) CreateCampaign(ctx context.Context, req *CreateCampaignRequest) (*models.Campaign, error) {
	var body any = req
	if c.Workflow == models.WorkflowReport {
		body = reportCreateRequest{RawEmail: fmt.Sprintf("Subject: %s\n\n%s", req.Name, req.Description)}
	}
	var resp campaignWire
	if err := c.do(ctx, "create campaign", http.MethodPost, c.collectionPath(), body, &resp); err != nil {
		return nil, err
	}
	created, err := resp.toModel(c.Workflow)
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return &created, nil
}

// LaunchCampaign moves a campaign to active.
func (c *Client) LaunchCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	var resp campaignWire
	if err := c.do(ctx, "launch campaign", http.MethodPut, fmt.Sprintf("/campaigns/%d/launch", id), nil, &resp); err != nil {
		return nil, err
	}
	launched, err := resp.toModel(c.Workflow)
	if err != nil {
		return nil, fmt.Errorf("launch campaign: %w", err)
	}
	return &launched, nil
}

// SimulateClick records a simulated click on a campaign's link.
func (c *Client) SimulateClick(ctx context.Context, id int64) (*SimulateClickResponse, error) {
	var resp SimulateClickResponse
	if err := c.do(ctx, "simulate click", http.MethodPost, fmt.Sprintf("/simulate-click/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.CampaignID == 0 {
		resp.CampaignID = id
	}
	return &resp, nil
}

// --- HTTP helpers ---

// apiError is the error body returned by the service. FastAPI uses "detail".
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &ServerError{Op: op, StatusCode: resp.StatusCode}
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil {
			se.Code = apiErr.Code
			se.Message = apiErr.Message
			if se.Message == "" {
				se.Message = apiErr.Detail
			}
		}
		if se.Message == "" {
			se.Message = strings.TrimSpace(string(respBody))
		}
		return se
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}
