package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "SPRINTDESK_HTTP_TIMEOUT"

	// ActorHeader carries the acting user id resolved by the auth layer.
	ActorHeader = "X-Actor-ID"
)

// Client is a simple HTTP client for the sprintdesk API.
type Client struct {
	baseURL string
	http    *http.Client
	actorID int64
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// WithActor returns a copy of the client that sends actorID on every request.
func (c *Client) WithActor(actorID int64) *Client {
	clone := *c
	clone.actorID = actorID
	return &clone
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) CreateProject(ctx context.Context, req ProjectCreateRequest) (ProjectView, error) {
	var resp ProjectView
	err := c.do(ctx, http.MethodPost, "/v1/projects", nil, req, &resp)
	return resp, err
}

func (c *Client) ListProjects(ctx context.Context) ([]ProjectView, error) {
	var resp []ProjectView
	err := c.do(ctx, http.MethodGet, "/v1/projects", nil, nil, &resp)
	return resp, err
}

func (c *Client) GetProject(ctx context.Context, projectID int64) (ProjectView, error) {
	var resp ProjectView
	err := c.do(ctx, http.MethodGet, projectPath(projectID), nil, nil, &resp)
	return resp, err
}

func (c *Client) ProjectOverview(ctx context.Context, projectID int64) (ProjectOverview, error) {
	var resp ProjectOverview
	err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/overview", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateSprint(ctx context.Context, projectID int64, req SprintCreateRequest) (SprintSnapshotView, error) {
	var resp SprintSnapshotView
	err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/sprints", nil, req, &resp)
	return resp, err
}

func (c *Client) GetSprint(ctx context.Context, projectID, sprintID int64) (SprintSnapshotView, error) {
	var resp SprintSnapshotView
	err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/sprints/"+formatID(sprintID), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateSprint(ctx context.Context, projectID, sprintID int64, req SprintUpdateRequest) (SprintSnapshotView, error) {
	var resp SprintSnapshotView
	err := c.do(ctx, http.MethodPatch, projectPath(projectID)+"/sprints/"+formatID(sprintID), nil, req, &resp)
	return resp, err
}

func (c *Client) CreateTask(ctx context.Context, projectID int64, req TaskCreateRequest) (TaskView, error) {
	var resp TaskView
	err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/tasks", nil, req, &resp)
	return resp, err
}

func (c *Client) GetTask(ctx context.Context, projectID, taskID int64) (TaskView, error) {
	var resp TaskView
	err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/tasks/"+formatID(taskID), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateTask(ctx context.Context, projectID, taskID int64, req TaskUpdateRequest) (TaskView, error) {
	var resp TaskView
	err := c.do(ctx, http.MethodPatch, projectPath(projectID)+"/tasks/"+formatID(taskID), nil, req, &resp)
	return resp, err
}

func (c *Client) LogTime(ctx context.Context, projectID, taskID int64, req TimeLogRequest) (TimeLogResult, error) {
	var resp TimeLogResult
	err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/tasks/"+formatID(taskID)+"/time", nil, req, &resp)
	return resp, err
}

func (c *Client) ListRisks(ctx context.Context, projectID int64, sprintID *int64) (RiskListResponse, error) {
	var resp RiskListResponse
	err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/risks", sprintQuery(sprintID), nil, &resp)
	return resp, err
}

func (c *Client) CreateRisk(ctx context.Context, projectID int64, req RiskCreateRequest) (RiskView, error) {
	var resp RiskView
	err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/risks", nil, req, &resp)
	return resp, err
}

func (c *Client) UpdateRisk(ctx context.Context, projectID, riskID int64, req RiskUpdateRequest) (RiskView, error) {
	var resp RiskView
	err := c.do(ctx, http.MethodPatch, projectPath(projectID)+"/risks/"+formatID(riskID), nil, req, &resp)
	return resp, err
}

func (c *Client) ListChangeRequests(ctx context.Context, projectID int64, sprintID *int64) ([]ChangeRequestView, error) {
	var resp []ChangeRequestView
	err := c.do(ctx, http.MethodGet, projectPath(projectID)+"/change-requests", sprintQuery(sprintID), nil, &resp)
	return resp, err
}

func (c *Client) CreateChangeRequest(ctx context.Context, projectID int64, req ChangeRequestCreateRequest) (ChangeRequestView, error) {
	var resp ChangeRequestView
	err := c.do(ctx, http.MethodPost, projectPath(projectID)+"/change-requests", nil, req, &resp)
	return resp, err
}

func (c *Client) ApproveChangeRequest(ctx context.Context, projectID, changeRequestID int64, req ChangeRequestApproveRequest) (ChangeRequestView, error) {
	var resp ChangeRequestView
	path := projectPath(projectID) + "/change-requests/" + formatID(changeRequestID) + "/approve"
	err := c.do(ctx, http.MethodPost, path, nil, req, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setActorHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
	}
	return apiErr
}

func (c *Client) setActorHeader(req *http.Request) {
	if c.actorID <= 0 || req == nil {
		return
	}
	req.Header.Set(ActorHeader, strconv.FormatInt(c.actorID, 10))
}

func projectPath(projectID int64) string {
	return "/v1/projects/" + formatID(projectID)
}

func formatID(id int64) string {
	return url.PathEscape(strconv.FormatInt(id, 10))
}

func sprintQuery(sprintID *int64) url.Values {
	if sprintID == nil {
		return nil
	}
	return url.Values{"sprintId": []string{strconv.FormatInt(*sprintID, 10)}}
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
