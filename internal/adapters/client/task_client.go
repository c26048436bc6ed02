// Package client talks to the taskgrid REST API on behalf of the sheet commands.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taskmaster/taskgrid/internal/infrastructure/config"
	"github.com/taskmaster/taskgrid/internal/ports"
)

// ErrRejected is returned when the server answers a save with status "error".
var ErrRejected = errors.New("save rejected")

// TaskClient implements ports.TaskSaver and ports.TaskLister over HTTP.
type TaskClient struct {
	baseURL string
	token   string
	http    *http.Client
}

var (
	_ ports.TaskSaver  = (*TaskClient)(nil)
	_ ports.TaskLister = (*TaskClient)(nil)
)

// New creates a client from the client config section
func New(cfg config.ClientConfig) *TaskClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TaskClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Save posts one row: to /api/task for a new task, /api/task/{id} otherwise.
func (c *TaskClient) Save(ctx context.Context, id string, req ports.SaveTaskRequest) (string, error) {
	path := "/api/task"
	if id != "" {
		path += "/" + url.PathEscape(id)
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	body, status, err := c.do(ctx, http.MethodPost, path, jsonBody)
	if err != nil {
		return "", err
	}

	var resp ports.SaveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response (status %d): %w", status, err)
	}
	if resp.Status != ports.ResponseStatusSuccess {
		msg := resp.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return "", fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("api error (status %d)", status)
	}

	if resp.TaskID == "" {
		resp.TaskID = id
	}
	return resp.TaskID, nil
}

// List fetches task records, optionally filtered by status. limit <= 0 uses the server default.
func (c *TaskClient) List(ctx context.Context, status string, limit int) ([]ports.TaskRecord, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	body, code, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", code, strings.TrimSpace(string(body)))
	}

	var resp ports.TaskListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	records := make([]ports.TaskRecord, 0, len(resp.Tasks))
	for _, rec := range resp.Tasks {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (c *TaskClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
