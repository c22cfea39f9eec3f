// Package httpclient implements the backend ports over the HTTP/JSON workflow API.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/actionboard/internal/app"
	"github.com/hylla/actionboard/internal/domain"
)

// DefaultBaseURL is the local development backend.
const DefaultBaseURL = "http://localhost:8000"

// maxErrorBodyBytes bounds how much of a failure body is read for its detail.
const maxErrorBodyBytes int64 = 64 << 10

// Logger receives request diagnostics.
type Logger interface {
	Debug(msg string, keyvals ...any)
}

// Config configures one Client.
type Config struct {
	BaseURL string
	// Timeout is applied per request when positive; zero keeps the transport default.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     Logger
	NewID      func() string
}

// Client talks to the workflow backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  Logger
	newID   func() string
}

var _ app.Backend = (*Client)(nil)

// New builds a client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", raw)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout > 0 {
		clone := *httpClient
		clone.Timeout = cfg.Timeout
		httpClient = &clone
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Client{baseURL: base, http: httpClient, logger: cfg.Logger, newID: newID}, nil
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type tasksEnvelope struct {
	Tasks []domain.Task `json:"tasks"`
}

// ListTasks fetches the task collection.
func (c *Client) ListTasks(ctx context.Context, filter app.TaskFilter) ([]domain.Task, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	var out tasksEnvelope
	if err := c.doJSON(ctx, "list tasks", http.MethodGet, "/tasks", query, nil, &out); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		out.Tasks = []domain.Task{}
	}
	return out.Tasks, nil
}

type statusRequest struct {
	Status domain.Status `json:"status"`
}

// UpdateTaskStatus writes one task status. The response body is ignored.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, status domain.Status) error {
	body, err := json.Marshal(statusRequest{Status: status})
	if err != nil {
		return fmt.Errorf("encode status request: %w", err)
	}
	return c.doJSON(ctx, "update task status", http.MethodPatch, taskPath(id)+"/status", nil, bytes.NewReader(body), nil)
}

// DeleteTask removes one task. The response body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "delete task", http.MethodDelete, taskPath(id), nil, nil, nil)
}

// ProcessWorkflow uploads one audio file and waits for the whole pipeline.
func (c *Client) ProcessWorkflow(ctx context.Context, upload app.AudioUpload, destination domain.Destination) (domain.WorkflowResult, error) {
	if upload.Body == nil {
		return domain.WorkflowResult{}, app.ErrNoFileSelected
	}
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("file", upload.FileName)
		if err == nil {
			_, err = io.Copy(part, upload.Body)
		}
		if err == nil {
			err = writer.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	query := url.Values{}
	query.Set("destination", string(destination))
	req, err := c.newRequest(ctx, http.MethodPost, "/process-full-workflow", query, pr)
	if err != nil {
		_ = pr.Close()
		return domain.WorkflowResult{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out domain.WorkflowResult
	if err := c.send(req, "process workflow", &out); err != nil {
		_ = pr.Close()
		return domain.WorkflowResult{}, err
	}
	return out, nil
}

// Health is the backend liveness report.
type Health struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"-"`
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var raw map[string]any
	if err := c.doJSON(ctx, "health", http.MethodGet, "/health", nil, nil, &raw); err != nil {
		return Health{}, err
	}
	out := Health{Details: map[string]any{}}
	for k, v := range raw {
		if k == "status" {
			out.Status, _ = v.(string)
			continue
		}
		out.Details[k] = v
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, body io.Reader, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, op, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + path
	target.RawQuery = query.Encode()
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", c.newID())
	return req, nil
}

func (c *Client) send(req *http.Request, op string, out any) error {
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.debug("backend request failed", req, 0, started, "err", err)
		return &app.TransportError{Op: op, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()
	c.debug("backend request", req, resp.StatusCode, started)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &app.APIError{Op: op, StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) debug(msg string, req *http.Request, status int, started time.Time, keyvals ...any) {
	if c.logger == nil {
		return
	}
	fields := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"status", status,
		"duration", time.Since(started).Round(time.Millisecond),
		"request_id", req.Header.Get("X-Request-ID"),
	}
	c.logger.Debug(msg, append(fields, keyvals...)...)
}

// readDetail extracts the `detail` message from a failure body. Validation
// errors carry a list of objects with `msg` fields instead of a string.
func readDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(raw))
	}
	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(string(envelope.Detail))
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}
