package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arloliu/seatplan/internal/logger"
	"github.com/arloliu/seatplan/types"
)

const maxErrorBody = 512

// HTTP talks to the solver and export service.
type HTTP struct {
	base   *url.URL
	client *http.Client
	logger types.Logger
}

var (
	_ types.SolverBackend = (*HTTP)(nil)
	_ types.ExportBackend = (*HTTP)(nil)
)

// Option configures an HTTP backend.
type Option func(*HTTP)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		h.client = c
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		h.client.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l types.Logger) Option {
	return func(h *HTTP) {
		h.logger = l
	}
}

// NewHTTP creates a backend rooted at baseURL.
//
// Parameters:
//   - baseURL: Absolute http or https URL of the service
//   - opts: Client, timeout and logger overrides
//
// Returns:
//   - *HTTP: Backend usable as both solver and export backend
//   - error: ErrInvalidBaseURL
func NewHTTP(baseURL string, opts ...Option) (*HTTP, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	h := &HTTP{
		base:   u,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// Submit posts a solver job.
func (h *HTTP) Submit(ctx context.Context, payload types.SolvePayload) (string, error) {
	var resp struct {
		TaskID string `json:"task_id"`
	}
	if err := h.do(ctx, http.MethodPost, "solve/start", payload, &resp); err != nil {
		return "", err
	}
	if resp.TaskID == "" {
		return "", ErrMissingTaskID
	}

	return resp.TaskID, nil
}

// Status polls a solver job.
func (h *HTTP) Status(ctx context.Context, taskID string) (types.StatusReport, error) {
	var report types.StatusReport
	if err := h.do(ctx, http.MethodGet, "solve/status/"+url.PathEscape(taskID), nil, &report); err != nil {
		return types.StatusReport{}, err
	}

	return report, nil
}

// Export renders a plan. Both the nested {"download": {...}} response and a
// bare flat link object are accepted.
func (h *HTTP) Export(ctx context.Context, req types.ExportRequest) (types.ExportLinks, error) {
	var raw json.RawMessage
	if err := h.do(ctx, http.MethodPost, "export", req, &raw); err != nil {
		return types.ExportLinks{}, err
	}

	var wrapped struct {
		Download *types.ExportLinks `json:"download"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return types.ExportLinks{}, fmt.Errorf("decode export response: %w", err)
	}
	if wrapped.Download != nil {
		return *wrapped.Download, nil
	}

	var links types.ExportLinks
	if err := json.Unmarshal(raw, &links); err != nil {
		return types.ExportLinks{}, fmt.Errorf("decode export response: %w", err)
	}

	return links, nil
}

func (h *HTTP) do(ctx context.Context, method, path string, body, out any) error {
	endpoint := h.base.JoinPath(path).String()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		h.logger.Debug("backend request failed", "method", method, "url", endpoint, "status", resp.StatusCode)

		return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, method, endpoint, resp.StatusCode,
			strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}
