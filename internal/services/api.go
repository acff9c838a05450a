// API service for making request/response calls against the control server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/homepanel/internal/models"
	"github.com/desertthunder/homepanel/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL string = "http://localhost:8008"
	defaultTarget  string = "localhost"
	executePath    string = "/execute"
)

// Backend executes actions on the control server.
type Backend interface {
	Execute(ctx context.Context, action string, args map[string]any) (*models.Response, error)
}

// APIService provides raw HTTP access to the control server and the [Backend] call used by the panel.
type APIService struct {
	baseURL    string
	target     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

var _ Backend = (*APIService)(nil)

// APIOption configures an [APIService].
type APIOption func(*APIService)

// WithTarget sets the target host written into request envelopes.
func WithTarget(target string) APIOption {
	return func(a *APIService) {
		if target != "" {
			a.target = target
		}
	}
}

// WithRateLimit throttles outgoing calls. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) APIOption {
	return func(a *APIService) {
		if rps <= 0 {
			a.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l *log.Logger) APIOption {
	return func(a *APIService) {
		if l != nil {
			a.logger = shared.WithLogger(l, "component", "api")
		}
	}
}

// NewAPIService creates a new API service instance for the control server at baseURL.
func NewAPIService(baseURL string, client *http.Client, opts ...APIOption) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		baseURL:    baseURL,
		target:     defaultTarget,
		httpClient: client,
		logger:     shared.NewLogger(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the server URL requests are sent to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	fullURL := a.baseURL + path

	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", shared.ErrTimeout, err)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	var jsonData any
	if err := json.Unmarshal(respBody, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Execute posts a request envelope for action to /execute and decodes the response envelope.
//
// Non-2xx statuses fail with [shared.ErrAPIRequest]. When the backend reports errors the decoded
// response is returned together with an error wrapping [shared.ErrBackendResponse].
func (a *APIService) Execute(ctx context.Context, action string, args map[string]any) (*models.Response, error) {
	if action == "" {
		return nil, fmt.Errorf("%w: action", shared.ErrMissingArgument)
	}

	msg := models.Request{
		ID:     shared.GenerateID(),
		Type:   "request",
		Target: a.target,
		Action: action,
		Args:   args,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	a.logger.Debug("executing action", "action", action, "id", msg.ID)
	raw, err := a.Post(ctx, executePath, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, action, err)
	}
	if !raw.OK() {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, action, raw.StatusCode)
	}

	var resp models.Response
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s response: %v", shared.ErrDecode, action, err)
	}

	if resp.IsError() {
		a.logger.Warn("backend reported errors", "action", action, "errors", resp.ErrorText())
		return &resp, fmt.Errorf("%w: %s: %s", shared.ErrBackendResponse, action, resp.ErrorText())
	}
	return &resp, nil
}

// SendEvent posts an event envelope of the given class, as the pusher does.
func (a *APIService) SendEvent(ctx context.Context, class string, args map[string]any) error {
	if class == "" {
		return fmt.Errorf("%w: event class", shared.ErrMissingArgument)
	}

	eventArgs := map[string]any{}
	for k, v := range args {
		eventArgs[k] = v
	}
	eventArgs["type"] = class

	data, err := json.Marshal(map[string]any{
		"id":     shared.GenerateID(),
		"type":   "event",
		"target": a.target,
		"args":   eventArgs,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	raw, err := a.Post(ctx, executePath, data)
	if err != nil {
		return fmt.Errorf("%w: event %s: %w", shared.ErrAPIRequest, class, err)
	}
	if !raw.OK() {
		return fmt.Errorf("%w: event %s returned status %d", shared.ErrAPIRequest, class, raw.StatusCode)
	}
	return nil
}
