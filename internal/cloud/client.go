package cloud

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

	"go.uber.org/zap"

	"github.com/muurk/lightbridge/internal/logging"
	"github.com/muurk/lightbridge/internal/version"
)

const (
	// DefaultBaseURL is the Govee developer API endpoint
	DefaultBaseURL = "https://developer-api.govee.com"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// APIKeyHeader carries the caller's API key on every request
	APIKeyHeader = "Govee-API-Key"

	// maxResponseSize caps how much of a response body is read
	maxResponseSize = 1 << 20
)

// Client is a pass-through client for the Govee cloud API. Response bodies
// are returned as raw JSON; the client does not model the API's schema.
type Client struct {
	// BaseURL is the API root (default: "https://developer-api.govee.com")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a cloud client for baseURL. An empty baseURL selects
// DefaultBaseURL; a zero timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// ControlRequest is the body of a device control call.
type ControlRequest struct {
	Device string          `json:"device"`
	Model  string          `json:"model"`
	Cmd    json.RawMessage `json:"cmd"`
}

// GetDevices lists the devices registered to the API key's account.
func (c *Client) GetDevices(ctx context.Context, apiKey string) (json.RawMessage, error) {
	if err := requireKey(apiKey); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, "/v1/devices", apiKey, nil)
}

// SendCommand sends one control command, e.g. {"name":"turn","value":"on"}.
func (c *Client) SendCommand(ctx context.Context, apiKey, device, model string, cmd json.RawMessage) (json.RawMessage, error) {
	if err := requireKey(apiKey); err != nil {
		return nil, err
	}
	if device == "" || model == "" {
		return nil, newValidationError("device and model are required")
	}
	if len(cmd) == 0 || !json.Valid(cmd) {
		return nil, newValidationError("cmd must be a JSON value")
	}

	body, err := json.Marshal(ControlRequest{Device: device, Model: model, Cmd: cmd})
	if err != nil {
		return nil, newValidationError(fmt.Sprintf("cannot encode control request: %v", err))
	}
	return c.do(ctx, http.MethodPut, "/v1/devices/control", apiKey, body)
}

// GetDeviceState queries a device's state through the cloud.
func (c *Client) GetDeviceState(ctx context.Context, apiKey, device, model string) (json.RawMessage, error) {
	if err := requireKey(apiKey); err != nil {
		return nil, err
	}
	if device == "" || model == "" {
		return nil, newValidationError("device and model are required")
	}

	q := url.Values{}
	q.Set("device", device)
	q.Set("model", model)
	return c.do(ctx, http.MethodGet, "/v1/devices/state?"+q.Encode(), apiKey, nil)
}

func (c *Client) do(ctx context.Context, method, path, apiKey string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, newNetworkError("failed to create request", err)
	}
	req.Header.Set(APIKeyHeader, apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, newNetworkError("cloud API unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, newNetworkError("failed to read response", err)
	}

	logging.Debug("Cloud API call",
		zap.String("method", method),
		zap.String("path", strings.SplitN(path, "?", 2)[0]),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, data)
	}
	if !json.Valid(data) {
		return nil, newParseError("response is not JSON", nil)
	}
	return json.RawMessage(data), nil
}

func requireKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return newValidationError("API key is required")
	}
	return nil
}
