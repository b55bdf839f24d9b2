package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/possync/internal/models"
	"github.com/iudanet/possync/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI defines the remote calls the sync engine and connectivity
// monitor make against the ERP backend.
type ClientAPI interface {
	// ExecuteOperation replays one offline mutation. A non-2xx response is
	// returned as *Error; transport failures are returned as plain errors.
	ExecuteOperation(ctx context.Context, token string, op *models.SyncOperation) (*api.MutationResponse, error)

	// Ping probes the backend's health endpoint.
	Ping(ctx context.Context) error
}

// Error describes an HTTP-level failure from the ERP backend. A 409 carries
// the server's conflicting document in ConflictData.
type Error struct {
	ConflictData map[string]any
	Message      string
	StatusCode   int
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsConflict reports whether the failure was a domain conflict (409).
func (e *Error) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// Client is the HTTP client for the ERP mutation API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Compile-time check that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new API client. The 30s timeout bounds how long a hung
// request can hold the engine's single-flight slot.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Carry the Authorization header across redirects.
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// methodFor maps the operation type to its HTTP method.
func methodFor(opType models.OperationType) (string, error) {
	switch opType {
	case models.OperationCreate:
		return http.MethodPost, nil
	case models.OperationUpdate:
		return http.MethodPut, nil
	case models.OperationDelete:
		return http.MethodDelete, nil
	}
	return "", fmt.Errorf("unknown operation type: %s", opType)
}

// ExecuteOperation replays one offline mutation against the backend.
func (c *Client) ExecuteOperation(ctx context.Context, token string, op *models.SyncOperation) (*api.MutationResponse, error) {
	method, err := methodFor(op.Type)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(op.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operation data: %w", err)
	}

	url := c.baseURL + EndpointFor(op.Entity)
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(api.HeaderTenantID, op.TenantID)
	req.Header.Set(api.HeaderOfflineSync, "true")
	req.Header.Set(api.HeaderClientTimestamp, strconv.FormatInt(op.Timestamp, 10))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var result api.MutationResponse
		if len(respBody) > 0 {
			if err := json.Unmarshal(respBody, &result); err != nil {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return &result, nil
	}

	// Non-2xx: decode whatever the backend sent and classify.
	var errResp api.MutationResponse
	_ = json.Unmarshal(respBody, &errResp)

	message := errResp.Detail
	if message == "" {
		message = errResp.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
	if resp.StatusCode == http.StatusConflict {
		apiErr.ConflictData = errResp.Data
	}

	return nil, apiErr
}

// Ping probes the backend's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	return nil
}
