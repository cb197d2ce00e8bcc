// Package client talks to the hosted agent platform's REST and SSE APIs.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crewdeck/internal/account"
	"crewdeck/internal/threads"
)

// Logger is the subset of the logging package the client needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// nopLogger discards everything; used when no logger is wired.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}

// Client is the platform API client. List calls are the account, project,
// and thread providers of the UI; failures surface as errors the app renders
// as empty/loading states rather than crashes.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	limiter *limiter
	log     Logger
	opLog   func(opID string) Logger
}

// New creates a Client for the API at baseURL. token may be empty for
// not-yet-authenticated sessions; every request then fails with 401, which
// callers treat like any other transient provider failure. maxConcurrent
// bounds parallel delete requests during bulk operations.
func New(baseURL, token string, maxConcurrent int, log Logger) *Client {
	if log == nil {
		log = nopLogger{}
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		limiter: newLimiter(maxConcurrent),
		log:     log,
	}
}

// SetOpLogFactory installs a per-operation logger factory. Each bulk delete
// gets its own log file keyed by operation ID; the factory may return nil to
// fall back to the shared log.
func (c *Client) SetOpLogFactory(fn func(opID string) Logger) { c.opLog = fn }

// operationLog returns the logger for a bulk operation.
func (c *Client) operationLog(opID string) Logger {
	if c.opLog != nil {
		if l := c.opLog(opID); l != nil {
			return l
		}
	}
	return c.log
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("client: build request %s: %w", path, err)
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("client: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client: GET %s: %s", path, readAPIError(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: GET %s: decode: %w", path, err)
	}
	return nil
}

// authorize attaches the bearer token, if any.
func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// readAPIError extracts the error message from a non-200 response body.
func readAPIError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Sprintf("%s: %s", resp.Status, payload.Error)
	}
	return resp.Status
}

// ListAccounts returns the user's accounts (personal and team).
func (c *Client) ListAccounts(ctx context.Context) ([]account.Account, error) {
	var out []account.Account
	if err := c.get(ctx, "/v1/accounts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProjects returns the account's projects in display order.
func (c *Client) ListProjects(ctx context.Context, accountID string) ([]threads.Project, error) {
	var out []threads.Project
	path := "/v1/accounts/" + url.PathEscape(accountID) + "/projects"
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListThreads returns the account's threads in display order. The aggregator
// relies on this order and never resorts.
func (c *Client) ListThreads(ctx context.Context, accountID string) ([]threads.Thread, error) {
	var out []threads.Thread
	path := "/v1/accounts/" + url.PathEscape(accountID) + "/threads"
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
