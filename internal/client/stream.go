package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// StatusUpdate is one frame of the platform's agent-status feed.
type StatusUpdate struct {
	ThreadID string `json:"thread_id"`
	Status   string `json:"status"`
}

// StreamStatuses consumes the platform's SSE status feed for accountID and
// calls apply for every status update until the stream ends or ctx is
// cancelled. Cancellation returns nil; a broken stream returns an error so
// the caller can decide whether to reconnect.
func (c *Client) StreamStatuses(ctx context.Context, accountID string, apply func(StatusUpdate)) error {
	path := "/v1/accounts/" + url.PathEscape(accountID) + "/statuses/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("client: build stream request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "text/event-stream")

	// The shared client has a request timeout that would kill a long-lived
	// stream; use a timeout-free client with the same transport.
	streamc := &http.Client{Transport: c.httpc.Transport}
	resp, err := streamc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("client: status stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("client: status stream: %s", readAPIError(resp))
	}

	c.log.Debug("client: status stream connected for account %s", accountID)

	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			// Frame boundary.
			if event == "status" && data != "" {
				var upd StatusUpdate
				if err := json.Unmarshal([]byte(data), &upd); err != nil {
					c.log.Warn("client: status stream: bad frame: %s", err.Error())
				} else if apply != nil {
					apply(upd)
				}
			}
			event, data = "", ""
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("client: status stream: %w", err)
	}
	return nil
}
