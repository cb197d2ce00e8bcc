package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// DeleteThread deletes a single thread. sandboxID, when non-empty, names the
// sandbox environment the platform must clean up alongside the thread.
func (c *Client) DeleteThread(ctx context.Context, threadID string, sandboxID string) error {
	path := "/v1/threads/" + url.PathEscape(threadID)
	if sandboxID != "" {
		path += "?sandbox_id=" + url.QueryEscape(sandboxID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("client: build delete %s: %w", threadID, err)
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("client: delete thread %s: %w", threadID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		// Already gone. A reload between navigate and delete can leave this
		// state behind; treat it as success.
		return nil
	default:
		return fmt.Errorf("client: delete thread %s: %s", threadID, resp.Status)
	}
}

// BulkDeleteThreads deletes every thread in ids with bounded concurrency.
// sandboxes maps thread IDs to sandbox IDs; threads absent from the map
// simply have no environment to clean up and still settle. onSettled fires
// exactly once per id as it settles, success or failure. The returned
// partitions preserve the order of ids.
func (c *Client) BulkDeleteThreads(ctx context.Context, ids []string, sandboxes map[string]string, onSettled func(threadID string, err error)) (succeeded, failed []string, err error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	opID := uuid.New().String()
	log := c.operationLog(opID)
	log.Info("client: bulk delete %s: %d threads, %d with sandboxes", opID, len(ids), len(sandboxes))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]error, len(ids))
	)

	for _, id := range ids {
		if err := c.limiter.acquire(ctx); err != nil {
			// Context cancelled mid-operation; settle the rest as failed.
			mu.Lock()
			results[id] = err
			if onSettled != nil {
				onSettled(id, err)
			}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(threadID string) {
			defer wg.Done()
			defer c.limiter.release()

			delErr := c.DeleteThread(ctx, threadID, sandboxes[threadID])
			if delErr != nil {
				log.Warn("client: bulk delete %s: thread %s: %s", opID, threadID, delErr.Error())
			}

			// onSettled runs under the lock so progress callbacks are
			// serialized and monotonic even with concurrent workers.
			mu.Lock()
			results[threadID] = delErr
			if onSettled != nil {
				onSettled(threadID, delErr)
			}
			mu.Unlock()
		}(id)
	}

	wg.Wait()

	order := make(map[string]int, len(ids))
	for i, id := range ids {
		order[id] = i
	}
	for id, delErr := range results {
		if delErr == nil {
			succeeded = append(succeeded, id)
		} else {
			failed = append(failed, id)
		}
	}
	sort.Slice(succeeded, func(i, j int) bool { return order[succeeded[i]] < order[succeeded[j]] })
	sort.Slice(failed, func(i, j int) bool { return order[failed[i]] < order[failed[j]] })

	log.Info("client: bulk delete %s: %d succeeded, %d failed", opID, len(succeeded), len(failed))
	return succeeded, failed, nil
}
