package app

import (
	"context"

	"crewdeck/internal/client"
	"crewdeck/internal/logging"
	"crewdeck/internal/store"
)

// cachingDeleter forwards deletions to the platform API and prunes the local
// cache for whatever succeeded, so a restart before the next refresh does not
// resurrect deleted threads. Cache pruning is best-effort; the next refresh
// reconciles regardless.
type cachingDeleter struct {
	api   *client.Client
	cache *store.Store
	log   *logging.Logger
}

func (d cachingDeleter) DeleteThread(ctx context.Context, threadID string, sandboxID string) error {
	if err := d.api.DeleteThread(ctx, threadID, sandboxID); err != nil {
		return err
	}
	if err := d.cache.DeleteThreads(ctx, []string{threadID}); err != nil {
		d.log.Warn("app: prune cached thread %s: %s", threadID, err.Error())
	}
	return nil
}

func (d cachingDeleter) BulkDeleteThreads(ctx context.Context, ids []string, sandboxes map[string]string, onSettled func(threadID string, err error)) (succeeded, failed []string, err error) {
	succeeded, failed, err = d.api.BulkDeleteThreads(ctx, ids, sandboxes, onSettled)
	if err == nil && len(succeeded) > 0 {
		if perr := d.cache.DeleteThreads(ctx, succeeded); perr != nil {
			d.log.Warn("app: prune cached threads: %s", perr.Error())
		}
	}
	return succeeded, failed, err
}
