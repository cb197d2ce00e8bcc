package threads

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrDeleteInFlight is returned when Confirm is called while a previous
// deletion is still running. The in-flight guard serializes deletes so a
// rapid double-press cannot issue duplicate requests.
var ErrDeleteInFlight = errors.New("delete already in flight")

// ErrNothingPending is returned by Confirm when no deletion was requested.
var ErrNothingPending = errors.New("no pending delete request")

// Deleter executes thread deletion against the platform. Bulk deletion
// settles every id in ids exactly once via onSettled and returns the
// succeeded/failed partition; sandboxes maps thread IDs to the sandbox that
// must be cleaned up alongside them (threads without one are absent).
type Deleter interface {
	DeleteThread(ctx context.Context, threadID string, sandboxID string) error
	BulkDeleteThreads(ctx context.Context, ids []string, sandboxes map[string]string, onSettled func(threadID string, err error)) (succeeded, failed []string, err error)
}

// Navigator moves the UI away from a thread that is about to disappear.
type Navigator interface {
	Push(route string)
}

// NeutralRoute is where the UI lands before its open thread is deleted.
const NeutralRoute = "/dashboard"

// Result summarizes a finished deletion for the UI. Failed > 0 with
// Succeeded > 0 is a warning, not an error: partial bulk failure never
// escalates to fatal.
type Result struct {
	Requested int
	Succeeded int
	Failed    int
	Warning   string
}

// Progress reports bulk progress after each item settles. Percent is
// settled/total and never decreases.
type Progress struct {
	Settled int
	Total   int
	Percent int
}

// pendingKind tracks what Confirm will execute.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingSingle
	pendingBulk
)

// DeleteController coordinates single and bulk thread deletion: the
// pending-confirmation handshake, the navigate-before-delete ordering for
// the open thread, progress reporting, and the in-flight guard. Confirm runs
// off the UI goroutine while the UI keeps polling InFlight, so the mutable
// state sits behind a lock.
type DeleteController struct {
	deleter Deleter

	mu        sync.Mutex
	nav       Navigator
	selection *Selection
	list      []ThreadWithProject
	activeID  string
	pending   pendingKind
	pendingID string
	inFlight  bool

	onProgress func(Progress)
	onResult   func(Result)
}

// NewDeleteController wires a controller to its collaborators. selection is
// shared with the UI layer that fills it.
func NewDeleteController(d Deleter, nav Navigator, sel *Selection) *DeleteController {
	return &DeleteController{
		deleter:   d,
		nav:       nav,
		selection: sel,
	}
}

// SetNavigator wires the navigator once the UI layer exists. The controller
// is constructed during app wiring, before any screen can navigate.
func (c *DeleteController) SetNavigator(nav Navigator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nav = nav
}

// OnProgress registers the bulk progress callback.
func (c *DeleteController) OnProgress(fn func(Progress)) { c.onProgress = fn }

// OnResult registers the completion callback.
func (c *DeleteController) OnResult(fn func(Result)) { c.onResult = fn }

// SetList gives the controller the current aggregated thread list, which it
// uses to resolve sandbox IDs at confirm time.
func (c *DeleteController) SetList(list []ThreadWithProject) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = list
}

// SetActive records which thread is currently open in the UI, or "" when
// none is.
func (c *DeleteController) SetActive(threadID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = threadID
}

// RequestDelete stages a single-thread deletion. Nothing is mutated until
// Confirm.
func (c *DeleteController) RequestDelete(threadID string) error {
	if threadID == "" {
		return fmt.Errorf("threads: request delete: empty thread id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = pendingSingle
	c.pendingID = threadID
	return nil
}

// RequestBulkDelete stages deletion of the current selection. The selection
// must be non-empty.
func (c *DeleteController) RequestBulkDelete() error {
	if c.selection.Len() == 0 {
		return fmt.Errorf("threads: request bulk delete: empty selection")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = pendingBulk
	c.pendingID = ""
	return nil
}

// Cancel drops the pending request without touching data.
func (c *DeleteController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = pendingNone
	c.pendingID = ""
}

// Pending reports whether a delete request awaits confirmation and how many
// threads it covers.
func (c *DeleteController) Pending() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.pending {
	case pendingSingle:
		return true, 1
	case pendingBulk:
		return true, c.selection.Len()
	default:
		return false, 0
	}
}

// InFlight reports whether a confirmed deletion is still running.
func (c *DeleteController) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Confirm executes the staged deletion. If the open thread is part of the
// delete set the navigator is pushed to the neutral route first, so the UI
// never renders a thread mid-deletion. A reload or teardown between the
// navigation and the delete leaves a "navigated but not deleted" state; that
// is tolerated because the thread list is re-fetched on next load.
func (c *DeleteController) Confirm(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrDeleteInFlight
	}
	if c.pending == pendingNone {
		c.mu.Unlock()
		return nil, ErrNothingPending
	}
	c.inFlight = true
	kind, id := c.pending, c.pendingID
	c.pending = pendingNone
	c.pendingID = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	var res *Result
	var err error
	switch kind {
	case pendingSingle:
		res, err = c.deleteSingle(ctx, id)
	case pendingBulk:
		res, err = c.deleteBulk(ctx)
	}
	if err != nil {
		return nil, err
	}

	if c.onResult != nil {
		c.onResult(*res)
	}
	return res, nil
}

func (c *DeleteController) deleteSingle(ctx context.Context, threadID string) (*Result, error) {
	c.navigateAwayFrom([]string{threadID})

	sandboxID := ""
	c.mu.Lock()
	for _, twp := range c.list {
		if twp.ID == threadID && twp.SandboxID != nil {
			sandboxID = *twp.SandboxID
			break
		}
	}
	c.mu.Unlock()

	if err := c.deleter.DeleteThread(ctx, threadID, sandboxID); err != nil {
		// Single-delete failure leaves the thread list unchanged; the caller
		// surfaces it as a user-facing error.
		return nil, fmt.Errorf("threads: delete %s: %w", threadID, err)
	}
	return &Result{Requested: 1, Succeeded: 1}, nil
}

func (c *DeleteController) deleteBulk(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	list := c.list
	c.mu.Unlock()

	ids := c.selection.IDs(list)
	c.navigateAwayFrom(ids)

	sandboxes := SandboxMap(list, ids)

	total := len(ids)
	settled := 0
	succeeded, failed, err := c.deleter.BulkDeleteThreads(ctx, ids, sandboxes, func(string, error) {
		settled++
		if c.onProgress != nil {
			c.onProgress(Progress{
				Settled: settled,
				Total:   total,
				Percent: settled * 100 / total,
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("threads: bulk delete: %w", err)
	}

	res := &Result{
		Requested: total,
		Succeeded: len(succeeded),
		Failed:    len(failed),
	}
	if res.Failed > 0 {
		res.Warning = fmt.Sprintf("%d of %d threads could not be deleted", res.Failed, total)
	}

	c.selection.DeselectAll()
	return res, nil
}

// navigateAwayFrom pushes the neutral route when the active thread is in the
// delete set, and only then lets deletion proceed.
func (c *DeleteController) navigateAwayFrom(ids []string) {
	c.mu.Lock()
	active, nav := c.activeID, c.nav
	c.mu.Unlock()

	if active == "" || nav == nil {
		return
	}
	for _, id := range ids {
		if id == active {
			nav.Push(NeutralRoute)
			c.mu.Lock()
			c.activeID = ""
			c.mu.Unlock()
			return
		}
	}
}
