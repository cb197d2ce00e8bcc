package threads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDeleter records delete calls and settles bulk operations sequentially.
type fakeDeleter struct {
	failIDs map[string]bool

	singleIDs       []string
	singleSandboxes []string
	bulkIDs         []string
	bulkSandboxes   map[string]string

	started chan struct{} // when non-nil, closed as a bulk delete begins
	unblock chan struct{} // when non-nil, bulk delete waits on it
}

func (d *fakeDeleter) DeleteThread(_ context.Context, threadID, sandboxID string) error {
	d.singleIDs = append(d.singleIDs, threadID)
	d.singleSandboxes = append(d.singleSandboxes, sandboxID)
	if d.failIDs[threadID] {
		return assert.AnError
	}
	return nil
}

func (d *fakeDeleter) BulkDeleteThreads(_ context.Context, ids []string, sandboxes map[string]string, onSettled func(string, error)) ([]string, []string, error) {
	if d.started != nil {
		close(d.started)
	}
	if d.unblock != nil {
		<-d.unblock
	}

	d.bulkIDs = ids
	d.bulkSandboxes = sandboxes

	var succeeded, failed []string
	for _, id := range ids {
		if d.failIDs[id] {
			failed = append(failed, id)
			onSettled(id, assert.AnError)
		} else {
			succeeded = append(succeeded, id)
			onSettled(id, nil)
		}
	}
	return succeeded, failed, nil
}

type fakeNav struct {
	pushes []string
}

func (n *fakeNav) Push(route string) { n.pushes = append(n.pushes, route) }

func testList() []ThreadWithProject {
	return []ThreadWithProject{
		{Thread: Thread{ID: "th-1"}, ProjectName: "web", SandboxID: strPtr("sb-1")},
		{Thread: Thread{ID: "th-2"}, ProjectName: "api"},
		{Thread: Thread{ID: "th-3"}, ProjectName: "docs", SandboxID: strPtr("sb-3")},
	}
}

func newTestController(d Deleter) (*DeleteController, *Selection, *fakeNav) {
	sel := NewSelection()
	nav := &fakeNav{}
	c := NewDeleteController(d, nav, sel)
	c.SetList(testList())
	return c, sel, nav
}

func TestConfirmWithoutRequest(t *testing.T) {
	c, _, _ := newTestController(&fakeDeleter{})

	_, err := c.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNothingPending)
}

func TestCancelDropsPending(t *testing.T) {
	c, _, _ := newTestController(&fakeDeleter{})

	require.NoError(t, c.RequestDelete("th-1"))
	pending, n := c.Pending()
	assert.True(t, pending)
	assert.Equal(t, 1, n)

	c.Cancel()
	_, err := c.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNothingPending)
}

func TestSingleDeleteResolvesSandbox(t *testing.T) {
	d := &fakeDeleter{}
	c, _, _ := newTestController(d)

	require.NoError(t, c.RequestDelete("th-1"))
	res, err := c.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, []string{"th-1"}, d.singleIDs)
	assert.Equal(t, []string{"sb-1"}, d.singleSandboxes)
}

func TestSingleDeleteFailureSurfaces(t *testing.T) {
	d := &fakeDeleter{failIDs: map[string]bool{"th-2": true}}
	c, _, _ := newTestController(d)

	require.NoError(t, c.RequestDelete("th-2"))
	_, err := c.Confirm(context.Background())
	assert.Error(t, err)
}

func TestNavigateBeforeDeletingActiveThread(t *testing.T) {
	d := &fakeDeleter{}
	c, _, nav := newTestController(d)
	c.SetActive("th-1")

	require.NoError(t, c.RequestDelete("th-1"))
	_, err := c.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{NeutralRoute}, nav.pushes)
}

func TestNoNavigationForInactiveThread(t *testing.T) {
	d := &fakeDeleter{}
	c, _, nav := newTestController(d)
	c.SetActive("th-3")

	require.NoError(t, c.RequestDelete("th-1"))
	_, err := c.Confirm(context.Background())
	require.NoError(t, err)

	assert.Empty(t, nav.pushes)
}

func TestBulkDeleteProgressReachesFull(t *testing.T) {
	d := &fakeDeleter{}
	c, sel, _ := newTestController(d)
	sel.SelectAll([]string{"th-1", "th-2", "th-3"})

	var progress []Progress
	c.OnProgress(func(p Progress) { progress = append(progress, p) })

	require.NoError(t, c.RequestBulkDelete())
	res, err := c.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Requested)
	assert.Equal(t, 3, res.Succeeded)

	// Only 2 of the 3 threads have sandboxes; the third still settles.
	assert.Equal(t, map[string]string{"th-1": "sb-1", "th-3": "sb-3"}, d.bulkSandboxes)

	require.Len(t, progress, 3)
	last := 0
	for _, p := range progress {
		assert.GreaterOrEqual(t, p.Percent, last)
		last = p.Percent
		assert.Equal(t, 3, p.Total)
	}
	assert.Equal(t, 100, progress[len(progress)-1].Percent)
}

func TestBulkDeletePartialFailureWarns(t *testing.T) {
	d := &fakeDeleter{failIDs: map[string]bool{"th-2": true}}
	c, sel, _ := newTestController(d)
	sel.SelectAll([]string{"th-1", "th-2", "th-3"})

	require.NoError(t, c.RequestBulkDelete())
	res, err := c.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, res.Warning, "1 of 3")

	// The selection is cleared even on partial failure.
	assert.Equal(t, 0, sel.Len())
}

func TestBulkDeleteClearsSelection(t *testing.T) {
	d := &fakeDeleter{}
	c, sel, _ := newTestController(d)
	sel.SelectAll([]string{"th-1", "th-2"})

	require.NoError(t, c.RequestBulkDelete())
	_, err := c.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, sel.Len())
}

func TestBulkDeleteRequiresSelection(t *testing.T) {
	c, _, _ := newTestController(&fakeDeleter{})
	assert.Error(t, c.RequestBulkDelete())
}

func TestBulkDeleteNavigatesWhenActiveSelected(t *testing.T) {
	d := &fakeDeleter{}
	c, sel, nav := newTestController(d)
	sel.SelectAll([]string{"th-1", "th-2"})
	c.SetActive("th-2")

	require.NoError(t, c.RequestBulkDelete())
	_, err := c.Confirm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{NeutralRoute}, nav.pushes)
}

func TestConfirmRejectsWhileInFlight(t *testing.T) {
	d := &fakeDeleter{
		started: make(chan struct{}),
		unblock: make(chan struct{}),
	}
	c, sel, _ := newTestController(d)
	sel.SelectAll([]string{"th-1", "th-2"})

	require.NoError(t, c.RequestBulkDelete())

	done := make(chan error, 1)
	go func() {
		_, err := c.Confirm(context.Background())
		done <- err
	}()

	<-d.started
	_, err := c.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrDeleteInFlight)

	close(d.unblock)
	require.NoError(t, <-done)
	assert.False(t, c.InFlight())
}
