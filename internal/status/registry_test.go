package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, *time.Time) {
	t.Helper()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(24 * time.Hour)
	r.SetClock(func() time.Time { return clock })
	return r, &clock
}

func TestCompletedAtSetOnTransitionFromActive(t *testing.T) {
	r, clock := newTestRegistry(t)

	r.UpdateStatus("th-1", StatusRunning)
	*clock = clock.Add(10 * time.Minute)
	r.UpdateStatus("th-1", StatusCompleted)

	e, ok := r.Get("th-1")
	require.True(t, ok)
	require.NotNil(t, e.CompletedAt)
	assert.Equal(t, *clock, *e.CompletedAt)
}

func TestCompletedAtPreservedOnRepeatedCompleted(t *testing.T) {
	r, clock := newTestRegistry(t)

	r.UpdateStatus("th-1", StatusConnecting)
	r.UpdateStatus("th-1", StatusCompleted)
	first, _ := r.Get("th-1")
	require.NotNil(t, first.CompletedAt)

	// A redundant completed upsert must not move the completion time.
	*clock = clock.Add(1 * time.Hour)
	r.UpdateStatus("th-1", StatusCompleted)
	second, _ := r.Get("th-1")
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, *first.CompletedAt, *second.CompletedAt)
}

func TestCompletedAtNotSetWithoutActiveTransition(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.UpdateStatus("th-1", StatusIdle)
	r.UpdateStatus("th-1", StatusCompleted)

	e, _ := r.Get("th-1")
	assert.Nil(t, e.CompletedAt)
	assert.Equal(t, StatusCompleted, e.Status)
}

func TestInvalidStatusIgnored(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.UpdateStatus("th-1", "paused")
	assert.Equal(t, 0, r.Len())

	r.UpdateStatus("th-1", StatusRunning)
	r.UpdateStatus("th-1", "archived")
	e, _ := r.Get("th-1")
	assert.Equal(t, StatusRunning, e.Status)
}

func TestViewedClearedWhenLeavingCompleted(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.UpdateStatus("th-1", StatusRunning)
	r.UpdateStatus("th-1", StatusCompleted)
	r.MarkViewed("th-1")
	assert.False(t, r.HasUnreadCompletion("th-1"))

	// A new run resets the acknowledgment.
	r.UpdateStatus("th-1", StatusRunning)
	r.UpdateStatus("th-1", StatusCompleted)
	assert.True(t, r.HasUnreadCompletion("th-1"))
}

func TestMarkViewedAbsentIsNoOp(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.MarkViewed("th-missing")
	assert.Equal(t, 0, r.Len())
}

func TestHasUnreadCompletion(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.UpdateStatus("th-1", StatusRunning)
	assert.False(t, r.HasUnreadCompletion("th-1"))

	r.UpdateStatus("th-1", StatusCompleted)
	assert.True(t, r.HasUnreadCompletion("th-1"))

	r.MarkViewed("th-1")
	assert.False(t, r.HasUnreadCompletion("th-1"))
}

func TestSweepRemovesOldCompletedOnly(t *testing.T) {
	r, clock := newTestRegistry(t)

	// Completed 25 hours ago.
	r.UpdateStatus("th-old", StatusRunning)
	r.UpdateStatus("th-old", StatusCompleted)

	// Completed 23 hours ago.
	*clock = clock.Add(2 * time.Hour)
	r.UpdateStatus("th-recent", StatusRunning)
	r.UpdateStatus("th-recent", StatusCompleted)

	// Still running since before the retention window.
	r.UpdateStatus("th-running", StatusRunning)

	*clock = clock.Add(23 * time.Hour)
	removed := r.Sweep()

	assert.Equal(t, 1, removed)
	_, ok := r.Get("th-old")
	assert.False(t, ok)
	_, ok = r.Get("th-recent")
	assert.True(t, ok)
	assert.True(t, r.IsRunning("th-running"))
}

func TestSweepErrorEntriesKept(t *testing.T) {
	r, clock := newTestRegistry(t)

	r.UpdateStatus("th-1", StatusRunning)
	r.UpdateStatus("th-1", StatusError)

	*clock = clock.Add(48 * time.Hour)
	assert.Equal(t, 0, r.Sweep())
	_, ok := r.Get("th-1")
	assert.True(t, ok)
}

func TestOnChangeFires(t *testing.T) {
	r, _ := newTestRegistry(t)

	var seen []Entry
	r.OnChange(func(e Entry) { seen = append(seen, e) })

	r.UpdateStatus("th-1", StatusRunning)
	r.UpdateStatus("th-1", "bogus") // ignored, no notification
	r.MarkViewed("th-1")

	require.Len(t, seen, 2)
	assert.Equal(t, StatusRunning, seen[0].Status)
	assert.True(t, seen[1].HasBeenViewed)
}

func TestStartStopSweeper(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.StartSweeper(10 * time.Millisecond)
	r.StartSweeper(10 * time.Millisecond) // second start is a no-op
	time.Sleep(30 * time.Millisecond)
	r.StopSweeper()
	r.StopSweeper() // safe when not running
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusIdle, StatusConnecting, StatusRunning, StatusCompleted, StatusError} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("done"))
}
