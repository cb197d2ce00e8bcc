package status

import (
	"sync"
	"time"
)

// Entry is the live status record for a single thread. CompletedAt is set
// only on a transition into completed from running/connecting and then
// preserved across repeated completed upserts. HasBeenViewed is cleared
// whenever the status leaves completed and set only by MarkViewed.
type Entry struct {
	ThreadID      string     `json:"thread_id"`
	Status        string     `json:"status"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	HasBeenViewed bool       `json:"has_been_viewed"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Registry is the process-wide map from thread ID to live agent status. The
// SSE consumer goroutine and the UI goroutine both touch it, so every
// operation takes the lock. Entries for finished runs are evicted by a
// periodic sweep once they exceed the retention window.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry

	retention time.Duration
	onChange  func(Entry)
	now       func() time.Time

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// NewRegistry creates an empty registry. retention is how long completed
// entries are kept after CompletedAt before the sweep removes them.
func NewRegistry(retention time.Duration) *Registry {
	return &Registry{
		entries:   make(map[string]*Entry),
		retention: retention,
		now:       time.Now,
	}
}

// SetClock overrides the registry's time source. Tests only.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// OnChange registers a callback invoked (outside the lock) with a copy of
// the entry after every mutation. Used to drive SSE rebroadcast and TUI
// refresh without a global event bus. Only one callback is supported.
func (r *Registry) OnChange(fn func(Entry)) { r.onChange = fn }

// UpdateStatus upserts the entry for threadID. Unknown status values are
// ignored; the platform feed may grow states this build does not know.
func (r *Registry) UpdateStatus(threadID, st string) {
	if !ValidStatus(st) {
		return
	}

	r.mu.Lock()
	e, ok := r.entries[threadID]
	if !ok {
		e = &Entry{ThreadID: threadID}
		r.entries[threadID] = e
	}

	if st == StatusCompleted {
		// CompletedAt marks the moment a run finished; only a transition out
		// of an active state sets it.
		if active(e.Status) {
			t := r.now()
			e.CompletedAt = &t
		}
	} else {
		e.HasBeenViewed = false
	}

	e.Status = st
	e.UpdatedAt = r.now()
	changed := *e
	r.mu.Unlock()

	r.notify(changed)
}

// MarkViewed acknowledges a completed run. Absent thread IDs are a strict
// no-op: acknowledgment never creates an entry.
func (r *Registry) MarkViewed(threadID string) {
	r.mu.Lock()
	e, ok := r.entries[threadID]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.HasBeenViewed = true
	changed := *e
	r.mu.Unlock()

	r.notify(changed)
}

// Get returns a copy of the entry for threadID, if present.
func (r *Registry) Get(threadID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[threadID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// IsRunning reports whether the thread has an in-flight run
// (running or connecting).
func (r *Registry) IsRunning(threadID string) bool {
	e, ok := r.Get(threadID)
	return ok && active(e.Status)
}

// IsCompleted reports whether the thread's last run completed.
func (r *Registry) IsCompleted(threadID string) bool {
	e, ok := r.Get(threadID)
	return ok && e.Status == StatusCompleted
}

// HasUnreadCompletion reports whether the thread completed a run the user
// has not yet acknowledged.
func (r *Registry) HasUnreadCompletion(threadID string) bool {
	e, ok := r.Get(threadID)
	return ok && e.Status == StatusCompleted && !e.HasBeenViewed
}

// Len returns the number of tracked threads.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns a copy of every entry, for the web mirror and the TUI.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out
}

// Sweep removes completed entries whose CompletedAt is older than the
// retention window. Entries in any other state are kept regardless of age;
// a long run is not garbage. Returns the number of entries removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if e.Status != StatusCompleted || e.CompletedAt == nil {
			continue
		}
		if e.CompletedAt.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until StopSweeper is called. The
// timer is owned by the registry; it never fires after StopSweeper returns.
func (r *Registry) StartSweeper(interval time.Duration) {
	if r.sweepStop != nil {
		return // already running
	}
	r.sweepStop = make(chan struct{})
	r.sweepDone = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-stop:
				return
			}
		}
	}(r.sweepStop, r.sweepDone)
}

// StopSweeper stops the background sweep and waits for the goroutine to
// exit. Safe to call when no sweeper is running.
func (r *Registry) StopSweeper() {
	if r.sweepStop == nil {
		return
	}
	close(r.sweepStop)
	<-r.sweepDone
	r.sweepStop = nil
	r.sweepDone = nil
}

// notify invokes the change callback outside the registry lock.
func (r *Registry) notify(e Entry) {
	if r.onChange != nil {
		r.onChange(e)
	}
}
