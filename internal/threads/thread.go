package threads

// PlaceholderProjectName is the display name used when a thread's project is
// missing from the project list. Threads are kept rather than dropped: a
// thread the backend returned is still reachable even if its project record
// lags behind, and hiding it would make deletion of orphans impossible.
const PlaceholderProjectName = "untitled project"

// Project groups threads and optionally carries the sandbox execution
// environment that must be cleaned up when its threads are deleted.
type Project struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	SandboxID *string `json:"sandbox_id,omitempty"`
}

// Thread is a single conversation/task instance belonging to a project.
type Thread struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	URL       string `json:"url"`
}

// ThreadWithProject is the display-ready join of a thread and its project.
// Derived, never persisted; recompute whenever either source list changes.
type ThreadWithProject struct {
	Thread
	ProjectName string  `json:"project_name"`
	SandboxID   *string `json:"sandbox_id,omitempty"`
}

// Aggregate joins threads with their projects for the sidebar. Output order
// matches input thread order; the backend already returns threads in display
// order and the aggregator must not resort them. Threads without a matching
// project get placeholder project data (see PlaceholderProjectName). Empty
// inputs yield an empty, non-nil list.
func Aggregate(ts []Thread, ps []Project) []ThreadWithProject {
	byID := make(map[string]*Project, len(ps))
	for i := range ps {
		byID[ps[i].ID] = &ps[i]
	}

	out := make([]ThreadWithProject, 0, len(ts))
	for _, t := range ts {
		twp := ThreadWithProject{Thread: t, ProjectName: PlaceholderProjectName}
		if p, ok := byID[t.ProjectID]; ok {
			twp.ProjectName = p.Name
			twp.SandboxID = p.SandboxID
		}
		out = append(out, twp)
	}
	return out
}

// SandboxMap builds the threadID -> sandboxID map a bulk delete needs.
// Threads without a sandbox are omitted; the delete operation still settles
// them, they just carry no environment to clean up.
func SandboxMap(list []ThreadWithProject, ids []string) map[string]string {
	bySandbox := make(map[string]string, len(ids))
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, twp := range list {
		if want[twp.ID] && twp.SandboxID != nil && *twp.SandboxID != "" {
			bySandbox[twp.ID] = *twp.SandboxID
		}
	}
	return bySandbox
}
