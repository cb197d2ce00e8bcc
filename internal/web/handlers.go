package web

import (
	"encoding/json"
	"net/http"
	"time"

	"crewdeck/internal/status"
)

// jsonOK writes v as a JSON 200 response.
func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Allow localhost browser access; no auth on this server.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// response already started; can't write error header
		_ = err
	}
}

// jsonError writes a JSON error response with the given HTTP status code.
func jsonError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	// Allow localhost browser access; no auth on this server.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		// response already started; can't write error header
		_ = err
	}
}

// ---------------------------------------------------------------------------
// Status & accounts
// ---------------------------------------------------------------------------

// handleGetStatus returns server status including the resolved account.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	type accountDTO struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Slug     string `json:"slug"`
		Personal bool   `json:"personal"`
	}
	type response struct {
		HasAccount bool        `json:"has_account"`
		Account    *accountDTO `json:"account"`
		Threads    int         `json:"threads"`
		Tracked    int         `json:"tracked_statuses"`
		Port       int         `json:"port"`
	}

	resp := response{
		Threads: len(s.a.Threads()),
		Tracked: s.a.Registry().Len(),
		Port:    s.port,
	}
	if acc := s.a.CurrentAccount(); acc != nil {
		resp.HasAccount = true
		resp.Account = &accountDTO{
			ID:       acc.ID,
			Name:     acc.Name,
			Slug:     acc.Slug,
			Personal: acc.Personal,
		}
	}
	jsonOK(w, resp)
}

// handleListAccounts returns the known accounts.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, s.a.Accounts())
}

// ---------------------------------------------------------------------------
// Threads
// ---------------------------------------------------------------------------

// handleListThreads returns the aggregated thread list, each row annotated
// with its live agent status.
func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	type row struct {
		ID            string     `json:"id"`
		ProjectID     string     `json:"project_id"`
		ProjectName   string     `json:"project_name"`
		URL           string     `json:"url"`
		SandboxID     *string    `json:"sandbox_id,omitempty"`
		Status        string     `json:"status"`
		CompletedAt   *time.Time `json:"completed_at,omitempty"`
		HasBeenViewed bool       `json:"has_been_viewed"`
	}

	list := s.a.Threads()
	reg := s.a.Registry()

	out := make([]row, 0, len(list))
	for _, twp := range list {
		rw := row{
			ID:          twp.ID,
			ProjectID:   twp.ProjectID,
			ProjectName: twp.ProjectName,
			URL:         twp.URL,
			SandboxID:   twp.SandboxID,
			Status:      status.StatusIdle,
		}
		if e, ok := reg.Get(twp.ID); ok {
			rw.Status = e.Status
			rw.CompletedAt = e.CompletedAt
			rw.HasBeenViewed = e.HasBeenViewed
		}
		out = append(out, rw)
	}
	jsonOK(w, out)
}

// handleListStatuses dumps every tracked status entry, including threads no
// longer in the aggregated list (e.g. completed runs awaiting eviction).
func (s *Server) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, s.a.Registry().Snapshot())
}

// handleMarkViewed acknowledges a completed run for the given thread.
func (s *Server) handleMarkViewed(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, "web: mark viewed: id required")
		return
	}
	// MarkViewed on an untracked thread is a no-op by contract.
	s.a.Registry().MarkViewed(id)
	jsonOK(w, map[string]bool{"ok": true})
}
