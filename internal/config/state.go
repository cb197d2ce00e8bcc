package config

import (
	"fmt"
	"sync"

	"crewdeck/internal/account"
)

// State holds lightweight session state that is persisted between runs.
// Stored as state.json inside the crewdeck home directory. It is the
// session-scoped store behind the team-context and selection features, so a
// missing or unreadable file must degrade to an empty state, never crash.
type State struct {
	TeamContext     *account.TeamContext `json:"team_context,omitempty"`
	LastAccountID   string               `json:"last_account_id,omitempty"`
	SelectedThreads []string             `json:"selected_threads"`
}

// defaultState returns a State with all fields initialized to safe defaults.
func defaultState() State {
	return State{
		SelectedThreads: []string{},
	}
}

// StateStore owns the persisted State and its file path. The fsnotify
// watcher reloads it from another goroutine, so access goes through the
// lock. It implements account.ContextStore.
type StateStore struct {
	mu    sync.Mutex
	path  string
	state State
}

// OpenStateStore loads the state file at path, treating a missing file as an
// empty state. A corrupt file is an error; callers degrade to a fresh store.
func OpenStateStore(path string) (*StateStore, error) {
	st := defaultState()

	if err := loadJSON(path, &st); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}

	// Guard against "selected_threads": null in hand-edited files.
	if st.SelectedThreads == nil {
		st.SelectedThreads = []string{}
	}

	return &StateStore{path: path, state: st}, nil
}

// NewStateStore returns a store with empty state, used when the state file
// is unreadable and the feature degrades to "no persisted context".
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path, state: defaultState()}
}

// Path returns the state file location.
func (s *StateStore) Path() string { return s.path }

// Save writes the current state to disk atomically.
func (s *StateStore) Save() error {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	if err := saveJSON(s.path, &st, 0o644); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	return nil
}

// Reload re-reads the state file, picking up changes written by another
// process. Errors leave the in-memory state untouched.
func (s *StateStore) Reload() error {
	st := defaultState()
	if err := loadJSON(s.path, &st); err != nil {
		return fmt.Errorf("state: reload: %w", err)
	}
	if st.SelectedThreads == nil {
		st.SelectedThreads = []string{}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// LoadTeamContext returns the persisted team context, or nil if none is set.
func (s *StateStore) LoadTeamContext() (*account.TeamContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.TeamContext == nil {
		return nil, nil
	}
	tc := *s.state.TeamContext
	return &tc, nil
}

// SaveTeamContext persists tc (nil clears it) and writes through to disk.
func (s *StateStore) SaveTeamContext(tc *account.TeamContext) error {
	s.mu.Lock()
	if tc == nil {
		s.state.TeamContext = nil
	} else {
		cp := *tc
		s.state.TeamContext = &cp
	}
	s.mu.Unlock()

	return s.Save()
}

// SetLastAccount records the account the user last operated in.
func (s *StateStore) SetLastAccount(id string) {
	s.mu.Lock()
	s.state.LastAccountID = id
	s.mu.Unlock()
}

// LastAccount returns the recorded last account ID.
func (s *StateStore) LastAccount() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastAccountID
}

// SetSelectedThreads replaces the persisted selection snapshot.
func (s *StateStore) SetSelectedThreads(ids []string) {
	s.mu.Lock()
	s.state.SelectedThreads = append([]string(nil), ids...)
	s.mu.Unlock()
}

// SelectedThreads returns a copy of the persisted selection snapshot.
func (s *StateStore) SelectedThreads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.SelectedThreads...)
}
