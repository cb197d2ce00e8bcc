package threads

// Selection tracks the set of thread IDs marked for bulk action. It is only
// ever mutated from the UI event loop, so it carries no lock.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips membership for id. Toggling twice restores the prior state.
func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAll replaces the selection with all of ids.
func (s *Selection) SelectAll(ids []string) {
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// DeselectAll empties the selection.
func (s *Selection) DeselectAll() {
	s.ids = make(map[string]struct{})
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected threads.
func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected thread IDs in the order they appear in list, so
// bulk operations and progress reporting follow display order. Selected IDs
// no longer present in list are appended last.
func (s *Selection) IDs(list []ThreadWithProject) []string {
	out := make([]string, 0, len(s.ids))
	seen := make(map[string]bool, len(s.ids))
	for _, twp := range list {
		if _, ok := s.ids[twp.ID]; ok {
			out = append(out, twp.ID)
			seen[twp.ID] = true
		}
	}
	for id := range s.ids {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// Prune drops selected IDs that are not in known, e.g. after a refresh
// removed threads deleted elsewhere.
func (s *Selection) Prune(known []ThreadWithProject) {
	keep := make(map[string]struct{}, len(known))
	for _, twp := range known {
		keep[twp.ID] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := keep[id]; !ok {
			delete(s.ids, id)
		}
	}
}
