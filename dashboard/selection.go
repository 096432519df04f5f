package dashboard

import "slices"

// Selection is the set of entry ids chosen for bulk editing. It is scoped to
// a single collection and is never persisted.
type Selection struct {
	kind Kind
	ids  map[string]struct{}
}

func newSelection(kind Kind) *Selection {
	return &Selection{kind: kind, ids: make(map[string]struct{})}
}

func (s *Selection) Kind() Kind { return s.kind }

func (s *Selection) Len() int { return len(s.ids) }

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids in lexical order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Toggle adds id if absent, removes it otherwise, and reports membership
// after the change.
func (s *Selection) Toggle(id string) bool {
	if s.Has(id) {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// equals reports whether the selection holds exactly all.
func (s *Selection) equals(all []string) bool {
	if len(all) != len(s.ids) {
		return false
	}
	for _, id := range all {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// toggleAll selects all, or clears the set when it already holds all of them.
func (s *Selection) toggleAll(all []string) {
	if s.equals(all) {
		s.Clear()
		return
	}
	s.ids = make(map[string]struct{}, len(all))
	for _, id := range all {
		s.ids[id] = struct{}{}
	}
}
