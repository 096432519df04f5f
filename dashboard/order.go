package dashboard

import (
	"cmp"
	"slices"
)

func sortByOrder(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Order, b.Order)
	})
}

// renumber sorts entries by Order and rewrites Order densely as 1..N.
// Gaps and duplicates in the input keep their relative slice order.
func renumber(entries []Entry) {
	sortByOrder(entries)
	for i := range entries {
		entries[i].Order = i + 1
	}
}

func indexOf(entries []Entry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// move swaps the entry with its neighbour delta positions away (delta is -1
// or +1) in display order. It reports whether anything changed; moving past
// either end is a no-op.
func move(entries []Entry, id string, delta int) (bool, error) {
	renumber(entries)
	i := indexOf(entries, id)
	if i < 0 {
		return false, ErrUnknownEntry
	}
	j := i + delta
	if j < 0 || j >= len(entries) {
		return false, nil
	}
	entries[i], entries[j] = entries[j], entries[i]
	for k := range entries {
		entries[k].Order = k + 1
	}
	return true, nil
}

// MoveUp swaps the entry with the one displayed before it.
func (l *Layout) MoveUp(kind Kind, id string) (bool, error) {
	col, err := l.collection(kind)
	if err != nil {
		return false, err
	}
	return move(*col, id, -1)
}

// MoveDown swaps the entry with the one displayed after it.
func (l *Layout) MoveDown(kind Kind, id string) (bool, error) {
	col, err := l.collection(kind)
	if err != nil {
		return false, err
	}
	return move(*col, id, +1)
}

// ToggleVisible flips the visibility of one entry and returns its new state.
func (l *Layout) ToggleVisible(kind Kind, id string) (bool, error) {
	col, err := l.collection(kind)
	if err != nil {
		return false, err
	}
	i := indexOf(*col, id)
	if i < 0 {
		return false, ErrUnknownEntry
	}
	(*col)[i].Visible = !(*col)[i].Visible
	return (*col)[i].Visible, nil
}
