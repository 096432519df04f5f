package dashboard

import (
	"errors"
	"fmt"
)

// Kind selects one of the two independently ordered collections.
type Kind string

const (
	KindCards   Kind = "cards"
	KindWidgets Kind = "widgets"
)

// ParseKind accepts the canonical names plus a couple of common aliases.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "cards", "card", "stat-cards":
		return KindCards, nil
	case "widgets", "widget":
		return KindWidgets, nil
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

var (
	ErrUnknownEntry = errors.New("entry not found")
	ErrUnknownKind  = errors.New("unknown collection")
	ErrNotEditing   = errors.New("not in editing mode")
)

// Entry is a single stat card or widget descriptor.
type Entry struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
	Order   int    `json:"order"` // 1-based display rank
}

// Layout holds both collections. Within each, Order is authoritative for
// display sequence; slice position is not.
type Layout struct {
	StatCards []Entry `json:"statCards"`
	Widgets   []Entry `json:"widgets"`
}

// Configuration is the unit exchanged with both persistence backends.
type Configuration struct {
	Layout Layout  `json:"layout"`
	Sizes  SizeMap `json:"sizes"`
}

func (l *Layout) collection(kind Kind) (*[]Entry, error) {
	switch kind {
	case KindCards:
		return &l.StatCards, nil
	case KindWidgets:
		return &l.Widgets, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Entries returns the collection for kind sorted by Order.
func (l Layout) Entries(kind Kind) []Entry {
	col, err := l.collection(kind)
	if err != nil {
		return nil
	}
	out := cloneEntries(*col)
	sortByOrder(out)
	return out
}

// IDs returns the ids of a collection in display order.
func (l Layout) IDs(kind Kind) []string {
	entries := l.Entries(kind)
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// Find returns the entry with id in the given collection.
func (l Layout) Find(kind Kind, id string) (Entry, bool) {
	col, err := l.collection(kind)
	if err != nil {
		return Entry{}, false
	}
	for _, e := range *col {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Validate reports structural problems a decoded payload may carry. It does
// not check ordering; Normalize repairs that.
func (l Layout) Validate() error {
	for _, kind := range []Kind{KindCards, KindWidgets} {
		col, _ := l.collection(kind)
		seen := make(map[string]bool, len(*col))
		for _, e := range *col {
			if e.ID == "" {
				return fmt.Errorf("%s: entry with empty id", kind)
			}
			if seen[e.ID] {
				return fmt.Errorf("%s: duplicate id %q", kind, e.ID)
			}
			seen[e.ID] = true
		}
	}
	return nil
}

// Normalize sorts both collections by Order and renumbers them 1..N.
func (l *Layout) Normalize() {
	renumber(l.StatCards)
	renumber(l.Widgets)
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	return Configuration{
		Layout: Layout{
			StatCards: cloneEntries(c.Layout.StatCards),
			Widgets:   cloneEntries(c.Layout.Widgets),
		},
		Sizes: c.Sizes.Clone(),
	}
}

// Validate checks the layout and every stored size class.
func (c Configuration) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	for id, s := range c.Sizes {
		if !s.Valid() {
			return fmt.Errorf("size of %q: unknown class %q", id, s)
		}
	}
	return nil
}

func cloneEntries(in []Entry) []Entry {
	if in == nil {
		return []Entry{}
	}
	out := make([]Entry, len(in))
	copy(out, in)
	return out
}
