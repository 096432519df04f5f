package preference

import (
	"encoding/json"
	"errors"
	"time"
)

// SectionDashboard is the key owned by the dashboard engine. Other
// subsystems own their own keys (e.g. "appearance").
const SectionDashboard = "dashboard"

// Sections maps a preference section name to its opaque JSON value.
type Sections map[string]json.RawMessage

// Document is one user's stored preferences.
type Document struct {
	Sections  Sections  `json:"sections"`
	Revision  string    `json:"revision"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the full persistent state.
type Store struct {
	Users map[string]Document `json:"users"`
}

var ErrNotFound = errors.New("preferences not found")
