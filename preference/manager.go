package preference

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager handles loading, saving, and merging per-user preference documents.
type Manager struct {
	mu       sync.RWMutex
	filePath string
	store    Store
	log      *zap.Logger
	now      func() time.Time
}

// NewManager loads the store from filePath, or creates an empty store if the
// file does not exist. Returns an error only on unexpected I/O failures or
// an unparseable file.
func NewManager(filePath string, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{filePath: filePath, log: log, now: time.Now}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Start with an empty store.
			m.store.Users = map[string]Document{}
			return m, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &m.store); err != nil {
		return nil, err
	}
	if m.store.Users == nil {
		m.store.Users = map[string]Document{}
	}
	log.Info("preferences loaded", zap.String("file", filePath), zap.Int("users", len(m.store.Users)))
	return m, nil
}

// Get returns a copy of the user's document.
func (m *Manager) Get(userID string) (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.store.Users[userID]
	if !ok {
		return Document{}, false
	}
	return copyDocument(doc), true
}

// Merge replaces the named top-level sections of the user's document and
// leaves every other section untouched. A JSON null value deletes that
// section. The merged document is written to disk before it becomes visible.
func (m *Manager) Merge(userID string, sections Sections) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := copyDocument(m.store.Users[userID])
	if doc.Sections == nil {
		doc.Sections = Sections{}
	}
	for name, raw := range sections {
		if isNull(raw) {
			delete(doc.Sections, name)
			continue
		}
		doc.Sections[name] = append(json.RawMessage(nil), raw...)
	}
	doc.Revision = uuid.New().String()
	doc.UpdatedAt = m.now().UTC()

	next := copyStore(m.store)
	next.Users[userID] = doc
	if err := m.writeAtomic(next); err != nil {
		return Document{}, err
	}
	m.store = next
	m.log.Debug("preferences merged",
		zap.String("user", userID), zap.Int("sections", len(sections)), zap.String("revision", doc.Revision))
	return copyDocument(doc), nil
}

// Delete removes every section stored for the user.
func (m *Manager) Delete(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store.Users[userID]; !ok {
		return ErrNotFound
	}
	next := copyStore(m.store)
	delete(next.Users, userID)
	if err := m.writeAtomic(next); err != nil {
		return err
	}
	m.store = next
	return nil
}

// writeAtomic writes to a temp file then renames it over filePath.
// Caller must hold m.mu.
func (m *Manager) writeAtomic(store Store) error {
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := m.filePath + ".tmp"
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, m.filePath)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func copyDocument(d Document) Document {
	out := Document{Revision: d.Revision, UpdatedAt: d.UpdatedAt}
	if d.Sections != nil {
		out.Sections = make(Sections, len(d.Sections))
		for k, v := range d.Sections {
			out.Sections[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// copyStore is shallow per document; documents are never mutated in place.
func copyStore(s Store) Store {
	users := make(map[string]Document, len(s.Users))
	for k, v := range s.Users {
		users[k] = v
	}
	return Store{Users: users}
}
