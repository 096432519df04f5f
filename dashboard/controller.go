package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Source names where the active configuration came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceLocal   Source = "local"
	SourceDefault Source = "default"
)

// Mode is the editing state of a session.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "viewing"
}

// LoadResult reports which stage of the fallback chain supplied the
// configuration. RemoteErr is informational.
type LoadResult struct {
	Source    Source
	RemoteErr error
}

// SaveResult carries the outcome of each persistence path.
type SaveResult struct {
	RemoteErr error
	LocalErr  error
}

// OK reports whether at least one backend stored the configuration.
func (r SaveResult) OK() bool { return r.RemoteErr == nil || r.LocalErr == nil }

// Err is non-nil only when both backends failed.
func (r SaveResult) Err() error {
	if r.OK() {
		return nil
	}
	return errors.Join(r.RemoteErr, r.LocalErr)
}

// SyncResult is the explicit outcome of ForceSync.
type SyncResult struct {
	Status FetchStatus
	Err    error
}

// Controller owns a session's layout, sizes and selection, and mediates all
// reads and writes to the preference service and the local cache.
type Controller struct {
	remote RemoteClient
	cache  LocalCache
	log    *zap.Logger

	mu        sync.Mutex
	cfg       Configuration
	mode      Mode
	selection *Selection
	snapshot  *Configuration // taken at BeginEdit, restored by Cancel
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// NewController starts a session on the default configuration. remote may be
// nil, in which case every remote attempt fails and the local cache is used.
// cache may be nil too: nothing is cached and local writes fail.
func NewController(remote RemoteClient, cache LocalCache, opts ...Option) *Controller {
	if cache == nil {
		cache = noCache{}
	}
	c := &Controller{
		remote:    remote,
		cache:     cache,
		log:       zap.NewNop(),
		cfg:       DefaultConfiguration(),
		selection: newSelection(KindCards),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) fetch(ctx context.Context, userID string) FetchResult {
	if c.remote == nil {
		return FetchResult{Status: FetchFailed, Err: fmt.Errorf("%w: no remote configured", ErrRemoteUnavailable)}
	}
	res := c.remote.Fetch(ctx, userID)
	if res.Status == FetchFound {
		if err := res.Config.Validate(); err != nil {
			return FetchResult{Status: FetchAbsent, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
		}
	}
	return res
}

func (c *Controller) put(ctx context.Context, userID string, cfg Configuration) error {
	if c.remote == nil {
		return fmt.Errorf("%w: no remote configured", ErrRemoteUnavailable)
	}
	return c.remote.Put(ctx, userID, cfg)
}

// Load adopts the user's stored configuration, falling back from the
// preference service to the local cache to the built-in default. It never
// fails.
func (c *Controller) Load(ctx context.Context, userID string) LoadResult {
	log := c.log.With(zap.String("user", userID))

	res := c.fetch(ctx, userID)
	if res.Status == FetchFound {
		cfg := c.adopt(res.Config)
		if err := c.cache.Write(cfg); err != nil {
			log.Warn("refresh local cache", zap.Error(err))
		}
		log.Debug("loaded dashboard", zap.String("source", string(SourceRemote)))
		return LoadResult{Source: SourceRemote}
	}
	if res.Err != nil {
		log.Warn("remote preferences unusable, falling back",
			zap.String("status", res.Status.String()), zap.Error(res.Err))
	}

	if cfg, ok := c.cache.Read(); ok {
		err := cfg.Validate()
		if err == nil {
			c.adopt(cfg)
			log.Debug("loaded dashboard", zap.String("source", string(SourceLocal)))
			return LoadResult{Source: SourceLocal, RemoteErr: res.Err}
		}
		log.Warn("discarding local cache", zap.Error(fmt.Errorf("%w: %v", ErrCacheCorrupt, err)))
	}

	c.adopt(DefaultConfiguration())
	log.Debug("loaded dashboard", zap.String("source", string(SourceDefault)))
	return LoadResult{Source: SourceDefault, RemoteErr: res.Err}
}

// ForceSync pulls the stored configuration and reports whether one was
// found. Only a found configuration replaces the session state.
func (c *Controller) ForceSync(ctx context.Context, userID string) SyncResult {
	res := c.fetch(ctx, userID)
	if res.Status != FetchFound {
		c.log.Info("force sync found nothing to adopt",
			zap.String("user", userID), zap.String("status", res.Status.String()), zap.Error(res.Err))
		return SyncResult{Status: res.Status, Err: res.Err}
	}
	cfg := c.adopt(res.Config)
	if err := c.cache.Write(cfg); err != nil {
		c.log.Warn("refresh local cache", zap.String("user", userID), zap.Error(err))
	}
	return SyncResult{Status: FetchFound}
}

// Save pushes the current configuration to the preference service and then,
// whatever the remote outcome, to the local cache. When either succeeds the
// session returns to viewing mode.
func (c *Controller) Save(ctx context.Context, userID string) SaveResult {
	cfg := c.Configuration()

	var res SaveResult
	res.RemoteErr = c.put(ctx, userID, cfg)
	if res.RemoteErr != nil {
		c.log.Warn("remote save failed, keeping local copy only",
			zap.String("user", userID), zap.Error(res.RemoteErr))
	}
	res.LocalErr = c.cache.Write(cfg)
	if res.LocalErr != nil {
		c.log.Warn("local cache write failed", zap.String("user", userID), zap.Error(res.LocalErr))
	}

	if res.OK() {
		c.mu.Lock()
		c.endEditing()
		c.mu.Unlock()
	} else {
		c.log.Error("dashboard not saved", zap.String("user", userID), zap.Error(res.Err()))
	}
	return res
}

// Reset drops all in-memory state and the local cache and starts over from
// the default configuration. Remote preferences are left alone.
func (c *Controller) Reset() error {
	c.mu.Lock()
	c.cfg = DefaultConfiguration()
	c.endEditing()
	c.mu.Unlock()

	if err := c.cache.Clear(); err != nil {
		c.log.Warn("clear local cache", zap.Error(err))
		return err
	}
	return nil
}

// adopt normalizes cfg, installs a copy as the session state and returns it.
// A selection that outlives the swap keeps only ids that still exist.
func (c *Controller) adopt(cfg Configuration) Configuration {
	cfg = cfg.Clone()
	cfg.Layout.Normalize()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	for _, id := range c.selection.IDs() {
		if _, ok := c.cfg.Layout.Find(c.selection.kind, id); !ok {
			c.selection.Toggle(id)
		}
	}
	return cfg.Clone()
}

func (c *Controller) endEditing() {
	c.mode = Viewing
	c.selection.Clear()
	c.snapshot = nil
}

// Configuration returns a copy of the session state.
func (c *Controller) Configuration() Configuration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Clone()
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Selected returns the active collection and the selected ids.
func (c *Controller) Selected() (Kind, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.kind, c.selection.IDs()
}

func (c *Controller) MoveUp(kind Kind, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Layout.MoveUp(kind, id)
}

func (c *Controller) MoveDown(kind Kind, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Layout.MoveDown(kind, id)
}

func (c *Controller) ToggleVisible(kind Kind, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Layout.ToggleVisible(kind, id)
}

// Resize sets the size class of a card or widget.
func (c *Controller) Resize(id string, size Size) error {
	if !size.Valid() {
		return fmt.Errorf("unknown size %q", size)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, isCard := c.cfg.Layout.Find(KindCards, id)
	_, isWidget := c.cfg.Layout.Find(KindWidgets, id)
	if !isCard && !isWidget {
		return ErrUnknownEntry
	}
	if c.cfg.Sizes == nil {
		c.cfg.Sizes = SizeMap{}
	}
	c.cfg.Sizes[id] = size
	return nil
}

// BeginEdit enters editing mode scoped to kind. Calling it again while
// editing switches the scope and empties the selection.
func (c *Controller) BeginEdit(kind Kind) error {
	if kind != KindCards && kind != KindWidgets {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == Viewing {
		snap := c.cfg.Clone()
		c.snapshot = &snap
	}
	c.mode = Editing
	c.selection = newSelection(kind)
	return nil
}

// Cancel leaves editing mode and restores the state from BeginEdit.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != Editing {
		return ErrNotEditing
	}
	if c.snapshot != nil {
		c.cfg = *c.snapshot
	}
	c.endEditing()
	return nil
}

// ToggleSelected adds or removes one id of the active collection.
func (c *Controller) ToggleSelected(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != Editing {
		return false, ErrNotEditing
	}
	if _, ok := c.cfg.Layout.Find(c.selection.kind, id); !ok {
		return false, ErrUnknownEntry
	}
	return c.selection.Toggle(id), nil
}

// ToggleSelectAll selects every id of the active collection, or deselects
// everything when all are already selected.
func (c *Controller) ToggleSelectAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != Editing {
		return ErrNotEditing
	}
	c.selection.toggleAll(c.cfg.Layout.IDs(c.selection.kind))
	return nil
}

// BulkResize applies one size to every selected id and returns how many
// entries it touched.
func (c *Controller) BulkResize(size Size) (int, error) {
	if !size.Valid() {
		return 0, fmt.Errorf("unknown size %q", size)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != Editing {
		return 0, ErrNotEditing
	}
	if c.cfg.Sizes == nil {
		c.cfg.Sizes = SizeMap{}
	}
	ids := c.selection.IDs()
	for _, id := range ids {
		c.cfg.Sizes[id] = size
	}
	return len(ids), nil
}

// BulkToggleVisibility flips each selected entry's own visibility, so a
// mixed selection stays mixed.
func (c *Controller) BulkToggleVisibility() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != Editing {
		return 0, ErrNotEditing
	}
	n := 0
	for _, id := range c.selection.IDs() {
		if _, err := c.cfg.Layout.ToggleVisible(c.selection.kind, id); err == nil {
			n++
		}
	}
	return n, nil
}
