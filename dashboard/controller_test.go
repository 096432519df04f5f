package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache is an in-memory LocalCache.
type memCache struct {
	cfg      *Configuration
	writeErr error
	writes   int
	cleared  bool
}

func (m *memCache) Read() (Configuration, bool) {
	if m.cfg == nil {
		return Configuration{}, false
	}
	return m.cfg.Clone(), true
}

func (m *memCache) Write(cfg Configuration) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	c := cfg.Clone()
	m.cfg = &c
	return nil
}

func (m *memCache) Clear() error {
	m.cfg = nil
	m.cleared = true
	return nil
}

// memRemote is an in-memory RemoteClient keyed by user.
type memRemote struct {
	users    map[string]Configuration
	fetchErr error
	putErr   error
	fetch    *FetchResult // forced fetch result
	puts     int
}

func newMemRemote() *memRemote {
	return &memRemote{users: make(map[string]Configuration)}
}

func (m *memRemote) Fetch(_ context.Context, userID string) FetchResult {
	if m.fetch != nil {
		return *m.fetch
	}
	if m.fetchErr != nil {
		return FetchResult{Status: FetchFailed, Err: m.fetchErr}
	}
	cfg, ok := m.users[userID]
	if !ok {
		return FetchResult{Status: FetchAbsent}
	}
	return FetchResult{Status: FetchFound, Config: cfg.Clone()}
}

func (m *memRemote) Put(_ context.Context, userID string, cfg Configuration) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.users[userID] = cfg.Clone()
	return nil
}

func customConfig() Configuration {
	return Configuration{
		Layout: Layout{
			StatCards: []Entry{
				{ID: "jackpots", Title: "Jackpots", Visible: true, Order: 1},
				{ID: "companies", Title: "Companies", Visible: true, Order: 2},
			},
			Widgets: []Entry{
				{ID: "notes", Title: "Notes", Visible: false, Order: 1},
			},
		},
		Sizes: SizeMap{"jackpots": SizeXS, "notes": SizeExtraLarge},
	}
}

var errDown = errors.New("connection refused")

func TestLoadFallsBackToDefault(t *testing.T) {
	remote := newMemRemote()
	remote.fetchErr = errDown
	cache := &memCache{}
	c := NewController(remote, cache)

	res := c.Load(context.Background(), "u1")
	assert.Equal(t, SourceDefault, res.Source)
	assert.ErrorIs(t, res.RemoteErr, errDown)
	if diff := cmp.Diff(DefaultConfiguration(), c.Configuration()); diff != "" {
		t.Fatalf("expected default configuration (-want +got):\n%s", diff)
	}
}

func TestLoadWithoutRemote(t *testing.T) {
	c := NewController(nil, &memCache{})
	res := c.Load(context.Background(), "u1")
	assert.Equal(t, SourceDefault, res.Source)
	assert.ErrorIs(t, res.RemoteErr, ErrRemoteUnavailable)
}

func TestControllerWithoutCache(t *testing.T) {
	ctx := context.Background()
	c := NewController(nil, nil)
	assert.Equal(t, SourceDefault, c.Load(ctx, "u1").Source)

	res := c.Save(ctx, "u1")
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err(), ErrRemoteUnavailable)
	assert.NoError(t, c.Reset())

	remote := newMemRemote()
	c = NewController(remote, nil)
	require.NoError(t, c.BeginEdit(KindWidgets))
	res = c.Save(ctx, "u1")
	assert.True(t, res.OK())
	assert.Error(t, res.LocalErr)
	assert.Equal(t, Viewing, c.Mode())
}

func TestLoadPrefersRemoteAndRefreshesCache(t *testing.T) {
	remote := newMemRemote()
	remote.users["u1"] = customConfig()
	local := DefaultConfiguration()
	cache := &memCache{cfg: &local}
	c := NewController(remote, cache)

	res := c.Load(context.Background(), "u1")
	assert.Equal(t, SourceRemote, res.Source)
	assert.NoError(t, res.RemoteErr)

	if diff := cmp.Diff(customConfig(), c.Configuration()); diff != "" {
		t.Fatalf("adopted configuration (-want +got):\n%s", diff)
	}
	require.NotNil(t, cache.cfg)
	if diff := cmp.Diff(customConfig(), *cache.cfg); diff != "" {
		t.Fatalf("cache not overwritten (-want +got):\n%s", diff)
	}
}

func TestLoadFallsBackToLocalWhenAbsent(t *testing.T) {
	local := customConfig()
	c := NewController(newMemRemote(), &memCache{cfg: &local})

	res := c.Load(context.Background(), "nobody")
	assert.Equal(t, SourceLocal, res.Source)
	assert.NoError(t, res.RemoteErr)
	assert.Equal(t, []string{"jackpots", "companies"}, c.Configuration().Layout.IDs(KindCards))
}

func TestLoadTreatsMalformedRemoteAsAbsent(t *testing.T) {
	remote := newMemRemote()
	bad := Configuration{Layout: Layout{Widgets: []Entry{{ID: "x"}, {ID: "x"}}}}
	remote.fetch = &FetchResult{Status: FetchFound, Config: bad}
	local := customConfig()
	c := NewController(remote, &memCache{cfg: &local})

	res := c.Load(context.Background(), "u1")
	assert.Equal(t, SourceLocal, res.Source)
	assert.ErrorIs(t, res.RemoteErr, ErrMalformedPayload)
}

func TestLoadDiscardsInvalidCache(t *testing.T) {
	remote := newMemRemote()
	remote.fetchErr = errDown
	bad := Configuration{Sizes: SizeMap{"a": "gigantic"}}
	c := NewController(remote, &memCache{cfg: &bad})

	res := c.Load(context.Background(), "u1")
	assert.Equal(t, SourceDefault, res.Source)
}

func TestLoadNormalizesOrder(t *testing.T) {
	remote := newMemRemote()
	remote.users["u1"] = Configuration{Layout: Layout{
		Widgets: []Entry{{ID: "b", Order: 9}, {ID: "a", Order: 4}},
	}}
	c := NewController(remote, &memCache{})
	c.Load(context.Background(), "u1")

	got := c.Configuration().Layout.Entries(KindWidgets)
	assert.Equal(t, []Entry{{ID: "a", Order: 1}, {ID: "b", Order: 2}}, got)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	remote := newMemRemote()
	cache := &memCache{}
	c := NewController(remote, cache)
	ctx := context.Background()
	c.Load(ctx, "u1")

	_, err := c.MoveDown(KindWidgets, "onjn-calendar")
	require.NoError(t, err)
	_, err = c.ToggleVisible(KindCards, "jackpots")
	require.NoError(t, err)
	require.NoError(t, c.Resize("notes", SizeXS))
	saved := c.Configuration()

	res := c.Save(ctx, "u1")
	require.True(t, res.OK())
	require.NoError(t, res.Err())

	fresh := NewController(remote, cache)
	assert.Equal(t, SourceRemote, fresh.Load(ctx, "u1").Source)
	if diff := cmp.Diff(saved, fresh.Configuration()); diff != "" {
		t.Fatalf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestSaveDegradesToLocal(t *testing.T) {
	remote := newMemRemote()
	remote.putErr = errDown
	cache := &memCache{}
	c := NewController(remote, cache)
	require.NoError(t, c.BeginEdit(KindWidgets))
	require.NoError(t, c.ToggleSelectAll())

	res := c.Save(context.Background(), "u1")
	assert.True(t, res.OK())
	assert.ErrorIs(t, res.RemoteErr, errDown)
	assert.NoError(t, res.LocalErr)
	assert.Equal(t, 1, cache.writes)
	assert.Equal(t, Viewing, c.Mode())
	_, ids := c.Selected()
	assert.Empty(t, ids)
}

func TestSaveReportsFailureWhenBothFail(t *testing.T) {
	remote := newMemRemote()
	remote.putErr = errDown
	diskFull := errors.New("disk full")
	cache := &memCache{writeErr: diskFull}
	c := NewController(remote, cache)
	require.NoError(t, c.BeginEdit(KindCards))

	res := c.Save(context.Background(), "u1")
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err(), errDown)
	assert.ErrorIs(t, res.Err(), diskFull)
	assert.Equal(t, Editing, c.Mode())
}

func TestResetClearsCacheButNotRemote(t *testing.T) {
	remote := newMemRemote()
	remote.users["u1"] = customConfig()
	cache := &memCache{}
	c := NewController(remote, cache)
	c.Load(context.Background(), "u1")
	require.NoError(t, c.BeginEdit(KindCards))

	require.NoError(t, c.Reset())
	assert.True(t, cache.cleared)
	assert.Nil(t, cache.cfg)
	assert.Equal(t, Viewing, c.Mode())
	assert.Equal(t, 0, remote.puts)
	if diff := cmp.Diff(DefaultConfiguration(), c.Configuration()); diff != "" {
		t.Fatalf("expected default after reset (-want +got):\n%s", diff)
	}
	assert.Contains(t, remote.users, "u1")
}

func TestForceSync(t *testing.T) {
	remote := newMemRemote()
	cache := &memCache{}
	c := NewController(remote, cache)
	ctx := context.Background()

	res := c.ForceSync(ctx, "u1")
	assert.Equal(t, FetchAbsent, res.Status)
	assert.Zero(t, cache.writes)

	_, err := c.ToggleVisible(KindCards, "users")
	require.NoError(t, err)
	remote.fetchErr = errDown
	res = c.ForceSync(ctx, "u1")
	assert.Equal(t, FetchFailed, res.Status)
	assert.ErrorIs(t, res.Err, errDown)
	e, _ := c.Configuration().Layout.Find(KindCards, "users")
	assert.True(t, e.Visible, "failed sync must keep the session state")

	remote.fetchErr = nil
	remote.users["u1"] = customConfig()
	res = c.ForceSync(ctx, "u1")
	assert.Equal(t, FetchFound, res.Status)
	assert.Equal(t, 1, cache.writes)
	assert.Equal(t, customConfig().Layout.IDs(KindCards), c.Configuration().Layout.IDs(KindCards))
}

func TestSelectionRequiresEditing(t *testing.T) {
	c := NewController(nil, &memCache{})
	_, err := c.ToggleSelected("companies")
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.ErrorIs(t, c.ToggleSelectAll(), ErrNotEditing)
	_, err = c.BulkResize(SizeLarge)
	assert.ErrorIs(t, err, ErrNotEditing)
	_, err = c.BulkToggleVisibility()
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.ErrorIs(t, c.Cancel(), ErrNotEditing)
}

func TestBulkResizeOnlyTouchesSelection(t *testing.T) {
	c := NewController(nil, &memCache{})
	// Start from an empty size map to observe exactly what bulk resize writes.
	c.adopt(Configuration{Layout: abc(), Sizes: SizeMap{}})
	require.NoError(t, c.BeginEdit(KindCards))
	_, err := c.ToggleSelected("a")
	require.NoError(t, err)
	_, err = c.ToggleSelected("c")
	require.NoError(t, err)

	n, err := c.BulkResize(SizeLarge)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sizes := c.Configuration().Sizes
	assert.Equal(t, SizeMap{"a": SizeLarge, "c": SizeLarge}, sizes)
	assert.NotContains(t, sizes, "b")
	assert.Equal(t, SizeMedium, sizes.Get("b"))
}

func TestBulkToggleFlipsEachEntry(t *testing.T) {
	c := NewController(nil, &memCache{})
	c.adopt(Configuration{Layout: Layout{StatCards: []Entry{
		{ID: "a", Visible: true, Order: 1},
		{ID: "b", Visible: false, Order: 2},
		{ID: "c", Visible: true, Order: 3},
	}}})
	require.NoError(t, c.BeginEdit(KindCards))
	_, _ = c.ToggleSelected("a")
	_, _ = c.ToggleSelected("b")

	n, err := c.BulkToggleVisibility()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := map[string]bool{}
	for _, e := range c.Configuration().Layout.StatCards {
		got[e.ID] = e.Visible
	}
	assert.Equal(t, map[string]bool{"a": false, "b": true, "c": true}, got)
}

func TestToggleSelectAllScopedToCollection(t *testing.T) {
	c := NewController(nil, &memCache{})
	require.NoError(t, c.BeginEdit(KindWidgets))
	require.NoError(t, c.ToggleSelectAll())

	kind, ids := c.Selected()
	assert.Equal(t, KindWidgets, kind)
	assert.ElementsMatch(t, DefaultConfiguration().Layout.IDs(KindWidgets), ids)

	require.NoError(t, c.ToggleSelectAll())
	_, ids = c.Selected()
	assert.Empty(t, ids)

	// A card id cannot be selected while widgets are in scope.
	_, err := c.ToggleSelected("companies")
	assert.ErrorIs(t, err, ErrUnknownEntry)

	// Switching scope empties the selection.
	_, err = c.ToggleSelected("notes")
	require.NoError(t, err)
	require.NoError(t, c.BeginEdit(KindCards))
	kind, ids = c.Selected()
	assert.Equal(t, KindCards, kind)
	assert.Empty(t, ids)
}

func TestCancelRestoresSnapshot(t *testing.T) {
	c := NewController(nil, &memCache{})
	before := c.Configuration()
	require.NoError(t, c.BeginEdit(KindWidgets))
	require.NoError(t, c.ToggleSelectAll())
	_, err := c.BulkResize(SizeXS)
	require.NoError(t, err)
	_, err = c.MoveDown(KindWidgets, "onjn-calendar")
	require.NoError(t, err)

	require.NoError(t, c.Cancel())
	assert.Equal(t, Viewing, c.Mode())
	if diff := cmp.Diff(before, c.Configuration()); diff != "" {
		t.Fatalf("cancel did not restore state (-want +got):\n%s", diff)
	}
	_, ids := c.Selected()
	assert.Empty(t, ids)
}

func TestResizeValidation(t *testing.T) {
	c := NewController(nil, &memCache{})
	assert.Error(t, c.Resize("notes", Size("huge")))
	assert.ErrorIs(t, c.Resize("nope", SizeLarge), ErrUnknownEntry)
	require.NoError(t, c.Resize("companies", SizeXS))
	assert.Equal(t, SizeXS, c.Configuration().Sizes.Get("companies"))
}

func TestConfigurationIsACopy(t *testing.T) {
	c := NewController(nil, &memCache{})
	cfg := c.Configuration()
	cfg.Layout.Widgets[0].Visible = false
	cfg.Sizes["notes"] = SizeXS

	again := c.Configuration()
	assert.True(t, again.Layout.Widgets[0].Visible)
	assert.Equal(t, SizeMedium, again.Sizes.Get("notes"))
}
