package cli

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"dashprefs/config"
	"dashprefs/dashboard"
	"dashprefs/localcache"
	"dashprefs/remote"
)

// session is one dashboard controller plus the resources behind it.
type session struct {
	ctl    *dashboard.Controller
	userID string
	closer func() error
}

func (s *session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func openSession(app *App, userID string, offline bool) (*session, error) {
	if userID == "" {
		return nil, fmt.Errorf("--user is required")
	}
	cc := app.Config.Client

	var rc dashboard.RemoteClient
	if cc.RemoteURL != "" && !offline {
		rc = remote.New(cc.RemoteURL, app.Config.RemoteTimeout(), app.Log)
	}

	s := &session{userID: userID}
	var cache dashboard.LocalCache
	switch cc.CacheBackend {
	case config.CacheFile:
		cache = localcache.NewFile(filepath.Join(cc.CacheDir, "users", url.PathEscape(userID)), app.Log)
	case config.CacheSQLite:
		db, err := localcache.OpenSQLite(filepath.Join(cc.CacheDir, "cache.db"), userID, app.Log)
		if err != nil {
			return nil, fmt.Errorf("open local cache: %w", err)
		}
		cache = db
		s.closer = db.Close
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cc.CacheBackend)
	}

	s.ctl = dashboard.NewController(rc, cache, dashboard.WithLogger(app.Log))
	return s, nil
}

func (s *session) load(ctx context.Context) dashboard.LoadResult {
	return s.ctl.Load(ctx, s.userID)
}

// save persists the session and turns a double failure into an error.
func (s *session) save(ctx context.Context) (dashboard.SaveResult, error) {
	res := s.ctl.Save(ctx, s.userID)
	if err := res.Err(); err != nil {
		return res, fmt.Errorf("dashboard not saved: %w", err)
	}
	return res, nil
}
