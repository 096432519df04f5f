package localcache

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"dashprefs/dashboard"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLite keeps the slots as rows of a key/value table. Several namespaces
// (one per user) can share one database file.
type SQLite struct {
	db        *sql.DB
	namespace string
	log       *zap.Logger
	now       func() time.Time
}

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(path, namespace string, log *zap.Logger) (*SQLite, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	c := &SQLite{db: db, namespace: namespace, log: log, now: time.Now}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLite) Close() error {
	return c.db.Close()
}

func (c *SQLite) migrate() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS cache_slots (
		namespace TEXT NOT NULL,
		slot TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (namespace, slot)
	);`)
	return err
}

func (c *SQLite) readSlot(ctx context.Context, slot string) ([]byte, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM cache_slots WHERE namespace = ? AND slot = ?`,
		c.namespace, slot,
	).Scan(&value)
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// Read returns the cached configuration. Query errors and corrupt rows read
// as absent.
func (c *SQLite) Read() (dashboard.Configuration, bool) {
	ctx := context.Background()
	log := c.log.With(zap.String("namespace", c.namespace))

	layout, err := c.readSlot(ctx, slotLayout)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn("read layout slot", zap.Error(err))
		}
		return dashboard.Configuration{}, false
	}
	sizes, err := c.readSlot(ctx, slotSizes)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn("read sizes slot", zap.Error(err))
			return dashboard.Configuration{}, false
		}
		sizes = nil
	}

	cfg, err := decodeSlots(layout, sizes)
	if err != nil {
		log.Warn("ignoring local cache", zap.Error(err))
		return dashboard.Configuration{}, false
	}
	return cfg, true
}

// Write replaces both slots in one transaction.
func (c *SQLite) Write(cfg dashboard.Configuration) (err error) {
	now := c.now()
	layout, sizes, err := encodeSlots(cfg, now)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stamp := now.UTC().Format(time.RFC3339Nano)
	for _, row := range []struct {
		slot  string
		value []byte
	}{{slotLayout, layout}, {slotSizes, sizes}} {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cache_slots (namespace, slot, value, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(namespace, slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			c.namespace, row.slot, string(row.value), stamp,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Clear deletes both slots of this namespace.
func (c *SQLite) Clear() error {
	_, err := c.db.Exec(`DELETE FROM cache_slots WHERE namespace = ?`, c.namespace)
	return err
}
