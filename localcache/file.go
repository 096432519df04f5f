package localcache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"dashprefs/dashboard"
)

// File keeps each slot as a JSON file inside dir.
type File struct {
	mu  sync.Mutex
	dir string
	log *zap.Logger
	now func() time.Time
}

// NewFile returns a cache rooted at dir. The directory is created lazily on
// the first write.
func NewFile(dir string, log *zap.Logger) *File {
	if log == nil {
		log = zap.NewNop()
	}
	return &File{dir: dir, log: log, now: time.Now}
}

func (f *File) path(slot string) string {
	return filepath.Join(f.dir, slot+".json")
}

// Read returns the cached configuration. Missing, unreadable or corrupt
// slots read as absent.
func (f *File) Read() (dashboard.Configuration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	layout, err := os.ReadFile(f.path(slotLayout))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.log.Warn("read layout slot", zap.String("dir", f.dir), zap.Error(err))
		}
		return dashboard.Configuration{}, false
	}
	sizes, err := os.ReadFile(f.path(slotSizes))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.log.Warn("read sizes slot", zap.String("dir", f.dir), zap.Error(err))
			return dashboard.Configuration{}, false
		}
		sizes = nil
	}

	cfg, err := decodeSlots(layout, sizes)
	if err != nil {
		f.log.Warn("ignoring local cache", zap.String("dir", f.dir), zap.Error(err))
		return dashboard.Configuration{}, false
	}
	return cfg, true
}

// Write replaces both slots. Both temp files are written before either is
// renamed into place, so a failed write leaves the old pair intact. The two
// renames themselves are not atomic as a pair.
func (f *File) Write(cfg dashboard.Configuration) error {
	layout, sizes, err := encodeSlots(cfg, f.now())
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return err
	}
	sizesTmp, err := writeTemp(f.path(slotSizes), sizes)
	if err != nil {
		return err
	}
	layoutTmp, err := writeTemp(f.path(slotLayout), layout)
	if err != nil {
		_ = os.Remove(sizesTmp)
		return err
	}
	if err := os.Rename(sizesTmp, f.path(slotSizes)); err != nil {
		_ = os.Remove(sizesTmp)
		_ = os.Remove(layoutTmp)
		return err
	}
	return os.Rename(layoutTmp, f.path(slotLayout))
}

// Clear removes both slots. Missing files are not an error.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, slot := range []string{slotLayout, slotSizes} {
		if err := os.Remove(f.path(slot)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// writeTemp writes data next to path and returns the temp file name.
func writeTemp(path string, data []byte) (string, error) {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", err
	}
	return tmp, nil
}
