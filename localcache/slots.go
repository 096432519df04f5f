// Package localcache implements dashboard.LocalCache on durable local
// storage. Both backends keep the configuration in two named text slots, one
// for the layout and one for the size map.
package localcache

import (
	"encoding/json"
	"fmt"
	"time"

	"dashprefs/dashboard"
)

const (
	slotLayout = "layout"
	slotSizes  = "sizes"

	slotVersion = 1
)

// layoutRecord is what the layout slot holds. Layout stays raw on read so
// it goes through dashboard.DecodeLayout.
type layoutRecord struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"savedAt"`
	Layout  json.RawMessage `json:"layout"`
}

func encodeSlots(cfg dashboard.Configuration, now time.Time) (layout, sizes []byte, err error) {
	cfg = cfg.Clone()
	rawLayout, err := json.Marshal(cfg.Layout)
	if err != nil {
		return nil, nil, err
	}
	layout, err = json.Marshal(layoutRecord{Version: slotVersion, SavedAt: now.UTC(), Layout: rawLayout})
	if err != nil {
		return nil, nil, err
	}
	sizes, err = json.Marshal(cfg.Sizes)
	if err != nil {
		return nil, nil, err
	}
	return layout, sizes, nil
}

// decodeSlots rebuilds a configuration. sizes may be nil when only the
// layout slot exists; that reads as an empty size map.
func decodeSlots(layout, sizes []byte) (dashboard.Configuration, error) {
	var rec layoutRecord
	if err := json.Unmarshal(layout, &rec); err != nil {
		return dashboard.Configuration{}, fmt.Errorf("%w: layout slot: %v", dashboard.ErrCacheCorrupt, err)
	}
	if rec.Version != slotVersion {
		return dashboard.Configuration{}, fmt.Errorf("%w: layout slot version %d", dashboard.ErrCacheCorrupt, rec.Version)
	}
	l, err := dashboard.DecodeLayout(rec.Layout)
	if err != nil {
		return dashboard.Configuration{}, fmt.Errorf("%w: layout slot: %v", dashboard.ErrCacheCorrupt, err)
	}
	cfg := dashboard.Configuration{Layout: l, Sizes: dashboard.SizeMap{}}
	if len(sizes) > 0 {
		if err := json.Unmarshal(sizes, &cfg.Sizes); err != nil {
			return dashboard.Configuration{}, fmt.Errorf("%w: sizes slot: %v", dashboard.ErrCacheCorrupt, err)
		}
		if cfg.Sizes == nil {
			cfg.Sizes = dashboard.SizeMap{}
		}
	}
	return cfg, nil
}
