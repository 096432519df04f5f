package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Wire forms use pointers so a missing or null key is told apart from an
// empty collection.
type wireLayout struct {
	StatCards *[]Entry `json:"statCards"`
	Widgets   *[]Entry `json:"widgets"`
}

type wireConfiguration struct {
	Layout *wireLayout `json:"layout"`
	Sizes  SizeMap     `json:"sizes"`
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func (w *wireLayout) layout() (Layout, error) {
	switch {
	case w == nil:
		return Layout{}, errors.New("missing layout")
	case w.StatCards == nil:
		return Layout{}, errors.New("layout: missing statCards")
	case w.Widgets == nil:
		return Layout{}, errors.New("layout: missing widgets")
	}
	l := Layout{StatCards: *w.StatCards, Widgets: *w.Widgets}
	return l, l.Validate()
}

// DecodeLayout parses a stored layout. Both collections must be present and
// unknown fields are rejected.
func DecodeLayout(data []byte) (Layout, error) {
	var w *wireLayout
	if err := decodeStrict(data, &w); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return w.layout()
}

// DecodeConfiguration parses a stored configuration with the same rules as
// DecodeLayout. A missing sizes key reads as an empty SizeMap.
func DecodeConfiguration(data []byte) (Configuration, error) {
	var w *wireConfiguration
	if err := decodeStrict(data, &w); err != nil {
		return Configuration{}, fmt.Errorf("decode configuration: %w", err)
	}
	if w == nil {
		return Configuration{}, errors.New("null configuration")
	}
	l, err := w.Layout.layout()
	if err != nil {
		return Configuration{}, err
	}
	cfg := Configuration{Layout: l, Sizes: w.Sizes}
	if cfg.Sizes == nil {
		cfg.Sizes = SizeMap{}
	}
	return cfg, cfg.Validate()
}
