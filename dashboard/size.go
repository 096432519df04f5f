package dashboard

import "fmt"

// Size is the display size class of a card or widget.
type Size string

const (
	SizeXS         Size = "xs"
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeExtraLarge Size = "extra-large"
)

// Sizes lists every class from smallest to largest.
var Sizes = []Size{SizeXS, SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge}

func (s Size) Valid() bool {
	switch s {
	case SizeXS, SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
		return true
	}
	return false
}

func ParseSize(s string) (Size, error) {
	if sz := Size(s); sz.Valid() {
		return sz, nil
	}
	return "", fmt.Errorf("unknown size %q (want one of xs, small, medium, large, extra-large)", s)
}

// SizeMap assigns size classes by entry id, shared by both collections.
// Ids without an entry read as SizeMedium.
type SizeMap map[string]Size

func (m SizeMap) Get(id string) Size {
	if s, ok := m[id]; ok {
		return s
	}
	return SizeMedium
}

func (m SizeMap) Clone() SizeMap {
	out := make(SizeMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
