package track

import (
	"errors"

	"github.com/dshills/rangebrush/internal/renderer/core"
)

// Palette holds the colors the track draws with.
type Palette struct {
	Track     core.Color
	Range     core.Color
	Selection core.Color
}

// DefaultPalette mirrors the dark slider colors.
func DefaultPalette() Palette {
	return Palette{
		Track:     core.ColorFromRGB(0x3A, 0x41, 0x4C),
		Range:     core.ColorFromRGB(0xD3, 0xD8, 0xE0),
		Selection: core.ColorFromRGB(0x1F, 0xBA, 0xD6),
	}
}

// ParsePalette builds a palette from hex strings. Empty strings keep the
// default color.
func ParsePalette(track, rng, selection string) (Palette, error) {
	p := DefaultPalette()
	var errs []error
	for _, f := range []struct {
		hex string
		dst *core.Color
	}{
		{track, &p.Track},
		{rng, &p.Range},
		{selection, &p.Selection},
	} {
		if f.hex == "" {
			continue
		}
		c, err := core.ColorFromHex(f.hex)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*f.dst = c
	}
	if err := errors.Join(errs...); err != nil {
		return Palette{}, err
	}
	return p, nil
}
