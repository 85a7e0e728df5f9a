package brush

import "math"

// Mapper converts between domain values and pixels for one range/width pair.
type Mapper struct {
	Min   float64
	Max   float64
	Width float64
}

// NewMapper creates a mapper for the domain rng drawn over width pixels.
func NewMapper(rng [2]float64, width float64) Mapper {
	return Mapper{Min: rng[0], Max: rng[1], Width: width}
}

// Valid reports whether the mapper can convert anything. A zero width or a
// collapsed domain is a defined degenerate state, not an error.
func (m Mapper) Valid() bool {
	if math.IsNaN(m.Min) || math.IsNaN(m.Max) || math.IsNaN(m.Width) {
		return false
	}
	return m.Width != 0 && m.Max-m.Min != 0
}

// ToPixel maps a domain value to a pixel offset.
func (m Mapper) ToPixel(v float64) float64 {
	return (v - m.Min) * m.Width / (m.Max - m.Min)
}

// ToValue maps a pixel offset back to a domain value.
func (m Mapper) ToValue(p float64) float64 {
	return p*(m.Max-m.Min)/m.Width + m.Min
}

// Selection returns the pixel selection for a value pair. In point mode
// only v0 is used and the result is a one pixel wide marker.
// The second result is false when the mapper is not Valid.
func (m Mapper) Selection(v0, v1 float64, ranged bool) (Selection, bool) {
	if !m.Valid() {
		return Selection{}, false
	}
	p0 := m.ToPixel(v0)
	if !ranged {
		return Selection{P0: p0, P1: p0 + 1}, true
	}
	return Selection{P0: p0, P1: m.ToPixel(v1)}, true
}
