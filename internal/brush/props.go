package brush

import (
	"errors"
	"math"
	"slices"
)

// Props is the caller-owned configuration of a brush.
//
// The controller never writes to Props. It requests value changes through
// OnBrush and expects the owner to pass the new value back via Update.
type Props struct {
	// OnBrush receives every accepted value change. Required.
	// In point mode both arguments carry the same value.
	OnBrush func(v0, v1 float64)

	// OnBrushStart and OnBrushEnd are called at gesture boundaries.
	OnBrushStart func()
	OnBrushEnd   func()

	// Range is the [min, max] domain.
	Range [2]float64

	// Value is the committed value. Only Value[0] matters in point mode.
	Value [2]float64

	// Width is the track width in pixels.
	Width float64

	// Step and Marks are forwarded to the normalizer untouched.
	// A zero Step disables stepping.
	Step  float64
	Marks []float64

	// Point selects single-value mode. The zero value is ranged.
	Point bool
}

// IsRanged reports whether the brush manages an interval.
func (p Props) IsRanged() bool {
	return !p.Point
}

// Validate checks the props contract. A value pair with v1 < v0 is
// accepted as is.
func (p Props) Validate() error {
	var errs []error
	if p.OnBrush == nil {
		errs = append(errs, &PropError{Field: "onBrush", Reason: "required"})
	}
	if !finite(p.Range[0]) || !finite(p.Range[1]) {
		errs = append(errs, &PropError{Field: "range", Reason: "must be finite"})
	} else if p.Range[1] < p.Range[0] {
		errs = append(errs, &PropError{Field: "range", Reason: "max must be >= min"})
	}
	if !finite(p.Value[0]) || !finite(p.Value[1]) {
		errs = append(errs, &PropError{Field: "value", Reason: "must be finite"})
	}
	if !finite(p.Width) || p.Width < 0 {
		errs = append(errs, &PropError{Field: "width", Reason: "must be a non-negative number"})
	}
	if !finite(p.Step) || p.Step < 0 {
		errs = append(errs, &PropError{Field: "step", Reason: "must be a non-negative number"})
	}
	return errors.Join(errs...)
}

// sameValue reports whether v equals the committed value, comparing
// only the first endpoint in point mode.
func (p Props) sameValue(v [2]float64) bool {
	if p.Point {
		return p.Value[0] == v[0]
	}
	return p.Value == v
}

func (p Props) mapper() Mapper {
	return NewMapper(p.Range, p.Width)
}

func (p Props) clone() Props {
	p.Marks = slices.Clone(p.Marks)
	return p
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
