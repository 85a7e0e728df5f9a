package lua

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/rangebrush/internal/snap"
)

// NormalizeFunc is the global function a snap script must define:
//
//	function normalize(value, min, step, marks)
//	  return value
//	end
//
// marks is a 1-based array, empty when no marks are configured.
const NormalizeFunc = "normalize"

// Normalizer adapts a script's normalize function to snap.Normalizer.
// A failing call falls back to the wrapped normalizer.
type Normalizer struct {
	state    *State
	fallback snap.Normalizer

	mu      sync.Mutex
	lastErr error
}

// NewNormalizer checks that state defines normalize and wraps it.
func NewNormalizer(state *State, fallback snap.Normalizer) (*Normalizer, error) {
	if !state.HasFunc(NormalizeFunc) {
		return nil, fmt.Errorf("snap script does not define %s()", NormalizeFunc)
	}
	if fallback == nil {
		fallback = snap.Default
	}
	return &Normalizer{state: state, fallback: fallback}, nil
}

// LoadNormalizer creates a state, runs the script at path and wraps it.
func LoadNormalizer(path string, opts ...StateOption) (*Normalizer, error) {
	state := NewState(opts...)
	if err := state.DoFile(path); err != nil {
		_ = state.Close()
		return nil, fmt.Errorf("loading snap script %s: %w", path, err)
	}
	n, err := NewNormalizer(state, snap.Default)
	if err != nil {
		_ = state.Close()
		return nil, err
	}
	return n, nil
}

// Normalize calls the script.
func (n *Normalizer) Normalize(value, min, step float64, marks []float64) float64 {
	tbl := n.state.NumberArray(marks)
	ret, err := n.state.Call(NormalizeFunc, lua.LNumber(value), lua.LNumber(min), lua.LNumber(step), tbl)
	if err == nil {
		if num, ok := ret.(lua.LNumber); ok {
			n.setErr(nil)
			return float64(num)
		}
		err = fmt.Errorf("%w: %s", ErrBadResult, ret.Type())
	}

	n.setErr(err)
	return n.fallback.Normalize(value, min, step, marks)
}

// Err returns the error of the most recent call, or nil.
func (n *Normalizer) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastErr
}

// Close releases the underlying state.
func (n *Normalizer) Close() error {
	return n.state.Close()
}

func (n *Normalizer) setErr(err error) {
	n.mu.Lock()
	n.lastErr = err
	n.mu.Unlock()
}
