package app

import (
	"context"

	"github.com/dshills/rangebrush/internal/link"
)

// linkBridge serves link requests on the event loop.
type linkBridge struct {
	app *Application
}

func (b linkBridge) Value(ctx context.Context) (link.Value, error) {
	var v [2]float64
	if err := b.app.do(ctx, func() { v = b.app.Value() }); err != nil {
		return link.Value{}, err
	}
	return link.Value{V0: v[0], V1: v[1]}, nil
}

func (b linkBridge) SetValue(ctx context.Context, v link.Value) (link.Value, error) {
	var (
		got    [2]float64
		setErr error
	)
	err := b.app.do(ctx, func() {
		got, setErr = b.app.setValue([2]float64{v.V0, v.V1})
	})
	if err != nil {
		return link.Value{}, err
	}
	if setErr != nil {
		return link.Value{}, setErr
	}
	return link.Value{V0: got[0], V1: got[1]}, nil
}
