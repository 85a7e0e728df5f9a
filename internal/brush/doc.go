// Package brush implements the interaction state machine behind a range
// brush: a draggable selection over a linear axis that picks either a
// point or a closed interval of a numeric domain.
//
// The controller sits between two sources of truth. Pixel geometry comes
// from a GestureSource while the committed value is owned by the caller
// and arrives through Props. A Surface draws selections and may echo the
// render back as a gesture event; the controller uses its Mode to tell
// user intent apart from those echoes.
//
// # Lifecycle
//
//	ctrl, err := brush.New(props, surface, gestures,
//	    brush.WithNormalizer(snap.Default),
//	)
//	...
//	props.Value = [2]float64{10, 40}
//	ctrl.Update(props) // programmatic move, no OnBrush
//
// # Modes
//
//   - ModeIdle: nothing in flight.
//   - ModeGesturing: a user gesture is producing selection updates.
//   - ModeProgrammatic: the controller is repositioning the surface.
//
// Gesture moves that arrive during ModeProgrammatic are ignored. Moves
// tagged OriginBrush are render echoes and never reach OnBrush.
//
// # Thread Safety
//
// Controller is not safe for concurrent use. All calls, including the
// gesture callbacks, must come from the same event loop.
package brush
