// Package gesture recognizes one-dimensional brush gestures from pointer
// samples.
//
// The Recognizer follows the usual brush conventions:
//
//   - Press inside the selection: the whole selection moves.
//   - Press on an edge handle: that edge resizes.
//   - Press anywhere else: a new selection starts at [x, x].
//
// A release that leaves an empty selection clears it and ends the gesture
// with no selection, which the brush controller reads as a click.
//
//	r := gesture.NewRecognizer(gesture.DefaultConfig())
//	r.Bind(track, controller)
//	r.Feed(x, buttonDown, overTrack)
package gesture
