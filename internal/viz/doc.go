// Package viz renders a running net in the terminal.
//
// The live view draws the net's edges with an orthographic [Camera] onto a
// braille [Canvas] and shows constraint residual, motion and sag next to it.
// [App] is a preset picker in front of the live view.
//
// # Key Bindings
//
//	Space    - Pause/Resume
//	n        - Single tick while paused
//	a        - Release all pins
//	Arrows   - Move the rig (w/s for depth)
//	t        - Teleport the rig past the displacement limit
//	x/X y/Y  - Orbit the camera
//	+/-      - Zoom
//	c        - Cycle color themes
//	?        - Show help overlay
package viz
