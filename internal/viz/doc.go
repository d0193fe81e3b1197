// Package viz renders a live terminal view of a running diffusion
// simulation using the Bubble Tea framework:
//
//   - [Model]: interactive view stepping the walk between frames
//   - [Canvas]: braille pixel canvas for the x-y projection
//
// # Key Bindings
//
//	Space - Pause/Resume the walk
//	R     - Replay from the start positions
//	Tab   - Switch the tracked particle
//	+/-   - Double/halve steps per frame
//	Q     - Quit
package viz
