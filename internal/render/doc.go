// Package render draws standalone SVG seating plans.
//
// The front view shows the board at the top as students see the room; the
// mirrored view turns the plan half a turn so the board is at the bottom, as
// seen from the teacher's desk.
package render
