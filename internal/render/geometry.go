// Package render maps board squares to screen space and draws PNG frames of a session.
package render

import (
	"image"

	"github.com/park285/darkchess/internal/domain"
)

// BoardPixels is the edge length of the drawn board in a PNG frame.
const BoardPixels = 640

// Geometry places an 8x8 board at an origin with fixed square extents.
// Rank 8 is the top row, file a the left column. Units are pixels for PNG
// frames and character cells for the terminal.
type Geometry struct {
	X, Y    int
	SquareW int
	SquareH int
}

// NewGeometry returns a square-celled geometry at the origin for a board of boardSize units.
func NewGeometry(boardSize int) Geometry {
	s := boardSize / 8
	return Geometry{SquareW: s, SquareH: s}
}

// Bounds is the rectangle covered by the board.
func (g Geometry) Bounds() image.Rectangle {
	return image.Rect(g.X, g.Y, g.X+8*g.SquareW, g.Y+8*g.SquareH)
}

func (g Geometry) SquareRect(sq domain.Square) image.Rectangle {
	x := g.X + sq.File*g.SquareW
	y := g.Y + (7-sq.Rank)*g.SquareH
	return image.Rect(x, y, x+g.SquareW, y+g.SquareH)
}

// SquareAt maps a point back to a square. ok is false outside the board.
func (g Geometry) SquareAt(x, y int) (domain.Square, bool) {
	if g.SquareW <= 0 || g.SquareH <= 0 {
		return domain.Square{}, false
	}
	if !(image.Point{X: x, Y: y}).In(g.Bounds()) {
		return domain.Square{}, false
	}
	col := (x - g.X) / g.SquareW
	row := (y - g.Y) / g.SquareH
	return domain.Square{File: col, Rank: 7 - row}, true
}

// Center of the square, used for target markers.
func (g Geometry) Center(sq domain.Square) image.Point {
	r := g.SquareRect(sq)
	return image.Point{X: r.Min.X + g.SquareW/2, Y: r.Min.Y + g.SquareH/2}
}
