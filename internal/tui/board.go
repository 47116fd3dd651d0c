// Package tui is the terminal front end: a mouse-driven board, a side panel and the mode selector.
package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/park285/darkchess/internal/domain"
	"github.com/park285/darkchess/internal/render"
	"github.com/park285/darkchess/internal/session"
)

// Preferred square size in character cells. Terminal cells are roughly twice
// as tall as wide, so 6x3 keeps squares visually square.
const (
	cellW = 6
	cellH = 3
)

var (
	lightStyle    = tcell.StyleDefault.Background(tcell.NewRGBColor(240, 217, 181))
	darkStyle     = tcell.StyleDefault.Background(tcell.NewRGBColor(181, 136, 99))
	selectedStyle = tcell.StyleDefault.Background(tcell.NewRGBColor(150, 150, 50))
	targetColor   = tcell.NewRGBColor(200, 200, 100)
	whitePiece    = tcell.ColorWhite
	blackPiece    = tcell.ColorBlack
)

// BoardView draws the session board and turns left clicks into square clicks.
type BoardView struct {
	*tview.Box
	ctrl *session.Controller
	// called after a click was handed to the controller
	onClick func()
}

// NewBoardView binds the widget to ctrl.
func NewBoardView(ctrl *session.Controller) *BoardView {
	b := &BoardView{Box: tview.NewBox(), ctrl: ctrl}
	b.SetBorder(false)
	b.SetDrawFunc(b.draw)
	b.SetMouseCapture(b.mouse)
	return b
}

// SetClickFunc registers fn to run after every handled click.
func (b *BoardView) SetClickFunc(fn func()) { b.onClick = fn }

// boardGeometry centres the largest board that fits into the given rectangle.
func boardGeometry(x, y, width, height int) render.Geometry {
	w, h := cellW, cellH
	for w > 1 && 8*w > width {
		w--
	}
	for h > 1 && 8*h > height {
		h--
	}
	return render.Geometry{
		X:       x + max(0, (width-8*w)/2),
		Y:       y + max(0, (height-8*h)/2),
		SquareW: w,
		SquareH: h,
	}
}

func (b *BoardView) geometry() render.Geometry {
	return boardGeometry(b.GetInnerRect())
}

func (b *BoardView) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	snap := b.ctrl.Snapshot()
	if snap.Position == nil {
		return x, y, width, height
	}
	g := boardGeometry(x, y, width, height)
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			drawSquare(screen, g, snap, domain.Square{File: file, Rank: rank})
		}
	}
	return x, y, width, height
}

func squareStyle(snap session.Snapshot, sq domain.Square) tcell.Style {
	if snap.HasSelection && snap.Selected == sq {
		return selectedStyle
	}
	if (sq.File+7-sq.Rank)%2 == 1 {
		return darkStyle
	}
	return lightStyle
}

func drawSquare(screen tcell.Screen, g render.Geometry, snap session.Snapshot, sq domain.Square) {
	style := squareStyle(snap, sq)
	r := g.SquareRect(sq)
	for cy := r.Min.Y; cy < r.Max.Y; cy++ {
		for cx := r.Min.X; cx < r.Max.X; cx++ {
			screen.SetContent(cx, cy, ' ', nil, style)
		}
	}
	c := g.Center(sq)
	if pc, ok := snap.Position.PieceAt(sq); ok {
		fg := whitePiece
		if pc.Side == domain.Black {
			fg = blackPiece
		}
		pieceStyle := style.Foreground(fg).Bold(true)
		if snap.IsTarget(sq) {
			pieceStyle = pieceStyle.Underline(true).Foreground(targetColor)
		}
		screen.SetContent(c.X, c.Y, rune(pc.Symbol()[0]), nil, pieceStyle)
		return
	}
	if snap.IsTarget(sq) {
		screen.SetContent(c.X, c.Y, '●', nil, style.Foreground(targetColor))
	}
}

func (b *BoardView) mouse(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
	if action != tview.MouseLeftClick {
		return action, event
	}
	x, y := event.Position()
	if !b.InRect(x, y) {
		return action, event
	}
	if sq, ok := b.geometry().SquareAt(x, y); ok {
		b.ctrl.OnSquareClicked(sq)
		if b.onClick != nil {
			b.onClick()
		}
	}
	return tview.MouseConsumed, nil
}
