package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/park285/darkchess/internal/domain"
	"github.com/park285/darkchess/internal/msgcat"
	"github.com/park285/darkchess/internal/session"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Frame size: the board on the left, the side panel on the right.
const (
	FrameWidth  = 800
	FrameHeight = 640

	panelX         = 660
	clockWhiteY    = 50
	clockBlackY    = 100
	moveListY      = 180
	moveLineHeight = 20
	markerRadius   = 10
)

var (
	lightSquare    = color.RGBA{240, 217, 181, 255}
	darkSquare     = color.RGBA{181, 136, 99, 255}
	selectedSquare = color.RGBA{150, 150, 50, 255}
	targetMarker   = color.RGBA{200, 200, 100, 255}
	panelText      = color.RGBA{255, 255, 255, 255}
	alertText      = color.RGBA{255, 214, 102, 255}
)

var (
	fontOnce sync.Once
	fontData *opentype.Font
	fontErr  error
)

func loadFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontData, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse font: %w", fontErr)
	}
	return opentype.NewFace(fontData, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// PNGRenderer draws full frames of a session snapshot.
type PNGRenderer struct {
	geom Geometry
	msgs *msgcat.Catalog
}

// NewPNGRenderer uses msgs for panel labels; nil falls back to message keys.
func NewPNGRenderer(msgs *msgcat.Catalog) *PNGRenderer {
	return &PNGRenderer{geom: NewGeometry(BoardPixels), msgs: msgs}
}

func (r *PNGRenderer) Geometry() Geometry { return r.geom }

// Render encodes one frame as PNG.
func (r *PNGRenderer) Render(ctx context.Context, snap session.Snapshot) ([]byte, error) {
	img, err := r.Draw(ctx, snap)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Draw paints a frame into a new RGBA image.
func (r *PNGRenderer) Draw(ctx context.Context, snap session.Snapshot) (*image.RGBA, error) {
	if snap.Position == nil {
		return nil, errors.New("render: session not started")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(darkSquare), image.Point{}, draw.Src)

	r.drawSquares(img, snap)
	if err := r.drawPieces(img, snap.Position); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.drawPanel(img, snap); err != nil {
		return nil, err
	}
	return img, nil
}

func (r *PNGRenderer) drawSquares(img *image.RGBA, snap session.Snapshot) {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := domain.Square{File: file, Rank: rank}
			clr := lightSquare
			if (file+7-rank)%2 == 1 {
				clr = darkSquare
			}
			if snap.HasSelection && sq == snap.Selected {
				clr = selectedSquare
			}
			draw.Draw(img, r.geom.SquareRect(sq), image.NewUniform(clr), image.Point{}, draw.Src)
		}
	}
	for _, t := range snap.Targets {
		drawDisc(img, r.geom.Center(t), markerRadius, targetMarker)
	}
}

func (r *PNGRenderer) drawPieces(img *image.RGBA, pos domain.Position) error {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := domain.Square{File: file, Rank: rank}
			pc, ok := pos.PieceAt(sq)
			if !ok {
				continue
			}
			glyph, err := pieceGlyph(pc, r.geom.SquareW)
			if err != nil {
				return err
			}
			draw.Draw(img, r.geom.SquareRect(sq), glyph, image.Point{}, draw.Over)
		}
	}
	return nil
}

func (r *PNGRenderer) drawPanel(img *image.RGBA, snap session.Snapshot) error {
	clockFace, err := loadFace(24)
	if err != nil {
		return err
	}
	defer clockFace.Close()
	listFace, err := loadFace(15)
	if err != nil {
		return err
	}
	defer listFace.Close()

	if snap.Timed {
		wt := session.FormatClock(snap.WhiteRemaining)
		bt := session.FormatClock(snap.BlackRemaining)
		drawText(img, clockFace, panelX, clockWhiteY, r.msgs.Text("clock.white", map[string]any{"Time": wt}), panelText)
		drawText(img, clockFace, panelX, clockBlackY, r.msgs.Text("clock.black", map[string]any{"Time": bt}), panelText)
	}

	bottom := FrameHeight - 2*moveLineHeight
	if snap.Terminal != nil {
		bottom -= 2 * moveLineHeight
	}
	visible := (bottom - moveListY) / moveLineHeight
	entries := snap.History
	if len(entries) > visible {
		entries = entries[len(entries)-visible:]
	}
	y := moveListY
	for _, e := range entries {
		drawText(img, listFace, panelX, y, e.Label(), panelText)
		y += moveLineHeight
	}

	if t := snap.Terminal; t != nil {
		line := r.msgs.Text("terminal.game_over", map[string]any{"Result": t.Description})
		if t.Kind == domain.TimeForfeit {
			line = r.msgs.Text("terminal.time_up", nil)
		}
		drawText(img, listFace, panelX, FrameHeight-3*moveLineHeight, line, alertText)
	}
	return nil
}

// drawText places text with its top-left corner at (x, top).
func drawText(img *image.RGBA, face font.Face, x, top int, text string, clr color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: face,
		Dot:  fixed.P(x, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.RGBA) {
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			p := image.Point{X: center.X + dx, Y: center.Y + dy}
			if p.In(img.Bounds()) {
				img.SetRGBA(p.X, p.Y, clr)
			}
		}
	}
}
