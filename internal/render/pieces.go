package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/park285/darkchess/internal/domain"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type glyphKey struct {
	piece domain.Piece
	size  int
}

var (
	glyphCache   = map[glyphKey]image.Image{}
	glyphCacheMu sync.RWMutex
)

// pieceGlyph rasterises the piece's SVG to a size x size transparent image.
func pieceGlyph(piece domain.Piece, size int) (image.Image, error) {
	key := glyphKey{piece: piece, size: size}
	glyphCacheMu.RLock()
	img, ok := glyphCache[key]
	glyphCacheMu.RUnlock()
	if ok {
		return img, nil
	}

	name := pieceAsset(piece)
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG(data)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", name, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	glyphCacheMu.Lock()
	glyphCache[key] = rgba
	glyphCacheMu.Unlock()
	return rgba, nil
}

func pieceAsset(piece domain.Piece) string {
	prefix := "w"
	if piece.Side == domain.Black {
		prefix = "b"
	}
	return fmt.Sprintf("assets/pieces/%s%s.svg", prefix, piece.Kind.Letter())
}

// sanitizeSVG normalises colour declarations oksvg cannot parse.
func sanitizeSVG(svg []byte) []byte {
	fixed := bytes.ReplaceAll(svg, []byte("fill:000000"), []byte("fill:#000000"))
	fixed = bytes.ReplaceAll(fixed, []byte("fill: #"), []byte("fill:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: #"), []byte("stroke:#"))
	return fixed
}
