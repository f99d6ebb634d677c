package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// piece outlines on a 45x45 canvas
var pieceShapes = map[nchess.PieceType]string{
	nchess.Pawn: `<circle cx="22.5" cy="14" r="6"/>
<path d="M 14 36 L 31 36 L 27 22 L 18 22 Z"/>`,
	nchess.Rook: `<path d="M 11 36 L 34 36 L 34 32 L 31 32 L 29 16 L 32 16 L 32 9 L 28 9 L 28 12 L 24.5 12 L 24.5 9 L 20.5 9 L 20.5 12 L 17 12 L 17 9 L 13 9 L 13 16 L 16 16 L 14 32 L 11 32 Z"/>`,
	nchess.Knight: `<path d="M 12 36 L 33 36 L 31 26 L 29 14 L 24 9 L 21 11 L 13 18 L 14 22 L 19 20 L 20 23 L 14 31 Z"/>`,
	nchess.Bishop: `<circle cx="22.5" cy="8" r="2.5"/>
<ellipse cx="22.5" cy="21" rx="7" ry="10"/>
<path d="M 14 36 L 31 36 L 28 31 L 17 31 Z"/>`,
	nchess.Queen: `<path d="M 9 13 L 14 26 L 14.5 12.5 L 18.5 25 L 22.5 11 L 26.5 25 L 30.5 12.5 L 31 26 L 36 13 L 32 32 L 13 32 Z"/>
<rect x="11" y="32" width="23" height="5"/>`,
	nchess.King: `<path d="M 21 6 L 24 6 L 24 9 L 27 9 L 27 12 L 24 12 L 24 16 L 21 16 L 21 12 L 18 12 L 18 9 L 21 9 Z"/>
<path d="M 11 32 L 34 32 L 37 20 L 29 17 L 22.5 21 L 16 17 L 8 20 Z"/>
<rect x="11" y="32" width="23" height="5"/>`,
}

func pieceSVG(piece nchess.Piece) ([]byte, error) {
	shape, ok := pieceShapes[piece.Type()]
	if !ok {
		return nil, fmt.Errorf("no outline for piece %v", piece)
	}
	fill, stroke := "#ffffff", "#000000"
	if piece.Color() == nchess.Black {
		fill, stroke = "#1f1f1f", "#000000"
	}
	var b bytes.Buffer
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">`)
	fmt.Fprintf(&b, `<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">%s</g></svg>`, fill, stroke, shape)
	return b.Bytes(), nil
}

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	data, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
