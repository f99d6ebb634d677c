package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/board-console/internal/board"
	"github.com/park285/board-console/internal/evalbar"
)

const (
	defaultSquareSize = 48
	sideMargin        = 24
	titleHeight       = 28
	coordHeight       = 20
	evalStripHeight   = 14
	evalStripGap      = 8
)

// PNGOptions tunes a snapshot image.
type PNGOptions struct {
	SquareSize int
	Title      string
	Evaluation *int
}

func (o PNGOptions) squareSize() int {
	if o.SquareSize <= 0 {
		return defaultSquareSize
	}
	return o.SquareSize
}

// Dimensions returns the image size Render produces for opts.
func Dimensions(opts PNGOptions) (width, height int) {
	boardSize := opts.squareSize() * 8
	width = boardSize + sideMargin*2
	height = titleHeight + boardSize + coordHeight
	if opts.Evaluation != nil {
		height += evalStripGap + evalStripHeight
	}
	return width, height
}

// PNGRenderer rasterises grids.
type PNGRenderer struct{}

func NewPNGRenderer() *PNGRenderer { return &PNGRenderer{} }

func (r *PNGRenderer) Render(ctx context.Context, g board.Grid, opts PNGOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	squareSize := opts.squareSize()
	width, height := Dimensions(opts)
	origin := image.Point{X: sideMargin, Y: titleHeight}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+squareSize*8, origin.Y+squareSize*8)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	drawTitle(drawer, opts.Title, width)
	drawSquares(img, squareSize, origin)
	if err := drawPieces(img, g.ChessBoard(), squareSize, origin); err != nil {
		return nil, err
	}
	drawCoordinates(drawer, squareSize, origin)
	if opts.Evaluation != nil {
		strip := image.Rect(boardRect.Min.X, boardRect.Max.Y+coordHeight+evalStripGap, boardRect.Max.X, boardRect.Max.Y+coordHeight+evalStripGap+evalStripHeight)
		drawEvalStrip(img, strip, evalbar.Compute(*opts.Evaluation))
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

var (
	backgroundColor = color.RGBA{92, 93, 94, 255}
	lightSquare     = color.RGBA{233, 207, 163, 255}
	darkSquare      = color.RGBA{187, 136, 96, 255}
	titleColor      = color.RGBA{236, 135, 3, 255}
	coordinateColor = color.RGBA{236, 239, 255, 255}
	evalTrackColor  = color.RGBA{60, 60, 60, 255}
	evalWhiteColor  = color.RGBA{76, 175, 80, 255}
	evalBlackColor  = color.RGBA{244, 67, 54, 255}
	evalCenterColor = color.RGBA{236, 135, 3, 255}
)

var (
	ranks = []nchess.Rank{nchess.Rank8, nchess.Rank7, nchess.Rank6, nchess.Rank5, nchess.Rank4, nchess.Rank3, nchess.Rank2, nchess.Rank1}
	files = []nchess.File{nchess.FileA, nchess.FileB, nchess.FileC, nchess.FileD, nchess.FileE, nchess.FileF, nchess.FileG, nchess.FileH}
)

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point) {
	for row, rank := range ranks {
		for col, file := range files {
			x := origin.X + col*squareSize
			y := origin.Y + row*squareSize
			clr := squareColor(nchess.NewSquare(file, rank))
			imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, b *nchess.Board, squareSize int, origin image.Point) error {
	boardMap := b.SquareMap()
	for row, rank := range ranks {
		for col, file := range files {
			piece, ok := boardMap[nchess.NewSquare(file, rank)]
			if !ok || piece == nchess.NoPiece {
				continue
			}
			img, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			x := origin.X + col*squareSize
			y := origin.Y + row*squareSize
			imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawCoordinates(drawer *font.Drawer, squareSize int, origin image.Point) {
	drawer.Src = image.NewUniform(coordinateColor)
	ascent := drawer.Face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + len(ranks)*squareSize

	for row, rank := range ranks {
		baseline := origin.Y + row*squareSize + squareSize/2 + ascent/2
		drawCenteredText(drawer, rank.String(), origin.X-sideMargin/2, baseline)
	}
	for col, file := range files {
		center := origin.X + col*squareSize + squareSize/2
		drawCenteredText(drawer, file.String(), center, boardEndY+ascent+2)
	}
}

func drawTitle(drawer *font.Drawer, title string, width int) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	drawer.Src = image.NewUniform(titleColor)
	ascent := drawer.Face.Metrics().Ascent.Ceil()
	drawCenteredText(drawer, title, width/2, (titleHeight+ascent)/2)
}

func drawEvalStrip(img *image.RGBA, strip image.Rectangle, bar evalbar.Bar) {
	imagedraw.Draw(img, strip, image.NewUniform(evalTrackColor), image.Point{}, imagedraw.Src)
	w := strip.Dx()
	x0 := strip.Min.X + int(bar.Left/100*float64(w))
	x1 := x0 + int(bar.Width/100*float64(w))
	clr := evalCenterColor
	switch bar.Side {
	case evalbar.White:
		clr = evalWhiteColor
	case evalbar.Black:
		clr = evalBlackColor
	}
	if x1 > x0 {
		imagedraw.Draw(img, image.Rect(x0, strip.Min.Y, x1, strip.Max.Y), image.NewUniform(clr), image.Point{}, imagedraw.Src)
	}
	mid := strip.Min.X + w/2
	imagedraw.Draw(img, image.Rect(mid-1, strip.Min.Y, mid+1, strip.Max.Y), image.NewUniform(evalCenterColor), image.Point{}, imagedraw.Src)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareColor(sq nchess.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}
