// Package evalbar turns a centipawn evaluation into bar geometry.
package evalbar

import (
	"fmt"
	"math"
	"strconv"

	"github.com/park285/board-console/internal/dom"
)

const (
	MaxCentipawns = 1000

	ColorWhite   = "#4CAF50"
	ColorBlack   = "#F44336"
	ColorNeutral = "#ec8703"

	gradientWhite = "linear-gradient(to right, #ec8703 0%, #4CAF50 100%)"
	gradientBlack = "linear-gradient(to right, #F44336 0%, #ec8703 100%)"
)

type Side int

const (
	Equal Side = iota
	White
	Black
)

// Bar is the rendered state of the evaluation bar. Left, Width and ArrowLeft
// are percentages of the track.
type Bar struct {
	Left       float64
	Width      float64
	ArrowLeft  float64
	Arrow      string
	Color      string
	Background string
	Text       string
	Side       Side
}

// Compute maps centipawns (positive favours white) onto the bar.
func Compute(cp int) Bar {
	clamped := max(-MaxCentipawns, min(MaxCentipawns, cp))
	width := math.Abs(float64(clamped)) / MaxCentipawns * 50
	pawns := float64(cp) / 100

	switch {
	case cp > 0:
		return Bar{
			Left: 50, Width: width, ArrowLeft: 50 + width,
			Arrow: "→", Color: ColorWhite, Background: gradientWhite,
			Text: fmt.Sprintf("+%.2f (White advantage)", pawns),
			Side: White,
		}
	case cp < 0:
		return Bar{
			Left: 50 - width, Width: width, ArrowLeft: 50 - width,
			Arrow: "←", Color: ColorBlack, Background: gradientBlack,
			Text: fmt.Sprintf("%.2f (Black advantage)", pawns),
			Side: Black,
		}
	default:
		return Bar{
			Left: 50, Width: 0, ArrowLeft: 50,
			Arrow: "⬌", Color: ColorNeutral, Background: ColorNeutral,
			Text: "0.00 (Equal)",
			Side: Equal,
		}
	}
}

// Apply writes bar into the eval-bar, eval-arrow and eval-text elements.
func Apply(doc *dom.Document, b Bar) {
	doc.SetStyle("eval-bar", "left", percent(b.Left))
	doc.SetStyle("eval-bar", "width", percent(b.Width))
	doc.SetStyle("eval-bar", "background", b.Background)
	doc.SetStyle("eval-arrow", "left", percent(b.ArrowLeft))
	doc.SetStyle("eval-arrow", "color", b.Color)
	doc.SetText("eval-arrow", b.Arrow)
	doc.SetText("eval-text", b.Text)
	doc.SetStyle("eval-text", "color", b.Color)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
