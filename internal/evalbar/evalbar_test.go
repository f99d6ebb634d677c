package evalbar

import (
	"strings"
	"testing"

	"github.com/park285/board-console/internal/dom"
)

func TestComputeWidthBounds(t *testing.T) {
	for _, cp := range []int{-5000, -1000, -999, -250, -1, 0, 1, 37, 999, 1000, 12000} {
		b := Compute(cp)
		if b.Width < 0 || b.Width > 50 {
			t.Fatalf("cp=%d width %v out of [0,50]", cp, b.Width)
		}
		if b.Left < 0 || b.Left+b.Width > 100 {
			t.Fatalf("cp=%d bar leaves the track: left=%v width=%v", cp, b.Left, b.Width)
		}
	}
	if w := Compute(250).Width; w != 12.5 {
		t.Fatalf("width(250) = %v want 12.5", w)
	}
	if w := Compute(-4000).Width; w != 50 {
		t.Fatalf("clamped width = %v want 50", w)
	}
}

func TestComputeSides(t *testing.T) {
	eq := Compute(0)
	if eq.Side != Equal || eq.Width != 0 || eq.Left != 50 || eq.Color != ColorNeutral || eq.Text != "0.00 (Equal)" || eq.Arrow != "⬌" {
		t.Fatalf("equal bar: %+v", eq)
	}

	w := Compute(150)
	if w.Side != White || w.Left != 50 || w.Arrow != "→" || w.Text != "+1.50 (White advantage)" {
		t.Fatalf("white bar: %+v", w)
	}

	b := Compute(-250)
	if b.Side != Black || b.Left != 37.5 || b.Arrow != "←" || b.Text != "-2.50 (Black advantage)" {
		t.Fatalf("black bar: %+v", b)
	}

	// text keeps the unclamped magnitude
	if got := Compute(2345).Text; got != "+23.45 (White advantage)" {
		t.Fatalf("unclamped text: %q", got)
	}
}

func TestApplyWritesElements(t *testing.T) {
	doc, err := dom.Parse(strings.NewReader(`<div id="eval-bar"></div><span id="eval-arrow"></span><span id="eval-text"></span>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	Apply(doc, Compute(-250))
	if got := doc.Get("eval-bar").Style("left"); got != "37.5%" {
		t.Fatalf("bar left = %q", got)
	}
	if got := doc.Get("eval-bar").Style("width"); got != "12.5%" {
		t.Fatalf("bar width = %q", got)
	}
	if doc.Get("eval-arrow").Text() != "←" || doc.Get("eval-text").Style("color") != ColorBlack {
		t.Fatalf("arrow/text not applied")
	}
}
