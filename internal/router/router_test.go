package router

import (
	"strings"
	"testing"

	"github.com/park285/board-console/internal/dom"
	"github.com/park285/board-console/pkg/consoledto"
)

const shell = `<nav id="nav" style="display:none"></nav>
<div id="view-config" class="view" style="display:none"></div>
<div id="view-game" class="view" style="display:none"></div>
<div id="view-board-view" class="view" style="display:none"></div>
<div id="view-board-edit" class="view" style="display:none"></div>`

type countingController struct {
	view        string
	activated   *map[string]int
	deactivated *map[string]int
}

func (c countingController) Activate()   { (*c.activated)[c.view]++ }
func (c countingController) Deactivate() { (*c.deactivated)[c.view]++ }

func newRouter(t *testing.T) (*Router, *dom.Document, map[string]int, map[string]int) {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(shell))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	act, deact := map[string]int{}, map[string]int{}
	factories := map[string]Factory{}
	for _, p := range Paths() {
		view := Resolve(p)
		factories[view] = func() Controller { return countingController{view, &act, &deact} }
	}
	return New(doc, factories), doc, act, deact
}

func visibleViews(doc *dom.Document) []string {
	var out []string
	for _, v := range doc.ByClass("view") {
		if v.Visible() {
			out = append(out, v.ID)
		}
	}
	return out
}

func TestEachPathShowsExactlyOneView(t *testing.T) {
	r, doc, act, _ := newRouter(t)
	for _, p := range Paths() {
		r.Navigate(p, true)
		vis := visibleViews(doc)
		if len(vis) != 1 || vis[0] != Resolve(p) {
			t.Fatalf("path %s: visible=%v", p, vis)
		}
		if r.Current() != Resolve(p) {
			t.Fatalf("Current = %s", r.Current())
		}
		if !doc.Get("nav").Visible() {
			t.Fatalf("nav hidden after navigation")
		}
	}
	for _, p := range Paths() {
		if act[Resolve(p)] != 1 {
			t.Fatalf("view %s activated %d times", Resolve(p), act[Resolve(p)])
		}
	}
}

func TestUnknownPathFallsBack(t *testing.T) {
	r, doc, _, _ := newRouter(t)
	r.Navigate("/does-not-exist", true)
	if vis := visibleViews(doc); len(vis) != 1 || vis[0] != ViewConfig {
		t.Fatalf("visible = %v", vis)
	}
	var pushed string
	for _, p := range doc.Flush() {
		if p.Op == consoledto.OpHistoryPush {
			pushed = p.Value
		}
	}
	if pushed != "/does-not-exist" {
		t.Fatalf("history push = %q", pushed)
	}
}

func TestStartAndPopstateDoNotPush(t *testing.T) {
	r, doc, _, deact := newRouter(t)
	r.Start("")
	r.Navigate("/game", true)
	doc.Flush()
	r.Popstate("/board-view")
	for _, p := range doc.Flush() {
		if p.Op == consoledto.OpHistoryPush {
			t.Fatalf("popstate must not push history")
		}
	}
	if deact[ViewConfig] != 1 || deact[ViewGame] != 1 {
		t.Fatalf("previous controllers not deactivated: %v", deact)
	}
	if r.Path() != "/board-view" {
		t.Fatalf("Path = %q", r.Path())
	}
}

func TestReentryCreatesFreshController(t *testing.T) {
	r, _, act, deact := newRouter(t)
	r.Navigate("/board-edit", true)
	r.Navigate("/board-edit", true)
	if act[ViewBoardEdit] != 2 || deact[ViewBoardEdit] != 1 {
		t.Fatalf("act=%v deact=%v", act, deact)
	}
	r.Close()
	if deact[ViewBoardEdit] != 2 || r.Active() != nil {
		t.Fatalf("Close should deactivate: %v", deact)
	}
}
