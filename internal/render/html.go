// Package render draws the board: as document nodes for the console page
// and as a PNG snapshot.
package render

import (
	"fmt"

	"github.com/park285/board-console/internal/board"
	"github.com/park285/board-console/internal/dom"
	"github.com/park285/board-console/pkg/consoledto"
)

// SquareID is the id of a view-mode square.
func SquareID(row, col int) string { return fmt.Sprintf("square-%d-%d", row, col) }

// SelectID is the id and form name of an edit-mode select.
func SelectID(row, col int) string { return fmt.Sprintf("r%dc%d", row, col) }

func squareClass(row, col int) string {
	if (row+col)%2 == 0 {
		return "square light"
	}
	return "square dark"
}

// PieceNode is the glyph span for a code; ok is false for an empty square.
func PieceNode(code string) (consoledto.Node, bool) {
	if board.IsEmpty(code) {
		return consoledto.Node{}, false
	}
	return consoledto.Node{
		Tag:   "span",
		Class: "piece " + board.ColorClass(code),
		Text:  board.Glyph(code),
	}, true
}

// BoardNodes builds the 64 view-mode squares in row-major order.
func BoardNodes(g board.Grid) []consoledto.Node {
	nodes := make([]consoledto.Node, 0, 64)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			sq := consoledto.Node{Tag: "div", ID: SquareID(r, c), Class: squareClass(r, c)}
			if p, ok := PieceNode(g[r][c]); ok {
				sq.Children = []consoledto.Node{p}
			}
			nodes = append(nodes, sq)
		}
	}
	return nodes
}

// RenderBoard replaces the content of targetID with the grid.
func RenderBoard(doc *dom.Document, targetID string, g board.Grid) {
	doc.ReplaceChildren(targetID, BoardNodes(g))
}

// EditBoardNodes builds squares holding one piece select each.
func EditBoardNodes(g board.Grid) []consoledto.Node {
	nodes := make([]consoledto.Node, 0, 64)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			current := g[r][c]
			if board.IsEmpty(current) {
				current = ""
			}
			opts := make([]consoledto.Node, 0, len(board.Codes)+1)
			opts = append(opts, consoledto.Node{Tag: "option", Value: "", Selected: current == ""})
			for _, code := range board.Codes {
				opts = append(opts, consoledto.Node{
					Tag:      "option",
					Value:    code,
					Text:     board.OptionLabel(code),
					Selected: code == current,
				})
			}
			id := SelectID(r, c)
			nodes = append(nodes, consoledto.Node{
				Tag:   "div",
				Class: squareClass(r, c),
				Children: []consoledto.Node{{
					Tag:      "select",
					ID:       id,
					Attrs:    map[string]string{"name": id},
					Children: opts,
				}},
			})
		}
	}
	return nodes
}

// RenderEditBoard replaces the content of targetID with the edit grid.
func RenderEditBoard(doc *dom.Document, targetID string, g board.Grid) {
	doc.ReplaceChildren(targetID, EditBoardNodes(g))
}

// SyncEditBoard updates the existing selects in place. Codes that are not in
// the menu leave the select untouched.
func SyncEditBoard(doc *dom.Document, g board.Grid) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			code := g[r][c]
			if board.IsEmpty(code) {
				code = ""
			} else if !board.Known(code) {
				continue
			}
			doc.SetValue(SelectID(r, c), code)
		}
	}
}

// ReadEditBoard collects the select values; a missing select reads as empty.
func ReadEditBoard(doc *dom.Document) board.Grid {
	var g board.Grid
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			g[r][c] = doc.Value(SelectID(r, c))
		}
	}
	return g
}
