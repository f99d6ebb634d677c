package board

import "strings"

// Grid is row-major; row 0 is rank 8 as the controller delivers it.
type Grid [8][8]string

// At returns the cell or "" out of range.
func (g Grid) At(row, col int) string {
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return ""
	}
	return g[row][col]
}

// Rows converts to the nested slice the backend expects.
func (g Grid) Rows() [][]string {
	out := make([][]string, 8)
	for r := range g {
		out[r] = make([]string, 8)
		copy(out[r], g[r][:])
	}
	return out
}

// Count returns the number of occupied squares.
func (g Grid) Count() int {
	n := 0
	for r := range g {
		for c := range g[r] {
			if !IsEmpty(g[r][c]) {
				n++
			}
		}
	}
	return n
}

// ASCII draws the grid with glyphs, rank 8 first, "." for empty squares.
func (g Grid) ASCII() string {
	var b strings.Builder
	for r := range g {
		b.WriteByte(byte('8' - r))
		b.WriteByte(' ')
		for c := range g[r] {
			if c > 0 {
				b.WriteByte(' ')
			}
			if IsEmpty(g[r][c]) {
				b.WriteByte('.')
				continue
			}
			b.WriteString(Glyph(g[r][c]))
		}
		b.WriteByte('\n')
	}
	b.WriteString("  a b c d e f g h\n")
	return b.String()
}
