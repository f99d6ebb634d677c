// Package board holds the piece-code grid exchanged with the controller.
package board

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Codes lists the twelve piece codes in edit-menu order.
var Codes = []string{"R", "N", "B", "Q", "K", "P", "r", "n", "b", "q", "k", "p"}

var glyphs = map[string]string{
	"R": "♖", "N": "♘", "B": "♗", "Q": "♕", "K": "♔", "P": "♙",
	"r": "♜", "n": "♞", "b": "♝", "q": "♛", "k": "♚", "p": "♟",
}

// Known reports whether code is one of the twelve piece codes.
func Known(code string) bool {
	_, ok := glyphs[code]
	return ok
}

// Glyph maps a code to its chess symbol. Unknown codes come back unchanged.
func Glyph(code string) string {
	if g, ok := glyphs[code]; ok {
		return g
	}
	return code
}

// IsEmpty treats "" and whitespace as no piece.
func IsEmpty(code string) bool { return strings.TrimSpace(code) == "" }

// IsWhite is true when the code equals its own upper-case form.
func IsWhite(code string) bool {
	return !IsEmpty(code) && code == strings.ToUpper(code)
}

// ColorClass is "white" or "black" for a non-empty code.
func ColorClass(code string) string {
	if IsWhite(code) {
		return "white"
	}
	return "black"
}

// OptionLabel is the edit menu label, e.g. "♖ R".
func OptionLabel(code string) string {
	if IsEmpty(code) {
		return ""
	}
	return Glyph(code) + " " + code
}

// Normalize folds a raw cell into the grid representation: blanks become "",
// multi-character strings led by a known code collapse to that code, other
// strings are kept for raw display.
func Normalize(raw string) string {
	if IsEmpty(raw) {
		return ""
	}
	if Known(raw) {
		return raw
	}
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	r, size := utf8.DecodeRuneInString(trimmed)
	if size > 0 && Known(string(r)) {
		return string(r)
	}
	return raw
}
