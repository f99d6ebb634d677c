package board

import (
	nchess "github.com/corentings/chess/v2"
)

var pieceByCode = map[string]nchess.Piece{
	"K": nchess.WhiteKing, "Q": nchess.WhiteQueen, "R": nchess.WhiteRook,
	"B": nchess.WhiteBishop, "N": nchess.WhiteKnight, "P": nchess.WhitePawn,
	"k": nchess.BlackKing, "q": nchess.BlackQueen, "r": nchess.BlackRook,
	"b": nchess.BlackBishop, "n": nchess.BlackKnight, "p": nchess.BlackPawn,
}

// SquareAt maps grid coordinates to a board square (row 0 = rank 8).
func SquareAt(row, col int) nchess.Square {
	return nchess.NewSquare(nchess.File(col), nchess.Rank(7-row))
}

// Piece returns the library piece for a code, NoPiece for empty or unknown.
func Piece(code string) nchess.Piece {
	if p, ok := pieceByCode[code]; ok {
		return p
	}
	return nchess.NoPiece
}

// ChessBoard builds a position-free board from the grid. Unknown codes are
// dropped.
func (g Grid) ChessBoard() *nchess.Board {
	m := make(map[nchess.Square]nchess.Piece)
	for r := range g {
		for c := range g[r] {
			if p := Piece(g[r][c]); p != nchess.NoPiece {
				m[SquareAt(r, c)] = p
			}
		}
	}
	return nchess.NewBoard(m)
}

// Placement is the FEN piece-placement field for the grid.
func (g Grid) Placement() string {
	return g.ChessBoard().String()
}
