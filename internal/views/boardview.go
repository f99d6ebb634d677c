package views

import (
	"go.uber.org/zap"

	"github.com/park285/board-console/internal/board"
	"github.com/park285/board-console/internal/evalbar"
	"github.com/park285/board-console/internal/render"
	"github.com/park285/board-console/pkg/consoledto"
)

const (
	idChessBoard     = "chess-board"
	idBoardStatus    = "board-status"
	idBoardContainer = "board-container"
	idNoBoard        = "no-board-message"
	idPGNSection     = "pgn-section"
	idPGNDisplay     = "pgn-display"
	idFENLine        = "fen-line"
)

// BoardView shows the live board and keeps it fresh with a poller.
type BoardView struct {
	env    *Env
	act    activation
	poller *Poller

	shown board.Grid
}

func NewBoardView(env *Env) *BoardView {
	env.fill()
	return &BoardView{
		env:    env,
		act:    activation{env: env},
		poller: NewPoller(env.Clock, env.PollInterval, env.Post),
	}
}

func (v *BoardView) Activate() {
	v.act.begin()
	v.shown = board.Grid{}
	render.RenderBoard(v.env.Doc, idChessBoard, v.shown)
	v.Refresh()
	v.poller.Start(v.Refresh)
}

func (v *BoardView) Deactivate() {
	v.poller.Stop()
	v.act.end()
}

// Polling reports whether the refresh loop is running.
func (v *BoardView) Polling() bool { return v.poller.Running() }

// Refresh fetches the board once and applies the result.
func (v *BoardView) Refresh() {
	call(&v.act, "fetch_board", v.env.Backend.FetchBoard, v.apply)
}

func (v *BoardView) apply(snap board.Snapshot, err error) {
	doc := v.env.Doc
	if err != nil {
		v.env.Logger.Warn("poll_error", zap.String("session", v.env.SessionID), zap.String("view", "board-view"), zap.Error(err))
		doc.SetText(idBoardStatus, v.env.text("board.load_error", nil))
		return
	}
	if !snap.Valid {
		doc.SetText(idBoardStatus, v.env.text("board.unavailable", nil))
		doc.SetDisplay(idBoardContainer, "none")
		doc.SetDisplay(idNoBoard, "block")
		return
	}

	doc.SetText(idBoardStatus, v.env.text("board.active", nil))
	doc.SetDisplay(idBoardContainer, "block")
	doc.SetDisplay(idNoBoard, "none")
	v.paint(snap.Grid)

	if snap.Evaluation != nil {
		evalbar.Apply(doc, evalbar.Compute(*snap.Evaluation))
	}
	if snap.PGN != "" {
		doc.SetText(idPGNDisplay, snap.PGN)
		doc.SetDisplay(idPGNSection, "block")
	} else {
		doc.SetDisplay(idPGNSection, "none")
	}
	doc.SetText(idFENLine, v.env.text("board.fen", map[string]any{"FEN": snap.Grid.Placement()}))
}

// paint touches only squares whose code changed since the last render.
func (v *BoardView) paint(g board.Grid) {
	doc := v.env.Doc
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			code := g[r][c]
			if board.IsEmpty(code) {
				code = ""
			}
			if code == v.shown[r][c] {
				continue
			}
			v.shown[r][c] = code
			if p, ok := render.PieceNode(code); ok {
				doc.ReplaceChildren(render.SquareID(r, c), []consoledto.Node{p})
			} else {
				doc.ReplaceChildren(render.SquareID(r, c), nil)
			}
		}
	}
}
