package views

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/board-console/internal/backend"
	"github.com/park285/board-console/internal/board"
	"github.com/park285/board-console/internal/render"
	"github.com/park285/board-console/pkg/consoledto"
)

const (
	idEditBoard   = "edit-chess-board"
	idPauseToggle = "pause-toggle"
	idUndo        = "undo-button"
	idEditStatus  = "edit-status"
	idSaveBoard   = "save-board-btn"
	idResetBoard  = "reset-board-btn"

	defaultUndoLabel = "Undo Last Move"
)

// BoardEdit lets the user rearrange pieces, pause move detection and undo.
type BoardEdit struct {
	env    *Env
	act    activation
	poller *Poller

	paused    bool
	undoLabel string
}

func NewBoardEdit(env *Env) *BoardEdit {
	env.fill()
	label := defaultUndoLabel
	if el := env.Doc.Get(idUndo); el != nil && strings.TrimSpace(el.Text()) != "" {
		label = el.Text()
	}
	return &BoardEdit{
		env:       env,
		act:       activation{env: env},
		poller:    NewPoller(env.Clock, env.PollInterval, env.Post),
		undoLabel: label,
	}
}

func (v *BoardEdit) Activate() { v.init() }

func (v *BoardEdit) Deactivate() {
	v.poller.Stop()
	v.act.end()
}

// Paused is the last pause state reported by the controller.
func (v *BoardEdit) Paused() bool { return v.paused }

// Polling reports whether the refresh loop is running.
func (v *BoardEdit) Polling() bool { return v.poller.Running() }

func (v *BoardEdit) init() {
	v.poller.Stop()
	v.act.begin()
	doc := v.env.Doc
	doc.SetText(idUndo, v.undoLabel)
	doc.SetDisabled(idUndo, false)
	doc.SetDisabled(idSaveBoard, false)

	call(&v.act, "fetch_board", v.env.Backend.FetchBoard, func(snap board.Snapshot, loadErr error) {
		g := board.Grid{}
		if loadErr != nil {
			v.env.Logger.Warn("edit_board_load_error", zap.String("session", v.env.SessionID), zap.Error(loadErr))
		} else if snap.Valid {
			g = snap.Grid
		}
		render.RenderEditBoard(doc, idEditBoard, g)

		call(&v.act, "pause_state", v.env.Backend.PauseState, func(paused bool, err error) {
			if err != nil {
				v.env.Logger.Warn("pause_state_error", zap.String("session", v.env.SessionID), zap.Error(err))
				v.status("edit.pause_error", colorError)
			} else {
				v.showPause(paused)
				if loadErr != nil {
					v.status("edit.load_error", colorError)
				}
			}
			v.poller.Start(v.tick)
		})
	})
}

// tick refreshes the pause state and, unless paused, the select values.
// The status line is only rewritten when the pause state actually changes.
func (v *BoardEdit) tick() {
	if v.paused {
		call(&v.act, "pause_state", v.env.Backend.PauseState, func(paused bool, err error) {
			if err != nil {
				v.pollFailed(err)
				return
			}
			if paused != v.paused {
				v.showPause(paused)
			}
		})
		return
	}
	call(&v.act, "fetch_board", v.env.Backend.FetchBoard, func(snap board.Snapshot, err error) {
		if err != nil {
			v.pollFailed(err)
			return
		}
		// a pause that landed while the fetch was in flight wins
		if v.paused || !snap.Valid {
			return
		}
		render.SyncEditBoard(v.env.Doc, snap.Grid)
	})
}

func (v *BoardEdit) pollFailed(err error) {
	v.env.Logger.Warn("poll_error", zap.String("session", v.env.SessionID), zap.String("view", "board-edit"), zap.Error(err))
	v.status("edit.load_error", colorError)
}

func (v *BoardEdit) status(key, color string) {
	v.env.Doc.SetText(idEditStatus, v.env.text(key, nil))
	v.env.Doc.SetStyle(idEditStatus, "color", color)
}

func (v *BoardEdit) showPause(paused bool) {
	doc := v.env.Doc
	v.paused = paused
	if paused {
		doc.SetText(idPauseToggle, v.env.text("edit.resume", nil))
		doc.RemoveClass(idPauseToggle, "secondary")
		doc.AddClass(idPauseToggle, "paused")
		doc.SetDisplay(idUndo, "inline-block")
		v.status("edit.paused_status", "")
		return
	}
	doc.SetText(idPauseToggle, v.env.text("edit.pause", nil))
	doc.RemoveClass(idPauseToggle, "paused")
	doc.AddClass(idPauseToggle, "secondary")
	doc.SetDisplay(idUndo, "none")
	v.status("edit.idle_status", "")
}

func (v *BoardEdit) HandleEvent(ev consoledto.ClientEvent) {
	switch ev.Type {
	case consoledto.EventChange:
		v.env.Doc.Sync(ev.Target, ev.Value)
	case consoledto.EventClick:
		switch ev.Target {
		case idPauseToggle:
			v.TogglePause()
		case idUndo:
			v.Undo()
		case idSaveBoard:
			v.Save()
		case idResetBoard:
			v.Reset()
		}
	}
}

// TogglePause asks for the opposite of the last known state and shows
// whatever the controller answers.
func (v *BoardEdit) TogglePause() {
	doc := v.env.Doc
	if el := doc.Get(idPauseToggle); el != nil && el.Disabled() {
		return
	}
	want := !v.paused
	doc.SetDisabled(idPauseToggle, true)
	call(&v.act, "set_paused", func(ctx context.Context) (bool, error) {
		got, err := v.env.Backend.SetPaused(ctx, want)
		v.env.record(ctx, "toggle_pause", boolDetail("paused", want), err)
		return got, err
	}, func(paused bool, err error) {
		doc.SetDisabled(idPauseToggle, false)
		if err != nil {
			v.env.Logger.Warn("toggle_pause_error", zap.String("session", v.env.SessionID), zap.Error(err))
			v.status("edit.pause_error", colorError)
			return
		}
		v.showPause(paused)
	})
}

// Undo takes back the controller's last move and reloads on success.
func (v *BoardEdit) Undo() {
	doc := v.env.Doc
	if el := doc.Get(idUndo); el != nil && el.Disabled() {
		return
	}
	doc.SetDisabled(idUndo, true)
	doc.SetText(idUndo, v.env.text("edit.undoing", nil))

	exec(&v.act, "undo_move", func(ctx context.Context) error {
		err := v.env.Backend.UndoMove(ctx)
		v.env.record(ctx, "undo_move", "", err)
		return err
	}, func(err error) {
		if err == nil {
			doc.SetText(idEditStatus, v.env.text("edit.undo_ok", nil))
			doc.SetStyle(idEditStatus, "color", colorOK)
			v.act.after(v.env.ReloadDelay, v.init)
			return
		}
		v.env.Logger.Warn("undo_error", zap.String("session", v.env.SessionID), zap.Error(err))
		doc.SetText(idUndo, v.undoLabel)
		doc.SetDisabled(idUndo, false)
		if backend.IsApplicationError(err) {
			reason := backend.Reason(err)
			if reason == "" {
				reason = v.env.text("edit.unknown_error", nil)
			}
			doc.Alert(v.env.text("edit.undo_failed", map[string]any{"Reason": reason}))
			return
		}
		doc.Alert(v.env.text("edit.undo_error", nil))
	})
}

// Save sends the 64 select values as the new board.
func (v *BoardEdit) Save() {
	doc := v.env.Doc
	if el := doc.Get(idSaveBoard); el != nil && el.Disabled() {
		return
	}
	g := render.ReadEditBoard(doc)
	doc.SetText(idEditStatus, v.env.text("edit.saving", nil))
	doc.SetStyle(idEditStatus, "color", colorNeutral)
	doc.SetDisabled(idSaveBoard, true)

	exec(&v.act, "save_board", func(ctx context.Context) error {
		err := v.env.Backend.SaveBoard(ctx, g)
		v.env.record(ctx, "save_board", g.Placement(), err)
		return err
	}, func(err error) {
		doc.SetDisabled(idSaveBoard, false)
		if err == nil {
			doc.SetText(idEditStatus, v.env.text("edit.save_ok", nil))
			doc.SetStyle(idEditStatus, "color", colorOK)
			v.act.after(v.env.ReloadDelay, v.init)
			return
		}
		v.env.Logger.Warn("save_board_error", zap.String("session", v.env.SessionID), zap.Error(err))
		if backend.IsApplicationError(err) {
			reason := backend.Reason(err)
			if reason == "" {
				reason = v.env.text("edit.unknown_error", nil)
			}
			doc.SetText(idEditStatus, v.env.text("edit.save_failed", map[string]any{"Reason": reason}))
		} else {
			doc.SetText(idEditStatus, v.env.text("edit.save_error", nil))
		}
		doc.SetStyle(idEditStatus, "color", colorError)
	})
}

// Reset discards local edits by re-running initialization.
func (v *BoardEdit) Reset() { v.init() }

func boolDetail(key string, b bool) string {
	if b {
		return key + "=true"
	}
	return key + "=false"
}
