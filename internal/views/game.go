package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/board-console/internal/backend"
	"github.com/park285/board-console/pkg/consoledto"
)

const (
	idStartGame   = "start-game-btn"
	idSensorTest  = "sensor-test-btn"
	classOption   = "player-option"
	classSelected = "selected"
	modePrefix    = "mode-"
)

// OptionID is the id of a player option, e.g. "white-2".
func OptionID(side string, p backend.PlayerType) string {
	return fmt.Sprintf("%s-%d", side, int(p))
}

// GameView collects a player pair and starts a game.
type GameView struct {
	env *Env
	act activation

	white, black *backend.PlayerType
	busy         bool
}

func NewGameView(env *Env) *GameView {
	env.fill()
	return &GameView{env: env, act: activation{env: env}}
}

func (v *GameView) Activate() {
	v.act.begin()
	v.white, v.black, v.busy = nil, nil, false
	for _, el := range v.env.Doc.ByClass(classOption) {
		v.env.Doc.RemoveClass(el.ID, classSelected)
	}
	v.env.Doc.SetDisabled(idStartGame, true)
	v.env.Doc.SetDisabled(idSensorTest, false)
}

func (v *GameView) Deactivate() { v.act.end() }

// Selection returns the current pair; unset sides are nil.
func (v *GameView) Selection() (white, black *backend.PlayerType) { return v.white, v.black }

func (v *GameView) HandleEvent(ev consoledto.ClientEvent) {
	if ev.Type != consoledto.EventClick {
		return
	}
	switch {
	case ev.Target == idStartGame:
		v.StartGame()
	case ev.Target == idSensorTest:
		v.SensorTest()
	case strings.HasPrefix(ev.Target, modePrefix):
		if n, err := strconv.Atoi(strings.TrimPrefix(ev.Target, modePrefix)); err == nil {
			v.SelectMode(n)
		}
	default:
		side, num, ok := strings.Cut(ev.Target, "-")
		if !ok || (side != "white" && side != "black") {
			return
		}
		if n, err := strconv.Atoi(num); err == nil {
			v.SelectPlayer(side, backend.PlayerType(n))
		}
	}
}

// SelectPlayer records p for side and marks it as the only selected option
// of that side.
func (v *GameView) SelectPlayer(side string, p backend.PlayerType) {
	if !p.Valid() || (side != "white" && side != "black") {
		return
	}
	doc := v.env.Doc
	for _, el := range doc.ByClass(classOption) {
		if strings.HasPrefix(el.ID, side+"-") {
			doc.RemoveClass(el.ID, classSelected)
		}
	}
	doc.AddClass(OptionID(side, p), classSelected)

	chosen := p
	if side == "white" {
		v.white = &chosen
	} else {
		v.black = &chosen
	}
	if v.white != nil && v.black != nil && !v.busy {
		doc.SetDisabled(idStartGame, false)
	}
}

// StartGame submits the pair once; nothing is sent until both sides are set.
func (v *GameView) StartGame() {
	doc := v.env.Doc
	if v.white == nil || v.black == nil {
		doc.Alert(v.env.text("game.need_both", nil))
		return
	}
	if v.busy {
		return
	}
	white, black := *v.white, *v.black
	v.busy = true
	doc.SetDisabled(idStartGame, true)

	call(&v.act, "start_game", func(ctx context.Context) (backend.GameSelection, error) {
		sel, err := v.env.Backend.SelectPlayers(ctx, white, black)
		v.env.record(ctx, "start_game", fmt.Sprintf("white=%s black=%s", white, black), err)
		return sel, err
	}, func(_ backend.GameSelection, err error) {
		v.busy = false
		doc.SetDisabled(idStartGame, v.white == nil || v.black == nil)
		if err != nil {
			v.env.Logger.Warn("start_game_error", zap.String("session", v.env.SessionID), zap.Error(err))
			if reason := backend.Reason(err); reason != "" {
				doc.Alert(v.env.text("game.start_rejected", map[string]any{"Reason": reason}))
				return
			}
			doc.Alert(v.env.text("game.start_failed", nil))
			return
		}
		doc.Alert(v.env.text("game.started", map[string]any{"White": white.String(), "Black": black.String()}))
	})
}

// SensorTest selects the sensor check mode regardless of the player pair.
func (v *GameView) SensorTest() {
	doc := v.env.Doc
	if el := doc.Get(idSensorTest); el != nil && el.Disabled() {
		return
	}
	doc.SetDisabled(idSensorTest, true)
	call(&v.act, "sensor_test", func(ctx context.Context) (backend.GameSelection, error) {
		sel, err := v.env.Backend.SelectMode(ctx, backend.ModeSensorTest)
		v.env.record(ctx, "sensor_test", "", err)
		return sel, err
	}, func(_ backend.GameSelection, err error) {
		doc.SetDisabled(idSensorTest, false)
		if err != nil {
			v.env.Logger.Warn("sensor_test_error", zap.String("session", v.env.SessionID), zap.Error(err))
			doc.Alert(v.env.text("game.sensor_failed", nil))
			return
		}
		doc.Alert(v.env.text("game.sensor_selected", nil))
	})
}

// SelectMode applies one of the numbered presets (1, 2, 3, 5; 4 is the
// sensor test).
func (v *GameView) SelectMode(mode int) {
	if mode == backend.ModeSensorTest {
		v.SensorTest()
		return
	}
	white, black, ok := backend.LegacyPlayers(mode)
	if !ok {
		v.env.Logger.Debug("unknown_game_mode", zap.Int("mode", mode))
		return
	}
	if v.busy {
		return
	}
	v.SelectPlayer("white", white)
	v.SelectPlayer("black", black)

	doc := v.env.Doc
	v.busy = true
	doc.SetDisabled(idStartGame, true)
	call(&v.act, "select_mode", func(ctx context.Context) (backend.GameSelection, error) {
		sel, err := v.env.Backend.SelectMode(ctx, mode)
		v.env.record(ctx, "select_mode", "mode="+strconv.Itoa(mode), err)
		return sel, err
	}, func(_ backend.GameSelection, err error) {
		v.busy = false
		doc.SetDisabled(idStartGame, false)
		if err != nil {
			v.env.Logger.Warn("select_mode_error", zap.String("session", v.env.SessionID), zap.Error(err))
			doc.Alert(v.env.text("game.start_failed", nil))
			return
		}
		doc.Alert(v.env.text("game.mode_selected", map[string]any{"Mode": mode, "White": white.String(), "Black": black.String()}))
	})
}
