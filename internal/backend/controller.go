package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/park285/board-console/internal/board"
	"github.com/valyala/fasthttp"
)

// FetchBoard reads the current snapshot.
func (c *Client) FetchBoard(ctx context.Context) (board.Snapshot, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, c.dialect.path(epBoard), "", nil)
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("fetch board: %w", err)
	}
	s, err := board.DecodeSnapshot(body)
	if err != nil {
		return board.Snapshot{}, unexpected("fetch board", err)
	}
	return s, nil
}

// SaveBoard replaces the controller's board.
func (c *Client) SaveBoard(ctx context.Context, g board.Grid) error {
	const op = "save board"
	if c.dialect == DialectLegacy {
		form := url.Values{}
		for r := range g {
			for col := range g[r] {
				form.Set(fmt.Sprintf("r%dc%d", r, col), g[r][col])
			}
		}
		body, err := c.postForm(ctx, op, epBoardEdit, form)
		if err != nil {
			return err
		}
		if !bytes.Contains(body, []byte(BoardUpdatedMarker)) {
			return unexpected(op, errors.New("success marker missing"))
		}
		return nil
	}
	body, err := c.postJSON(ctx, op, epBoardEdit, map[string]any{"board": g.Rows()})
	if err != nil {
		return err
	}
	return decodeOutcome(op, body)
}

// SelectPlayers starts a game with the given player kinds.
func (c *Client) SelectPlayers(ctx context.Context, white, black PlayerType) (GameSelection, error) {
	const op = "select players"
	if c.dialect == DialectLegacy {
		mode, ok := LegacyMode(white, black)
		if !ok {
			return GameSelection{}, &RejectedError{Op: op, Message: fmt.Sprintf("%s vs %s is not offered by this controller", white, black)}
		}
		return c.SelectMode(ctx, mode)
	}
	body, err := c.postJSON(ctx, op, epGameSelect, map[string]int{"white": int(white), "black": int(black)})
	if err != nil {
		return GameSelection{}, err
	}
	return decodeSelection(op, body)
}

// SelectMode posts a numbered game mode (4 = sensor test).
func (c *Client) SelectMode(ctx context.Context, mode int) (GameSelection, error) {
	const op = "select mode"
	if c.dialect == DialectLegacy {
		body, err := c.postForm(ctx, op, epGameSelect, url.Values{"gamemode": {strconv.Itoa(mode)}})
		if err != nil {
			return GameSelection{}, err
		}
		// legacy firmware answers with a page, a JSON body is a bonus
		var sel GameSelection
		_ = json.Unmarshal(body, &sel)
		return sel, nil
	}
	body, err := c.postJSON(ctx, op, epGameSelect, map[string]int{"gamemode": mode})
	if err != nil {
		return GameSelection{}, err
	}
	return decodeSelection(op, body)
}

// PauseState reads whether move detection is paused.
func (c *Client) PauseState(ctx context.Context) (bool, error) {
	var st pauseState
	if err := c.getJSON(ctx, "pause state", epPause, &st); err != nil {
		return false, err
	}
	return st.Paused, nil
}

// SetPaused asks for a pause state and returns what the controller settled on.
func (c *Client) SetPaused(ctx context.Context, paused bool) (bool, error) {
	const op = "set paused"
	var (
		body []byte
		err  error
	)
	if c.dialect == DialectLegacy {
		body, err = c.postForm(ctx, op, epPause, url.Values{"paused": {strconv.FormatBool(paused)}})
	} else {
		body, err = c.postJSON(ctx, op, epPause, pauseState{Paused: paused})
	}
	if err != nil {
		return false, err
	}
	var st pauseState
	if err := json.Unmarshal(body, &st); err != nil {
		return false, unexpected(op, err)
	}
	return st.Paused, nil
}

// UndoMove reverts the last detected move.
func (c *Client) UndoMove(ctx context.Context) error {
	const op = "undo move"
	var (
		body []byte
		err  error
	)
	if c.dialect == DialectLegacy {
		body, err = c.postForm(ctx, op, epUndo, url.Values{})
	} else {
		body, err = c.postJSON(ctx, op, epUndo, nil)
	}
	if err != nil {
		return err
	}
	return decodeOutcome(op, body)
}

// LoadConfig reads the controller configuration. The legacy contract has no
// read endpoint and yields an empty config.
func (c *Client) LoadConfig(ctx context.Context) (ControllerConfig, error) {
	if c.dialect.path(epConfigGet) == "" {
		return ControllerConfig{}, nil
	}
	var cfg ControllerConfig
	if err := c.getJSON(ctx, "load config", epConfigGet, &cfg); err != nil {
		return ControllerConfig{}, err
	}
	cfg.Password = ""
	return cfg, nil
}

// SaveConfig submits the configuration form.
func (c *Client) SaveConfig(ctx context.Context, cfg ControllerConfig) (ConfigResult, error) {
	const op = "save config"
	if c.dialect == DialectLegacy {
		form := url.Values{
			"ssid":        {cfg.SSID},
			"password":    {cfg.Password},
			"token":       {cfg.Token},
			"gameMode":    {cfg.GameMode},
			"startupType": {cfg.StartupType},
		}
		if _, err := c.postForm(ctx, op, epConfigPost, form); err != nil {
			return ConfigResult{}, err
		}
		return ConfigResult{Status: "success"}, nil
	}
	body, err := c.postJSON(ctx, op, epConfigPost, cfg)
	if err != nil {
		return ConfigResult{}, err
	}
	var res ConfigResult
	if err := json.Unmarshal(body, &res); err != nil {
		return ConfigResult{}, unexpected(op, err)
	}
	return res, nil
}

// Ping checks the controller answers a board read.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, fasthttp.MethodGet, c.dialect.path(epBoard), "", nil)
	return err
}

func decodeOutcome(op string, body []byte) error {
	var out outcome
	if err := json.Unmarshal(body, &out); err != nil {
		return unexpected(op, err)
	}
	if !out.Success {
		return &RejectedError{Op: op, Message: out.Message}
	}
	return nil
}

func decodeSelection(op string, body []byte) (GameSelection, error) {
	var sel GameSelection
	if err := json.Unmarshal(body, &sel); err != nil {
		return GameSelection{}, unexpected(op, err)
	}
	if sel.Status != "" && sel.Status != "success" {
		return sel, &RejectedError{Op: op, Message: sel.Message}
	}
	return sel, nil
}
