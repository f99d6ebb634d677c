package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Snapshot is one decoded board response. Treat as immutable.
type Snapshot struct {
	Grid       Grid
	Valid      bool
	Evaluation *int
	PGN        string
}

type wireSnapshot struct {
	Board      []json.RawMessage `json:"board"`
	Valid      bool              `json:"valid"`
	Evaluation json.RawMessage   `json:"evaluation"`
	PGN        *string           `json:"pgn"`
}

// DecodeSnapshot parses a board response. Short or missing rows leave empty
// cells; null cells are empty; evaluations sent as floats are rounded.
func DecodeSnapshot(raw []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(raw, &w); err != nil {
		return Snapshot{}, fmt.Errorf("decode board: %w", err)
	}
	s := Snapshot{Valid: w.Valid}
	if w.PGN != nil {
		s.PGN = *w.PGN
	}
	for r := 0; r < len(w.Board) && r < 8; r++ {
		cells, err := decodeRow(w.Board[r])
		if err != nil {
			return Snapshot{}, fmt.Errorf("decode board row %d: %w", r, err)
		}
		for c := 0; c < len(cells) && c < 8; c++ {
			s.Grid[r][c] = Normalize(cells[c])
		}
	}
	ev, err := decodeEvaluation(w.Evaluation)
	if err != nil {
		return Snapshot{}, err
	}
	s.Evaluation = ev
	return s, nil
}

func decodeRow(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var cells []*string
	if err := json.Unmarshal(raw, &cells); err == nil {
		out := make([]string, len(cells))
		for i, c := range cells {
			if c != nil {
				out[i] = *c
			}
		}
		return out, nil
	}
	// some firmware sends a row as one 8-character string
	var line string
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, errors.New("row is neither an array nor a string")
	}
	out := make([]string, 0, 8)
	for _, r := range line {
		out = append(out, string(r))
	}
	return out, nil
}

func decodeEvaluation(raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode evaluation: %w", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, nil
	}
	v := int(math.Round(f))
	return &v, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
