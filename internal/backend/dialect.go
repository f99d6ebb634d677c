package backend

import (
	"fmt"
	"strings"
)

// Dialect selects which generation of the controller's HTTP contract to speak.
type Dialect string

const (
	// DialectAPI: /api/* paths, JSON bodies.
	DialectAPI Dialect = "api"
	// DialectLegacy: bare paths, form-encoded bodies, HTML success marker on board edit.
	DialectLegacy Dialect = "legacy"
)

// BoardUpdatedMarker is what the legacy board-edit page contains on success.
const BoardUpdatedMarker = "Board Updated"

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(s))) {
	case "", DialectAPI:
		return DialectAPI, nil
	case DialectLegacy:
		return DialectLegacy, nil
	default:
		return "", fmt.Errorf("unknown backend dialect %q", s)
	}
}

type endpoint int

const (
	epBoard endpoint = iota
	epBoardEdit
	epGameSelect
	epPause
	epUndo
	epConfigGet
	epConfigPost
)

var apiPaths = map[endpoint]string{
	epBoard:      "/api/board",
	epBoardEdit:  "/api/board-edit",
	epGameSelect: "/api/gameselect",
	epPause:      "/api/pause-moves",
	epUndo:       "/api/undo-move",
	epConfigGet:  "/api/config",
	epConfigPost: "/api/config",
}

var legacyPaths = map[endpoint]string{
	epBoard:      "/board",
	epBoardEdit:  "/board-edit",
	epGameSelect: "/gameselect",
	epPause:      "/pause-moves",
	epUndo:       "/undo-move",
	epConfigPost: "/submit",
}

// path returns "" when the dialect has no such endpoint.
func (d Dialect) path(ep endpoint) string {
	if d == DialectLegacy {
		return legacyPaths[ep]
	}
	return apiPaths[ep]
}
