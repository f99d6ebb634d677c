package backend

// PlayerType is the controller's player slot kind.
type PlayerType int

const (
	Human PlayerType = iota
	EasyAI
	MediumAI
	HardAI
)

var playerNames = map[PlayerType]string{
	Human:    "Human",
	EasyAI:   "Easy AI",
	MediumAI: "Medium AI",
	HardAI:   "Hard AI",
}

func (p PlayerType) String() string {
	if n, ok := playerNames[p]; ok {
		return n
	}
	return "Unknown"
}

// Valid reports whether p is one of the four known player kinds.
func (p PlayerType) Valid() bool {
	_, ok := playerNames[p]
	return ok
}

// ModeSensorTest is the game mode that runs the board sensor check.
const ModeSensorTest = 4

// numbered modes of the legacy form contract
var legacyModes = map[int][2]PlayerType{
	1: {Human, Human},
	2: {Human, MediumAI},
	3: {MediumAI, Human},
	5: {MediumAI, MediumAI},
}

// LegacyMode returns the numbered mode for a player pair, if one exists.
func LegacyMode(white, black PlayerType) (int, bool) {
	for n, pair := range legacyModes {
		if pair[0] == white && pair[1] == black {
			return n, true
		}
	}
	return 0, false
}

// LegacyPlayers is the inverse of LegacyMode.
func LegacyPlayers(mode int) (white, black PlayerType, ok bool) {
	pair, ok := legacyModes[mode]
	if !ok {
		return 0, 0, false
	}
	return pair[0], pair[1], true
}

// ControllerConfig is the controller's network/account configuration.
type ControllerConfig struct {
	SSID        string `json:"ssid"`
	Password    string `json:"password,omitempty"`
	Token       string `json:"token"`
	GameMode    string `json:"gameMode"`
	StartupType string `json:"startupType"`
}

// ConfigResult is the controller's answer to a config save.
type ConfigResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r ConfigResult) OK() bool { return r.Status == "success" }

// GameSelection echoes what the controller accepted.
type GameSelection struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	White   *int   `json:"white,omitempty"`
	Black   *int   `json:"black,omitempty"`
}

type outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type pauseState struct {
	Paused bool `json:"paused"`
}
