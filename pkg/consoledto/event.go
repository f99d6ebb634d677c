package consoledto

// EventType is a user interaction forwarded by the browser.
type EventType string

const (
	EventClick    EventType = "click"
	EventChange   EventType = "change"
	EventSubmit   EventType = "submit"
	EventNavigate EventType = "navigate"
	EventPopstate EventType = "popstate"
)

// ClientEvent is what the shim sends for each interaction.
type ClientEvent struct {
	Type   EventType         `json:"type"`
	Target string            `json:"target,omitempty"`
	Value  string            `json:"value,omitempty"`
	Path   string            `json:"path,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}
