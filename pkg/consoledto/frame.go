package consoledto

const (
	FrameHello   = "hello"
	FramePatches = "patches"
	FrameError   = "error"
)

// ServerFrame wraps everything written to the browser socket.
type ServerFrame struct {
	Kind    string  `json:"kind"`
	Session string  `json:"session,omitempty"`
	Patches []Patch `json:"patches,omitempty"`
	Error   string  `json:"error,omitempty"`
}
