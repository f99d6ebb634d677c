package consoledto

// PatchOp names a document mutation the browser shim knows how to apply.
type PatchOp string

const (
	OpText        PatchOp = "text"
	OpDisplay     PatchOp = "display"
	OpClassAdd    PatchOp = "class_add"
	OpClassRemove PatchOp = "class_remove"
	OpStyle       PatchOp = "style"
	OpDisabled    PatchOp = "disabled"
	OpValue       PatchOp = "value"
	OpChildren    PatchOp = "children"
	OpAlert       PatchOp = "alert"
	OpHistoryPush PatchOp = "history_push"
)

// Patch is one mutation of the page, addressed by element id.
// Key carries the style property for OpStyle; Flag carries the disabled state.
type Patch struct {
	Op    PatchOp `json:"op"`
	ID    string  `json:"id,omitempty"`
	Key   string  `json:"key,omitempty"`
	Value string  `json:"value,omitempty"`
	Flag  bool    `json:"flag,omitempty"`
	Nodes []Node  `json:"nodes,omitempty"`
}

// Node is a detached element built server-side and sent with OpChildren.
type Node struct {
	Tag      string            `json:"tag"`
	ID       string            `json:"id,omitempty"`
	Class    string            `json:"class,omitempty"`
	Text     string            `json:"text,omitempty"`
	Value    string            `json:"value,omitempty"`
	Selected bool              `json:"selected,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []Node            `json:"children,omitempty"`
}
