// Package dom holds a headless copy of the console page. Controllers mutate it
// and every effective change is queued as a patch for the browser.
package dom

import (
	"slices"

	"github.com/park285/board-console/pkg/consoledto"
)

// Document is not safe for concurrent use; a session's event loop owns it.
type Document struct {
	byID    map[string]*Element
	order   []string
	pending []consoledto.Patch
}

func New() *Document {
	return &Document{byID: make(map[string]*Element)}
}

// Get returns the element with id or nil.
func (d *Document) Get(id string) *Element { return d.byID[id] }

// Has reports whether id is registered.
func (d *Document) Has(id string) bool { _, ok := d.byID[id]; return ok }

// Len is the number of addressable elements.
func (d *Document) Len() int { return len(d.byID) }

// ByClass returns registered elements carrying class, in document order.
func (d *Document) ByClass(class string) []*Element {
	var out []*Element
	for _, id := range d.order {
		if el := d.byID[id]; el != nil && el.HasClass(class) {
			out = append(out, el)
		}
	}
	return out
}

func (d *Document) register(el *Element, parent *Element) {
	if el.ID == "" {
		return
	}
	if old, ok := d.byID[el.ID]; ok {
		d.unregister(old)
	}
	el.parent = parent
	if parent != nil {
		parent.children = append(parent.children, el)
	}
	d.byID[el.ID] = el
	d.order = append(d.order, el.ID)
}

func (d *Document) unregister(el *Element) {
	for _, c := range slices.Clone(el.children) {
		d.unregister(c)
	}
	el.children = nil
	if el.parent != nil {
		el.parent.children = slices.DeleteFunc(el.parent.children, func(c *Element) bool { return c == el })
		el.parent = nil
	}
	delete(d.byID, el.ID)
	if i := slices.Index(d.order, el.ID); i >= 0 {
		d.order = slices.Delete(d.order, i, i+1)
	}
}

func (d *Document) emit(p consoledto.Patch) { d.pending = append(d.pending, p) }

// Flush drains queued patches.
func (d *Document) Flush() []consoledto.Patch {
	out := d.pending
	d.pending = nil
	return out
}

// Pending reports how many patches are queued.
func (d *Document) Pending() int { return len(d.pending) }

func (d *Document) SetText(id, text string) {
	el := d.byID[id]
	if el == nil || (el.text == text && len(el.children) == 0) {
		return
	}
	for _, c := range slices.Clone(el.children) {
		d.unregister(c)
	}
	el.text = text
	d.emit(consoledto.Patch{Op: consoledto.OpText, ID: id, Value: text})
}

// SetDisplay sets the CSS display of id ("none", "block", "flex", ...).
func (d *Document) SetDisplay(id, display string) {
	el := d.byID[id]
	if el == nil || el.styles["display"] == display {
		return
	}
	el.styles["display"] = display
	d.emit(consoledto.Patch{Op: consoledto.OpDisplay, ID: id, Value: display})
}

func (d *Document) SetStyle(id, prop, value string) {
	el := d.byID[id]
	if el == nil || el.styles[prop] == value {
		return
	}
	el.styles[prop] = value
	d.emit(consoledto.Patch{Op: consoledto.OpStyle, ID: id, Key: prop, Value: value})
}

func (d *Document) AddClass(id, class string) {
	el := d.byID[id]
	if el == nil || el.HasClass(class) {
		return
	}
	el.classes = append(el.classes, class)
	d.emit(consoledto.Patch{Op: consoledto.OpClassAdd, ID: id, Value: class})
}

func (d *Document) RemoveClass(id, class string) {
	el := d.byID[id]
	if el == nil || !el.HasClass(class) {
		return
	}
	el.classes = slices.DeleteFunc(el.classes, func(c string) bool { return c == class })
	d.emit(consoledto.Patch{Op: consoledto.OpClassRemove, ID: id, Value: class})
}

func (d *Document) SetDisabled(id string, disabled bool) {
	el := d.byID[id]
	if el == nil || el.disabled == disabled {
		return
	}
	el.disabled = disabled
	d.emit(consoledto.Patch{Op: consoledto.OpDisabled, ID: id, Flag: disabled})
}

func (d *Document) SetValue(id, value string) {
	el := d.byID[id]
	if el == nil || el.value == value {
		return
	}
	el.value = value
	d.emit(consoledto.Patch{Op: consoledto.OpValue, ID: id, Value: value})
}

// Sync records a value the browser already shows (change events); no patch.
func (d *Document) Sync(id, value string) bool {
	el := d.byID[id]
	if el == nil {
		return false
	}
	el.value = value
	return true
}

// Value returns the current value of id, "" when unknown.
func (d *Document) Value(id string) string {
	if el := d.byID[id]; el != nil {
		return el.value
	}
	return ""
}

// ReplaceChildren swaps the content of id for nodes and registers every node
// that carries an id.
func (d *Document) ReplaceChildren(id string, nodes []consoledto.Node) {
	el := d.byID[id]
	if el == nil {
		return
	}
	for _, c := range slices.Clone(el.children) {
		d.unregister(c)
	}
	el.text = ""
	for i := range nodes {
		d.registerNode(&nodes[i], el)
	}
	d.emit(consoledto.Patch{Op: consoledto.OpChildren, ID: id, Nodes: nodes})
}

func (d *Document) registerNode(n *consoledto.Node, parent *Element) {
	owner := parent
	if n.ID != "" {
		el := newElement(n.ID, n.Tag)
		el.setClasses(n.Class)
		el.text = n.Text
		el.value = n.Value
		for k, v := range n.Attrs {
			el.attrs[k] = v
		}
		if el.Tag == "select" {
			el.value = selectedOption(n.Children)
		}
		d.register(el, parent)
		owner = el
	}
	for i := range n.Children {
		d.registerNode(&n.Children[i], owner)
	}
}

func selectedOption(opts []consoledto.Node) string {
	for _, o := range opts {
		if o.Selected {
			return o.Value
		}
	}
	if len(opts) > 0 {
		return opts[0].Value
	}
	return ""
}

// Alert queues a modal message.
func (d *Document) Alert(msg string) {
	d.emit(consoledto.Patch{Op: consoledto.OpAlert, Value: msg})
}

// PushHistory asks the browser to record path without reloading.
func (d *Document) PushHistory(path string) {
	d.emit(consoledto.Patch{Op: consoledto.OpHistoryPush, Value: path})
}
