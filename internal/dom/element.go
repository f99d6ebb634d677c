package dom

import (
	"slices"
	"strings"
)

// Element is the server-side mirror of one addressable page element.
type Element struct {
	ID  string
	Tag string

	classes  []string
	styles   map[string]string
	attrs    map[string]string
	text     string
	value    string
	disabled bool

	parent   *Element
	children []*Element
}

func newElement(id, tag string) *Element {
	return &Element{
		ID:     id,
		Tag:    strings.ToLower(tag),
		styles: make(map[string]string),
		attrs:  make(map[string]string),
	}
}

func (e *Element) Text() string     { return e.text }
func (e *Element) Value() string    { return e.value }
func (e *Element) Disabled() bool   { return e.disabled }
func (e *Element) Classes() []string { return slices.Clone(e.classes) }

func (e *Element) HasClass(c string) bool {
	return slices.Contains(e.classes, c)
}

func (e *Element) Style(prop string) string { return e.styles[prop] }

// Attr returns a static attribute captured from markup (data-*, name, ...).
func (e *Element) Attr(name string) string { return e.attrs[name] }

// Visible reports whether the element's own display is not "none".
func (e *Element) Visible() bool { return e.styles["display"] != "none" }

// Children returns the addressable descendants directly below e.
func (e *Element) Children() []*Element { return slices.Clone(e.children) }

func (e *Element) setClasses(raw string) {
	e.classes = e.classes[:0]
	for _, c := range strings.Fields(raw) {
		if !slices.Contains(e.classes, c) {
			e.classes = append(e.classes, c)
		}
	}
}

func (e *Element) setStyleAttr(raw string) {
	for _, decl := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k != "" {
			e.styles[k] = v
		}
	}
}
