package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse builds a Document from page markup. Only elements with an id become
// addressable; their text is the trimmed text content when they hold no
// addressable descendants.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	d := New()
	d.walk(root, nil)
	return d, nil
}

func (d *Document) walk(n *html.Node, parent *Element) {
	owner := parent
	if n.Type == html.ElementNode {
		if id := attr(n, "id"); id != "" {
			el := newElement(id, n.Data)
			for _, a := range n.Attr {
				switch a.Key {
				case "id":
				case "class":
					el.setClasses(a.Val)
				case "style":
					el.setStyleAttr(a.Val)
				case "disabled":
					el.disabled = true
				case "value":
					el.value = a.Val
				default:
					el.attrs[a.Key] = a.Val
				}
			}
			if el.Tag == "select" {
				el.value = selectValue(n)
			}
			d.register(el, parent)
			owner = el
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c, owner)
	}
	if owner != parent && len(owner.children) == 0 && owner.Tag != "select" {
		owner.text = strings.TrimSpace(textContent(n))
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}

func selectValue(sel *html.Node) string {
	first, chosen := "", ""
	seen := false
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "option" {
			v := attr(n, "value")
			if !hasAttr(n, "value") {
				v = strings.TrimSpace(textContent(n))
			}
			if !seen {
				first, seen = v, true
			}
			if chosen == "" && hasAttr(n, "selected") {
				chosen = v
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(sel)
	if chosen != "" {
		return chosen
	}
	return first
}
