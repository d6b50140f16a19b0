// Package template parses ad-creative templates and exposes their
// declared fields.
//
// A template is an HTML fragment with no schema file: editable nodes
// declare a data-field attribute, and discovery is purely
// attribute-driven at load time. Control nodes (input, textarea,
// select) feed values in; every other node carrying the attribute is a
// preview target that the binding engine mutates. Secondary attributes
// (data-field-size, data-field-color, ...) declare indirect targets for
// style and link relationships distinct from the primary field node.
package template

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// FieldAttr is the primary binding attribute.
const FieldAttr = "data-field"

// Indirect binding attributes. Each declares that the carrying node is
// a target for the named field's derived value rather than its primary
// projection.
const (
	SizeAttr      = "data-field-size"
	ColorAttr     = "data-field-color"
	LinkAttr      = "data-field-link"
	AnimationAttr = "data-field-animation"
	TopAttr       = "data-field-top"
	RightAttr     = "data-field-right"
	BottomAttr    = "data-field-bottom"
	LeftAttr      = "data-field-left"
	WidthAttr     = "data-field-width"
	HeightAttr    = "data-field-height"
)

// TargetAttrs lists every indirect binding attribute.
var TargetAttrs = []string{
	SizeAttr, ColorAttr, LinkAttr, AnimationAttr,
	TopAttr, RightAttr, BottomAttr, LeftAttr, WidthAttr, HeightAttr,
}

// Control is a form node that feeds a field's value.
type Control struct {
	Field  string
	Node   *html.Node
	Tag    string // input, textarea, select
	Kind   string // the input type attribute, or the tag for others
	Accept string // accept attribute for file inputs
}

// Value returns the control's current value: the value attribute for
// inputs, the text content for textareas, and the selected (or first)
// option for selects.
func (c Control) Value() string {
	switch c.Tag {
	case "textarea":
		return TextContent(c.Node)
	case "select":
		var first string
		for i, opt := range ByTag(c.Node, "option") {
			val := Attr(opt, "value")
			if val == "" {
				val = strings.TrimSpace(TextContent(opt))
			}
			if i == 0 {
				first = val
			}
			if HasAttr(opt, "selected") {
				return val
			}
		}
		return first
	default:
		return Attr(c.Node, "value")
	}
}

// Template is a parsed creative with its declared fields.
type Template struct {
	Name string

	doc  *html.Node // full parsed document
	root *html.Node // body element, the preview subtree
}

// Parse reads template markup. Fragments are accepted; the parser
// wraps them into a full document.
func Parse(name string, r io.Reader) (*Template, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	root := Find(doc, func(n *html.Node) bool { return Element(n, "body") })
	if root == nil {
		root = doc
	}
	return &Template{Name: name, doc: doc, root: root}, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(name, markup string) (*Template, error) {
	return Parse(name, strings.NewReader(markup))
}

// Doc returns the full parsed document.
func (t *Template) Doc() *html.Node { return t.doc }

// Root returns the preview subtree (the document body).
func (t *Template) Root() *html.Node { return t.root }

// isControl reports whether the node is a form control element.
func isControl(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "input", "textarea", "select":
		return true
	}
	return false
}

// Controls returns every form control declaring a field binding,
// in document order.
func (t *Template) Controls() []Control {
	var out []Control
	Walk(t.doc, func(n *html.Node) {
		if !isControl(n) || Attr(n, FieldAttr) == "" {
			return
		}
		c := Control{
			Field:  Attr(n, FieldAttr),
			Node:   n,
			Tag:    n.Data,
			Kind:   n.Data,
			Accept: Attr(n, "accept"),
		}
		if n.Data == "input" {
			if typ := Attr(n, "type"); typ != "" {
				c.Kind = typ
			} else {
				c.Kind = "text"
			}
		}
		out = append(out, c)
	})
	return out
}

// Targets returns every preview node bound to the field: non-control
// elements whose data-field equals the name. Fan-out order is document
// order.
func (t *Template) Targets(field string) []*html.Node {
	return FindAll(t.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && !isControl(n) && Attr(n, FieldAttr) == field
	})
}

// IndirectTargets returns preview nodes declaring the given indirect
// attribute for the field.
func (t *Template) IndirectTargets(attr, field string) []*html.Node {
	return FindAll(t.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, attr) == field
	})
}

// Fields returns the unique field names declared anywhere in the
// template (controls, primary targets, and indirect targets), in first
// occurrence order.
func (t *Template) Fields() []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	Walk(t.doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		add(Attr(n, FieldAttr))
		for _, attr := range TargetAttrs {
			add(Attr(n, attr))
		}
	})
	return out
}

// Styles returns the text of every <style> block in the document, in
// document order.
func (t *Template) Styles() []string {
	var out []string
	for _, s := range ByTag(t.doc, "style") {
		if css := TextContent(s); strings.TrimSpace(css) != "" {
			out = append(out, css)
		}
	}
	return out
}

// Render serializes the full document.
func (t *Template) Render() (string, error) {
	return Render(t.doc)
}
