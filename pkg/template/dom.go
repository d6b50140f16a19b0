package template

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// ===== Attribute helpers =====

// Attr returns the value of the named attribute, or "" if absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the node carries the named attribute.
func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute if present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// ===== Class helpers =====

// Classes returns the node's class list.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether the node carries the given class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// ClassContains reports whether any class on the node contains the
// given substring. Mirrors the [class*="..."] selector form.
func ClassContains(n *html.Node, substr string) bool {
	for _, c := range Classes(n) {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

// AddClass adds a class if not already present.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	cs := append(Classes(n), class)
	SetAttr(n, "class", strings.Join(cs, " "))
}

// RemoveClass removes a class if present.
func RemoveClass(n *html.Node, class string) {
	cs := Classes(n)
	out := cs[:0]
	for _, c := range cs {
		if c != class {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(out, " "))
}

// ===== Inline style helpers =====

// styleDecl is one property declaration in an inline style attribute.
type styleDecl struct {
	prop string
	val  string
}

func parseStyle(s string) []styleDecl {
	var decls []styleDecl
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		decls = append(decls, styleDecl{
			prop: strings.TrimSpace(prop),
			val:  strings.TrimSpace(val),
		})
	}
	return decls
}

func renderStyle(decls []styleDecl) string {
	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d.prop)
		b.WriteString(": ")
		b.WriteString(d.val)
	}
	return b.String()
}

// StyleValue returns the inline style value for a CSS property, or "".
func StyleValue(n *html.Node, prop string) string {
	for _, d := range parseStyle(Attr(n, "style")) {
		if d.prop == prop {
			return d.val
		}
	}
	return ""
}

// SetStyleValue sets one CSS property in the node's inline style,
// preserving the order and values of other declarations.
func SetStyleValue(n *html.Node, prop, val string) {
	decls := parseStyle(Attr(n, "style"))
	for i, d := range decls {
		if d.prop == prop {
			decls[i].val = val
			SetAttr(n, "style", renderStyle(decls))
			return
		}
	}
	decls = append(decls, styleDecl{prop: prop, val: val})
	SetAttr(n, "style", renderStyle(decls))
}

// RemoveStyleValue deletes one CSS property from the inline style.
func RemoveStyleValue(n *html.Node, prop string) {
	decls := parseStyle(Attr(n, "style"))
	out := decls[:0]
	for _, d := range decls {
		if d.prop != prop {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", renderStyle(out))
}

// ===== Traversal =====

// Walk visits n and every descendant in document order.
func Walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, visit)
	}
}

// Find returns the first node (in document order, including n itself)
// for which pred returns true, or nil.
func Find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node (including n itself) matching pred,
// in document order.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) {
		if pred(c) {
			out = append(out, c)
		}
	})
	return out
}

// Element reports whether the node is an element with the given tag.
func Element(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

// ByTag returns every descendant element with the given tag.
func ByTag(root *html.Node, tag string) []*html.Node {
	return FindAll(root, func(n *html.Node) bool { return Element(n, tag) })
}

// ByAttr returns every descendant element where the attribute equals val.
func ByAttr(root *html.Node, key, val string) []*html.Node {
	return FindAll(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, key) == val
	})
}

// ByClass returns every descendant element carrying the class.
func ByClass(root *html.Node, class string) []*html.Node {
	return FindAll(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, class)
	})
}

// ===== Text helpers =====

// TextContent returns the concatenated text of the node and all
// descendants, like the DOM textContent property.
func TextContent(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

// SetText replaces all children of n with a single text node.
func SetText(n *html.Node, s string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// DirectTextNodes returns the immediate text-node children of n.
func DirectTextNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			out = append(out, c)
		}
	}
	return out
}

// RemoveTextNodes deletes immediate text-node children whose trimmed
// content matches pred. Element children are untouched.
func RemoveTextNodes(n *html.Node, pred func(string) bool) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.TextNode && pred(strings.TrimSpace(c.Data)) {
			n.RemoveChild(c)
		}
		c = next
	}
}

// HasElementChildren reports whether n has at least one element child.
func HasElementChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// ===== Structure =====

// Clone returns a deep copy of the node detached from any parent.
func Clone(n *html.Node) *html.Node {
	cp := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cp.AppendChild(Clone(c))
	}
	return cp
}

// Detach removes the node from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Render serializes the node to HTML.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
