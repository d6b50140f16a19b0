package binding

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/adforge/adforge/pkg/field"
	"github.com/adforge/adforge/pkg/template"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Value-shape patterns the mutator guards on.
var (
	hexColor         = regexp.MustCompile(`^#[0-9a-fA-F]{3,6}$`)
	bareInteger      = regexp.MustCompile(`^\d+$`)
	windowsMediaPath = regexp.MustCompile(`(?i)^[A-Z]:\\.*\.(jpg|jpeg|png|gif|webp)$`)
)

// isRemoteValue reports whether the value is a URL or inline binary
// rather than plain text.
func isRemoteValue(v string) bool {
	return strings.HasPrefix(v, "data:") || strings.HasPrefix(v, "blob:") || strings.HasPrefix(v, "http")
}

// animationClasses is the full set of download-button animation
// classes. Exactly one may be active at a time.
var animationClasses = []string{
	"anim-none", "anim-pulse-glow", "anim-shimmer", "anim-bounce", "anim-glow-pulse",
	"anim-ripple", "anim-rotate-glow", "anim-wave", "anim-neon", "anim-gradient-shift",
	"anim-float", "anim-scale-pulse", "anim-shadow-pulse", "anim-border-glow",
	"anim-particles", "anim-rainbow", "anim-magnetic", "anim-shake", "anim-slide-glow",
	"anim-double-pulse", "anim-breathing", "anim-sparkle", "anim-fire",
}

// cssProp converts a camelCase style property name to its CSS form
// (backgroundColor -> background-color).
func cssProp(prop string) string {
	var b strings.Builder
	for _, r := range prop {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Apply projects a field value into a preview node according to the
// field's classified semantic type. The only side effect is a DOM or
// style mutation on the target; control nodes are never touched.
func Apply(name, value string, n *html.Node) {
	ApplyTyped(field.Classify(name), name, value, n)
}

// ApplyTyped is Apply with the semantic type supplied by the caller,
// for indirect targets whose type is fixed by their binding attribute
// rather than the field name.
func ApplyTyped(t field.Type, name, value string, n *html.Node) {
	if n == nil || name == "" {
		return
	}
	// Only preview nodes are mutated.
	if n.Type != html.ElementNode {
		return
	}
	switch n.Data {
	case "input", "textarea", "select":
		return
	}

	switch t {
	case field.TypeAnimation:
		applyAnimation(n, value)
	case field.TypeText, field.TypeSelect:
		applyText(n, name, value)
	case field.TypeColor:
		applyColor(n, name, value)
	case field.TypeImage:
		applyImage(n, name, value)
	case field.TypeSize:
		applySize(n, name, value)
	case field.TypeAudio, field.TypeVideo:
		applyMedia(n, name, value)
	case field.TypeOpacity:
		applyOpacity(n, value)
	case field.TypeSpacing, field.TypeBorder, field.TypePosition, field.TypeFont, field.TypeBackground:
		applyStyle(n, name, value)
	default:
		applyText(n, name, value)
	}
}

// ===== Text =====

func applyText(n *html.Node, name, value string) {
	// File paths, inline binaries, and URLs must never leak into
	// visible text.
	if strings.Contains(value, "fakepath") || strings.Contains(value, `C:\`) ||
		windowsMediaPath.MatchString(value) || isRemoteValue(value) {
		return
	}
	if hexColor.MatchString(value) {
		return
	}

	// Countdown controls always render "<n>s".
	if (name == "rewindSeconds" || name == "forwardSeconds") && template.HasClass(n, "control-btn-text") {
		template.SetText(n, value+"s")
		return
	}

	// A bare integer on a container whose field name is dimensional is
	// a style value, not copy.
	if bareInteger.MatchString(strings.TrimSpace(value)) && template.HasElementChildren(n) {
		df := template.Attr(n, template.FieldAttr)
		if hasAnyFold(df, "width", "height", "size", "padding", "margin") {
			return
		}
	}

	if strings.Contains(value, "<") {
		if nodes, err := html.ParseFragment(strings.NewReader(value), bodyContext()); err == nil {
			for n.FirstChild != nil {
				n.RemoveChild(n.FirstChild)
			}
			for _, c := range nodes {
				n.AppendChild(c)
			}
			return
		}
	}
	template.SetText(n, value)
}

func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func hasAnyFold(s string, subs ...string) bool {
	ls := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(ls, sub) {
			return true
		}
	}
	return false
}

// ===== Color =====

// textishChildren matches the fixed descendant set that text-color
// changes cascade into.
func textishChildren(root *html.Node) []*html.Node {
	return template.FindAll(root, func(c *html.Node) bool {
		if c == root || c.Type != html.ElementNode {
			return false
		}
		return template.HasClass(c, "header-main") || template.HasClass(c, "header-sub") ||
			template.HasClass(c, "subtitle-text") || template.HasClass(c, "footer-text") ||
			template.ClassContains(c, "text") || template.ClassContains(c, "title")
	})
}

func clearHexText(n *html.Node) {
	if txt := strings.TrimSpace(template.TextContent(n)); hexColor.MatchString(txt) {
		template.SetText(n, "")
	}
}

func applyColor(n *html.Node, name, value string) {
	prop := field.StyleProperty(name)
	if prop == "backgroundColor" || prop == "background" {
		template.SetStyleValue(n, "background-color", value)
		clearHexText(n)
		return
	}
	template.SetStyleValue(n, "color", value)
	for _, c := range textishChildren(n) {
		template.SetStyleValue(c, "color", value)
		clearHexText(c)
	}
}

// ===== Image =====

func inPlayControls(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode &&
			(template.HasClass(p, "play-controls") || template.HasClass(p, "control-btn") || template.HasClass(p, "play-button")) {
			return true
		}
	}
	return false
}

func forceVisible(n *html.Node, display string) {
	template.SetStyleValue(n, "display", display)
	template.SetStyleValue(n, "visibility", "visible")
	template.SetStyleValue(n, "opacity", "1")
}

// stripPathText removes file-path text from the subtree: offending text
// nodes are deleted and elements whose text is a path are hidden.
// Playback controls are exempt and must stay visible.
func stripPathText(root *html.Node) {
	var pathText = func(s string) bool {
		return strings.Contains(s, "fakepath") || strings.Contains(s, `C:\`) || windowsMediaPath.MatchString(strings.TrimSpace(s))
	}

	var doomed []*html.Node
	template.Walk(root, func(c *html.Node) {
		if c.Type == html.TextNode && pathText(c.Data) && !inPlayControls(c.Parent) {
			doomed = append(doomed, c)
		}
	})
	for _, c := range doomed {
		template.Detach(c)
	}

	template.Walk(root, func(c *html.Node) {
		if c == root || c.Type != html.ElementNode || inPlayControls(c) {
			return
		}
		if txt := template.TextContent(c); txt != "" && pathText(txt) {
			template.SetStyleValue(c, "display", "none")
			template.SetText(c, "")
		}
	})
}

// restorePlayControls forces playback controls back to visible after an
// image swap.
func restorePlayControls(root *html.Node) {
	for _, pc := range template.ByClass(root, "play-controls") {
		forceVisible(pc, "flex")
		template.SetStyleValue(pc, "position", "relative")
		template.SetStyleValue(pc, "z-index", "10")
	}
	for _, btn := range template.FindAll(root, func(c *html.Node) bool {
		return c.Type == html.ElementNode && (template.HasClass(c, "control-btn") || template.HasClass(c, "play-button"))
	}) {
		forceVisible(btn, "flex")
	}
}

func setBackgroundImage(n *html.Node, value string) {
	template.SetStyleValue(n, "background-image", "url("+value+")")
	template.SetStyleValue(n, "background-size", "cover")
	template.SetStyleValue(n, "background-position", "center")
	template.SetStyleValue(n, "background-repeat", "no-repeat")
}

func applyImage(n *html.Node, name, value string) {
	if value == "" {
		return
	}
	if strings.Contains(value, "fakepath") || strings.Contains(value, `C:\`) {
		return
	}

	// Image elements take src and never fall through to the
	// background-image path.
	if template.Element(n, "img") {
		if !isRemoteValue(value) {
			return
		}
		template.SetAttr(n, "src", value)

		if name == "appLogoImage" {
			if n.Parent != nil {
				for _, lt := range template.ByClass(n.Parent, "app-logo-text") {
					template.SetStyleValue(lt, "display", "none")
				}
			}
			template.SetStyleValue(n, "display", "block")
			template.SetStyleValue(n, "width", "100%")
			template.SetStyleValue(n, "height", "100%")
			template.SetStyleValue(n, "object-fit", "cover")
		}

		if strings.Contains(name, "thumbnail") {
			forceVisible(n, "block")
			template.SetStyleValue(n, "width", "100%")
			template.SetStyleValue(n, "height", "100%")
			template.SetStyleValue(n, "object-fit", "cover")
			template.SetStyleValue(n, "max-width", "100%")
			template.SetStyleValue(n, "max-height", "100%")
			if n.Parent != nil && n.Parent.Type == html.ElementNode {
				template.SetStyleValue(n.Parent, "overflow", "visible")
			}
		}
		return
	}

	// Containers get a background image. Only inline images, blobs,
	// and URLs qualify.
	if !strings.HasPrefix(value, "data:image") && !strings.HasPrefix(value, "blob:") && !strings.HasPrefix(value, "http") {
		return
	}
	setBackgroundImage(n, value)
	stripPathText(n)
	restorePlayControls(n)
}

// ===== Size =====

func applySize(n *html.Node, name, value string) {
	prop := field.StyleProperty(name)
	if prop == "" {
		return
	}
	template.SetStyleValue(n, cssProp(prop), value+field.Unit(name))

	// A container showing its own numeric value is a leftover; keep
	// element children, drop the number.
	if template.HasElementChildren(n) {
		template.RemoveTextNodes(n, func(s string) bool { return bareInteger.MatchString(s) })
	}
}

// SetDimension writes one pixel dimension (top, left, width, ...)
// directly, for indirect positional binding targets.
func SetDimension(n *html.Node, prop, value string) {
	if n == nil || prop == "" {
		return
	}
	template.SetStyleValue(n, cssProp(prop), value+"px")
}

// ===== Media =====

func applyMedia(n *html.Node, name, value string) {
	if value == "" || !isRemoteValue(value) {
		return
	}
	if !template.Element(n, "audio") && !template.Element(n, "video") {
		return
	}
	template.SetAttr(n, "src", value)

	// Background audio starts on its own, loops, and plays at half
	// volume. Playback refusal is never fatal and surfaces nowhere.
	if template.Element(n, "audio") && strings.Contains(name, "backgroundAudio") {
		template.SetAttr(n, "autoplay", "")
		template.SetAttr(n, "loop", "")
		template.SetAttr(n, "data-volume", "0.5")
	}

	for _, src := range template.ByTag(n, "source") {
		template.SetAttr(src, "src", value)
	}
}

// ===== Opacity =====

func applyOpacity(n *html.Node, value string) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return
	}
	if f > 1 {
		f = f / 100
	}
	template.SetStyleValue(n, "opacity", strconv.FormatFloat(f, 'g', -1, 64))
}

// ===== Generic style types =====

func applyStyle(n *html.Node, name, value string) {
	prop := field.StyleProperty(name)
	if prop == "" {
		return
	}
	template.SetStyleValue(n, cssProp(prop), value+field.Unit(name))
}

// ===== Animation =====

func applyAnimation(n *html.Node, value string) {
	for _, cls := range animationClasses {
		template.RemoveClass(n, cls)
	}
	if value == "" || value == "none" {
		return
	}
	template.AddClass(n, "anim-"+value)
}
