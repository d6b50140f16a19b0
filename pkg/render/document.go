package render

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/adforge/adforge/pkg/binding"
	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/template"
	"golang.org/x/net/html"
)

// Creative dimensions every template is authored at. Rescaling to the
// export sizes happens after rasterization.
const (
	BaseWidth  = 320
	BaseHeight = 480
)

// resetCSS pins the materialized creative to its authored dimensions so
// a headless browser shot is pixel-stable regardless of user agent
// defaults.
const resetCSS = `html, body {
  margin: 0;
  padding: 0;
  width: 320px;
  height: 480px;
  overflow: hidden;
  background: #ffffff;
}
* { box-sizing: border-box; }
.ad-preview { width: 320px; height: 480px; position: relative; overflow: hidden; }`

// Asset is a binary extracted from a materialized document. The inline
// copy stays in the HTML; the extracted file is for bundle exports.
type Asset struct {
	Name string
	MIME string
	Data []byte
}

// Document is a self-contained render input: one HTML page with every
// style and binary inlined, plus the extracted asset list.
type Document struct {
	HTML   string
	Assets []Asset
}

// Materialize turns a template plus a value snapshot into a standalone
// HTML document. The source template is never mutated; all projection
// happens on a fresh parse. Editor controls and affordances are
// stripped, playback buttons are frozen, and the footer is forced
// visible so the shot matches what the editor preview showed.
func Materialize(tmpl *template.Template, snapshot map[string]string) (*Document, error) {
	if tmpl == nil {
		return nil, errors.New(errors.ErrCodeInvalidTemplate, "nil template")
	}

	markup, err := tmpl.Render()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render template")
	}
	work, err := template.ParseString(tmpl.Name, markup)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "reparse template")
	}

	for name, value := range snapshot {
		binding.Project(work, name, value)
	}

	root := work.Root()
	stripEditorChrome(root)
	freezePlayback(root)
	forceFooterVisible(root)
	neutralizeAnchors(root)

	body, err := template.Render(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "serialize body")
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	b.WriteString(resetCSS)
	b.WriteString("\n")
	for _, css := range dedupe(tmpl.Styles()) {
		b.WriteString(css)
		b.WriteString("\n")
	}
	b.WriteString("</style>\n</head>\n")
	b.WriteString(body)
	b.WriteString("\n</html>\n")

	return &Document{HTML: b.String(), Assets: extractAssets(root)}, nil
}

func dedupe(blocks []string) []string {
	seen := make(map[string]bool, len(blocks))
	var out []string
	for _, s := range blocks {
		key := strings.TrimSpace(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// stripEditorChrome removes form controls, scripts, and editor-only
// buttons from the materialized copy. Style blocks go too since they
// are re-inlined deduped in the head.
func stripEditorChrome(root *html.Node) {
	var doomed []*html.Node
	template.Walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "input", "textarea", "select", "script", "style":
			doomed = append(doomed, n)
			return
		}
		if template.HasClass(n, "thumbnail-preview-btn") || template.HasClass(n, "editor-panel") ||
			template.HasClass(n, "field-controls") {
			doomed = append(doomed, n)
		}
	})
	for _, n := range doomed {
		template.Detach(n)
	}
}

// freezePlayback keeps countdown controls visible but inert in the
// exported creative.
func freezePlayback(root *html.Node) {
	for _, n := range template.FindAll(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || !template.HasClass(n, "control-btn") {
			return false
		}
		df := template.Attr(n, template.FieldAttr)
		return df == "rewindSeconds" || df == "forwardSeconds" || template.ClassContains(n, "rewind") || template.ClassContains(n, "forward")
	}) {
		template.SetStyleValue(n, "pointer-events", "none")
		template.SetAttr(n, "aria-disabled", "true")
	}
}

func forceFooterVisible(root *html.Node) {
	for _, cls := range []string{"ad-footer", "footer-text"} {
		for _, n := range template.ByClass(root, cls) {
			template.SetStyleValue(n, "display", "block")
			template.SetStyleValue(n, "visibility", "visible")
			template.SetStyleValue(n, "opacity", "1")
		}
	}
}

// neutralizeAnchors keeps link styling but stops navigation inside the
// shot. Click-through URLs belong to the ad platform, not the creative.
func neutralizeAnchors(root *html.Node) {
	for _, a := range template.ByTag(root, "a") {
		if template.HasAttr(a, "href") {
			template.SetAttr(a, "href", "#")
		}
		template.SetStyleValue(a, "pointer-events", "none")
	}
}

// ===== Asset extraction =====

var mimeExt = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"audio/mpeg":    "mp3",
	"audio/mp3":     "mp3",
	"audio/wav":     "wav",
	"audio/ogg":     "ogg",
	"video/mp4":     "mp4",
	"video/webm":    "webm",
}

// decodeDataURI splits a base64 data URI into its MIME type and bytes.
func decodeDataURI(uri string) (mime string, data []byte, ok bool) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, false
	}
	comma := strings.Index(uri, ",")
	if comma < 0 {
		return "", nil, false
	}
	meta := uri[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, false
	}
	mime = strings.TrimSuffix(meta, ";base64")
	raw, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return "", nil, false
	}
	return mime, raw, true
}

// extractAssets collects every inline binary in the subtree. Inline
// copies are left in place; extraction only mirrors them into files for
// bundle exports. Names are assigned in document order per kind.
func extractAssets(root *html.Node) []Asset {
	var assets []Asset
	counts := map[string]int{}
	seen := map[string]bool{}

	record := func(uri string) {
		if seen[uri] {
			return
		}
		mime, data, ok := decodeDataURI(uri)
		if !ok {
			return
		}
		ext, known := mimeExt[mime]
		if !known {
			return
		}
		kind := strings.SplitN(mime, "/", 2)[0]
		counts[kind]++
		seen[uri] = true
		assets = append(assets, Asset{
			Name: fmt.Sprintf("%s_%d.%s", kind, counts[kind], ext),
			MIME: mime,
			Data: data,
		})
	}

	template.Walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if src := template.Attr(n, "src"); src != "" {
			record(src)
		}
		if bg := template.StyleValue(n, "background-image"); strings.HasPrefix(bg, "url(") {
			record(strings.TrimSuffix(strings.TrimPrefix(bg, "url("), ")"))
		}
	})
	return assets
}
