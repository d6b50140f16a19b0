package binding

import (
	"strings"

	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/template"
)

// isInlineValue reports whether a value is inline binary or a blob
// reference, which always outranks whatever a control still displays.
func isInlineValue(v string) bool {
	return strings.HasPrefix(v, "data:") || strings.HasPrefix(v, "blob:")
}

// Snapshot captures the field values needed to reproduce the current
// creative outside the editor. For each field the session's inline
// value wins, then an inline src on a preview image, then the control
// value. File paths never survive into a snapshot.
func (e *Engine) Snapshot() (map[string]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateBound {
		return nil, errors.New(errors.ErrCodeNotBound, "no template loaded")
	}

	snap := make(map[string]string)
	for _, name := range e.tmpl.Fields() {
		if v, ok := e.snapshotValue(name); ok {
			snap[name] = v
		}
	}
	return snap, nil
}

func (e *Engine) snapshotValue(name string) (string, bool) {
	if v, ok := e.session.Get(name); ok && isInlineValue(v) {
		return v, true
	}

	// A preview image may carry inline data the session never saw, for
	// example when the template ships with a baked-in placeholder.
	for _, n := range e.tmpl.Targets(name) {
		if !template.Element(n, "img") {
			continue
		}
		if src := template.Attr(n, "src"); isInlineValue(src) {
			return src, true
		}
	}

	if v, ok := e.session.Get(name); ok && v != "" && !looksLikeFilePath(v) {
		return v, true
	}
	return "", false
}
