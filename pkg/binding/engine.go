package binding

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/field"
	"github.com/adforge/adforge/pkg/observability"
	"github.com/adforge/adforge/pkg/template"
	"golang.org/x/net/html"
)

// State is the engine lifecycle phase.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateBound   State = "bound"
	StateError   State = "error"
)

// Engine binds a session's field values onto a template's preview DOM.
// All mutation flows through the engine; the DOM is a projection of the
// session and never the source of truth.
type Engine struct {
	loader template.Loader

	mu      sync.Mutex
	state   State
	tmpl    *template.Template
	session *Session
}

// NewEngine returns an engine in the empty state.
func NewEngine(loader template.Loader) *Engine {
	return &Engine{loader: loader, state: StateEmpty}
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Session returns the active session, or nil before a successful Load.
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Template returns the bound template, or nil before a successful Load.
func (e *Engine) Template() *template.Template {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tmpl
}

// Load fetches a template, discards any previous session, seeds a fresh
// one from the template's control defaults, and performs the initial
// sync of every seeded value into the preview. Load may be called again
// at any time; a reload always starts from a clean session.
func (e *Engine) Load(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	observability.Binding().OnBindStart(ctx, name)

	e.state = StateLoading
	tmpl, err := e.loader.Load(ctx, name)
	if err != nil {
		e.state = StateError
		e.tmpl = nil
		e.session = nil
		observability.Binding().OnBindComplete(ctx, name, 0, time.Since(start), err)
		return err
	}

	sess := NewSession(name)
	for _, c := range tmpl.Controls() {
		if v := c.Value(); v != "" && !looksLikeFilePath(v) {
			sess.Set(c.Field, v)
		}
	}

	e.tmpl = tmpl
	e.session = sess
	e.state = StateBound

	for f, v := range sess.Values() {
		e.fanOut(ctx, f, v)
	}

	observability.Binding().OnBindComplete(ctx, name, sess.Len(), time.Since(start), nil)
	return nil
}

// Set records a field value in the session and projects it into every
// target node. It fails before a successful Load.
func (e *Engine) Set(ctx context.Context, name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateBound {
		return errors.New(errors.ErrCodeNotBound, "no template loaded")
	}
	if err := errors.ValidateFieldName(name); err != nil {
		return err
	}

	e.session.Set(name, value)
	e.fanOut(ctx, name, value)
	observability.Binding().OnFieldUpdate(ctx, e.tmpl.Name, name, string(field.Classify(name)))
	return nil
}

// SetAsset records an uploaded asset and projects its data URI.
func (e *Engine) SetAsset(ctx context.Context, a Asset) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateBound {
		return errors.New(errors.ErrCodeNotBound, "no template loaded")
	}
	if err := errors.ValidateFieldName(a.Field); err != nil {
		return err
	}

	e.session.SetAsset(a)
	e.fanOut(ctx, a.Field, a.DataURI)
	observability.Binding().OnFieldUpdate(ctx, e.tmpl.Name, a.Field, string(field.Classify(a.Field)))
	return nil
}

// Resync replays every session value into the preview. Used after the
// preview DOM has been replaced or edited out of band.
func (e *Engine) Resync(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateBound {
		return errors.New(errors.ErrCodeNotBound, "no template loaded")
	}
	for f, v := range e.session.Values() {
		e.fanOut(ctx, f, v)
	}
	return nil
}

// fanOut projects one field value to its primary and indirect targets.
// Callers hold e.mu.
func (e *Engine) fanOut(ctx context.Context, name, value string) {
	Project(e.tmpl, name, value)
}

// derivedSizeTargets maps size-field prefixes to the preview class the
// size applies to when no explicit data-field-size target exists.
var derivedSizeTargets = []struct {
	prefix string
	class  string
}{
	{"headerMain", "header-main"},
	{"headerSub", "header-sub"},
	{"subtitle", "subtitle-text"},
	{"footer", "footer-text"},
}

// Project applies one field value to every target the template declares
// for it: the primary data-field nodes plus all indirect attribute
// targets. It is the single fan-out path shared by the live engine and
// offline materialization.
func Project(tmpl *template.Template, name, value string) {
	t := field.Classify(name)

	// Explicit size targets win over name-derived ones.
	if t == field.TypeSize {
		if explicit := tmpl.IndirectTargets(template.SizeAttr, name); len(explicit) > 0 {
			for _, n := range explicit {
				ApplyTyped(field.TypeSize, name, value, n)
			}
		} else {
			for _, n := range derivedTargets(tmpl, name) {
				ApplyTyped(field.TypeSize, name, value, n)
			}
		}
	}

	for _, n := range tmpl.Targets(name) {
		ApplyTyped(t, name, value, n)
	}

	for _, n := range tmpl.IndirectTargets(template.ColorAttr, name) {
		ApplyTyped(field.TypeColor, name, value, n)
	}
	for _, n := range tmpl.IndirectTargets(template.AnimationAttr, name) {
		applyAnimation(n, value)
	}
	for _, n := range tmpl.IndirectTargets(template.LinkAttr, name) {
		if template.Element(n, "a") && isSafeHref(value) {
			template.SetAttr(n, "href", value)
		}
	}

	dims := []struct {
		attr string
		prop string
	}{
		{template.TopAttr, "top"},
		{template.RightAttr, "right"},
		{template.BottomAttr, "bottom"},
		{template.LeftAttr, "left"},
		{template.WidthAttr, "width"},
		{template.HeightAttr, "height"},
	}
	for _, d := range dims {
		for _, n := range tmpl.IndirectTargets(d.attr, name) {
			SetDimension(n, d.prop, value)
		}
	}
}

func derivedTargets(tmpl *template.Template, name string) []*html.Node {
	for _, d := range derivedSizeTargets {
		if strings.HasPrefix(name, d.prefix) {
			return template.ByClass(tmpl.Root(), d.class)
		}
	}
	return nil
}

// isSafeHref rejects values that would execute script when followed.
func isSafeHref(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v != "" && !strings.HasPrefix(v, "javascript:") && !strings.HasPrefix(v, "vbscript:")
}
