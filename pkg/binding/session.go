// Package binding connects template fields to live DOM mutations.
//
// The engine owns a per-template Session: the canonical field value
// store, uploaded assets, and the audio reference. The DOM is a
// projection of the session, never the source of truth; switching
// templates replaces the session wholesale so values never leak across
// templates.
package binding

import (
	"strings"
	"sync"
	"time"
)

// Asset is a user-supplied binary (image, audio, video) materialized as
// a data URI. Its lifetime is bounded by the owning session.
type Asset struct {
	Field   string
	MIME    string
	DataURI string
}

// Session is the owned state of one loaded template instance.
type Session struct {
	template string
	created  time.Time

	mu         sync.RWMutex
	values     map[string]string
	assets     map[string]Asset
	audioField string
	audioSecs  float64
}

// NewSession creates an empty session for the named template.
func NewSession(templateName string) *Session {
	return &Session{
		template: templateName,
		created:  time.Now(),
		values:   make(map[string]string),
		assets:   make(map[string]Asset),
	}
}

// Template returns the owning template's name.
func (s *Session) Template() string { return s.template }

// Set stores a field value.
func (s *Session) Set(field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[field] = value
}

// Get returns a field value and whether it is present.
func (s *Session) Get(field string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[field]
	return v, ok
}

// Values returns a copy of the value store.
func (s *Session) Values() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Len returns the number of stored fields.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// SetAsset stores an uploaded binary under its field and mirrors the
// data URI into the value store so the field projects it.
func (s *Session) SetAsset(a Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.Field] = a
	s.values[a.Field] = a.DataURI
}

// Asset returns the uploaded binary for a field, if any.
func (s *Session) Asset(field string) (Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[field]
	return a, ok
}

// Assets returns a copy of the uploaded assets keyed by field.
func (s *Session) Assets() map[string]Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Asset, len(s.assets))
	for k, v := range s.assets {
		out[k] = v
	}
	return out
}

// SetAudio records the session's audio reference: the field holding the
// soundtrack and its duration in seconds (0 when unknown).
func (s *Session) SetAudio(field string, seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audioField = field
	s.audioSecs = seconds
}

// Audio returns the audio field name, its duration in seconds, and
// whether an audio upload exists.
func (s *Session) Audio() (field string, seconds float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.audioField == "" {
		return "", 0, false
	}
	return s.audioField, s.audioSecs, true
}

// looksLikeFilePath reports whether a value is a local file-system path
// artifact (browser fakepath, Windows drive path). Such values must
// never reach the store's visible output.
func looksLikeFilePath(v string) bool {
	return strings.Contains(v, "fakepath") || strings.Contains(v, `C:\`) || windowsMediaPath.MatchString(v)
}
