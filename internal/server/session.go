package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adforge/adforge/pkg/binding"
	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/export"
	"github.com/adforge/adforge/pkg/render"
)

// ===== Editing sessions =====
//
// A session holds a bound engine per editing client. The browser
// patches fields one at a time and pulls previews; the session keeps
// the template and value state server-side between calls.

type createSessionRequest struct {
	Template string `json:"template"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	engine := binding.NewEngine(s.loader)
	if err := engine.Load(r.Context(), req.Template); err != nil {
		s.writeError(w, err)
		return
	}

	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = engine
	s.mu.Unlock()
	s.logger.Info("session opened", "session", id, "template", req.Template)

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"id":       id.String(),
		"template": req.Template,
		"values":   engine.Session().Values(),
	})
}

type patchFieldRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Server) handlePatchField(w http.ResponseWriter, r *http.Request) {
	engine, err := s.sessionFromURL(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req patchFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if err := engine.Set(r.Context(), req.Name, req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"values": engine.Session().Values()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	engine, err := s.sessionFromURL(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snapshot, err := engine.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"values": snapshot})
}

// handlePreview renders the session as a PNG. Without width/height
// query parameters it returns the screenshot at the template's native
// geometry; with them the image goes through the aspect-fit rescale.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	engine, err := s.sessionFromURL(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snapshot, err := engine.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := render.Materialize(engine.Template(), snapshot)
	if err != nil {
		s.writeError(w, err)
		return
	}

	scale := s.exporter.Scale
	if scale <= 0 {
		scale = export.DefaultShotScale
	}
	img, err := s.exporter.Rasterizer.Rasterize(r.Context(), doc.HTML, render.BaseWidth, render.BaseHeight, scale)
	if err != nil {
		s.writeError(w, err)
		return
	}

	width := queryInt(r, "width")
	height := queryInt(r, "height")
	if width > 0 && height > 0 {
		img = render.RescalePreview(r.Context(), img, width, height, render.DefaultBlurIntensity)
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.logger.Error("encode preview", "err", err)
	}
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed session id"))
		return
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionFromURL(r *http.Request) (*binding.Engine, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed session id")
	}
	s.mu.Lock()
	engine, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no session %s", id)
	}
	return engine, nil
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}
