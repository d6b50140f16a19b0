// Package server exposes the editor API over HTTP.
//
// The server is the bridge between the browser editor and the Go
// pipeline: it serves templates and their discovered fields, runs
// translation passes, and drives export jobs that the client polls.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/adforge/adforge/pkg/binding"
	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/export"
	"github.com/adforge/adforge/pkg/field"
	"github.com/adforge/adforge/pkg/template"
	"github.com/adforge/adforge/pkg/translate"
)

// Server handles the editor API.
type Server struct {
	loader     template.Loader
	exporter   *export.Exporter
	manager    *export.Manager
	translator *translate.Translator
	sourceLang string
	logger     *log.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*binding.Engine
}

// New creates a Server. sourceLang is the language templates are
// authored in.
func New(loader template.Loader, exporter *export.Exporter, translator *translate.Translator, sourceLang string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if sourceLang == "" {
		sourceLang = "en"
	}
	return &Server{
		loader:     loader,
		exporter:   exporter,
		manager:    export.NewManager(exporter),
		translator: translator,
		sourceLang: sourceLang,
		logger:     logger,
		sessions:   make(map[uuid.UUID]*binding.Engine),
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", s.handleListTemplates)
		r.Get("/templates/{name}", s.handleGetTemplate)
		r.Get("/templates/{name}/fields", s.handleTemplateFields)

		r.Post("/sessions", s.handleCreateSession)
		r.Patch("/sessions/{id}/fields", s.handlePatchField)
		r.Get("/sessions/{id}/snapshot", s.handleSnapshot)
		r.Get("/sessions/{id}/preview.png", s.handlePreview)
		r.Delete("/sessions/{id}", s.handleDeleteSession)

		r.Post("/translate", s.handleTranslate)

		r.Post("/export", s.handleStartExport)
		r.Get("/export/{id}", s.handleExportStatus)
		r.Get("/export/{id}/download", s.handleExportDownload)
	})
	return r
}

// ===== Responses =====

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// writeError maps coded errors onto HTTP statuses and returns the user
// message, never the internal chain.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeTemplateNotFound, errors.ErrCodeFieldNotFound,
		errors.ErrCodeFileNotFound, errors.ErrCodeJobNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidField, errors.ErrCodeInvalidTemplate,
		errors.ErrCodeInvalidLanguage, errors.ErrCodeInvalidSize, errors.ErrCodeInvalidPath,
		errors.ErrCodeNoLanguages, errors.ErrCodeAudioMissing:
		status = http.StatusBadRequest
	case errors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}
	s.writeJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}

// ===== Health =====

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ===== Templates =====

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := s.loader.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"templates": names})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.loader.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	markup, err := tmpl.Render()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(markup))
}

type fieldInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Accept string `json:"accept,omitempty"`
}

func (s *Server) handleTemplateFields(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.loader.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	fields := tmpl.Fields()
	out := make([]fieldInfo, 0, len(fields))
	for _, name := range fields {
		t := field.Classify(name)
		out = append(out, fieldInfo{Name: name, Type: string(t), Accept: field.Accept(t)})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"template": tmpl.Name, "fields": out})
}

// ===== Translation =====

type translateRequest struct {
	Target string            `json:"target"`
	Values map[string]string `json:"values"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if len(req.Values) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "no values to translate"))
		return
	}

	res, err := s.translator.TranslateFields(r.Context(), req.Values, s.sourceLang, req.Target)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"values":        res.Values,
		"translated":    res.Translated,
		"skipped":       res.Skipped,
		"failed":        res.Failed,
		"all_unchanged": res.AllUnchanged(),
	})
}

// ===== Export =====

type exportRequest struct {
	Kind          string            `json:"kind"`
	Template      string            `json:"template"`
	Snapshot      map[string]string `json:"snapshot"`
	Languages     []string          `json:"languages"`
	Audio         []byte            `json:"audio,omitempty"`
	AudioExt      string            `json:"audio_ext,omitempty"`
	AudioSeconds  float64           `json:"audio_seconds,omitempty"`
	BlurIntensity float64           `json:"blur_intensity,omitempty"`
	Confirmed     bool              `json:"confirmed"`
}

func (r exportRequest) toRequest(sourceLang string) export.Request {
	return export.Request{
		Kind:          export.Kind(r.Kind),
		Template:      r.Template,
		Snapshot:      r.Snapshot,
		SourceLang:    sourceLang,
		Languages:     r.Languages,
		Audio:         r.Audio,
		AudioExt:      r.AudioExt,
		AudioDuration: time.Duration(r.AudioSeconds * float64(time.Second)),
		BlurIntensity: r.BlurIntensity,
		Confirmed:     r.Confirmed,
	}
}

func (s *Server) handleStartExport(w http.ResponseWriter, r *http.Request) {
	var body exportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	req := body.toRequest(s.sourceLang)

	// The job outlives the request; detach it from the request context.
	job, err := s.manager.Start(context.WithoutCancel(r.Context()), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("export started", "job", job.ID, "kind", req.Kind, "languages", len(req.Languages))

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"id":                job.ID.String(),
		"estimated_seconds": export.Estimate(req).Seconds(),
	})
}

func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobFromURL(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := map[string]any{
		"id":       job.ID.String(),
		"kind":     string(job.Kind),
		"status":   string(job.Status()),
		"progress": job.Progress(),
		"message":  job.Message(),
		"warnings": job.Warnings(),
	}
	if outs := job.Outputs(); len(outs) > 0 {
		names := make([]string, len(outs))
		for i, art := range outs {
			names[i] = art.Name
		}
		resp["artifacts"] = names
	}
	if err := job.Err(); err != nil {
		resp["error"] = errors.UserMessage(err)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleExportDownload serves one finished archive. Video jobs produce
// an archive per language; pick one with ?artifact=<name>. Without the
// parameter the first archive is served, which is the whole result for
// image and bundle jobs.
func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobFromURL(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	outs := job.Outputs()
	if job.Status() != export.StatusDone || len(outs) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "job %s is not finished", job.ID))
		return
	}
	art := outs[0]
	if want := r.URL.Query().Get("artifact"); want != "" {
		found := false
		for _, a := range outs {
			if a.Name == want {
				art, found = a, true
				break
			}
		}
		if !found {
			s.writeError(w, errors.New(errors.ErrCodeNotFound, "job %s has no artifact %q", job.ID, want))
			return
		}
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Name+`"`)
	w.Write(art.Data)
}

func (s *Server) jobFromURL(r *http.Request) (*export.Job, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed job id")
	}
	return s.manager.Get(id)
}
