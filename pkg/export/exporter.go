package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/observability"
	"github.com/adforge/adforge/pkg/render"
	"github.com/adforge/adforge/pkg/template"
	"github.com/adforge/adforge/pkg/translate"
)

// DefaultShotScale is the device scale factor for the base browser
// shot. Shooting at 2x keeps text crisp after the upscale to export
// sizes.
const DefaultShotScale = 2.0

// Exporter renders export jobs. Languages run sequentially; the
// pipeline's bottleneck is the browser shot and interleaving shots
// buys nothing but memory spikes.
type Exporter struct {
	Loader     template.Loader
	Rasterizer render.Rasterizer
	Muxer      render.Muxer
	Translator *translate.Translator

	// Scale overrides DefaultShotScale when positive.
	Scale float64
}

func (e *Exporter) scale() float64 {
	if e.Scale > 0 {
		return e.Scale
	}
	return DefaultShotScale
}

func (e *Exporter) validate(req Request) error {
	switch req.Kind {
	case KindImages, KindBundles, KindVideos:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown export kind %q", req.Kind)
	}
	if err := errors.ValidateTemplateName(req.Template); err != nil {
		return err
	}
	if len(req.Languages) == 0 {
		return errors.New(errors.ErrCodeNoLanguages, "select at least one language before exporting")
	}
	for _, l := range req.Languages {
		if err := errors.ValidateLanguageCode(l); err != nil {
			return err
		}
	}
	if req.Kind == KindVideos && len(req.Audio) == 0 {
		return errors.New(errors.ErrCodeAudioMissing, "video export requires a background audio track")
	}
	if need, reason := NeedsConfirmation(req); need && !req.Confirmed {
		return errors.New(errors.ErrCodeInvalidInput, "confirmation required: %s", reason)
	}
	return nil
}

// Export runs one job to completion. The returned job is terminal:
// either done with its archives or failed with an error. Per-language
// and per-size failures become warnings, not errors; the job fails only
// when no language produced output.
func (e *Exporter) Export(ctx context.Context, req Request) (*Job, error) {
	job := newJob(req.Kind)
	if err := e.validate(req); err != nil {
		job.fail(err)
		return job, err
	}

	start := time.Now()
	observability.Export().OnExportStart(ctx, string(req.Kind), len(req.Languages), len(Sizes))

	job.start()
	err := e.run(ctx, req, job)
	observability.Export().OnExportComplete(ctx, string(req.Kind), time.Since(start), err)
	if err != nil {
		job.fail(err)
		return job, err
	}
	return job, nil
}

func (e *Exporter) run(ctx context.Context, req Request, job *Job) error {
	tmpl, err := e.Loader.Load(ctx, req.Template)
	if err != nil {
		return err
	}

	// One progress step per language plus the packing stage.
	steps := float64(len(req.Languages) + 1)
	stamp := time.Now().Format("20060102_150405")
	var master []entry
	var artifacts []Artifact

	for i, lang := range req.Languages {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "export canceled")
		}
		job.setProgress(float64(i)/steps, fmt.Sprintf("rendering %s (%d/%d)", lang, i+1, len(req.Languages)))

		langStart := time.Now()
		entries, lerr := e.renderLanguage(ctx, req, tmpl, job, lang)
		observability.Export().OnLanguageComplete(ctx, string(req.Kind), lang, time.Since(langStart), lerr)
		if lerr != nil {
			job.warn("language %s skipped: %s", lang, errors.UserMessage(lerr))
			continue
		}
		if req.Kind == KindVideos {
			// Video archives ship one per language, never nested.
			artifacts = append(artifacts, Artifact{
				Name: fmt.Sprintf("%s_%s_%s_%s.zip", req.Template, req.Kind, lang, stamp),
				Data: entries[0].Data,
			})
			continue
		}
		master = append(master, entries...)
	}

	if len(master) == 0 && len(artifacts) == 0 {
		return errors.New(errors.ErrCodeRender, "every language failed, nothing to export")
	}

	job.setProgress(float64(len(req.Languages))/steps, "packing archive")
	if req.Kind != KindVideos {
		data, err := buildZip(master)
		if err != nil {
			return err
		}
		artifacts = []Artifact{{
			Name: fmt.Sprintf("%s_%s_%s.zip", req.Template, req.Kind, stamp),
			Data: data,
		}}
	}
	job.finish(artifacts)
	return nil
}

// renderLanguage produces the archive entries for one language. Image
// and bundle jobs return the per-language zip destined for the master
// archive; video jobs return their stand-alone per-language zip.
func (e *Exporter) renderLanguage(ctx context.Context, req Request, tmpl *template.Template, job *Job, lang string) ([]entry, error) {
	snapshot := req.Snapshot
	if lang != req.SourceLang && e.Translator != nil {
		res, err := e.Translator.TranslateFields(ctx, req.Snapshot, req.SourceLang, lang)
		if err != nil {
			return nil, err
		}
		if res.AllUnchanged() {
			job.warn("language %s: no field could be translated, exporting source copy", lang)
		}
		snapshot = res.Values
	}

	doc, err := render.Materialize(tmpl, snapshot)
	if err != nil {
		return nil, err
	}
	shot, err := e.Rasterizer.Rasterize(ctx, doc.HTML, render.BaseWidth, render.BaseHeight, e.scale())
	if err != nil {
		return nil, err
	}

	switch req.Kind {
	case KindImages:
		return e.packImages(ctx, req, job, lang, shot)
	case KindBundles:
		return e.packBundle(lang, doc)
	case KindVideos:
		return e.packVideos(ctx, req, job, lang, shot)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown export kind %q", req.Kind)
}

func (e *Exporter) packImages(ctx context.Context, req Request, job *Job, lang string, shot image.Image) ([]entry, error) {
	var inner []entry
	for _, size := range Sizes {
		img := render.Rescale(ctx, shot, size.Width, size.Height, req.BlurIntensity)
		data, err := encodePNG(img)
		if err != nil {
			job.warn("size %s skipped for %s: %s", size, lang, errors.UserMessage(err))
			continue
		}
		inner = append(inner, entry{
			Name: fmt.Sprintf("%s_%s_%s.png", req.Template, lang, size),
			Data: data,
		})
	}
	if len(inner) == 0 {
		return nil, errors.New(errors.ErrCodeEncode, "no size could be encoded")
	}
	data, err := buildZip(inner)
	if err != nil {
		return nil, err
	}
	return []entry{{Name: lang + ".zip", Data: data}}, nil
}

func (e *Exporter) packBundle(lang string, doc *render.Document) ([]entry, error) {
	inner := []entry{{Name: "creative.html", Data: []byte(doc.HTML)}}
	for _, a := range doc.Assets {
		inner = append(inner, entry{Name: "assets/" + a.Name, Data: a.Data})
	}
	data, err := buildZip(inner)
	if err != nil {
		return nil, err
	}
	return []entry{{Name: lang + ".zip", Data: data}}, nil
}

func (e *Exporter) packVideos(ctx context.Context, req Request, job *Job, lang string, shot image.Image) ([]entry, error) {
	var inner []entry
	for _, size := range Sizes {
		frame := render.Rescale(ctx, shot, size.Width, size.Height, req.BlurIntensity)
		clip, err := e.Muxer.Mux(ctx, render.MuxOptions{
			Frame:    frame,
			Audio:    req.Audio,
			AudioExt: req.AudioExt,
			Duration: req.AudioDuration,
		})
		if err != nil {
			job.warn("size %s skipped for %s: %s", size, lang, errors.UserMessage(err))
			continue
		}
		inner = append(inner, entry{
			Name: fmt.Sprintf("%s_%s_%s.mp4", req.Template, lang, size),
			Data: clip,
		})
	}
	if len(inner) == 0 {
		return nil, errors.New(errors.ErrCodeEncode, "no size could be encoded")
	}
	data, err := buildZip(inner)
	if err != nil {
		return nil, err
	}
	return []entry{{Name: lang + ".zip", Data: data}}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "encode png")
	}
	return buf.Bytes(), nil
}
