// Package export turns a bound creative into deliverable archives
// across languages and ad sizes.
//
// An export job walks languages sequentially: translate the snapshot,
// materialize the document, shoot it once, rescale per size, then pack
// the results. Image and bundle jobs nest one archive per language
// inside a single master archive; video jobs produce one stand-alone
// archive per language instead, so each clip set downloads on its own.
// A language or size that fails is skipped with a warning; the job only
// fails outright when nothing could be produced.
package export

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind selects what an export job produces.
type Kind string

const (
	// KindImages produces one PNG per language and size.
	KindImages Kind = "images"

	// KindBundles produces a self-contained HTML bundle per language.
	KindBundles Kind = "bundles"

	// KindVideos produces one MP4 per language and size, muxed from the
	// creative still and the session's background audio.
	KindVideos Kind = "videos"
)

// Size is one deliverable ad geometry.
type Size struct {
	Name   string
	Width  int
	Height int
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Sizes is the fixed deliverable set every job renders.
var Sizes = []Size{
	{Name: "square", Width: 1200, Height: 1200},
	{Name: "portrait", Width: 1200, Height: 1500},
	{Name: "landscape", Width: 1200, Height: 628},
}

// Confirmation gates. Jobs past these thresholds need an explicit user
// confirmation before they run.
const (
	MaxLanguagesWithoutConfirm = 10
	MaxAudioWithoutConfirm     = 60 * time.Second
)

// Request describes one export job.
type Request struct {
	Kind     Kind
	Template string

	// Snapshot is the bound field state to render from.
	Snapshot map[string]string

	// SourceLang is the language the snapshot is authored in.
	SourceLang string

	// Languages lists the target languages. The source language renders
	// without translation.
	Languages []string

	// Audio carries the background track for video jobs.
	Audio         []byte
	AudioExt      string
	AudioDuration time.Duration

	// BlurIntensity tunes the rescale background fill. Zero uses the
	// render default.
	BlurIntensity float64

	// Confirmed acknowledges a large-job estimate.
	Confirmed bool
}

// Status is a job's lifecycle phase.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Artifact is one deliverable file produced by a finished job.
type Artifact struct {
	Name string
	Data []byte
}

// Job tracks one export run.
type Job struct {
	ID      uuid.UUID
	Kind    Kind
	Created time.Time

	mu       sync.Mutex
	status   Status
	progress float64
	message  string
	warnings []string
	outputs  []Artifact
	err      error
	finished time.Time
}

func newJob(kind Kind) *Job {
	return &Job{
		ID:      uuid.New(),
		Kind:    kind,
		Created: time.Now(),
		status:  StatusPending,
	}
}

// Status returns the current phase.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Progress returns completion in [0, 1].
func (j *Job) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

// Message returns the current human-readable status line.
func (j *Job) Message() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.message
}

// Warnings lists non-fatal problems hit during the run.
func (j *Job) Warnings() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.warnings))
	copy(out, j.warnings)
	return out
}

// Outputs lists the finished deliverables. Image and bundle jobs yield
// one master archive; video jobs yield one archive per language. Empty
// until the job is done.
func (j *Job) Outputs() []Artifact {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Artifact, len(j.outputs))
	copy(out, j.outputs)
	return out
}

// Output returns the first deliverable and its filename, which is the
// whole result for image and bundle jobs. Video jobs should use Outputs.
func (j *Job) Output() (name string, data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.outputs) == 0 {
		return "", nil
	}
	return j.outputs[0].Name, j.outputs[0].Data
}

// Err returns the terminal error of a failed job.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// setProgress advances the progress bar. Progress never moves
// backwards, whatever order the stages report in.
func (j *Job) setProgress(p float64, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if p > j.progress {
		j.progress = p
	}
	if j.progress > 1 {
		j.progress = 1
	}
	if msg != "" {
		j.message = msg
	}
}

func (j *Job) warn(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, fmt.Sprintf(format, args...))
}

func (j *Job) start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusRunning
	j.message = "starting"
}

func (j *Job) finish(outputs []Artifact) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusDone
	j.progress = 1
	j.message = "done"
	j.outputs = outputs
	j.finished = time.Now()
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusFailed
	j.message = "failed"
	j.err = err
	j.finished = time.Now()
}
