package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/adforge/adforge/pkg/errors"
	"github.com/disintegration/imaging"
)

// DefaultVideoDuration is used when the audio track's length is
// unknown.
const DefaultVideoDuration = 10 * time.Second

// MuxOptions describe one still-plus-audio video render.
type MuxOptions struct {
	// Frame is the creative still shown for the whole clip.
	Frame image.Image

	// Audio is the background track. Required.
	Audio []byte

	// AudioExt is the track's file extension without dot (mp3, wav).
	AudioExt string

	// Duration is the clip length. Zero falls back to
	// DefaultVideoDuration.
	Duration time.Duration
}

// Muxer produces an MP4 from a still frame and an audio track.
type Muxer interface {
	Mux(ctx context.Context, opts MuxOptions) ([]byte, error)
}

// ===== FFmpeg =====

// FFmpegMuxer shells out to an ffmpeg binary per clip.
type FFmpegMuxer struct {
	// Binary defaults to "ffmpeg".
	Binary string

	// Timeout bounds one mux. Defaults to 2 minutes.
	Timeout time.Duration
}

func (m *FFmpegMuxer) binary() string {
	if m.Binary != "" {
		return m.Binary
	}
	return "ffmpeg"
}

func (m *FFmpegMuxer) timeout() time.Duration {
	if m.Timeout > 0 {
		return m.Timeout
	}
	return 2 * time.Minute
}

func (m *FFmpegMuxer) Mux(ctx context.Context, opts MuxOptions) ([]byte, error) {
	if opts.Frame == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mux requires a frame")
	}
	if len(opts.Audio) == 0 {
		return nil, errors.New(errors.ErrCodeAudioMissing, "mux requires an audio track")
	}
	dur := opts.Duration
	if dur <= 0 {
		dur = DefaultVideoDuration
	}
	ext := opts.AudioExt
	if ext == "" {
		ext = "mp3"
	}

	dir, err := os.MkdirTemp("", "adforge-mux-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "create scratch dir")
	}
	defer os.RemoveAll(dir)

	frame := filepath.Join(dir, "frame.png")
	audio := filepath.Join(dir, "audio."+ext)
	out := filepath.Join(dir, "out.mp4")

	if err := imaging.Save(imaging.Clone(opts.Frame), frame); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "write frame")
	}
	if err := os.WriteFile(audio, opts.Audio, 0o644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "write audio")
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, m.binary(),
		"-y",
		"-loop", "1",
		"-i", frame,
		"-i", audio,
		"-t", fmt.Sprintf("%.2f", dur.Seconds()),
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-shortest",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "mux timed out after %s", m.timeout())
		}
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "ffmpeg exited: %s", firstLine(stderr.String()))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "read clip")
	}
	return data, nil
}

// ===== Test stub =====

// StubMuxer records calls and returns a fixed payload.
type StubMuxer struct {
	Payload []byte
	Err     error
	Calls   []MuxOptions
}

func (m *StubMuxer) Mux(ctx context.Context, opts MuxOptions) ([]byte, error) {
	m.Calls = append(m.Calls, opts)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Payload != nil {
		return m.Payload, nil
	}
	return []byte("mp4"), nil
}
