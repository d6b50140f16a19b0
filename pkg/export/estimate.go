package export

import (
	"fmt"
	"time"
)

// Closed-form per-stage costs, tuned against observed runs. Estimates
// are shown to the user before large jobs, not used for scheduling.
const (
	costTranslation = 2 * time.Second
	costRender      = 1500 * time.Millisecond
	costLangZip     = 500 * time.Millisecond
	costMasterZip   = 1 * time.Second
	costVideoSetup  = 2 * time.Second
	defaultAudioLen = 30 * time.Second
)

// Estimate predicts a job's wall-clock duration.
func Estimate(req Request) time.Duration {
	langs := len(req.Languages)
	if langs == 0 {
		return 0
	}
	translated := 0
	for _, l := range req.Languages {
		if l != req.SourceLang {
			translated++
		}
	}

	d := time.Duration(translated)*costTranslation +
		time.Duration(langs)*costRender +
		time.Duration(langs)*costLangZip +
		costMasterZip

	switch req.Kind {
	case KindImages:
		// One extra render pass per size beyond the shared shot.
		d += time.Duration(langs) * time.Duration(len(Sizes)) * costRender
	case KindVideos:
		audio := req.AudioDuration
		if audio <= 0 {
			audio = defaultAudioLen
		}
		d += time.Duration(langs) * time.Duration(len(Sizes)) * (audio + costVideoSetup)
	}
	return d
}

// NeedsConfirmation reports whether a request is large enough to
// require an explicit go-ahead, with a reason the UI can show.
func NeedsConfirmation(req Request) (bool, string) {
	if len(req.Languages) > MaxLanguagesWithoutConfirm {
		return true, fmt.Sprintf("%d languages selected (threshold %d), estimated %s",
			len(req.Languages), MaxLanguagesWithoutConfirm, Estimate(req).Round(time.Second))
	}
	if req.Kind == KindVideos && req.AudioDuration > MaxAudioWithoutConfirm {
		return true, fmt.Sprintf("audio track is %s (threshold %s), estimated %s",
			req.AudioDuration.Round(time.Second), MaxAudioWithoutConfirm, Estimate(req).Round(time.Second))
	}
	return false, ""
}
