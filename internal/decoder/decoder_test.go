package decoder

import (
	"sync/atomic"
	"testing"

	"github.com/ljufa/rsplayer-sub001/internal/dsp"
	"github.com/ljufa/rsplayer-sub001/internal/model"
)

func TestPlayFileMissingSourceReturnsErrOutcome(t *testing.T) {
	var run, pause atomic.Bool
	run.Store(true)
	var tc TimeCell
	var cc CodecCell
	shared := dsp.NewSharedState(model.DSPSettings{})

	outcome := PlayFile("/no/such/file.mp3", &run, &pause, &tc, &cc, "default", 4, "", shared, nil)
	if outcome.Kind != Err {
		t.Fatalf("expected Err outcome for a missing source, got %v", outcome.Kind)
	}
	if outcome.Message == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestPlayFileOpensSourceBeforeCheckingRunFlag(t *testing.T) {
	var run, pause atomic.Bool
	// run starts false: PlayFile should still attempt to open the source
	// first, so a missing file still yields Err rather than PlaybackStopped.
	var tc TimeCell
	var cc CodecCell
	shared := dsp.NewSharedState(model.DSPSettings{})

	outcome := PlayFile("/no/such/file.mp3", &run, &pause, &tc, &cc, "default", 4, "", shared, nil)
	if outcome.Kind != Err {
		t.Fatalf("expected Err outcome, got %v", outcome.Kind)
	}
}
