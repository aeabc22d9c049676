package engine

import (
	"testing"
	"time"

	"github.com/ljufa/rsplayer-sub001/internal/dsp"
	"github.com/ljufa/rsplayer-sub001/internal/model"
	"github.com/ljufa/rsplayer-sub001/internal/queue"
)

func newTestEngine(t *testing.T) (*Engine, *model.Broadcaster[model.StateChangeEvent]) {
	t.Helper()
	dir := t.TempDir()
	q, err := queue.Open(dir)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() { q.Close() })

	ps, err := queue.OpenPlayerState(dir)
	if err != nil {
		t.Fatalf("OpenPlayerState: %v", err)
	}
	t.Cleanup(func() { ps.Close() })

	shared := dsp.NewSharedState(model.DSPSettings{})
	events := model.NewBroadcaster[model.StateChangeEvent]()
	cfg := model.NewConfig(dir, dir, dir, dir, "default", 4)

	return New(q, ps, shared, events, cfg, nil), events
}

func waitForState(t *testing.T, e *Engine, want model.EngineState, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if e.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v, got %v", want, e.State())
}

func TestPlayEmptyQueueGoesIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	waitForState(t, e, model.StateIdle, time.Second)
}

func TestBadFilePublishesErrorAndGoesIdle(t *testing.T) {
	e, events := newTestEngine(t)
	ch, unsub := events.Subscribe(4)
	defer unsub()

	if err := e.queue.Add(model.NewSong("", "/nonexistent/track.mp3")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Kind != model.EventError {
			t.Fatalf("expected an error event, got kind %v", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error event")
	}
	waitForState(t, e, model.StateIdle, time.Second)
}

func TestStopResetsProgressAndPersistedKey(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.Store(int32(model.StatePlaying))
	e.timeCell.Store(model.SongProgress{TotalSeconds: 180, CurrentSeconds: 42})
	if err := e.playerState.SetLastPlayedProgress(42); err != nil {
		t.Fatalf("SetLastPlayedProgress: %v", err)
	}

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if got := e.GetSongProgress(); got.CurrentSeconds != 0 || got.TotalSeconds != 0 {
		t.Fatalf("expected progress reset to zero, got %+v", got)
	}
	persisted, err := e.playerState.LastPlayedProgress()
	if err != nil {
		t.Fatalf("LastPlayedProgress: %v", err)
	}
	if persisted != 0 {
		t.Fatalf("expected persisted progress 0, got %v", persisted)
	}
	if e.State() != model.StateIdle {
		t.Fatalf("expected Idle after Stop, got %v", e.State())
	}
}

func TestShutdownPersistsCurrentPositionInsteadOfResetting(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.Store(int32(model.StatePlaying))
	e.timeCell.Store(model.SongProgress{TotalSeconds: 180, CurrentSeconds: 42})

	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if got := e.GetSongProgress(); got.CurrentSeconds != 0 {
		t.Fatalf("expected in-memory progress reset to zero, got %+v", got)
	}
	persisted, err := e.playerState.LastPlayedProgress()
	if err != nil {
		t.Fatalf("LastPlayedProgress: %v", err)
	}
	if persisted != 42 {
		t.Fatalf("expected persisted progress 42, got %v", persisted)
	}
	if e.State() != model.StateIdle {
		t.Fatalf("expected Idle after Shutdown, got %v", e.State())
	}
}

func TestShutdownWhileIdleIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.playerState.SetLastPlayedProgress(17); err != nil {
		t.Fatalf("SetLastPlayedProgress: %v", err)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	persisted, err := e.playerState.LastPlayedProgress()
	if err != nil {
		t.Fatalf("LastPlayedProgress: %v", err)
	}
	if persisted != 17 {
		t.Fatalf("expected Shutdown on an idle engine to leave persisted progress untouched, got %v", persisted)
	}
}

func TestPrevBeyondThresholdRestartsInsteadOfMovingBack(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.Store(int32(model.StatePlaying))
	e.timeCell.Store(model.SongProgress{TotalSeconds: 180, CurrentSeconds: 10})

	if err := e.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if got := skipDirection(e.skipDir.Load()); got != skipRestart {
		t.Fatalf("expected skipRestart beyond threshold, got %v", got)
	}
}

func TestPrevWithinThresholdMovesBack(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.Store(int32(model.StatePlaying))
	e.timeCell.Store(model.SongProgress{TotalSeconds: 180, CurrentSeconds: 1})

	if err := e.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if got := skipDirection(e.skipDir.Load()); got != skipPrev {
		t.Fatalf("expected skipPrev within threshold, got %v", got)
	}
}

func TestPrevNoopWhenIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if got := skipDirection(e.skipDir.Load()); got != skipNone {
		t.Fatalf("expected no skip requested while idle, got %v", got)
	}
}

func TestSeekIsUnsupported(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Seek(5); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestAddSongToQueueWithoutMetadataResolverIsUnsupported(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.AddSongToQueue("abc"); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestLoadPlaylistMissingIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.LoadPlaylist("does-not-exist"); err != nil {
		t.Fatalf("LoadPlaylist: %v", err)
	}
	if e.State() != model.StateIdle {
		t.Fatalf("expected to stay idle, got %v", e.State())
	}
}
