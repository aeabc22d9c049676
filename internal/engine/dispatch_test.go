package engine

import (
	"testing"

	"github.com/ljufa/rsplayer-sub001/internal/model"
)

func TestDispatchRoutesSeekToEngine(t *testing.T) {
	e, _ := newTestEngine(t)
	d := NewDispatcher(e)

	if err := d.Dispatch(model.Command{Kind: model.CmdSeek, SeekOffset: 5}); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported from Seek, got %v", err)
	}
}

func TestDispatchRoutesSystemCommandsAsUnsupported(t *testing.T) {
	e, _ := newTestEngine(t)
	d := NewDispatcher(e)

	if err := d.Dispatch(model.Command{Kind: model.CmdVolUp}); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported for a system command, got %v", err)
	}
}

func TestDispatchCoalescesDuplicatePlayItem(t *testing.T) {
	e, _ := newTestEngine(t)
	d := NewDispatcher(e)

	cmd := model.Command{Kind: model.CmdPlayItem, ID: "missing-song"}
	if err := d.Dispatch(cmd); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	// Queue the song only now: a second, identical PlayItem delivered
	// back-to-back is coalesced into a no-op, so it must not find the song
	// and start playback.
	if err := e.queue.Add(model.NewSong("missing-song", "/nonexistent/track.mp3")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := d.Dispatch(cmd); err != nil {
		t.Fatalf("duplicate dispatch: %v", err)
	}
	if e.State() != model.StateIdle {
		t.Fatalf("expected the duplicate PlayItem to be coalesced, engine is %v", e.State())
	}
}

func TestDispatchDoesNotCoalesceDifferentIDs(t *testing.T) {
	e, _ := newTestEngine(t)
	d := NewDispatcher(e)

	if err := d.Dispatch(model.Command{Kind: model.CmdPlayItem, ID: "a"}); err != nil {
		t.Fatalf("dispatch a: %v", err)
	}
	if err := d.Dispatch(model.Command{Kind: model.CmdPlayItem, ID: "b"}); err != nil {
		t.Fatalf("dispatch b: %v", err)
	}
}
