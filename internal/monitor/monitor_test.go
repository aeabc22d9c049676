package monitor

import (
	"testing"
	"time"

	"github.com/ljufa/rsplayer-sub001/internal/dsp"
	"github.com/ljufa/rsplayer-sub001/internal/engine"
	"github.com/ljufa/rsplayer-sub001/internal/model"
	"github.com/ljufa/rsplayer-sub001/internal/queue"
)

func newTestMonitor(t *testing.T) (*Monitor, *queue.Queue, *model.Broadcaster[model.StateChangeEvent]) {
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
	eng := engine.New(q, ps, shared, events, cfg, nil)

	return New(q, eng, events, time.Hour), q, events
}

func drainAny(t *testing.T, ch <-chan model.StateChangeEvent, kind model.EventKind, timeout time.Duration) model.StateChangeEvent {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %v", kind)
		}
	}
}

func TestPollPublishesCurrentSongOnceAddedToEmptyQueue(t *testing.T) {
	m, q, events := newTestMonitor(t)
	ch, unsub := events.Subscribe(16)
	defer unsub()

	song := model.NewSong("", "track.mp3")
	if err := q.Add(song); err != nil {
		t.Fatalf("Add: %v", err)
	}

	m.poll()

	ev := drainAny(t, ch, model.EventCurrentSong, time.Second)
	if ev.Song.ID != song.ID {
		t.Fatalf("expected song %s, got %s", song.ID, ev.Song.ID)
	}
}

func TestPollDoesNotRepublishUnchangedSnapshot(t *testing.T) {
	m, q, events := newTestMonitor(t)
	ch, unsub := events.Subscribe(16)
	defer unsub()

	if err := q.Add(model.NewSong("", "track.mp3")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	m.poll()
	drainAny(t, ch, model.EventCurrentSong, time.Second)
	// The first poll also published the queue summary, player info and
	// progress; discard them so only the second poll's output remains.
	for len(ch) > 0 {
		<-ch
	}

	m.poll() // nothing changed
	select {
	case ev := <-ch:
		t.Fatalf("expected no further events, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollPublishesQueueSummaryOnLengthChange(t *testing.T) {
	m, q, events := newTestMonitor(t)
	ch, unsub := events.Subscribe(16)
	defer unsub()

	if err := q.Add(model.NewSong("", "a.mp3")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	m.poll()
	ev := drainAny(t, ch, model.EventCurrentQueue, time.Second)
	if ev.Queue.Length != 1 || ev.Queue.CurrentIndex != 0 {
		t.Fatalf("unexpected summary: %+v", ev.Queue)
	}

	if err := q.Add(model.NewSong("", "b.mp3")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	m.poll()
	ev = drainAny(t, ch, model.EventCurrentQueue, time.Second)
	if ev.Queue.Length != 2 {
		t.Fatalf("expected length 2, got %+v", ev.Queue)
	}
}
