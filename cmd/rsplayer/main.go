// Command rsplayer is the entry point for the embedded playback engine: it
// wires the Playback Queue, DSP shared state, Engine Facade, Status
// Monitor, and the local TUI control-plane stand-in, then seeds the queue
// from its file arguments.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/ljufa/rsplayer-sub001/internal/dsp"
	"github.com/ljufa/rsplayer-sub001/internal/engine"
	"github.com/ljufa/rsplayer-sub001/internal/model"
	"github.com/ljufa/rsplayer-sub001/internal/monitor"
	"github.com/ljufa/rsplayer-sub001/internal/queue"
	"github.com/ljufa/rsplayer-sub001/internal/tui"
)

func run() error {
	dataDir := flag.String("data-dir", defaultDataDir(), "directory for the queue/player-state databases")
	musicRoot := flag.String("music-root", "", "root directory relative paths are resolved against")
	audioDevice := flag.String("device", "default", "audio output device name")
	autoplay := flag.Bool("autoplay", false, "start playing immediately")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rsplayer [flags] <file-or-url> [file-or-url ...]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}

	cfg := model.NewConfig(*musicRoot, *dataDir, *dataDir, *dataDir, *audioDevice, 4)

	q, err := queue.Open(cfg.QueueDBDir)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	defer q.Close()

	ps, err := queue.OpenPlayerState(cfg.PlayerStateDBDir)
	if err != nil {
		return fmt.Errorf("open player state: %w", err)
	}
	defer ps.Close()

	for _, f := range files {
		if err := q.Add(model.NewSong("", f)); err != nil {
			return fmt.Errorf("seed queue with %q: %w", f, err)
		}
	}

	shared := dsp.NewSharedState(model.DSPSettings{})
	events := model.NewBroadcaster[model.StateChangeEvent]()
	eng := engine.New(q, ps, shared, events, cfg, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mon := monitor.New(q, eng, events, 0)
	go mon.Run(ctx)

	if *autoplay && len(files) > 0 {
		if err := eng.Play(); err != nil {
			log.Error("autoplay failed", "err", err)
		}
	}

	prog, unsub := tui.NewProgram(eng, q, events)
	defer unsub()

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	// Exiting the TUI is an orderly shutdown, not a user Stop: the current
	// track position is persisted for resume rather than reset to zero.
	return eng.Shutdown()
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "rsplayer")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
