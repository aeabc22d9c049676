package queue

import "testing"

func TestStopResetsLastPlayedProgressToZero(t *testing.T) {
	ps, err := OpenPlayerState(t.TempDir())
	if err != nil {
		t.Fatalf("OpenPlayerState: %v", err)
	}
	defer ps.Close()

	if err := ps.SetLastPlayedProgress(30); err != nil {
		t.Fatalf("SetLastPlayedProgress: %v", err)
	}
	if err := ps.ResetLastPlayedProgress(); err != nil {
		t.Fatalf("ResetLastPlayedProgress: %v", err)
	}
	got, err := ps.LastPlayedProgress()
	if err != nil {
		t.Fatalf("LastPlayedProgress: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected progress reset to 0, got %v", got)
	}
}

func TestLastPlayedProgressDefaultsToZero(t *testing.T) {
	ps, err := OpenPlayerState(t.TempDir())
	if err != nil {
		t.Fatalf("OpenPlayerState: %v", err)
	}
	defer ps.Close()

	got, err := ps.LastPlayedProgress()
	if err != nil {
		t.Fatalf("LastPlayedProgress: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected default 0, got %v", got)
	}
}
