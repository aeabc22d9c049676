package ring

import (
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestReadNeverOutrunsWrites(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 64).Draw(t, "capacity")
		chunks := rapid.SliceOfN(rapid.SliceOfN(rapid.Int32Range(0, 1000), 1, 16), 1, 8).Draw(t, "chunks")

		r := New[int32](capacity)
		total := 0
		for _, c := range chunks {
			total += len(c)
		}
		var written []int32
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, c := range chunks {
				r.WriteBlocking(c)
				written = append(written, c...)
			}
		}()

		var readBack []int32
		deadline := time.Now().Add(2 * time.Second)
		for len(readBack) < total && time.Now().Before(deadline) {
			buf := make([]int32, capacity)
			n := r.Read(buf)
			readBack = append(readBack, buf[:n]...)
			if n == 0 {
				time.Sleep(time.Millisecond)
			}
		}
		wg.Wait()
		// Drain anything produced after the loop's last check.
		for {
			buf := make([]int32, capacity)
			n := r.Read(buf)
			if n == 0 {
				break
			}
			readBack = append(readBack, buf[:n]...)
		}

		if len(readBack) != len(written) {
			t.Fatalf("read %d samples, wrote %d", len(readBack), len(written))
		}
		for i := range written {
			if readBack[i] != written[i] {
				t.Fatalf("sample %d: got %d want %d", i, readBack[i], written[i])
			}
		}
	})
}

func TestReadNonBlockingOnEmpty(t *testing.T) {
	r := New[float32](4)
	buf := make([]float32, 4)
	n := r.Read(buf)
	if n != 0 {
		t.Fatalf("expected 0 samples from empty ring, got %d", n)
	}
}

func TestCloseUnblocksWriter(t *testing.T) {
	r := New[int16](2)
	r.WriteBlocking([]int16{1, 2}) // fill capacity

	done := make(chan int)
	go func() {
		done <- r.WriteBlocking([]int16{3, 4, 5})
	}()

	time.Sleep(20 * time.Millisecond)
	r.Close()

	select {
	case n := <-done:
		if n != 0 {
			t.Fatalf("expected 0 written after close, got %d", n)
		}
	case <-time.After(time.Second):
		t.Fatal("WriteBlocking did not unblock after Close")
	}
}
