package media_test

import (
	"sync/atomic"
	"testing"
	"time"

	"clipforge/internal/media"
)

func TestStreamParsesProgressAndLogs(t *testing.T) {
	script := `
printf 'frame=25\nout_time_us=1000000\nspeed=1.2x\nprogress=continue\n'
printf 'frame=50\nout_time_us=2000000\nspeed=1.1x\nprogress=end\n'
printf 'some engine warning\n' >&2
`
	proc, err := media.StartProcess("/bin/sh", []string{"-c", script})
	if err != nil {
		t.Fatalf("StartProcess failed: %v", err)
	}

	var progress []media.Progress
	var logs []string
	err = proc.Stream(nil,
		func(p media.Progress) { progress = append(progress, p) },
		func(line string) { logs = append(logs, line) })
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	if len(progress) != 2 {
		t.Fatalf("expected 2 progress records, got %d", len(progress))
	}
	if progress[0].OutTimeSec != 1.0 || progress[0].Frame != 25 || progress[0].Done {
		t.Fatalf("unexpected first record: %+v", progress[0])
	}
	if !progress[1].Done || progress[1].OutTimeSec != 2.0 {
		t.Fatalf("unexpected final record: %+v", progress[1])
	}
	if len(logs) != 1 || logs[0] != "some engine warning" {
		t.Fatalf("unexpected logs: %v", logs)
	}
}

func TestStreamNonZeroExit(t *testing.T) {
	proc, err := media.StartProcess("/bin/sh", []string{"-c", "echo boom >&2; exit 3"})
	if err != nil {
		t.Fatalf("StartProcess failed: %v", err)
	}
	if err := proc.Stream(nil, nil, nil); err == nil {
		t.Fatal("expected exit error")
	}
}

func TestCancellationKillsProcess(t *testing.T) {
	// The child prints a line then sleeps far longer than the test budget;
	// the poll between lines must kill it.
	proc, err := media.StartProcess("/bin/sh", []string{"-c", "echo started >&2; echo x=1; sleep 60; echo y=2"})
	if err != nil {
		t.Fatalf("StartProcess failed: %v", err)
	}

	var cancelled atomic.Bool
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancelled.Store(true)
		proc.Kill()
	}()

	done := make(chan error, 1)
	go func() {
		done <- proc.Stream(cancelled.Load, nil, nil)
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected kill to surface as an exit error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not return after kill")
	}
}
