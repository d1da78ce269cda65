package media

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// Progress is one parsed progress report from a running engine process.
type Progress struct {
	OutTimeSec float64
	Frame      int64
	Speed      string
	Done       bool
}

// Process is a spawned engine process. It runs in its own process group so a
// cancellation kill reaches the whole process tree, including anything the
// engine forks.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	killOnce sync.Once
}

// StartProcess launches the binary with the given arguments. Stdout carries
// the engine's machine-readable progress stream; stderr carries log lines.
func StartProcess(binary string, args []string) (*Process, error) {
	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}
	return &Process{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

// PID returns the process ID.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Kill forcibly terminates the whole process group with SIGKILL. The signal
// cannot be caught or ignored, so termination is bounded. Safe to call from
// any goroutine and more than once.
func (p *Process) Kill() {
	p.killOnce.Do(func() {
		// Negative pid addresses the process group.
		_ = unix.Kill(-p.cmd.Process.Pid, unix.SIGKILL)
	})
}

// Stream consumes the process output until exit. Progress records parsed
// from stdout go to onProgress; stderr lines go to onLog. The cancelled
// callback is polled between lines; once it reports true the process group
// is killed and Stream returns the resulting exit error. Either callback may
// be nil.
func (p *Process) Stream(cancelled func() bool, onProgress func(Progress), onLog func(string)) error {
	if cancelled == nil {
		cancelled = func() bool { return false }
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		p.scanProgress(cancelled, onProgress)
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(p.stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if cancelled() {
				p.Kill()
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line != "" && onLog != nil {
				onLog(line)
			}
		}
		_, _ = io.Copy(io.Discard, p.stderr)
	}()

	wg.Wait()
	return p.cmd.Wait()
}

// scanProgress parses the engine's key=value progress stream. Records are
// delimited by "progress=continue" / "progress=end" lines; the fields seen
// since the previous delimiter form one report.
func (p *Process) scanProgress(cancelled func() bool, onProgress func(Progress)) {
	scanner := bufio.NewScanner(p.stdout)
	var current Progress
	for scanner.Scan() {
		if cancelled() {
			p.Kill()
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			if us, err := strconv.ParseInt(value, 10, 64); err == nil {
				current.OutTimeSec = float64(us) / 1e6
			}
		case "frame":
			if frame, err := strconv.ParseInt(value, 10, 64); err == nil {
				current.Frame = frame
			}
		case "speed":
			current.Speed = strings.TrimSpace(value)
		case "progress":
			current.Done = value == "end"
			if onProgress != nil {
				onProgress(current)
			}
			current = Progress{}
		}
	}
	_, _ = io.Copy(io.Discard, p.stdout)
}
