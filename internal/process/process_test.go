package process

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestProcess creates a Process with short timeouts for testing.
func newTestProcess(t *testing.T, command string) *Process {
	t.Helper()
	args, err := SplitCommand(command)
	if err != nil {
		t.Fatalf("split %q: %v", command, err)
	}
	p := NewProcess("test", args, testLogger())
	p.SetTimeouts(100*time.Millisecond, 100*time.Millisecond)
	return p
}

// runAsync runs the process's Run method in a goroutine and returns exit code channel.
func runAsync(ctx context.Context, p *Process) <-chan int {
	done := make(chan int, 1)
	go func() {
		done <- p.Run(ctx)
	}()
	return done
}

// waitForExit waits for exit code with timeout, fails test on timeout.
func waitForExit(t *testing.T, done <-chan int, timeout time.Duration) int {
	t.Helper()
	select {
	case exitCode := <-done:
		return exitCode
	case <-time.After(timeout):
		t.Fatal("timeout waiting for process to exit")
		return -1
	}
}

func TestGracefulShutdown(t *testing.T) {
	// Process that handles SIGTERM
	p := newTestProcess(t, `sh -c "trap 'exit 0' TERM; while :; do sleep 0.1; done"`)
	p.SetTimeouts(500*time.Millisecond, 0)

	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if exitCode := p.Stop(); exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !p.Exited() {
		t.Error("expected process to have exited")
	}
}

func TestForceKillOnTimeout(t *testing.T) {
	// Process that ignores SIGTERM
	p := newTestProcess(t, `sh -c "trap '' TERM; sleep 10"`)
	p.SetTimeouts(50*time.Millisecond, 500*time.Millisecond)

	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	// Process was killed, expect 137 (128 + 9 for SIGKILL)
	if exitCode := p.Stop(); exitCode != 137 {
		t.Errorf("expected exit code 137, got %d", exitCode)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("stop took too long: %v", elapsed)
	}
}

func TestDefaultSigtermExitCode(t *testing.T) {
	p := newTestProcess(t, "sleep 10")
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Terminated by SIGTERM: 128 + 15
	if exitCode := p.Stop(); exitCode != 143 {
		t.Errorf("expected exit code 143, got %d", exitCode)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p := newTestProcess(t, "sleep 10")
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	codes := make([]int, 3)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = p.Stop()
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != codes[0] {
			t.Errorf("stop %d returned %d, want %d", i, code, codes[0])
		}
	}
	if again := p.Stop(); again != codes[0] {
		t.Errorf("repeated stop returned %d, want %d", again, codes[0])
	}
}

func TestStopBeforeStart(t *testing.T) {
	p := newTestProcess(t, "sleep 10")
	if exitCode := p.Stop(); exitCode != -1 {
		t.Errorf("expected -1 before start, got %d", exitCode)
	}
	if p.PID() != 0 {
		t.Errorf("expected pid 0 before start, got %d", p.PID())
	}
}

func TestStdinHeldOpen(t *testing.T) {
	// cat exits on EOF; it must keep running until Stop closes stdin.
	p := newTestProcess(t, "cat")
	p.SetTimeouts(time.Second, 0)
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if p.Exited() {
		t.Fatal("process exited while stdin was open")
	}

	p.Stop()
	if !p.Exited() {
		t.Error("expected process to have exited after stop")
	}
}

func TestContextCancellation(t *testing.T) {
	p := newTestProcess(t, "sleep 10")
	ctx, cancel := context.WithCancel(context.Background())

	done := runAsync(ctx, p)
	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	cancel()

	waitForExit(t, done, time.Second)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("shutdown took too long: %v", elapsed)
	}
}

func TestProcessAlreadyExited(t *testing.T) {
	p := newTestProcess(t, "true")
	done := runAsync(context.Background(), p)

	if exitCode := waitForExit(t, done, time.Second); exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
	if !p.Exited() {
		t.Error("expected Exited after Run returned")
	}
	if exitCode := p.Stop(); exitCode != 0 {
		t.Errorf("stop after exit: expected 0, got %d", exitCode)
	}
}

func TestRunWithEmptyCommand(t *testing.T) {
	p := NewProcess("test", nil, testLogger())
	if exitCode := p.Run(context.Background()); exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
}

func TestProcessExitWithError(t *testing.T) {
	p := newTestProcess(t, "sh -c 'exit 42'")
	if exitCode := p.Run(context.Background()); exitCode != 42 {
		t.Errorf("expected exit code 42, got %d", exitCode)
	}
}

func TestRunWithNonExistentCommand(t *testing.T) {
	p := newTestProcess(t, "nonexistent_command_xyz")
	if exitCode := p.Run(context.Background()); exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if p.Exited() {
		t.Error("a process that never started must not report Exited")
	}
}

func TestStartTwice(t *testing.T) {
	p := newTestProcess(t, "sleep 10")
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer p.Stop()

	if err := p.Start(); err == nil {
		t.Error("expected error on second start")
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []string
		wantErr bool
	}{
		{"simple", "ledmcp mcp", []string{"ledmcp", "mcp"}, false},
		{"escaped space", `echo hello\ world`, []string{"echo", "hello world"}, false},
		{"double quotes", `sh -c "echo hi"`, []string{"sh", "-c", "echo hi"}, false},
		{"nested quotes", `sh -c "trap 'exit 0' TERM"`, []string{"sh", "-c", "trap 'exit 0' TERM"}, false},
		{"extra whitespace", "  a \t b  ", []string{"a", "b"}, false},
		{"empty", "", nil, false},
		{"unclosed", `echo "oops`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitCommand(tt.command)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitCommand(%q) error = %v, wantErr %v", tt.command, err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SplitCommand(%q) = %q, want %q", tt.command, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("arg %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStreamOutputLogLevels(t *testing.T) {
	cmd := `echo "level=ERROR msg=boom" && echo "level=WARN msg=careful" >&2 && echo "plain message"`
	p := newTestProcess(t, "sh -c '"+cmd+"'")

	var mu sync.Mutex
	levels := map[string]string{}
	p.SetLogParser(testLogger(), func(line string) (string, string) {
		level := "info"
		switch {
		case len(line) > 12 && line[:12] == "level=ERROR ":
			level = "error"
		case len(line) > 11 && line[:11] == "level=WARN ":
			level = "warning"
		}
		mu.Lock()
		levels[line] = level
		mu.Unlock()
		return level, line
	})

	if exitCode := p.Run(context.Background()); exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(levels) != 3 {
		t.Errorf("expected 3 parsed lines, got %d: %v", len(levels), levels)
	}
	if levels["level=ERROR msg=boom"] != "error" {
		t.Errorf("unexpected levels: %v", levels)
	}
}

func TestOutputHandler(t *testing.T) {
	handler := &testOutputHandler{}

	args, _ := SplitCommand(`sh -c "echo line1; echo line2 >&2"`)
	p := NewProcessWithOutput("test", args, testLogger(), handler)
	p.SetTimeouts(100*time.Millisecond, 100*time.Millisecond)

	if exitCode := p.Run(context.Background()); exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(handler.lines), handler.lines)
	}
	if handler.sources["line1"] != "stdout" || handler.sources["line2"] != "stderr" {
		t.Errorf("unexpected sources: %v", handler.sources)
	}
}

type testOutputHandler struct {
	mu      sync.Mutex
	lines   []string
	sources map[string]string
}

func (h *testOutputHandler) HandleLine(source, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sources == nil {
		h.sources = map[string]string{}
	}
	h.lines = append(h.lines, line)
	h.sources[line] = source
}
