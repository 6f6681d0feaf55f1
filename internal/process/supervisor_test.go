package process

import (
	"sync"
	"testing"
	"time"
)

type transition struct {
	old, new State
	err      error
}

type transitionRecorder struct {
	mu   sync.Mutex
	seen []transition
}

func (r *transitionRecorder) record(_ string, old, new State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, transition{old, new, err})
}

func (r *transitionRecorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, 0, len(r.seen))
	for _, tr := range r.seen {
		out = append(out, tr.new)
	}
	return out
}

func newTestSupervisor(t *testing.T, command string, rec *transitionRecorder) *Supervisor {
	t.Helper()
	args, err := SplitCommand(command)
	if err != nil {
		t.Fatalf("split %q: %v", command, err)
	}
	opts := &SupervisorOptions{
		ID:              "mcp",
		Args:            args,
		GracefulTimeout: 200 * time.Millisecond,
		KillTimeout:     500 * time.Millisecond,
		Logger:          testLogger(),
	}
	if rec != nil {
		opts.OnStateChange = rec.record
	}
	sup := NewSupervisor(opts)
	t.Cleanup(sup.Stop)
	return sup
}

// waitForState polls until the supervisor reaches want or the timeout expires.
func waitForState(t *testing.T, sup *Supervisor, want State, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if sup.Info().State == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for state %s, last state %s", want, sup.Info().State)
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSupervisorStartStop(t *testing.T) {
	rec := &transitionRecorder{}
	sup := newTestSupervisor(t, "sleep 10", rec)

	if sup.Alive() {
		t.Fatal("expected not alive before start")
	}
	if err := sup.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !sup.Alive() {
		t.Fatal("expected alive after start")
	}

	info := sup.Info()
	if info.State != StateRunning || info.PID == 0 || info.StartedAt.IsZero() {
		t.Errorf("unexpected info while running: %+v", info)
	}

	sup.Stop()
	if sup.Alive() {
		t.Error("expected not alive after stop")
	}

	info = sup.Info()
	if info.State != StateIdle {
		t.Errorf("expected idle after stop, got %s", info.State)
	}
	if info.ExitCode == nil || *info.ExitCode != 143 {
		t.Errorf("expected exit code 143, got %v", info.ExitCode)
	}
	if info.PID != 0 {
		t.Errorf("expected no pid after stop, got %d", info.PID)
	}

	want := []State{StateStarting, StateRunning, StateStopping, StateIdle}
	if got := rec.states(); !equalStates(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
}

func TestSupervisorStopIdempotent(t *testing.T) {
	sup := newTestSupervisor(t, "sleep 10", nil)

	sup.Stop() // before start: no-op
	if err := sup.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sup.Stop()
		}()
	}
	wg.Wait()
	sup.Stop()

	if sup.Alive() {
		t.Error("expected not alive")
	}
}

func TestSupervisorLaunchFailure(t *testing.T) {
	rec := &transitionRecorder{}
	sup := newTestSupervisor(t, "nonexistent_command_xyz mcp", rec)

	if err := sup.Start(); err == nil {
		t.Fatal("expected launch error")
	}
	if sup.Alive() {
		t.Error("expected not alive after failed launch")
	}

	info := sup.Info()
	if info.State != StateError || info.LastError == nil || info.PID != 0 {
		t.Errorf("unexpected info after failed launch: %+v", info)
	}

	sup.Stop() // must not panic without a handle

	want := []State{StateStarting, StateError}
	if got := rec.states(); !equalStates(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
}

func TestSupervisorUnexpectedExit(t *testing.T) {
	sup := newTestSupervisor(t, "sh -c 'sleep 0.1; exit 3'", nil)

	if err := sup.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitForState(t, sup, StateError, 2*time.Second)

	if sup.Alive() {
		t.Error("expected not alive after exit")
	}
	info := sup.Info()
	if info.ExitCode == nil || *info.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %v", info.ExitCode)
	}
	if info.LastError == nil {
		t.Error("expected last error to be set")
	}
}

func TestSupervisorCleanExit(t *testing.T) {
	sup := newTestSupervisor(t, "true", nil)

	if err := sup.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitForState(t, sup, StateIdle, 2*time.Second)

	if info := sup.Info(); info.LastError != nil {
		t.Errorf("expected no error on clean exit, got %v", info.LastError)
	}
}

func TestSupervisorForceKill(t *testing.T) {
	sup := newTestSupervisor(t, `sh -c "trap '' TERM; sleep 10"`, nil)

	if err := sup.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	sup.Stop()
	info := sup.Info()
	if info.ExitCode == nil || *info.ExitCode != 137 {
		t.Errorf("expected exit code 137, got %v", info.ExitCode)
	}
	if info.State != StateIdle {
		t.Errorf("expected idle after stop, got %s", info.State)
	}
}

func TestSupervisorStartWhileRunning(t *testing.T) {
	sup := newTestSupervisor(t, "sleep 10", nil)

	if err := sup.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sup.Start(); err == nil {
		t.Error("expected error starting a running supervisor")
	}
}

func TestSupervisorRestart(t *testing.T) {
	sup := newTestSupervisor(t, "sleep 10", nil)

	if err := sup.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	firstPID := sup.Info().PID

	if err := sup.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !sup.Alive() {
		t.Fatal("expected alive after restart")
	}
	if pid := sup.Info().PID; pid == firstPID || pid == 0 {
		t.Errorf("expected a new pid, got %d (was %d)", pid, firstPID)
	}
}

func TestNewSupervisorRequiresArgs(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic without args")
		}
	}()
	NewSupervisor(&SupervisorOptions{ID: "mcp"})
}
