package process

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/ledmcp/internal/logging"
)

// StateChangeCallback is called when a supervised process changes state.
// err carries the launch or exit error when new is StateError.
type StateChangeCallback func(id string, old, new State, err error)

// Configurer customizes a Process before it is started.
type Configurer func(p *Process)

// SupervisorOptions configures a Supervisor.
type SupervisorOptions struct {
	// ID names the supervised process in logs and events.
	ID string
	// Args is the argv of the child; Args[0] is the executable.
	Args []string

	GracefulTimeout time.Duration // default DefaultGracefulTimeout
	KillTimeout     time.Duration // default DefaultKillTimeout

	OnStateChange    StateChangeCallback
	ConfigureProcess Configurer
	Logger           logging.Logger
}

// Supervisor owns a single child process for the lifetime of its caller.
// It never restarts the child on its own.
type Supervisor struct {
	opts   SupervisorOptions
	logger logging.Logger

	mu        sync.RWMutex
	proc      *Process
	state     State
	startedAt time.Time
	exitCode  *int
	lastError error
	watchDone chan struct{}
}

// NewSupervisor creates a supervisor in the idle state.
// Panics if opts is nil or has no Args.
func NewSupervisor(opts *SupervisorOptions) *Supervisor {
	if opts == nil || len(opts.Args) == 0 {
		panic("process: SupervisorOptions with Args is required")
	}

	o := *opts
	o.Args = append([]string(nil), opts.Args...)
	if o.ID == "" {
		o.ID = "process"
	}
	if o.GracefulTimeout <= 0 {
		o.GracefulTimeout = DefaultGracefulTimeout
	}
	if o.KillTimeout <= 0 {
		o.KillTimeout = DefaultKillTimeout
	}

	logger := o.Logger
	if logger == nil {
		logger = logging.GetLogger("process")
	}

	return &Supervisor{
		opts:   o,
		logger: logger,
		state:  StateIdle,
	}
}

// Start launches the child. A launch failure leaves no handle behind, moves
// the supervisor to StateError and is returned; it is not retried.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	switch s.state {
	case StateStarting, StateRunning, StateStopping:
		s.mu.Unlock()
		return fmt.Errorf("process %s already %s", s.opts.ID, s.state)
	}
	old := s.state
	s.state = StateStarting
	s.mu.Unlock()
	s.notify(old, StateStarting, nil)

	proc := NewProcess(s.opts.ID, s.opts.Args, s.logger)
	proc.SetTimeouts(s.opts.GracefulTimeout, s.opts.KillTimeout)
	if s.opts.ConfigureProcess != nil {
		s.opts.ConfigureProcess(proc)
	}

	if err := proc.Start(); err != nil {
		err = fmt.Errorf("launch %s: %w", strings.Join(s.opts.Args, " "), err)
		s.mu.Lock()
		s.proc = nil
		s.state = StateError
		s.lastError = err
		s.exitCode = nil
		s.mu.Unlock()

		s.logger.Error("Failed to launch process", "id", s.opts.ID, "error", err)
		s.notify(StateStarting, StateError, err)
		return err
	}

	watch := make(chan struct{})
	s.mu.Lock()
	s.proc = proc
	s.state = StateRunning
	s.startedAt = time.Now()
	s.exitCode = nil
	s.lastError = nil
	s.watchDone = watch
	s.mu.Unlock()

	s.notify(StateStarting, StateRunning, nil)
	go s.watch(proc, watch)
	return nil
}

// watch records the child's exit and updates state.
func (s *Supervisor) watch(proc *Process, done chan struct{}) {
	defer close(done)
	<-proc.Done()
	code := proc.ExitCode()

	s.mu.Lock()
	if s.proc != proc {
		s.mu.Unlock()
		return
	}
	old := s.state
	switch {
	case old == StateStopping:
		s.state = StateIdle
	case code != 0:
		s.state = StateError
		s.lastError = fmt.Errorf("process exited with code %d", code)
	default:
		s.state = StateIdle
	}
	s.exitCode = &code
	newState, lastErr := s.state, s.lastError
	s.mu.Unlock()

	switch {
	case old == StateStopping:
		s.logger.Info("Process stopped", "id", s.opts.ID, "exit_code", code)
	case code != 0:
		s.logger.Error("Process exited unexpectedly", "id", s.opts.ID, "exit_code", code)
	default:
		s.logger.Warn("Process exited", "id", s.opts.ID, "exit_code", code)
	}

	var err error
	if newState == StateError {
		err = lastErr
	}
	s.notify(old, newState, err)
}

// Stop terminates the child if it is running and waits for it to be reaped.
// Calling Stop on an idle, failed or already stopped supervisor is a no-op.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	proc := s.proc
	state := s.state
	watch := s.watchDone
	if proc == nil || (state != StateRunning && state != StateStopping) {
		s.mu.Unlock()
		return
	}
	if state == StateRunning {
		s.state = StateStopping
	}
	s.mu.Unlock()

	if state == StateRunning {
		s.notify(StateRunning, StateStopping, nil)
		s.logger.Info("Stopping process", "id", s.opts.ID, "pid", proc.PID())
	}

	proc.Stop()

	select {
	case <-watch:
	case <-time.After(s.opts.KillTimeout):
		s.logger.Error("Timed out waiting for process exit", "id", s.opts.ID)
	}
}

// Restart stops the child if running and starts a fresh one.
func (s *Supervisor) Restart() error {
	s.Stop()
	return s.Start()
}

// Alive reports whether the child is running and has not exited.
func (s *Supervisor) Alive() bool {
	s.mu.RLock()
	proc, state := s.proc, s.state
	s.mu.RUnlock()
	return proc != nil && state == StateRunning && !proc.Exited()
}

// Info returns a snapshot of the supervised process.
func (s *Supervisor) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := Info{
		ID:        s.opts.ID,
		State:     s.state,
		StartedAt: s.startedAt,
		LastError: s.lastError,
	}
	if s.exitCode != nil {
		code := *s.exitCode
		info.ExitCode = &code
	}
	if s.proc != nil && s.state != StateIdle && s.state != StateError {
		info.PID = s.proc.PID()
	}
	return info
}

// ID returns the supervised process identifier.
func (s *Supervisor) ID() string {
	return s.opts.ID
}

// Args returns the child's command line.
func (s *Supervisor) Args() []string {
	return append([]string(nil), s.opts.Args...)
}

func (s *Supervisor) notify(old, new State, err error) {
	if s.opts.OnStateChange != nil && old != new {
		s.opts.OnStateChange(s.opts.ID, old, new, err)
	}
}
