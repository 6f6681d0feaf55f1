package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/smazurov/ledmcp/internal/logging"
)

// Default shutdown timeouts.
const (
	DefaultGracefulTimeout = 5 * time.Second
	DefaultKillTimeout     = 5 * time.Second
)

// OutputHandler receives output lines from the subprocess.
type OutputHandler interface {
	HandleLine(source, line string)
}

// LogParser parses a log line and returns the log level and message.
// Used to keep the level of structured child output when it is re-logged.
type LogParser func(line string) (level, msg string)

// Process manages the lifecycle of a single subprocess.
// A Process is started at most once; create a new one to run again.
type Process struct {
	id              string
	args            []string
	logger          logging.Logger
	processLogger   logging.Logger // logger for process output (nil = use logger)
	logParser       LogParser      // parses process output for log level (nil = no parsing)
	outputHandler   OutputHandler
	gracefulTimeout time.Duration // timeout for graceful shutdown before force kill
	killTimeout     time.Duration // timeout after Kill() before giving up

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	exitCode int
	done     chan struct{} // closed once the child is reaped and output drained

	stopOnce sync.Once
}

// NewProcess creates a new process for the given argv.
func NewProcess(id string, args []string, logger logging.Logger) *Process {
	return NewProcessWithOutput(id, args, logger, nil)
}

// NewProcessWithOutput creates a new process with an output handler.
// The handler receives each line of stdout/stderr from the subprocess.
func NewProcessWithOutput(id string, args []string, logger logging.Logger, handler OutputHandler) *Process {
	return &Process{
		id:              id,
		args:            append([]string(nil), args...),
		logger:          logger,
		outputHandler:   handler,
		gracefulTimeout: DefaultGracefulTimeout,
		killTimeout:     DefaultKillTimeout,
		exitCode:        -1,
		done:            make(chan struct{}),
	}
}

// ID returns the process identifier.
func (p *Process) ID() string {
	return p.id
}

// Args returns a copy of the command line.
func (p *Process) Args() []string {
	return append([]string(nil), p.args...)
}

// SetLogParser sets a custom logger and log parser for process output.
func (p *Process) SetLogParser(logger logging.Logger, parser LogParser) {
	p.processLogger = logger
	p.logParser = parser
}

// SetTimeouts overrides the graceful and kill timeouts. Zero keeps the current value.
func (p *Process) SetTimeouts(graceful, kill time.Duration) {
	if graceful > 0 {
		p.gracefulTimeout = graceful
	}
	if kill > 0 {
		p.killTimeout = kill
	}
}

// Start spawns the subprocess. The child's stdin stays open until Stop.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process %s already started", p.id)
	}
	if len(p.args) == 0 {
		p.logger.Error("Empty command")
		return fmt.Errorf("empty command")
	}

	cmd := exec.Command(p.args[0], p.args[1:]...)
	cmd.SysProcAttr = sysProcAttr()
	// Bounds the wait for output after exit when a grandchild holds the pipes.
	cmd.WaitDelay = p.killTimeout

	stdin, err := cmd.StdinPipe()
	if err != nil {
		p.logger.Error("Failed to create stdin pipe", "error", err)
		return err
	}

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	command := strings.Join(p.args, " ")
	if err := cmd.Start(); err != nil {
		p.logger.Error("Failed to start process", "error", err, "command", command)
		_ = stdoutW.Close()
		_ = stderrW.Close()
		return err
	}

	p.cmd = cmd
	p.stdin = stdin
	p.logger.Info("Process started", "id", p.id, "pid", cmd.Process.Pid, "command", command)

	var output sync.WaitGroup
	output.Add(2)
	go func() {
		defer output.Done()
		p.streamOutput(stdoutR, "stdout")
	}()
	go func() {
		defer output.Done()
		p.streamOutput(stderrR, "stderr")
	}()

	go func() {
		err := cmd.Wait()
		_ = stdoutW.Close()
		_ = stderrW.Close()
		output.Wait()

		code := exitCode(cmd.ProcessState, err)
		if err != nil && cmd.ProcessState == nil {
			p.logger.Error("Process exited with error", "error", err)
		}

		p.mu.Lock()
		p.exitCode = code
		p.mu.Unlock()
		close(p.done)
	}()

	return nil
}

// PID returns the child's process id, or 0 if it was never started.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Done is closed once the child has exited and its output is drained.
// It is never closed for a process that failed to start.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Exited reports, without blocking, whether the child has exited.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the exit status, or -1 while running.
// A child terminated by a signal reports 128 + signal number.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

// Stop terminates the child: close stdin, SIGTERM, wait the graceful timeout,
// then SIGKILL the process group. Safe to call repeatedly and concurrently.
// Returns the exit code, or -1 if the child never exited.
func (p *Process) Stop() int {
	p.mu.Lock()
	started := p.cmd != nil
	p.mu.Unlock()
	if !started {
		return p.ExitCode()
	}

	p.stopOnce.Do(p.stop)
	return p.ExitCode()
}

func (p *Process) stop() {
	if p.Exited() {
		return
	}

	p.mu.Lock()
	proc := p.cmd.Process
	stdin := p.stdin
	p.mu.Unlock()

	if stdin != nil {
		_ = stdin.Close()
	}

	p.logger.Info("Sending SIGTERM to process", "pid", proc.Pid)
	if err := proc.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("Failed to send SIGTERM", "error", err)
	}

	select {
	case <-p.done:
		return
	case <-time.After(p.gracefulTimeout):
	}

	p.logger.Warn("Graceful shutdown timeout, forcing kill", "timeout", p.gracefulTimeout)
	if err := syscall.Kill(-proc.Pid, syscall.SIGKILL); err != nil {
		// Group already gone or never formed; fall back to the leader.
		if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.logger.Error("Failed to kill process", "error", err)
		}
	}

	select {
	case <-p.done:
	case <-time.After(p.killTimeout):
		p.logger.Error("Process did not exit after kill signal")
	}
}

// Run starts the subprocess and blocks until it exits or ctx is cancelled.
// Returns the exit code of the subprocess, or 1 if it could not be started.
func (p *Process) Run(ctx context.Context) int {
	if err := p.Start(); err != nil {
		return 1
	}

	select {
	case <-ctx.Done():
		p.logger.Info("Context cancelled, shutting down process")
		return p.Stop()
	case <-p.done:
		code := p.ExitCode()
		p.logger.Info("Process exited", "exit_code", code)
		return code
	}
}

// exitCode derives an exit status from the reaped process state.
func exitCode(state *os.ProcessState, err error) int {
	if state == nil {
		if err == nil {
			return 0
		}
		return 1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}

// streamOutput re-logs subprocess output line by line.
// Uses the configured processLogger (or falls back to default logger).
func (p *Process) streamOutput(reader io.Reader, source string) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	logger := p.processLogger
	if logger == nil {
		logger = p.logger
	}

	for scanner.Scan() {
		line := scanner.Text()

		if p.outputHandler != nil {
			p.outputHandler.HandleLine(source, line)
		}

		level, msg := "info", line
		if p.logParser != nil {
			level, msg = p.logParser(line)
		}

		switch level {
		case "fatal", "error":
			logger.Error(msg, "source", source)
		case "warning", "warn":
			logger.Warn(msg, "source", source)
		case "debug", "trace":
			logger.Debug(msg, "source", source)
		default:
			logger.Info(msg, "source", source)
		}
	}

	if err := scanner.Err(); err != nil {
		p.logger.Warn("Error reading output", "source", source, "error", err)
	}
	// Keep the writer side unblocked if scanning stopped early.
	_, _ = io.Copy(io.Discard, reader)
}

// SplitCommand parses a command string into arguments.
// Handles quoted strings and basic escaping.
func SplitCommand(command string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	command = strings.TrimSpace(command)
	runes := []rune(command)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' || r == '\'':
			switch {
			case !inQuote:
				inQuote = true
				quoteChar = r
			case r == quoteChar:
				inQuote = false
				quoteChar = 0
			default:
				current.WriteRune(r)
			}
		case (r == ' ' || r == '\t') && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		case r == '\\' && i+1 < len(runes):
			i++
			current.WriteRune(runes[i])
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	if inQuote {
		return nil, fmt.Errorf("unclosed quote in command")
	}

	return args, nil
}
