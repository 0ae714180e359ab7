// Package process runs external tools and forwards their output line by line.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrCancelled is returned when the context ends before the child exits.
var ErrCancelled = errors.New("process cancelled")

// ExitError reports a child that exited with a non-zero status.
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

// Sink receives the output of a child process. Calls are serialized.
type Sink interface {
	Stdout(line string)
	Stderr(line string)
}

// Command describes a child process.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the current environment.
	Env []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner starts commands.
type Runner interface {
	Run(ctx context.Context, cmd Command, sink Sink) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cmd Command, sink Sink) error

func (f RunnerFunc) Run(ctx context.Context, cmd Command, sink Sink) error {
	return f(ctx, cmd, sink)
}

// Exec runs commands as real child processes.
var Exec Runner = RunnerFunc(Run)

// WaitDelay bounds how long Run keeps reading output once the child has been
// killed. Grandchildren may hold the output pipes open after that.
var WaitDelay = 2 * time.Second

// maxLine caps the buffered size of an unterminated output line.
const maxLine = 1024 * 1024

// Run starts cmd, forwards its stdout and stderr to sink and waits for it.
func Run(ctx context.Context, cmd Command, sink Sink) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.WaitDelay = WaitDelay

	s := &lockedSink{sink: sink}
	stdout := &lineWriter{emit: s.stdout}
	stderr := &lineWriter{emit: s.stderr}
	c.Stdout = stdout
	c.Stderr = stderr

	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Name, err)
	}
	err := c.Wait()
	stdout.flush()
	stderr.flush()
	// A child that exited successfully is done even when a grandchild
	// still holds its output open.
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return nil
	}

	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", cmd.Name, ErrCancelled)
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Name: cmd.Name, Code: ee.ExitCode()}
	}
	return err
}

// lineWriter splits the bytes written to it into lines. exec calls Write
// from a single goroutine per stream.
type lineWriter struct {
	buf  []byte
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(strings.TrimRight(string(w.buf[:i]), "\r"))
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) > maxLine {
		w.flush()
	}
	return len(p), nil
}

// flush emits a trailing unterminated line.
func (w *lineWriter) flush() {
	if len(w.buf) == 0 {
		return
	}
	w.emit(strings.TrimRight(string(w.buf), "\r"))
	w.buf = nil
}

type lockedSink struct {
	mu   sync.Mutex
	sink Sink
}

func (s *lockedSink) stdout(line string) {
	if s.sink == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink.Stdout(line)
}

func (s *lockedSink) stderr(line string) {
	if s.sink == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink.Stderr(line)
}
