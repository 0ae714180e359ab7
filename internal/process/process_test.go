package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	stdout []string
	stderr []string
}

func (r *recorder) Stdout(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stdout = append(r.stdout, line)
}

func (r *recorder) Stderr(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stderr = append(r.stderr, line)
}

// helper re-executes the test binary as a fake child process.
func helper(mode string, args ...string) Command {
	return Command{
		Name: os.Args[0],
		Args: append([]string{"-test.run=TestHelperProcess", "--", mode}, args...),
		Env:  []string{"KISS_WANT_HELPER_PROCESS=1"},
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("KISS_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	args = args[1:]
	switch args[0] {
	case "echo":
		for i := 0; i < 100; i++ {
			fmt.Fprintf(os.Stdout, "out %d\n", i)
		}
		fmt.Fprintln(os.Stderr, "err line")
		os.Exit(0)
	case "exit":
		code, _ := strconv.Atoi(args[1])
		fmt.Fprintln(os.Stderr, "failing")
		os.Exit(code)
	case "sleep":
		time.Sleep(time.Minute)
		os.Exit(0)
	case "linger":
		time.Sleep(5 * time.Second)
		os.Exit(0)
	case "spawn":
		// The grandchild inherits stdout and outlives this process.
		g := exec.Command(os.Args[0], "-test.run=TestHelperProcess", "--", "linger")
		g.Stdout = os.Stdout
		if err := g.Start(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Println("spawned")
		if len(args) > 1 && args[1] == "wait" {
			time.Sleep(time.Minute)
		}
		os.Exit(0)
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Println(wd)
		os.Exit(0)
	}
	os.Exit(2)
}

func TestRunForwardsOutput(t *testing.T) {
	var rec recorder
	require.NoError(t, Run(context.Background(), helper("echo"), &rec))
	require.Len(t, rec.stdout, 100)
	assert.Equal(t, "out 0", rec.stdout[0])
	assert.Equal(t, "out 99", rec.stdout[99])
	assert.Equal(t, []string{"err line"}, rec.stderr)
}

func TestRunExitCode(t *testing.T) {
	var rec recorder
	err := Run(context.Background(), helper("exit", "3"), &rec)
	var ee *ExitError
	require.True(t, errors.As(err, &ee), "got %v", err)
	assert.Equal(t, 3, ee.Code)
	assert.Equal(t, []string{"failing"}, rec.stderr)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := Run(ctx, helper("sleep"), nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Less(t, time.Since(start), 30*time.Second)
}

func setWaitDelay(t *testing.T, d time.Duration) {
	prev := WaitDelay
	WaitDelay = d
	t.Cleanup(func() { WaitDelay = prev })
}

func TestRunCancelledWithGrandchild(t *testing.T) {
	setWaitDelay(t, 100*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var rec recorder
	start := time.Now()
	err := Run(ctx, helper("spawn", "wait"), &rec)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Less(t, time.Since(start), 3*time.Second)
}

// The deadline expires after the child exited successfully, while the
// grandchild still holds stdout.
func TestRunSucceedsWithLingeringGrandchild(t *testing.T) {
	setWaitDelay(t, 1500*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var rec recorder
	start := time.Now()
	require.NoError(t, Run(ctx, helper("spawn"), &rec))
	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Equal(t, []string{"spawned"}, rec.stdout)
}

func TestLineWriter(t *testing.T) {
	var lines []string
	w := &lineWriter{emit: func(s string) { lines = append(lines, s) }}
	fmt.Fprint(w, "first\r\nsec")
	fmt.Fprint(w, "ond\nlast")
	assert.Equal(t, []string{"first", "second"}, lines)
	w.flush()
	assert.Equal(t, []string{"first", "second", "last"}, lines)
	w.flush()
	assert.Len(t, lines, 3)
}

func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	cmd := helper("pwd")
	cmd.Dir = dir
	var rec recorder
	require.NoError(t, Run(context.Background(), cmd, &rec))
	require.Len(t, rec.stdout, 1)

	want, err := os.Stat(dir)
	require.NoError(t, err)
	got, err := os.Stat(rec.stdout[0])
	require.NoError(t, err)
	assert.True(t, os.SameFile(want, got))
}

func TestRunMissingBinary(t *testing.T) {
	err := Run(context.Background(), Command{Name: "kiss-no-such-binary"}, nil)
	require.Error(t, err)
	var ee *ExitError
	assert.False(t, errors.As(err, &ee))
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "cmake --build target", Command{Name: "cmake", Args: []string{"--build", "target"}}.String())
}
