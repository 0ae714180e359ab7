// Package logs prints user-facing console lines and diagnostic traces.
package logs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/qiniu/x/log"
)

// Console writes colored lines to an output and an error stream. It is safe
// for concurrent use; lines are never interleaved mid-line.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// New returns a Console writing to out and err.
func New(out, err io.Writer) *Console {
	return &Console{out: out, err: err}
}

var (
	stdMu sync.RWMutex
	std   = New(os.Stdout, os.Stderr)
)

// Std returns the process-wide console.
func Std() *Console {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

// SetStd replaces the process-wide console and returns the previous one.
func SetStd(c *Console) *Console {
	stdMu.Lock()
	defer stdMu.Unlock()
	prev := std
	std = c
	return prev
}

// DisableColor turns off ANSI colors for every Console.
func DisableColor() {
	color.Enable = false
}

// Tips prints an informational line.
func (c *Console) Tips(format string, args ...any) {
	c.write(c.out, color.Info.Sprint(fmt.Sprintf(format, args...)))
}

// Println prints line as is.
func (c *Console) Println(line string) {
	c.write(c.out, line)
}

// Warn prints a warning to the error stream.
func (c *Console) Warn(format string, args ...any) {
	c.write(c.err, color.Warn.Sprint(fmt.Sprintf(format, args...)))
}

// Error prints an error to the error stream.
func (c *Console) Error(format string, args ...any) {
	c.write(c.err, color.Danger.Sprint(fmt.Sprintf(format, args...)))
}

// ErrorLine prints line to the error stream without formatting.
func (c *Console) ErrorLine(line string) {
	c.write(c.err, color.Danger.Sprint(line))
}

// Stdout prints a line produced by a child process.
func (c *Console) Stdout(line string) { c.Println(line) }

// Stderr prints an error line produced by a child process.
func (c *Console) Stderr(line string) { c.ErrorLine(line) }

func (c *Console) write(w io.Writer, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(w, strings.TrimRight(line, "\n")+"\n")
}

// SetVerbose enables or disables debug traces.
func SetVerbose(on bool) {
	if on {
		log.SetOutputLevel(log.Ldebug)
		return
	}
	log.SetOutputLevel(log.Linfo)
}

// Debugf writes a diagnostic trace, shown only in verbose mode.
func Debugf(format string, args ...any) {
	log.Debugf(format, args...)
}

func init() {
	SetVerbose(false)
}
