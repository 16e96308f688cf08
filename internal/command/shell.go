package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/fbkclanna/vercast/internal/logging"
)

// Runner runs a shell command line in dir. Output is copied to out as it
// is produced; the returned string is the captured stdout.
type Runner interface {
	Run(ctx context.Context, dir, line string, out io.Writer) (stdout string, exitCode int, err error)
}

// ShellRunner runs commands through the platform shell in their own
// process group, so cancelling the context stops every child.
type ShellRunner struct{}

// Run implements Runner.
func (ShellRunner) Run(ctx context.Context, dir, line string, out io.Writer) (string, int, error) {
	name, flag := shell()
	cmd := exec.CommandContext(ctx, name, flag, line) //nolint:gosec // commands come from workspace config
	cmd.Dir = dir
	setProcessGroup(cmd)
	cmd.WaitDelay = 5 * time.Second

	var stdout bytes.Buffer
	if out == nil {
		out = io.Discard
	}
	cmd.Stdout = io.MultiWriter(&stdout, out)
	cmd.Stderr = out

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), exitErr.ExitCode(), err
		}
		return stdout.String(), -1, err
	}
	return stdout.String(), 0, nil
}

// lineLogger is an io.Writer that logs each complete line.
type lineLogger struct {
	mu  sync.Mutex
	log *logging.Logger
	buf []byte
}

func newLineLogger(log *logging.Logger) *lineLogger {
	return &lineLogger{log: log}
}

func (w *lineLogger) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush logs a trailing partial line.
func (w *lineLogger) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}

func (w *lineLogger) emit(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	w.log.Info(line)
}
