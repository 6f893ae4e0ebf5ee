// Package execpipe runs external commands with their standard streams wired
// to Go readers and writers.
package execpipe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/goaux/stacktrace/v2"
)

// CheckPath checks if the given executable exists in the system's PATH.
// It returns an error if the executable is not found, or nil if it is.
func CheckPath(executable string) error {
	_, err := stacktrace.Trace2(exec.LookPath(executable))
	return err
}

// Run executes name with args in dir, reading stdin from r and writing stdout to w.
// A nil r means no input. An empty dir means the current directory.
//
// The returned error includes the command name, the underlying error and
// the captured stderr.
func Run(ctx context.Context, w io.Writer, r io.Reader, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = r
	cmd.Stdout = w
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr
	if err := stacktrace.Trace(cmd.Run()); err != nil {
		return fmt.Errorf("error: %s, cause=%w, stderr=%q", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Output is like Run without input, returning stdout.
func Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	out := new(bytes.Buffer)
	if err := Run(ctx, out, nil, dir, name, args...); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
