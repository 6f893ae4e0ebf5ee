// Package vcs lists files changed between a base revision and HEAD.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goaux/stacktrace/v2"
	"github.com/sourcegraph/go-diff/diff"
	"github.com/takumakei/test-gen-go/execpipe"
)

// ChangeLister reports the paths changed between base and the current checkout.
type ChangeLister interface {
	ListChanged(ctx context.Context, base string) ([]string, error)
}

// ErrNoGit is returned when the git executable cannot be found.
var ErrNoGit = errors.New("git was not found in PATH")

const devNull = "/dev/null"

// Git lists changes by running git diff in Dir.
// Returned paths are relative to Dir.
type Git struct {
	Dir string
}

var _ ChangeLister = (*Git)(nil)

// ListChanged returns the added or modified files in base...HEAD, in diff order.
func (g *Git) ListChanged(ctx context.Context, base string) ([]string, error) {
	if err := execpipe.CheckPath("git"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	out, err := execpipe.Output(ctx, g.Dir, "git",
		"diff",
		"--no-color",
		"--no-ext-diff",
		"--src-prefix=a/",
		"--dst-prefix=b/",
		"--no-renames",
		"--relative",
		"--diff-filter=AM",
		"-U0",
		base+"...HEAD",
	)
	if err != nil {
		return nil, err
	}
	return ParseChanged(out)
}

// ParseChanged extracts the new-side paths from a multi-file unified diff
// written with the a/ and b/ prefixes. Deleted files are skipped.
func ParseChanged(patch []byte) ([]string, error) {
	fds, err := stacktrace.Trace2(diff.ParseMultiFileDiff(patch))
	if err != nil {
		return nil, err
	}
	var paths []string
	seen := make(map[string]bool)
	for _, fd := range fds {
		name := fd.NewName
		if name == "" {
			name = headerName(fd.Extended)
		}
		if name == "" || name == devNull {
			continue
		}
		name = strings.TrimPrefix(name, "b/")
		if seen[name] {
			continue
		}
		seen[name] = true
		paths = append(paths, name)
	}
	return paths, nil
}

// headerName returns the new-side name from the "diff --git a/X b/Y" line of
// a file without ---/+++ lines, such as a mode change. It returns "" for a
// deleted file.
func headerName(extended []string) string {
	var header string
	for _, line := range extended {
		if strings.HasPrefix(line, "deleted file mode ") {
			return ""
		}
		if rest, ok := strings.CutPrefix(line, "diff --git "); ok {
			header = rest
		}
	}
	if header == "" {
		return ""
	}
	if strings.HasSuffix(header, `"`) {
		if i := strings.LastIndex(header[:len(header)-1], ` "`); i >= 0 {
			if name, err := strconv.Unquote(header[i+1:]); err == nil {
				return name
			}
		}
		return ""
	}
	// Without renames both sides name the same file: "a/X b/X".
	if n := len(header); n%2 == 1 {
		half := n / 2
		if header[half] == ' ' && strings.TrimPrefix(header[:half], "a/") == strings.TrimPrefix(header[half+1:], "b/") {
			return header[half+1:]
		}
	}
	if i := strings.LastIndex(header, " b/"); i >= 0 {
		return header[i+1:]
	}
	return ""
}
