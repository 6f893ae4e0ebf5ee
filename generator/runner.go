package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goaux/stacktrace/v2"
	"github.com/takumakei/test-gen-go/execpipe"
	"github.com/takumakei/test-gen-go/llm"
	"github.com/takumakei/test-gen-go/vcs"
)

// Runner generates a test file for each changed source file, one file at a time.
type Runner struct {
	Lister    vcs.ChangeLister
	Generator llm.Generator
	Prompt    *Prompt

	Base       string // revision to diff HEAD against
	Extension  string // e.g. ".go"
	TestSuffix string // e.g. "_test"

	// Dir resolves relative paths. Empty means the current directory.
	Dir string

	// Formatter, if set, is an executable such as goimports that the generated
	// text is piped through. Its failure is logged and the text is kept as is.
	Formatter string

	Logger *slog.Logger
	Out    io.Writer // receives one "Created: path" line per written file
}

// ChangedFiles returns the eligible files changed between Base and HEAD.
// A failing diff is logged and yields an empty ChangeSet.
func (r *Runner) ChangedFiles(ctx context.Context) ChangeSet {
	paths, err := r.Lister.ListChanged(ctx, r.Base)
	if err != nil {
		r.Logger.Error("error getting diff", "base", r.Base, "error", err)
		return nil
	}
	var cs ChangeSet
	for _, path := range paths {
		if Eligible(path, r.Extension, r.TestSuffix) {
			cs = append(cs, path)
		}
	}
	r.Logger.Debug("changed files", "base", r.Base, "total", len(paths), "eligible", len(cs))
	return cs
}

// Select keeps the eligible paths of an explicit file list and logs the rest.
func (r *Runner) Select(paths []string) ChangeSet {
	var cs ChangeSet
	for _, path := range paths {
		if !Eligible(path, r.Extension, r.TestSuffix) {
			r.Logger.Warn("not an eligible source file, skipping", "path", path, "extension", r.Extension)
			continue
		}
		cs = append(cs, path)
	}
	return cs
}

// Run processes every path in order. Files that no longer exist are skipped;
// a failure on one file is recorded and the next file is processed.
func (r *Runner) Run(ctx context.Context, paths ChangeSet) Report {
	var report Report
	for _, path := range paths {
		if _, err := os.Stat(r.resolve(path)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				r.Logger.Warn("file not found (maybe deleted)", "path", path)
				report.Skipped = append(report.Skipped, path)
				continue
			}
			r.fail(&report, path, stacktrace.Trace(err))
			continue
		}
		res, err := r.GenerateFor(ctx, path)
		if err != nil {
			r.fail(&report, path, err)
			continue
		}
		report.Created = append(report.Created, res.Output)
	}
	return report
}

func (r *Runner) fail(report *Report, path string, err error) {
	r.Logger.Error("test generation failed", "path", path, "error", err)
	report.Failed = append(report.Failed, Failure{Path: path, Err: err})
}

// GenerateFor asks the generator for a test of path and writes it next to path,
// overwriting any existing file.
func (r *Runner) GenerateFor(ctx context.Context, path string) (*Result, error) {
	r.Logger.Info("generating test", "path", path)

	content, err := stacktrace.Trace2(os.ReadFile(r.resolve(path)))
	if err != nil {
		return nil, err
	}
	req := Request{
		Path:    path,
		Package: PackageName(string(content)),
		Content: string(content),
	}
	if req.Prompt, err = r.Prompt.Render(req); err != nil {
		return nil, fmt.Errorf("prompt for %s: %w", path, err)
	}

	text, err := r.Generator.Generate(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path:   path,
		Output: TestPath(path, r.TestSuffix),
		Text:   r.format(ctx, path, StripFences(text)),
	}
	if err := stacktrace.Trace(os.WriteFile(r.resolve(res.Output), []byte(res.Text), 0644)); err != nil {
		return nil, err
	}
	fmt.Fprintf(r.Out, "Created: %s\n", res.Output)
	return res, nil
}

func (r *Runner) format(ctx context.Context, path, text string) string {
	if r.Formatter == "" {
		return text
	}
	out := new(bytes.Buffer)
	if err := execpipe.Run(ctx, out, strings.NewReader(text), r.Dir, r.Formatter); err != nil {
		r.Logger.Warn("format failed, keeping generated text", "path", path, "error", err)
		return text
	}
	return out.String()
}

func (r *Runner) resolve(path string) string {
	if r.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.Dir, path)
}
