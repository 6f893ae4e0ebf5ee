package generator_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/takumakei/test-gen-go/generator"
)

type fakeLister struct {
	paths []string
	err   error
	bases []string
}

func (f *fakeLister) ListChanged(_ context.Context, base string) ([]string, error) {
	f.bases = append(f.bases, base)
	return f.paths, f.err
}

type fakeGenerator struct {
	text    string
	fail    string // prompts containing fail return an error
	prompts []string
	closed  bool
}

var errGenerate = errors.New("service unavailable")

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.fail != "" && strings.Contains(prompt, f.fail) {
		return "", errGenerate
	}
	return f.text, nil
}

func (f *fakeGenerator) Close() error {
	f.closed = true
	return nil
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRunner(t *testing.T, dir string, lister *fakeLister, gen *fakeGenerator) (*generator.Runner, *strings.Builder) {
	t.Helper()
	prompt, err := generator.ParsePrompt(generator.DefaultPrompt)
	require.NoError(t, err)
	out := new(strings.Builder)
	return &generator.Runner{
		Lister:     lister,
		Generator:  gen,
		Prompt:     prompt,
		Base:       "origin/main",
		Extension:  ".go",
		TestSuffix: "_test",
		Dir:        dir,
		Logger:     discardLogger(),
		Out:        out,
	}, out
}
