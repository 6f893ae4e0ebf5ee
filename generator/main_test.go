package generator_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takumakei/test-gen-go/generator"
	"github.com/takumakei/test-gen-go/llm"
	"github.com/takumakei/test-gen-go/vcs"
)

type harness struct {
	config  generator.Config
	env     map[string]string
	lister  *fakeLister
	gen     *fakeGenerator
	listers int
	opts    []llm.Options
	stdout  bytes.Buffer
	stderr  bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		env:    map[string]string{},
		lister: &fakeLister{},
		gen:    &fakeGenerator{text: mathResponse},
	}
	h.config = generator.Config{
		Use: "test-gen-go",
		Dir: t.TempDir(),
		Getenv: func(key string) string {
			return h.env[key]
		},
		NewLister: func(string) vcs.ChangeLister {
			h.listers++
			return h.lister
		},
		NewGenerator: func(_ context.Context, opts llm.Options) (llm.Generator, error) {
			h.opts = append(h.opts, opts)
			return h.gen, nil
		},
	}
	return h
}

func (h *harness) execute(args ...string) int {
	return generator.Execute(context.Background(), h.config, args, &h.stdout, &h.stderr)
}

func TestExecute_missingCredential(t *testing.T) {
	h := newHarness(t)
	h.lister.paths = []string{"pkg/math.go"}
	writeFiles(t, h.config.Dir, map[string]string{"pkg/math.go": mathSource})

	assert.Equal(t, 1, h.execute())
	assert.Contains(t, h.stderr.String(), "error: GEMINI_API_KEY not set")
	assert.Empty(t, h.opts)
	assert.Empty(t, h.gen.prompts)
	assert.Zero(t, h.listers)
	assert.NoFileExists(t, filepath.Join(h.config.Dir, "pkg/math_test.go"))
}

func TestExecute_missingCredentialForProvider(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"

	assert.Equal(t, 1, h.execute("--provider", "openai"))
	assert.Contains(t, h.stderr.String(), "OPENAI_API_KEY not set")
	assert.Empty(t, h.opts)
}

func TestExecute_unknownProvider(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.execute("--provider", "nope"))
	assert.Contains(t, h.stderr.String(), "unknown provider")
}

func TestExecute_rejectsArgs(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"

	assert.Equal(t, 1, h.execute("pkg/math.go"))
	assert.Zero(t, h.listers)
}

func TestExecute_endToEnd(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"
	h.lister.paths = []string{"pkg/math.go", "pkg/math_test.go", "gone.go"}
	writeFiles(t, h.config.Dir, map[string]string{"pkg/math.go": mathSource})

	require.Equal(t, 0, h.execute())

	assert.Equal(t, mathTest, readFile(t, filepath.Join(h.config.Dir, "pkg/math_test.go")))
	assert.Equal(t, "Created: pkg/math_test.go\n", h.stdout.String())
	assert.Contains(t, h.stderr.String(), "maybe deleted")
	assert.Equal(t, []string{"origin/main"}, h.lister.bases)
	require.Len(t, h.opts, 1)
	assert.Equal(t, llm.Options{Provider: llm.ProviderGemini, APIKey: "key"}, h.opts[0])
	assert.True(t, h.gen.closed)
}

func TestExecute_nothingChanged(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"
	h.lister.paths = []string{"README.md", "main_test.go"}

	assert.Equal(t, 0, h.execute())
	assert.Equal(t, "No .go files changed.\n", h.stdout.String())
	assert.Empty(t, h.opts)
}

func TestExecute_diffFailure(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"
	h.lister.err = errors.New("fatal: bad revision 'origin/main...HEAD'")

	assert.Equal(t, 0, h.execute())
	assert.Contains(t, h.stderr.String(), "error getting diff")
	assert.Equal(t, "No .go files changed.\n", h.stdout.String())
	assert.Empty(t, h.opts)
}

func TestExecute_generationFailure(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"
	h.lister.paths = []string{"a.go", "b.go"}
	h.gen.fail = "FAIL"
	writeFiles(t, h.config.Dir, map[string]string{
		"a.go": "package a // FAIL\n",
		"b.go": "package b\n",
	})

	assert.Equal(t, 0, h.execute())
	assert.Contains(t, h.stderr.String(), "test generation failed")
	assert.Equal(t, "Created: b_test.go\n", h.stdout.String())
}

func TestExecute_files(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"
	writeFiles(t, h.config.Dir, map[string]string{"pkg/math.go": mathSource})

	require.Equal(t, 0, h.execute("--file", "pkg/math.go"))
	assert.Empty(t, h.lister.bases)
	assert.Equal(t, mathTest, readFile(t, filepath.Join(h.config.Dir, "pkg/math_test.go")))
}

func TestExecute_settings(t *testing.T) {
	h := newHarness(t)
	h.env["OPENAI_API_KEY"] = "openai-key"
	h.lister.paths = []string{"lib/math.go"}
	writeFiles(t, h.config.Dir, map[string]string{
		"lib/math.go": mathSource,
		".test-gen-go.yaml": "base: origin/develop\n" +
			"provider: openai\n" +
			"model: gpt-4o\n" +
			"test_suffix: _gen_test\n",
	})

	require.Equal(t, 0, h.execute())
	assert.Equal(t, []string{"origin/develop"}, h.lister.bases)
	require.Len(t, h.opts, 1)
	assert.Equal(t, llm.Options{Provider: llm.ProviderOpenAI, Model: "gpt-4o", APIKey: "openai-key"}, h.opts[0])
	assert.Equal(t, mathTest, readFile(t, filepath.Join(h.config.Dir, "lib/math_gen_test.go")))
}

func TestExecute_flagsOverrideSettings(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"
	writeFiles(t, h.config.Dir, map[string]string{
		"settings.yaml": "base: origin/develop\nmodel: gemini-1.5-pro\n",
	})

	require.Equal(t, 0, h.execute("--config", "settings.yaml", "--base", "v1.0.0"))
	assert.Equal(t, []string{"v1.0.0"}, h.lister.bases)
}

func TestExecute_filesSkipIneligible(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"
	writeFiles(t, h.config.Dir, map[string]string{
		"a_test.go":   "package a\n",
		"README.md":   "# readme\n",
		"pkg/math.go": mathSource,
	})

	require.Equal(t, 0, h.execute("--file", "a_test.go", "--file", "README.md", "--file", "pkg/math.go"))
	assert.Equal(t, "Created: pkg/math_test.go\n", h.stdout.String())
	assert.Contains(t, h.stderr.String(), "not an eligible source file")
	assert.NoFileExists(t, filepath.Join(h.config.Dir, "a_test_test.go"))
	assert.NoFileExists(t, filepath.Join(h.config.Dir, "README_test.md"))
	assert.Empty(t, h.lister.bases)
	assert.Len(t, h.gen.prompts, 1)
}

func TestExecute_filesAllIneligible(t *testing.T) {
	h := newHarness(t)
	h.env["GEMINI_API_KEY"] = "key"

	require.Equal(t, 0, h.execute("--file", "README.md"))
	assert.Equal(t, "No .go files changed.\n", h.stdout.String())
	assert.Empty(t, h.lister.bases)
	assert.Empty(t, h.opts)
}
