package generator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/takumakei/test-gen-go/llm"
	"github.com/takumakei/test-gen-go/vcs"
)

// Config describes the command built by Main.
// Zero fields take the defaults listed next to them.
type Config struct {
	Use     string
	Short   string
	Long    string
	Version string

	DefaultBase     string // "origin/main"
	DefaultProvider string // llm.ProviderGemini
	DefaultModel    string // llm.DefaultModel of the provider
	DefaultSettings string // ".test-gen-go.yaml"
	DefaultFormat   bool

	Extension  string // ".go"
	TestSuffix string // "_test"
	Prompt     string // DefaultPrompt

	// Dir is the working copy. Empty means the current directory.
	Dir string

	// Hooks for the environment, the diff and the generation service.
	// They default to os.Getenv, *vcs.Git and llm.New.
	Getenv       func(string) string
	NewLister    func(dir string) vcs.ChangeLister
	NewGenerator func(ctx context.Context, opts llm.Options) (llm.Generator, error)
}

func (c *Config) withDefaults() {
	if c.DefaultBase == "" {
		c.DefaultBase = "origin/main"
	}
	if c.DefaultProvider == "" {
		c.DefaultProvider = llm.ProviderGemini
	}
	if c.DefaultSettings == "" {
		c.DefaultSettings = ".test-gen-go.yaml"
	}
	if c.Extension == "" {
		c.Extension = ".go"
	}
	if c.TestSuffix == "" {
		c.TestSuffix = "_test"
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.Getenv == nil {
		c.Getenv = os.Getenv
	}
	if c.NewLister == nil {
		c.NewLister = func(dir string) vcs.ChangeLister { return &vcs.Git{Dir: dir} }
	}
	if c.NewGenerator == nil {
		c.NewGenerator = llm.New
	}
}

func (c *Config) path(name string) string {
	if c.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}
