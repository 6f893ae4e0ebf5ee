package generator

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/goaux/stacktrace/v2"
	"gopkg.in/yaml.v3"
)

// Settings is the optional per-repository settings file.
//
//	base: origin/develop
//	provider: openai
//	model: gpt-4o
//	extension: .go
//	test_suffix: _test
//	prompt: |
//	  Write tests for {{.Path}} in package {{.Package}}:
//	  {{.Content}}
type Settings struct {
	Base       string `yaml:"base"`
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	Extension  string `yaml:"extension"`
	TestSuffix string `yaml:"test_suffix"`
	Prompt     string `yaml:"prompt"`
}

// LoadSettings reads the settings file at path.
// A missing or empty file yields zero Settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, stacktrace.Trace(err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(bufio.NewReader(f)).Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, stacktrace.Trace(err)
	}
	return s, nil
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
