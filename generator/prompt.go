package generator

import (
	"bufio"
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/goaux/iter/bufioscanner"
)

// DefaultPrompt is the template used to ask for a test file.
// It is executed with a Request.
const DefaultPrompt = `You are an expert Go developer. Generate comprehensive unit tests for the following Go code using the standard 'testing' package.
Output ONLY the code for the test file, including package declaration and imports.
Do not include markdown code blocks or any other text.

Code:
{{.Content}}`

var funcs = map[string]any{
	"basename": filepath.Base,
	"dirname":  filepath.Dir,
	"ext":      filepath.Ext,
}

// Prompt renders requests into prompt text.
type Prompt struct {
	tmpl *template.Template
}

func ParsePrompt(text string) (*Prompt, error) {
	tmpl, err := template.New("prompt").Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}
	return &Prompt{tmpl: tmpl}, nil
}

func (p *Prompt) Render(req Request) (string, error) {
	buf := new(bytes.Buffer)
	if err := p.tmpl.Execute(buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PackageName returns the name in the first package clause of Go source,
// or "" if there is none.
func PackageName(src string) string {
	s := bufioscanner.New(bufio.NewScanner(strings.NewReader(src)))
	for _, line := range s.Text() {
		m := rePackage.FindStringSubmatch(strings.TrimSpace(line))
		if len(m) >= 2 {
			return m[1]
		}
	}
	return ""
}

var rePackage = regexp.MustCompile(`^package\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
