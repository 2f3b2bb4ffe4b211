package suggest

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Example is a few-shot example included in a prompt.
type Example struct {
	Input   string   `yaml:"input"`
	Outputs []string `yaml:"outputs"`
}

// Prompt is a named prompt template with its few-shot examples.
type Prompt struct {
	Name     string    `yaml:"name"`
	Template string    `yaml:"template"`
	Examples []Example `yaml:"examples"`

	tmpl *template.Template
}

// Prompts holds the templates for both helpers.
type Prompts struct {
	Guess   Prompt `yaml:"guess"`
	Suggest Prompt `yaml:"suggest"`
}

// LoadPrompts reads prompt templates from path, or the built-in ones when
// path is empty.
func LoadPrompts(path string) (*Prompts, error) {
	if path == "" {
		return ParsePrompts(defaultPrompts)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return ParsePrompts(data)
}

// ParsePrompts parses a YAML prompt document and compiles its templates.
func ParsePrompts(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	for _, prompt := range []*Prompt{&p.Guess, &p.Suggest} {
		if err := prompt.compile(); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (p *Prompt) compile() error {
	if strings.TrimSpace(p.Template) == "" {
		return fmt.Errorf("prompt %q has no template", p.Name)
	}
	for i, ex := range p.Examples {
		if len(ex.Outputs) == 0 {
			return fmt.Errorf("prompt %q: example %d has no outputs", p.Name, i)
		}
	}
	tmpl, err := template.New(p.Name).
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(p.Template)
	if err != nil {
		return fmt.Errorf("failed to compile prompt %q: %w", p.Name, err)
	}
	p.tmpl = tmpl
	return nil
}

// Render fills the template with the user's partial input.
func (p *Prompt) Render(partial string) (string, error) {
	var b strings.Builder
	err := p.tmpl.Execute(&b, struct {
		Partial  string
		Examples []Example
	}{Partial: partial, Examples: p.Examples})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", p.Name, err)
	}
	return b.String(), nil
}
