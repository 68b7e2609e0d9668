// Package fixtures loads YAML-described template suites and renders them
// through an Environment. A fixture file holds shared defaults plus a list of
// cases; each case registers its templates, builds a context, and renders one
// entry template.
package fixtures

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"

	"github.com/jinjet/jinjet/pkg/jinja2"
)

// File is one fixture document.
type File struct {
	Defaults Defaults `yaml:"defaults"`
	Cases    []*Case  `yaml:"cases"`
}

// Defaults apply to every case in the file unless the case overrides them.
type Defaults struct {
	Context   map[string]any    `yaml:"context"`
	Templates map[string]string `yaml:"templates"`
	Strict    bool              `yaml:"strict"`
}

// Case is a single render scenario.
type Case struct {
	Name      string            `yaml:"name"`
	Templates map[string]string `yaml:"templates"`
	// Entry is the template to render. Defaults to "main".
	Entry   string         `yaml:"entry"`
	Context map[string]any `yaml:"context"`
	// ContextScript is a Starlark script whose exported globals are added to
	// the context on top of the YAML values.
	ContextScript string `yaml:"context_script"`
	Strict        *bool  `yaml:"strict"`
	Want          string `yaml:"want"`
	WantError     string `yaml:"want_error"`
}

// Load reads a fixture file from disk.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	file, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Decode parses a fixture document. Unknown fields are rejected so typos in
// fixture files fail loudly.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *File) validate() error {
	seen := map[string]bool{}
	for i, c := range f.Cases {
		if c.Name == "" {
			return fmt.Errorf("case %d has no name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate case name %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Templates)+len(f.Defaults.Templates) == 0 {
			return fmt.Errorf("case %q has no templates", c.Name)
		}
	}
	return nil
}

// Case returns the named case.
func (f *File) Case(name string) (*Case, bool) {
	for _, c := range f.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Run renders a case and returns the output.
func (f *File) Run(c *Case) (string, error) {
	env := jinja2.NewEnvironment()
	env.Strict = f.Defaults.Strict
	if c.Strict != nil {
		env.Strict = *c.Strict
	}
	for name, src := range f.Defaults.Templates {
		if err := env.Register(name, src); err != nil {
			return "", err
		}
	}
	for name, src := range c.Templates {
		if err := env.Register(name, src); err != nil {
			return "", err
		}
	}

	ctx, err := f.buildContext(c)
	if err != nil {
		return "", err
	}

	entry := c.Entry
	if entry == "" {
		entry = "main"
	}
	return env.Render(entry, ctx)
}

// buildContext layers the case context over the file defaults and then runs
// the case's context script, whose values win over both.
func (f *File) buildContext(c *Case) (jinja2.Context, error) {
	merged := map[string]any{}
	for k, v := range c.Context {
		merged[k] = v
	}
	if err := mergo.Merge(&merged, f.Defaults.Context); err != nil {
		return nil, fmt.Errorf("merging default context: %w", err)
	}
	ctx := jinja2.NewContextFromAny(merged)
	if c.ContextScript != "" {
		scripted, err := ExecContextScript(c.Name, c.ContextScript, ctx)
		if err != nil {
			return nil, fmt.Errorf("case %q context script: %w", c.Name, err)
		}
		for k, v := range scripted {
			ctx[k] = v
		}
	}
	return ctx, nil
}

// Verify runs a case and checks its expectation: Want must match the output
// exactly, or WantError must be a substring of the error.
func (f *File) Verify(c *Case) error {
	out, err := f.Run(c)
	if c.WantError != "" {
		if err == nil {
			return fmt.Errorf("case %q: want error containing %q, got output %q", c.Name, c.WantError, out)
		}
		if !strings.Contains(err.Error(), c.WantError) {
			return fmt.Errorf("case %q: error %q does not contain %q", c.Name, err, c.WantError)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("case %q: %w", c.Name, err)
	}
	if out != c.Want {
		return fmt.Errorf("case %q: got %q, want %q", c.Name, out, c.Want)
	}
	return nil
}
