package jinja2

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
)

// Template files are recognized by extension; the extension is stripped from
// the registered name so "emails/welcome.txt.j2" registers as
// "emails/welcome.txt".
var templateExtensions = []string{".j2", ".jinja", ".jinja2"}

// RegisterFS walks fsys and registers every template file found. Calling it
// again with another tree overrides templates of the same name, so a site
// directory can shadow a base directory.
func (e *Environment) RegisterFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name, ok := templateName(p)
		if !ok {
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}
		if _, exists := e.templates[name]; exists {
			slog.Debug("overriding template", "name", name, "file", p)
		}
		if err := e.Register(name, string(src)); err != nil {
			return err
		}
		return nil
	})
}

// RegisterDir registers every template under the given directory.
func (e *Environment) RegisterDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	return e.RegisterFS(os.DirFS(dir))
}

func templateName(p string) (string, bool) {
	ext := path.Ext(p)
	for _, te := range templateExtensions {
		if ext == te {
			return strings.TrimSuffix(p, ext), true
		}
	}
	return "", false
}
