package jinja2

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestRegisterFS(t *testing.T) {
	fsys := fstest.MapFS{
		"greeting.j2":          {Data: []byte("Hello {{ name }}")},
		"emails/welcome.txt.j2": {Data: []byte("Welcome, {{ name }}")},
		"notes.txt":            {Data: []byte("not a template")},
	}
	e := NewEnvironment()
	if err := e.RegisterFS(fsys); err != nil {
		t.Fatalf("register fs: %v", err)
	}
	if _, ok := e.Lookup("notes.txt"); ok {
		t.Fatalf("non-template file was registered")
	}
	out, err := e.Render("emails/welcome.txt", Context{"name": StringValue("ada")})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Welcome, ada" {
		t.Fatalf("got %q", out)
	}
}

func TestRegisterDirOverride(t *testing.T) {
	base := t.TempDir()
	site := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "page.j2"), []byte("base"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(site, "page.j2"), []byte("site"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := NewEnvironment()
	if err := e.RegisterDir(base); err != nil {
		t.Fatalf("register base: %v", err)
	}
	if err := e.RegisterDir(site); err != nil {
		t.Fatalf("register site: %v", err)
	}
	out, err := e.Render("page", Context{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "site" {
		t.Fatalf("override not applied: got %q", out)
	}
}

func TestRegisterDirMissing(t *testing.T) {
	e := NewEnvironment()
	if err := e.RegisterDir(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Fatalf("want error for missing directory")
	}
}
