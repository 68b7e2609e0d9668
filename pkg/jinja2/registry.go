package jinja2

import (
	"fmt"
	"sort"
	"strings"
)

// Environment holds registered templates, the filter table, and global
// variables shared by every render. The zero value is not usable; create one
// with NewEnvironment.
//
// An Environment is safe for concurrent Render calls once registration has
// finished. Register and RegisterFilter are not synchronized; callers that
// register at runtime must serialize those writes themselves.
type Environment struct {
	templates map[string]*Template
	filters   Filters

	// Globals are merged under every render's context. Context keys win.
	Globals Context

	// Strict makes undefined variable and attribute lookups errors instead of
	// silently yielding the empty string.
	Strict bool
}

// Template is a registered, parsed template.
type Template struct {
	Name   string
	Source string
	Doc    *Document

	// Root and Blocks are filled in by resolution: Root is the document of
	// the inheritance root, Blocks maps each block name to its override
	// chain, most-derived version first.
	Root   *Document
	Blocks map[string][]*BlockNode
}

func NewEnvironment() *Environment {
	return &Environment{
		templates: map[string]*Template{},
		filters:   DefaultFilters(),
		Globals:   Context{},
	}
}

// Register parses source and stores it under name. Registering an existing
// name replaces the previous template.
func (e *Environment) Register(name, source string) error {
	doc, err := Parse(source)
	if err != nil {
		return &RenderError{Template: name, Err: err}
	}
	seen := map[string]bool{}
	for _, b := range collectBlocks(doc.Nodes) {
		if seen[b.Name] {
			return &RenderError{Template: name, Err: fmt.Errorf("duplicate block name %q", b.Name)}
		}
		seen[b.Name] = true
	}
	e.templates[name] = &Template{Name: name, Source: source, Doc: doc}
	return nil
}

// RegisterFilter adds or replaces a filter available to all templates.
func (e *Environment) RegisterFilter(name string, fn FilterFunc) {
	e.filters[name] = fn
}

// Lookup returns the registered template by name.
func (e *Environment) Lookup(name string) (*Template, bool) {
	t, ok := e.templates[name]
	return t, ok
}

// Names returns the registered template names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.templates))
	for n := range e.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the named template with its inheritance chain flattened:
// the root ancestor's document plus per-block override chains.
func (e *Environment) Resolve(name string) (*Template, error) {
	return e.resolve(name)
}

// Render renders the named template with the given context. Globals are
// visible under the context; context keys shadow globals.
func (e *Environment) Render(name string, ctx Context) (string, error) {
	tpl, err := e.resolve(name)
	if err != nil {
		return "", err
	}
	s := newScope(nil)
	for k, v := range e.Globals {
		s.vars[k] = v
	}
	for k, v := range ctx {
		s.vars[k] = v
	}
	r := &Renderer{env: e, tpl: tpl}
	var sb strings.Builder
	if err := r.renderNodes(tpl.Root.Nodes, s, &sb); err != nil {
		return "", &RenderError{Template: name, Err: err}
	}
	return sb.String(), nil
}

// RenderMap is Render with a plain Go map context.
func (e *Environment) RenderMap(name string, data map[string]any) (string, error) {
	return e.Render(name, NewContextFromAny(data))
}

// RenderString parses and renders a one-off template that is not registered.
// It cannot use extends or include since those resolve against the registry.
func RenderString(source string, ctx Context) (string, error) {
	e := NewEnvironment()
	if err := e.Register("<string>", source); err != nil {
		return "", err
	}
	return e.Render("<string>", ctx)
}

// resolve flattens the extends chain of a template. The returned template
// carries the root ancestor's document plus per-block override chains so the
// renderer can pick the most-derived version and bind super().
func (e *Environment) resolve(name string) (*Template, error) {
	seen := map[string]bool{}
	var chain []string
	var docs []*Document

	cur := name
	for {
		if seen[cur] {
			return nil, &ResolveError{Name: name, Chain: append(chain, cur), Msg: "extends cycle"}
		}
		seen[cur] = true
		chain = append(chain, cur)
		tpl, ok := e.templates[cur]
		if !ok {
			return nil, &ResolveError{Name: cur, Chain: chain, Msg: "template not registered"}
		}
		docs = append(docs, tpl.Doc)
		parent, ok := extendsTarget(tpl.Doc)
		if !ok {
			break
		}
		cur = parent
	}

	resolved := &Template{
		Name:   name,
		Source: e.templates[name].Source,
		Doc:    e.templates[name].Doc,
		Root:   docs[len(docs)-1],
		Blocks: map[string][]*BlockNode{},
	}
	// docs runs child to root; collecting in that order makes each chain
	// most-derived first.
	for _, doc := range docs {
		for _, b := range collectBlocks(doc.Nodes) {
			resolved.Blocks[b.Name] = append(resolved.Blocks[b.Name], b)
		}
	}
	return resolved, nil
}

// extendsTarget reports the parent template if the document's first
// significant node is an extends statement.
func extendsTarget(doc *Document) (string, bool) {
	for _, n := range doc.Nodes {
		switch t := n.(type) {
		case *TextNode:
			if strings.TrimSpace(t.Text) == "" {
				continue
			}
			return "", false
		case *ExtendsNode:
			return t.Template, true
		default:
			return "", false
		}
	}
	return "", false
}

// collectBlocks gathers every block definition in a node tree, including
// blocks nested inside other statements.
func collectBlocks(nodes []Node) []*BlockNode {
	var out []*BlockNode
	for _, n := range nodes {
		switch t := n.(type) {
		case *BlockNode:
			out = append(out, t)
			out = append(out, collectBlocks(t.Body)...)
		case *IfNode:
			out = append(out, collectBlocks(t.Then)...)
			for _, br := range t.Elifs {
				out = append(out, collectBlocks(br.Body)...)
			}
			out = append(out, collectBlocks(t.Else)...)
		case *ForNode:
			out = append(out, collectBlocks(t.Body)...)
			out = append(out, collectBlocks(t.Else)...)
		case *SetNode:
			out = append(out, collectBlocks(t.Body)...)
		case *MacroNode:
			out = append(out, collectBlocks(t.Body)...)
		}
	}
	return out
}
