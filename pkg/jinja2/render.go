package jinja2

import (
	"fmt"
	"strings"
)

// Renderer walks a resolved template's AST and writes output. One renderer is
// created per top-level Render call; includes get their own sub-renderer so
// block chains stay bound to the template that owns them.
type Renderer struct {
	env *Environment
	tpl *Template
}

func (r *Renderer) renderNodes(nodes []Node, s *scope, sb *strings.Builder) error {
	for _, n := range nodes {
		if err := r.renderNode(n, s, sb); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderNode(n Node, s *scope, sb *strings.Builder) error {
	switch t := n.(type) {
	case *TextNode:
		sb.WriteString(t.Text)
	case *RawNode:
		sb.WriteString(t.Text)
	case *OutputNode:
		v, err := r.eval(t.Expr, s)
		if err != nil {
			return err
		}
		sb.WriteString(v.String())
	case *SetNode:
		if t.Expr != nil {
			v, err := r.eval(t.Expr, s)
			if err != nil {
				return err
			}
			s.set(t.Name, v)
			return nil
		}
		// Block form captures the rendered body as a string.
		var body strings.Builder
		if err := r.renderNodes(t.Body, newScope(s), &body); err != nil {
			return err
		}
		s.set(t.Name, StringValue(body.String()))
	case *IfNode:
		cond, err := r.eval(t.Cond, s)
		if err != nil {
			return err
		}
		// If-branches share the surrounding scope, so a set inside an if
		// stays visible after it. Only loops and macros isolate bindings.
		if truthy(cond) {
			return r.renderNodes(t.Then, s, sb)
		}
		for _, br := range t.Elifs {
			cond, err := r.eval(br.Cond, s)
			if err != nil {
				return err
			}
			if truthy(cond) {
				return r.renderNodes(br.Body, s, sb)
			}
		}
		return r.renderNodes(t.Else, s, sb)
	case *ForNode:
		return r.renderFor(t, s, sb)
	case *BlockNode:
		return r.renderBlock(t.Name, 0, s, sb)
	case *IncludeNode:
		inc, err := r.env.resolve(t.Template)
		if err != nil {
			return err
		}
		sub := &Renderer{env: r.env, tpl: inc}
		// Includes see the caller's variables but cannot rebind them.
		if err := sub.renderNodes(inc.Root.Nodes, newScope(s), sb); err != nil {
			return &RenderError{Template: t.Template, Err: err}
		}
	case *MacroNode:
		s.set(t.Name, &MacroValue{
			Name:     t.Name,
			Params:   t.Params,
			Body:     t.Body,
			defScope: s,
			r:        r,
		})
	case *ExtendsNode:
		return fmt.Errorf("extends is only valid as the first statement of a template")
	default:
		return fmt.Errorf("unhandled node %T", n)
	}
	return nil
}

func (r *Renderer) renderFor(n *ForNode, s *scope, sb *strings.Builder) error {
	iter, err := r.eval(n.Iter, s)
	if err != nil {
		return err
	}
	var items []iterItem
	switch iter.(type) {
	case UndefinedValue, NoneValue:
		// Lenient mode treats a missing iterable as empty.
	default:
		items, err = iterate(iter)
		if err != nil {
			return &EvalError{Pos: n.Iter.Pos(), Msg: err.Error()}
		}
	}
	if len(items) == 0 {
		return r.renderNodes(n.Else, newScope(s), sb)
	}
	total := len(items)
	for i, item := range items {
		ls := newScope(s)
		if err := bindLoopTargets(ls, n, iter, item); err != nil {
			return err
		}
		ls.set("loop", DictValue{
			"index":     IntValue(int64(i + 1)),
			"index0":    IntValue(int64(i)),
			"revindex":  IntValue(int64(total - i)),
			"revindex0": IntValue(int64(total - i - 1)),
			"first":     BoolValue(i == 0),
			"last":      BoolValue(i == total-1),
			"length":    IntValue(int64(total)),
		})
		if err := r.renderNodes(n.Body, ls, sb); err != nil {
			return err
		}
	}
	return nil
}

func bindLoopTargets(ls *scope, n *ForNode, iter Value, item iterItem) error {
	if len(n.Targets) == 1 {
		ls.set(n.Targets[0], item.val)
		return nil
	}
	// Two targets: key/value over dicts, pair unpacking over lists of pairs.
	if _, isDict := iter.(DictValue); isDict {
		ls.set(n.Targets[0], item.key)
		ls.set(n.Targets[1], item.val)
		return nil
	}
	pair, ok := item.val.(ListValue)
	if !ok || len(pair) != 2 {
		return &EvalError{Pos: n.Iter.Pos(), Msg: "cannot unpack loop item into two targets"}
	}
	ls.set(n.Targets[0], pair[0])
	ls.set(n.Targets[1], pair[1])
	return nil
}

// renderBlock renders version `depth` of the named block's override chain,
// most-derived first. super() is bound to render the next version up.
func (r *Renderer) renderBlock(name string, depth int, s *scope, sb *strings.Builder) error {
	chain := r.tpl.Blocks[name]
	if depth >= len(chain) {
		return fmt.Errorf("block %q has no definition at inheritance depth %d", name, depth)
	}
	bs := newScope(s)
	bs.set("super", CallableValue{Fn: func(args []Value, _ map[string]Value) (Value, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("super takes no arguments")
		}
		if depth+1 >= len(chain) {
			return nil, fmt.Errorf("block %q has no parent block to call super() on", name)
		}
		var parent strings.Builder
		if err := r.renderBlock(name, depth+1, s, &parent); err != nil {
			return nil, err
		}
		return StringValue(parent.String()), nil
	}})
	return r.renderNodes(chain[depth].Body, bs, sb)
}

// callMacro invokes a macro value: positional arguments first, then keyword
// arguments, then parameter defaults evaluated in the macro's defining scope.
// The rendered body is returned as a string value.
func (r *Renderer) callMacro(m *MacroValue, args []Value, kwargs map[string]Value) (Value, error) {
	if len(args) > len(m.Params) {
		return nil, fmt.Errorf("macro %q takes at most %d arguments, got %d", m.Name, len(m.Params), len(args))
	}
	ms := newScope(m.defScope)
	bound := make(map[string]bool, len(m.Params))
	for i, a := range args {
		ms.set(m.Params[i].Name, a)
		bound[m.Params[i].Name] = true
	}
	for name, v := range kwargs {
		known := false
		for _, p := range m.Params {
			if p.Name == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("macro %q has no parameter %q", m.Name, name)
		}
		if bound[name] {
			return nil, fmt.Errorf("macro %q got multiple values for parameter %q", m.Name, name)
		}
		ms.set(name, v)
		bound[name] = true
	}
	for _, p := range m.Params {
		if bound[p.Name] {
			continue
		}
		if p.Default != nil {
			v, err := m.r.eval(p.Default, m.defScope)
			if err != nil {
				return nil, err
			}
			ms.set(p.Name, v)
			continue
		}
		if m.r.env.Strict {
			return nil, fmt.Errorf("macro %q missing required argument %q", m.Name, p.Name)
		}
		ms.set(p.Name, UndefinedValue{Name: p.Name})
	}
	var sb strings.Builder
	if err := m.r.renderNodes(m.Body, ms, &sb); err != nil {
		return nil, err
	}
	return StringValue(sb.String()), nil
}
