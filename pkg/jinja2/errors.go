package jinja2

import (
	"fmt"
	"strings"
)

// LexError reports a delimiter that was opened but never closed.
type LexError struct {
	Pos int
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Pos, e.Msg)
}

// ParseError reports an unexpected token or an unmatched construct.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// EvalError reports a failure while evaluating an expression: an undefined
// variable in strict mode, a type mismatch, an unknown filter, or a bad
// argument list.
type EvalError struct {
	Pos int
	Msg string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("eval error at offset %d: %s", e.Pos, e.Msg)
}

// ResolveError reports an unknown template name or a cycle in an extends
// chain. Chain holds the template names walked so far, in order.
type ResolveError struct {
	Name  string
	Chain []string
	Msg   string
}

func (e *ResolveError) Error() string {
	if len(e.Chain) > 0 {
		return fmt.Sprintf("resolve error for template %q: %s (chain: %s)",
			e.Name, e.Msg, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("resolve error for template %q: %s", e.Name, e.Msg)
}

// RenderError wraps any engine error with the template name it occurred in.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering template %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
