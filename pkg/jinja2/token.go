package jinja2

// Token kinds cover the three Jinja2 delimiter forms plus the tokens produced
// inside a tag: names, literals, and operators.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokText
	tokVarStart  // {{ or {{-
	tokVarEnd    // }} or -}}
	tokStmtStart // {% or {%-
	tokStmtEnd   // %} or -%}
	tokCommStart // {#
	tokCommEnd   // #}
	tokName      // identifier or keyword
	tokNumber    // integer or float literal
	tokString    // quoted string literal
	tokOp        // operator or punctuation
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokText:
		return "text"
	case tokVarStart:
		return "'{{'"
	case tokVarEnd:
		return "'}}'"
	case tokStmtStart:
		return "'{%'"
	case tokStmtEnd:
		return "'%}'"
	case tokCommStart:
		return "'{#'"
	case tokCommEnd:
		return "'#}'"
	case tokName:
		return "name"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokOp:
		return "operator"
	}
	return "token"
}

type token struct {
	kind tokenKind
	val  string
	pos  int // byte offset in source
	trim bool
}
