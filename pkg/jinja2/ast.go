package jinja2

// Node is any AST node in a parsed Jinja2 template.
type Node interface {
	node()
}

// Expr is an expression sub-tree evaluated against a scope.
type Expr interface {
	Node
	// Pos returns the byte offset of the expression in the template source.
	Pos() int
}

// Document is the root node produced by Parse.
type Document struct {
	Nodes []Node
}

func (*Document) node() {}

// TextNode represents literal text between tags.
type TextNode struct {
	Text string
}

func (*TextNode) node() {}

// OutputNode represents an output expression: {{ expr }}
type OutputNode struct {
	Expr Expr
}

func (*OutputNode) node() {}

// RawNode represents a raw block where delimiters are not parsed.
// It is produced by: {% raw %}...{% endraw %}
type RawNode struct {
	Text string
}

func (*RawNode) node() {}

// SetNode represents an assignment. The inline form {% set name = expr %}
// carries Expr; the block form {% set name %}...{% endset %} carries Body and
// captures its rendered text.
type SetNode struct {
	Name string
	Expr Expr
	Body []Node
}

func (*SetNode) node() {}

// IfNode represents an if/elif/else block.
type IfNode struct {
	Cond  Expr
	Then  []Node
	Elifs []ElifBranch
	Else  []Node
}

func (*IfNode) node() {}

// ElifBranch is a single elif condition with its body.
type ElifBranch struct {
	Cond Expr
	Body []Node
}

// ForNode represents a for loop: {% for target[, target] in iterable %}
// The Else body renders when the iterable is empty.
type ForNode struct {
	Targets []string
	Iter    Expr
	Body    []Node
	Else    []Node
}

func (*ForNode) node() {}

// BlockNode represents a named, overridable region used by inheritance.
type BlockNode struct {
	Name string
	Body []Node
}

func (*BlockNode) node() {}

// ExtendsNode declares that this template extends a parent template.
type ExtendsNode struct {
	Template string
}

func (*ExtendsNode) node() {}

// IncludeNode includes another template by name.
type IncludeNode struct {
	Template string
}

func (*IncludeNode) node() {}

// MacroNode defines a named, parameterized fragment.
type MacroNode struct {
	Name   string
	Params []MacroParam
	Body   []Node
}

func (*MacroNode) node() {}

// MacroParam is a macro parameter with an optional default expression.
type MacroParam struct {
	Name    string
	Default Expr
}

// Expression nodes.

// LiteralExpr is a constant: number, string, true/false/none, written
// directly in the template.
type LiteralExpr struct {
	Val    Value
	OffPos int
}

func (*LiteralExpr) node()      {}
func (e *LiteralExpr) Pos() int { return e.OffPos }

// NameExpr looks up a variable in the scope chain.
type NameExpr struct {
	Name   string
	OffPos int
}

func (*NameExpr) node()      {}
func (e *NameExpr) Pos() int { return e.OffPos }

// ListExpr is a list literal: [a, b, c]
type ListExpr struct {
	Items  []Expr
	OffPos int
}

func (*ListExpr) node()      {}
func (e *ListExpr) Pos() int { return e.OffPos }

// DictExpr is a dict literal: {'k': v, ...}
type DictExpr struct {
	Keys   []Expr
	Values []Expr
	OffPos int
}

func (*DictExpr) node()      {}
func (e *DictExpr) Pos() int { return e.OffPos }

// TupleExpr is a parenthesized tuple: (a, b). It evaluates like a list.
type TupleExpr struct {
	Items  []Expr
	OffPos int
}

func (*TupleExpr) node()      {}
func (e *TupleExpr) Pos() int { return e.OffPos }

// AttrExpr is attribute access: x.name
type AttrExpr struct {
	X      Expr
	Name   string
	OffPos int
}

func (*AttrExpr) node()      {}
func (e *AttrExpr) Pos() int { return e.OffPos }

// IndexExpr is subscript access: x[i]
type IndexExpr struct {
	X      Expr
	Index  Expr
	OffPos int
}

func (*IndexExpr) node()      {}
func (e *IndexExpr) Pos() int { return e.OffPos }

// CallExpr invokes a callable value (a macro or a context function).
type CallExpr struct {
	Fn     Expr
	Args   []Expr
	Kwargs []Kwarg
	OffPos int
}

func (*CallExpr) node()      {}
func (e *CallExpr) Pos() int { return e.OffPos }

// Kwarg is a keyword argument in a call: name=expr
type Kwarg struct {
	Name  string
	Value Expr
}

// FilterExpr applies a named filter to its input: x | name(args)
type FilterExpr struct {
	X      Expr
	Name   string
	Args   []Expr
	OffPos int
}

func (*FilterExpr) node()      {}
func (e *FilterExpr) Pos() int { return e.OffPos }

// UnaryExpr is 'not x' or '-x'.
type UnaryExpr struct {
	Op     string
	X      Expr
	OffPos int
}

func (*UnaryExpr) node()      {}
func (e *UnaryExpr) Pos() int { return e.OffPos }

// BinaryExpr covers logical, comparison, additive, and multiplicative
// operators, plus 'in'/'not in' membership and '~' concatenation.
type BinaryExpr struct {
	Op     string
	L, R   Expr
	OffPos int
}

func (*BinaryExpr) node()      {}
func (e *BinaryExpr) Pos() int { return e.OffPos }

// CondExpr is the inline conditional: a if cond else b
type CondExpr struct {
	Cond   Expr
	Then   Expr
	Else   Expr
	OffPos int
}

func (*CondExpr) node()      {}
func (e *CondExpr) Pos() int { return e.OffPos }
