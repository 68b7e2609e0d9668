package jinja2

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a Jinja2 template string into a Document AST. It recognizes
// text, output expressions, comments, and the block statements if/elif/else,
// for/else, set (inline and block form), block, extends, include, macro, and
// raw. Expressions inside tags are parsed into an expression AST with
// standard precedence.
func Parse(src string) (*Document, error) {
	p := &parser{l: newLexer([]byte(src))}
	nodes, endTag, _, err := p.parseNodes(nil)
	if err != nil {
		return nil, err
	}
	if endTag != "" {
		return nil, &ParseError{Pos: p.l.i, Msg: fmt.Sprintf("unexpected {%% %s %%}", endTag)}
	}
	return &Document{Nodes: nodes}, nil
}

type parser struct {
	l *lexer

	// open tracks the kinds of unclosed paired constructs so EOF errors can
	// name the construct left open.
	open []string

	// trimNext strips leading whitespace from the next text node, set by a
	// '-%}' or '-}}' close marker.
	trimNext bool
}

func (p *parser) pushOpen(kind string) { p.open = append(p.open, kind) }
func (p *parser) popOpen()             { p.open = p.open[:len(p.open)-1] }

func (p *parser) unclosedErr(pos int) error {
	if len(p.open) > 0 {
		return &ParseError{Pos: pos, Msg: fmt.Sprintf("unclosed {%% %s %%}: missing {%% end%s %%}", p.open[len(p.open)-1], p.open[len(p.open)-1])}
	}
	return &ParseError{Pos: pos, Msg: "unexpected end of template"}
}

func (p *parser) appendText(nodes []Node, text string) []Node {
	if p.trimNext {
		text = strings.TrimLeft(text, " \t\r\n")
		p.trimNext = false
	}
	if text == "" {
		return nodes
	}
	return append(nodes, &TextNode{Text: text})
}

// trimPrevText strips trailing whitespace from the last text node, applying a
// '{{-' or '{%-' open marker.
func trimPrevText(nodes []Node) {
	if len(nodes) == 0 {
		return
	}
	if tn, ok := nodes[len(nodes)-1].(*TextNode); ok {
		tn.Text = strings.TrimRight(tn.Text, " \t\r\n")
	}
}

// parseNodes parses until an ending statement with a name in `until` is
// encountered. If `until` is nil, parses to EOF. The end tag's remaining
// tokens are returned for the caller to inspect (e.g. the elif condition).
func (p *parser) parseNodes(until map[string]bool) (nodes []Node, endTag string, endToks []token, err error) {
	for {
		tok := p.l.nextTokenOutside()
		switch tok.kind {
		case tokEOF:
			if len(until) > 0 {
				return nil, "", nil, p.unclosedErr(tok.pos)
			}
			return nodes, "", nil, nil
		case tokText:
			nodes = p.appendText(nodes, tok.val)
		case tokVarStart:
			if tok.trim {
				trimPrevText(nodes)
			}
			p.trimNext = false
			expr, end, err := p.readExprTag(tok.pos)
			if err != nil {
				return nil, "", nil, err
			}
			p.trimNext = end.trim
			nodes = append(nodes, &OutputNode{Expr: expr})
		case tokCommStart:
			p.trimNext = false
			if !p.l.skipComment() {
				return nil, "", nil, &LexError{Pos: tok.pos, Msg: "unterminated comment tag {# ... #}"}
			}
		case tokStmtStart:
			if tok.trim {
				trimPrevText(nodes)
			}
			p.trimNext = false
			name, toks, end, err := p.readStmtTag(tok.pos)
			if err != nil {
				return nil, "", nil, err
			}
			p.trimNext = end.trim
			if until[name] {
				return nodes, name, toks, nil
			}
			n, err := p.parseStatement(name, toks, tok.pos)
			if err != nil {
				return nil, "", nil, err
			}
			if n != nil {
				nodes = append(nodes, n)
			}
		default:
			return nil, "", nil, &ParseError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %s outside tag", tok.kind)}
		}
	}
}

// readExprTag reads the tokens of a {{ ... }} tag and parses them as one
// expression.
func (p *parser) readExprTag(openPos int) (Expr, token, error) {
	toks, end, err := p.readTagTokens(tokVarEnd, openPos, "{{ ... }}")
	if err != nil {
		return nil, token{}, err
	}
	if len(toks) == 0 {
		return nil, token{}, &ParseError{Pos: openPos, Msg: "empty expression tag"}
	}
	expr, err := parseExprTokens(toks, end.pos)
	if err != nil {
		return nil, token{}, err
	}
	return expr, end, nil
}

// readStmtTag reads the tokens of a {% ... %} tag, returning the statement
// keyword and the remaining tokens.
func (p *parser) readStmtTag(openPos int) (string, []token, token, error) {
	toks, end, err := p.readTagTokens(tokStmtEnd, openPos, "{% ... %}")
	if err != nil {
		return "", nil, token{}, err
	}
	if len(toks) == 0 || toks[0].kind != tokName {
		return "", nil, token{}, &ParseError{Pos: openPos, Msg: "statement tag requires a keyword"}
	}
	return toks[0].val, toks[1:], end, nil
}

func (p *parser) readTagTokens(close tokenKind, openPos int, form string) ([]token, token, error) {
	var toks []token
	for {
		t, err := p.l.nextTokenInside(close)
		if err != nil {
			return nil, token{}, err
		}
		switch t.kind {
		case close:
			return toks, t, nil
		case tokEOF:
			return nil, token{}, &LexError{Pos: openPos, Msg: "unterminated tag " + form}
		default:
			toks = append(toks, t)
		}
	}
}

func (p *parser) parseStatement(name string, toks []token, pos int) (Node, error) {
	switch name {
	case "raw":
		if len(toks) != 0 {
			return nil, &ParseError{Pos: pos, Msg: "raw takes no arguments"}
		}
		text, ok := p.l.scanRawBlock()
		if !ok {
			return nil, &ParseError{Pos: pos, Msg: "unclosed {% raw %}: missing {% endraw %}"}
		}
		return &RawNode{Text: text}, nil
	case "if":
		return p.parseIf(toks, pos)
	case "for":
		return p.parseFor(toks, pos)
	case "set":
		return p.parseSet(toks, pos)
	case "block":
		return p.parseBlock(toks, pos)
	case "macro":
		return p.parseMacro(toks, pos)
	case "extends":
		t, err := singleString(toks, pos, "extends")
		if err != nil {
			return nil, err
		}
		return &ExtendsNode{Template: t}, nil
	case "include":
		t, err := singleString(toks, pos, "include")
		if err != nil {
			return nil, err
		}
		return &IncludeNode{Template: t}, nil
	case "elif", "else", "endif", "endfor", "endblock", "endset", "endmacro", "endraw":
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("unexpected {%% %s %%}", name)}
	default:
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("unknown statement keyword %q", name)}
	}
}

func singleString(toks []token, pos int, stmt string) (string, error) {
	if len(toks) != 1 || toks[0].kind != tokString || toks[0].val == "" {
		return "", &ParseError{Pos: pos, Msg: stmt + " expects a quoted template name"}
	}
	return toks[0].val, nil
}

func (p *parser) parseIf(toks []token, pos int) (*IfNode, error) {
	cond, err := parseExprTokens(toks, pos)
	if err != nil {
		return nil, err
	}
	n := &IfNode{Cond: cond}
	p.pushOpen("if")
	defer p.popOpen()
	body, endTag, endToks, err := p.parseNodes(map[string]bool{"elif": true, "else": true, "endif": true})
	if err != nil {
		return nil, err
	}
	n.Then = body
	for endTag == "elif" {
		branch := ElifBranch{}
		branch.Cond, err = parseExprTokens(endToks, pos)
		if err != nil {
			return nil, err
		}
		branch.Body, endTag, endToks, err = p.parseNodes(map[string]bool{"elif": true, "else": true, "endif": true})
		if err != nil {
			return nil, err
		}
		n.Elifs = append(n.Elifs, branch)
	}
	if endTag == "else" {
		n.Else, endTag, _, err = p.parseNodes(map[string]bool{"endif": true})
		if err != nil {
			return nil, err
		}
	}
	if endTag != "endif" {
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("expected endif, got %q", endTag)}
	}
	return n, nil
}

func (p *parser) parseFor(toks []token, pos int) (*ForNode, error) {
	// Targets: one or two names separated by a comma, then 'in'.
	var targets []string
	i := 0
	for {
		if i >= len(toks) || toks[i].kind != tokName {
			return nil, &ParseError{Pos: pos, Msg: "for expects 'target in iterable'"}
		}
		targets = append(targets, toks[i].val)
		i++
		if i < len(toks) && toks[i].kind == tokOp && toks[i].val == "," {
			i++
			continue
		}
		break
	}
	if len(targets) > 2 {
		return nil, &ParseError{Pos: pos, Msg: "for supports at most two loop targets"}
	}
	if i >= len(toks) || toks[i].kind != tokName || toks[i].val != "in" {
		return nil, &ParseError{Pos: pos, Msg: "for expects 'in' after loop target"}
	}
	iter, err := parseExprTokens(toks[i+1:], pos)
	if err != nil {
		return nil, err
	}
	n := &ForNode{Targets: targets, Iter: iter}
	p.pushOpen("for")
	defer p.popOpen()
	body, endTag, _, err := p.parseNodes(map[string]bool{"else": true, "endfor": true})
	if err != nil {
		return nil, err
	}
	n.Body = body
	if endTag == "else" {
		n.Else, endTag, _, err = p.parseNodes(map[string]bool{"endfor": true})
		if err != nil {
			return nil, err
		}
	}
	if endTag != "endfor" {
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("expected endfor, got %q", endTag)}
	}
	return n, nil
}

func (p *parser) parseSet(toks []token, pos int) (*SetNode, error) {
	if len(toks) == 0 || toks[0].kind != tokName {
		return nil, &ParseError{Pos: pos, Msg: "set expects a variable name"}
	}
	name := toks[0].val
	if len(toks) == 1 {
		// Block form: {% set name %}...{% endset %} captures rendered text.
		p.pushOpen("set")
		defer p.popOpen()
		body, endTag, _, err := p.parseNodes(map[string]bool{"endset": true})
		if err != nil {
			return nil, err
		}
		if endTag != "endset" {
			return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("expected endset, got %q", endTag)}
		}
		return &SetNode{Name: name, Body: body}, nil
	}
	if toks[1].kind != tokOp || toks[1].val != "=" {
		return nil, &ParseError{Pos: pos, Msg: "set expects '=' after the variable name"}
	}
	expr, err := parseExprTokens(toks[2:], pos)
	if err != nil {
		return nil, err
	}
	return &SetNode{Name: name, Expr: expr}, nil
}

func (p *parser) parseBlock(toks []token, pos int) (*BlockNode, error) {
	if len(toks) != 1 || toks[0].kind != tokName {
		return nil, &ParseError{Pos: pos, Msg: "block requires a name"}
	}
	name := toks[0].val
	p.pushOpen("block")
	defer p.popOpen()
	body, endTag, endToks, err := p.parseNodes(map[string]bool{"endblock": true})
	if err != nil {
		return nil, err
	}
	if endTag != "endblock" {
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("expected endblock for block %q, got %q", name, endTag)}
	}
	if len(endToks) == 1 && endToks[0].kind == tokName && endToks[0].val != name {
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("endblock name %q does not match block name %q", endToks[0].val, name)}
	}
	return &BlockNode{Name: name, Body: body}, nil
}

func (p *parser) parseMacro(toks []token, pos int) (*MacroNode, error) {
	if len(toks) < 3 || toks[0].kind != tokName {
		return nil, &ParseError{Pos: pos, Msg: "macro expects 'name(params)'"}
	}
	n := &MacroNode{Name: toks[0].val}
	ep := &exprParser{toks: toks[1:], end: pos}
	if !ep.acceptOp("(") {
		return nil, &ParseError{Pos: pos, Msg: "macro expects a parameter list"}
	}
	for !ep.acceptOp(")") {
		t := ep.next()
		if t.kind != tokName {
			return nil, &ParseError{Pos: t.pos, Msg: "macro parameter must be a name"}
		}
		param := MacroParam{Name: t.val}
		if ep.acceptOp("=") {
			def, err := ep.parseExpr()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		n.Params = append(n.Params, param)
		if !ep.acceptOp(",") && !ep.peekOp(")") {
			return nil, &ParseError{Pos: ep.peek().pos, Msg: "expected ',' or ')' in macro parameter list"}
		}
	}
	if ep.i != len(ep.toks) {
		return nil, &ParseError{Pos: ep.peek().pos, Msg: "unexpected tokens after macro parameter list"}
	}
	p.pushOpen("macro")
	defer p.popOpen()
	body, endTag, _, err := p.parseNodes(map[string]bool{"endmacro": true})
	if err != nil {
		return nil, err
	}
	if endTag != "endmacro" {
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("expected endmacro, got %q", endTag)}
	}
	n.Body = body
	return n, nil
}

// scanRawBlock consumes raw text up to the matching {% endraw %} without
// interpreting delimiters. It reports whether the end tag was found.
func (l *lexer) scanRawBlock() (string, bool) {
	start := l.i
	for l.i < l.n {
		if l.hasPrefix("{%") {
			tagStart := l.i
			j := l.i + 2
			if j < l.n && l.src[j] == '-' {
				j++
			}
			for j < l.n && isSpace(l.src[j]) {
				j++
			}
			if j+6 <= l.n && string(l.src[j:j+6]) == "endraw" {
				j += 6
				for j < l.n && isSpace(l.src[j]) {
					j++
				}
				if j < l.n && l.src[j] == '-' {
					j++
				}
				if j+2 <= l.n && string(l.src[j:j+2]) == "%}" {
					l.i = j + 2
					return string(l.src[start:tagStart]), true
				}
			}
		}
		l.i++
	}
	return "", false
}

// Expression sub-grammar. Precedence, loosest binding first:
//
//	a if c else b
//	or
//	and
//	not
//	== != < <= > >= in, not in
//	+ - ~
//	* / // %
//	unary -
//	| filter
//	.attr [index] (call)
//	literals, names, (expr), [list], {dict}
func parseExprTokens(toks []token, end int) (Expr, error) {
	ep := &exprParser{toks: toks, end: end}
	e, err := ep.parseExpr()
	if err != nil {
		return nil, err
	}
	if ep.i != len(ep.toks) {
		t := ep.peek()
		return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %s %q in expression", t.kind, t.val)}
	}
	return e, nil
}

type exprParser struct {
	toks []token
	i    int
	end  int
}

func (ep *exprParser) peek() token {
	if ep.i >= len(ep.toks) {
		return token{kind: tokEOF, pos: ep.end}
	}
	return ep.toks[ep.i]
}

func (ep *exprParser) next() token {
	t := ep.peek()
	if t.kind != tokEOF {
		ep.i++
	}
	return t
}

func (ep *exprParser) peekOp(val string) bool {
	t := ep.peek()
	return t.kind == tokOp && t.val == val
}

func (ep *exprParser) acceptOp(val string) bool {
	if ep.peekOp(val) {
		ep.i++
		return true
	}
	return false
}

func (ep *exprParser) peekName(val string) bool {
	t := ep.peek()
	return t.kind == tokName && t.val == val
}

func (ep *exprParser) acceptName(val string) bool {
	if ep.peekName(val) {
		ep.i++
		return true
	}
	return false
}

func (ep *exprParser) expectOp(val string) error {
	t := ep.peek()
	if t.kind == tokOp && t.val == val {
		ep.i++
		return nil
	}
	return &ParseError{Pos: t.pos, Msg: fmt.Sprintf("expected %q, got %s %q", val, t.kind, t.val)}
}

func (ep *exprParser) parseExpr() (Expr, error) {
	e, err := ep.parseOr()
	if err != nil {
		return nil, err
	}
	if ep.peekName("if") {
		pos := ep.next().pos
		cond, err := ep.parseOr()
		if err != nil {
			return nil, err
		}
		if !ep.acceptName("else") {
			return nil, &ParseError{Pos: ep.peek().pos, Msg: "inline conditional requires 'else'"}
		}
		els, err := ep.parseExpr()
		if err != nil {
			return nil, err
		}
		return &CondExpr{Cond: cond, Then: e, Else: els, OffPos: pos}, nil
	}
	return e, nil
}

func (ep *exprParser) parseOr() (Expr, error) {
	e, err := ep.parseAnd()
	if err != nil {
		return nil, err
	}
	for ep.peekName("or") {
		pos := ep.next().pos
		r, err := ep.parseAnd()
		if err != nil {
			return nil, err
		}
		e = &BinaryExpr{Op: "or", L: e, R: r, OffPos: pos}
	}
	return e, nil
}

func (ep *exprParser) parseAnd() (Expr, error) {
	e, err := ep.parseNot()
	if err != nil {
		return nil, err
	}
	for ep.peekName("and") {
		pos := ep.next().pos
		r, err := ep.parseNot()
		if err != nil {
			return nil, err
		}
		e = &BinaryExpr{Op: "and", L: e, R: r, OffPos: pos}
	}
	return e, nil
}

func (ep *exprParser) parseNot() (Expr, error) {
	if ep.peekName("not") {
		pos := ep.next().pos
		x, err := ep.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "not", X: x, OffPos: pos}, nil
	}
	return ep.parseComparison()
}

func (ep *exprParser) parseComparison() (Expr, error) {
	e, err := ep.parseAdditive()
	if err != nil {
		return nil, err
	}
	t := ep.peek()
	var op string
	switch {
	case t.kind == tokOp && (t.val == "==" || t.val == "!=" || t.val == "<" || t.val == "<=" || t.val == ">" || t.val == ">="):
		op = t.val
		ep.next()
	case t.kind == tokName && t.val == "in":
		op = "in"
		ep.next()
	case t.kind == tokName && t.val == "not" && ep.i+1 < len(ep.toks) && ep.toks[ep.i+1].kind == tokName && ep.toks[ep.i+1].val == "in":
		op = "not in"
		ep.next()
		ep.next()
	default:
		return e, nil
	}
	r, err := ep.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op, L: e, R: r, OffPos: t.pos}, nil
}

func (ep *exprParser) parseAdditive() (Expr, error) {
	e, err := ep.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := ep.peek()
		if t.kind != tokOp || (t.val != "+" && t.val != "-" && t.val != "~") {
			return e, nil
		}
		ep.next()
		r, err := ep.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		e = &BinaryExpr{Op: t.val, L: e, R: r, OffPos: t.pos}
	}
}

func (ep *exprParser) parseMultiplicative() (Expr, error) {
	e, err := ep.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := ep.peek()
		if t.kind != tokOp || (t.val != "*" && t.val != "/" && t.val != "//" && t.val != "%") {
			return e, nil
		}
		ep.next()
		r, err := ep.parseUnary()
		if err != nil {
			return nil, err
		}
		e = &BinaryExpr{Op: t.val, L: e, R: r, OffPos: t.pos}
	}
}

func (ep *exprParser) parseUnary() (Expr, error) {
	if ep.peekOp("-") {
		pos := ep.next().pos
		x, err := ep.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: "-", X: x, OffPos: pos}, nil
	}
	return ep.parsePipeline()
}

func (ep *exprParser) parsePipeline() (Expr, error) {
	e, err := ep.parsePostfix()
	if err != nil {
		return nil, err
	}
	for ep.peekOp("|") {
		pos := ep.next().pos
		t := ep.next()
		if t.kind != tokName {
			return nil, &ParseError{Pos: t.pos, Msg: "filter name expected after '|'"}
		}
		f := &FilterExpr{X: e, Name: t.val, OffPos: pos}
		if ep.acceptOp("(") {
			for !ep.acceptOp(")") {
				arg, err := ep.parseExpr()
				if err != nil {
					return nil, err
				}
				f.Args = append(f.Args, arg)
				if !ep.acceptOp(",") && !ep.peekOp(")") {
					return nil, &ParseError{Pos: ep.peek().pos, Msg: "expected ',' or ')' in filter arguments"}
				}
			}
		}
		e = f
	}
	return e, nil
}

func (ep *exprParser) parsePostfix() (Expr, error) {
	e, err := ep.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case ep.peekOp("."):
			pos := ep.next().pos
			t := ep.next()
			if t.kind != tokName {
				return nil, &ParseError{Pos: t.pos, Msg: "attribute name expected after '.'"}
			}
			e = &AttrExpr{X: e, Name: t.val, OffPos: pos}
		case ep.peekOp("["):
			pos := ep.next().pos
			idx, err := ep.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := ep.expectOp("]"); err != nil {
				return nil, err
			}
			e = &IndexExpr{X: e, Index: idx, OffPos: pos}
		case ep.peekOp("("):
			pos := ep.next().pos
			call := &CallExpr{Fn: e, OffPos: pos}
			for !ep.acceptOp(")") {
				// A name followed by '=' is a keyword argument.
				if t := ep.peek(); t.kind == tokName && ep.i+1 < len(ep.toks) &&
					ep.toks[ep.i+1].kind == tokOp && ep.toks[ep.i+1].val == "=" {
					ep.next()
					ep.next()
					v, err := ep.parseExpr()
					if err != nil {
						return nil, err
					}
					call.Kwargs = append(call.Kwargs, Kwarg{Name: t.val, Value: v})
				} else {
					arg, err := ep.parseExpr()
					if err != nil {
						return nil, err
					}
					call.Args = append(call.Args, arg)
				}
				if !ep.acceptOp(",") && !ep.peekOp(")") {
					return nil, &ParseError{Pos: ep.peek().pos, Msg: "expected ',' or ')' in call arguments"}
				}
			}
			e = call
		default:
			return e, nil
		}
	}
}

func (ep *exprParser) parsePrimary() (Expr, error) {
	t := ep.next()
	switch t.kind {
	case tokNumber:
		if strings.Contains(t.val, ".") {
			f, err := strconv.ParseFloat(t.val, 64)
			if err != nil {
				return nil, &ParseError{Pos: t.pos, Msg: "invalid float literal " + t.val}
			}
			return &LiteralExpr{Val: FloatValue(f), OffPos: t.pos}, nil
		}
		n, err := strconv.ParseInt(t.val, 10, 64)
		if err != nil {
			return nil, &ParseError{Pos: t.pos, Msg: "invalid integer literal " + t.val}
		}
		return &LiteralExpr{Val: IntValue(n), OffPos: t.pos}, nil
	case tokString:
		return &LiteralExpr{Val: StringValue(t.val), OffPos: t.pos}, nil
	case tokName:
		switch t.val {
		case "true", "True":
			return &LiteralExpr{Val: BoolValue(true), OffPos: t.pos}, nil
		case "false", "False":
			return &LiteralExpr{Val: BoolValue(false), OffPos: t.pos}, nil
		case "none", "None":
			return &LiteralExpr{Val: NoneValue{}, OffPos: t.pos}, nil
		}
		return &NameExpr{Name: t.val, OffPos: t.pos}, nil
	case tokOp:
		switch t.val {
		case "(":
			first, err := ep.parseExpr()
			if err != nil {
				return nil, err
			}
			if ep.acceptOp(")") {
				return first, nil
			}
			tuple := &TupleExpr{Items: []Expr{first}, OffPos: t.pos}
			for ep.acceptOp(",") {
				if ep.peekOp(")") {
					break
				}
				item, err := ep.parseExpr()
				if err != nil {
					return nil, err
				}
				tuple.Items = append(tuple.Items, item)
			}
			if err := ep.expectOp(")"); err != nil {
				return nil, err
			}
			return tuple, nil
		case "[":
			list := &ListExpr{OffPos: t.pos}
			for !ep.acceptOp("]") {
				item, err := ep.parseExpr()
				if err != nil {
					return nil, err
				}
				list.Items = append(list.Items, item)
				if !ep.acceptOp(",") && !ep.peekOp("]") {
					return nil, &ParseError{Pos: ep.peek().pos, Msg: "expected ',' or ']' in list literal"}
				}
			}
			return list, nil
		case "{":
			dict := &DictExpr{OffPos: t.pos}
			for !ep.acceptOp("}") {
				key, err := ep.parseExpr()
				if err != nil {
					return nil, err
				}
				if err := ep.expectOp(":"); err != nil {
					return nil, err
				}
				val, err := ep.parseExpr()
				if err != nil {
					return nil, err
				}
				dict.Keys = append(dict.Keys, key)
				dict.Values = append(dict.Values, val)
				if !ep.acceptOp(",") && !ep.peekOp("}") {
					return nil, &ParseError{Pos: ep.peek().pos, Msg: "expected ',' or '}' in dict literal"}
				}
			}
			return dict, nil
		}
	}
	return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %s %q in expression", t.kind, t.val)}
}
