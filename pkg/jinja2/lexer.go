package jinja2

// The lexer scans template source in three modes: raw text (default),
// expression tags {{ }}, and statement tags {% %}. Comments {# #} are
// consumed and discarded. Inside a tag it produces real tokens (names,
// literals, operators) rather than opaque content.

type lexer struct {
	src []byte
	i   int
	n   int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, n: len(src)}
}

func (l *lexer) peek() byte {
	if l.i >= l.n {
		return 0
	}
	return l.src[l.i]
}

func (l *lexer) peekAt(off int) byte {
	if l.i+off >= l.n {
		return 0
	}
	return l.src[l.i+off]
}

func (l *lexer) hasPrefix(s string) bool {
	if l.i+len(s) > l.n {
		return false
	}
	for j := 0; j < len(s); j++ {
		if l.src[l.i+j] != s[j] {
			return false
		}
	}
	return true
}

// nextTokenOutside scans in raw-text mode and emits either a text token up to
// the next opening delimiter, an opening delimiter token, or EOF. Opening
// delimiters followed by '-' carry a trim flag; the parser applies it to the
// adjacent text node.
func (l *lexer) nextTokenOutside() token {
	if l.i >= l.n {
		return token{kind: tokEOF, pos: l.i}
	}
	start := l.i
	for l.i < l.n {
		if l.peek() == '{' && l.i+2 <= l.n {
			var kind tokenKind
			switch l.peekAt(1) {
			case '{':
				kind = tokVarStart
			case '%':
				kind = tokStmtStart
			case '#':
				kind = tokCommStart
			}
			if kind != 0 {
				if l.i > start {
					return token{kind: tokText, val: string(l.src[start:l.i]), pos: start}
				}
				l.i += 2
				tok := token{kind: kind, pos: start}
				if kind != tokCommStart && l.peek() == '-' {
					l.i++
					tok.trim = true
				}
				return tok
			}
		}
		l.i++
	}
	return token{kind: tokText, val: string(l.src[start:l.n]), pos: start}
}

// skipComment consumes input up to and including the closing '#}'. It reports
// whether the comment was terminated.
func (l *lexer) skipComment() bool {
	for l.i < l.n {
		if l.hasPrefix("#}") {
			l.i += 2
			return true
		}
		l.i++
	}
	return false
}

// nextTokenInside scans inside a tag of the given closing kind. It returns
// tokEOF if the tag is never closed; the parser turns that into a LexError
// anchored at the opening delimiter.
func (l *lexer) nextTokenInside(close tokenKind) (token, error) {
	for l.i < l.n && isSpace(l.src[l.i]) {
		l.i++
	}
	if l.i >= l.n {
		return token{kind: tokEOF, pos: l.i}, nil
	}
	start := l.i

	// Closing delimiters, including the trim variants, take priority over
	// operator scanning so '-}}' is not read as a minus.
	if close == tokVarEnd {
		if l.hasPrefix("-}}") {
			l.i += 3
			return token{kind: tokVarEnd, pos: start, trim: true}, nil
		}
		if l.hasPrefix("}}") {
			l.i += 2
			return token{kind: tokVarEnd, pos: start}, nil
		}
	}
	if close == tokStmtEnd {
		if l.hasPrefix("-%}") {
			l.i += 3
			return token{kind: tokStmtEnd, pos: start, trim: true}, nil
		}
		if l.hasPrefix("%}") {
			l.i += 2
			return token{kind: tokStmtEnd, pos: start}, nil
		}
	}

	c := l.src[l.i]
	switch {
	case isNameStart(c):
		for l.i < l.n && isNameChar(l.src[l.i]) {
			l.i++
		}
		return token{kind: tokName, val: string(l.src[start:l.i]), pos: start}, nil
	case c >= '0' && c <= '9':
		for l.i < l.n && l.src[l.i] >= '0' && l.src[l.i] <= '9' {
			l.i++
		}
		if l.peek() == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
			l.i++
			for l.i < l.n && l.src[l.i] >= '0' && l.src[l.i] <= '9' {
				l.i++
			}
		}
		return token{kind: tokNumber, val: string(l.src[start:l.i]), pos: start}, nil
	case c == '\'' || c == '"':
		return l.scanString(c)
	}

	for _, op := range [...]string{"==", "!=", "<=", ">=", "//", "**"} {
		if l.hasPrefix(op) {
			l.i += 2
			return token{kind: tokOp, val: op, pos: start}, nil
		}
	}
	switch c {
	case '+', '-', '*', '/', '%', '|', '.', ',', ':', '(', ')', '[', ']', '{', '}', '<', '>', '=', '~':
		l.i++
		return token{kind: tokOp, val: string(c), pos: start}, nil
	}
	return token{}, &LexError{Pos: start, Msg: "unexpected character " + string(c) + " inside tag"}
}

func (l *lexer) scanString(quote byte) (token, error) {
	start := l.i
	l.i++ // opening quote
	var out []byte
	for l.i < l.n {
		c := l.src[l.i]
		if c == quote {
			l.i++
			return token{kind: tokString, val: string(out), pos: start}, nil
		}
		if c == '\\' && l.i+1 < l.n {
			l.i++
			switch l.src[l.i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, l.src[l.i])
			}
			l.i++
			continue
		}
		out = append(out, c)
		l.i++
	}
	return token{}, &LexError{Pos: start, Msg: "unterminated string literal"}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameChar(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}
