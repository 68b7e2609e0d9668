package jinja2

import (
	"testing"
)

func lexInside(t *testing.T, src string, close tokenKind) []token {
	t.Helper()
	l := newLexer([]byte(src))
	var toks []token
	for {
		tok, err := l.nextTokenInside(close)
		if err != nil {
			t.Fatalf("lex error: %v", err)
		}
		if tok.kind == tokEOF || tok.kind == close {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestLexOutsideSplitsTextAndDelimiters(t *testing.T) {
	l := newLexer([]byte("Hello {{ name }}!"))
	tok := l.nextTokenOutside()
	if tok.kind != tokText || tok.val != "Hello " {
		t.Fatalf("want text 'Hello ', got %v %q", tok.kind, tok.val)
	}
	tok = l.nextTokenOutside()
	if tok.kind != tokVarStart || tok.trim {
		t.Fatalf("want '{{', got %v trim=%v", tok.kind, tok.trim)
	}
}

func TestLexTrimMarkers(t *testing.T) {
	l := newLexer([]byte("a {{- x -}} b"))
	l.nextTokenOutside() // text "a "
	open := l.nextTokenOutside()
	if open.kind != tokVarStart || !open.trim {
		t.Fatalf("want trimmed '{{-', got %v trim=%v", open.kind, open.trim)
	}
	name, err := l.nextTokenInside(tokVarEnd)
	if err != nil || name.kind != tokName || name.val != "x" {
		t.Fatalf("want name x, got %v %q err=%v", name.kind, name.val, err)
	}
	end, err := l.nextTokenInside(tokVarEnd)
	if err != nil || end.kind != tokVarEnd || !end.trim {
		t.Fatalf("want trimmed '-}}', got %v trim=%v err=%v", end.kind, end.trim, err)
	}
}

func TestLexInsideTokens(t *testing.T) {
	toks := lexInside(t, "a.b[0] == 'x' | join(', ') // 2 %}", tokStmtEnd)
	want := []struct {
		kind tokenKind
		val  string
	}{
		{tokName, "a"}, {tokOp, "."}, {tokName, "b"},
		{tokOp, "["}, {tokNumber, "0"}, {tokOp, "]"},
		{tokOp, "=="}, {tokString, "x"},
		{tokOp, "|"}, {tokName, "join"},
		{tokOp, "("}, {tokString, ", "}, {tokOp, ")"},
		{tokOp, "//"}, {tokNumber, "2"},
	}
	if len(toks) != len(want) {
		t.Fatalf("want %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, w := range want {
		if toks[i].kind != w.kind || toks[i].val != w.val {
			t.Fatalf("token %d: want %v %q, got %v %q", i, w.kind, w.val, toks[i].kind, toks[i].val)
		}
	}
}

func TestLexNumberForms(t *testing.T) {
	toks := lexInside(t, "42 3.14 }}", tokVarEnd)
	if len(toks) != 2 {
		t.Fatalf("want 2 tokens, got %d", len(toks))
	}
	if toks[0].val != "42" || toks[1].val != "3.14" {
		t.Fatalf("got %q and %q", toks[0].val, toks[1].val)
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks := lexInside(t, `'a\nb' "c\'d" }}`, tokVarEnd)
	if len(toks) != 2 {
		t.Fatalf("want 2 tokens, got %d", len(toks))
	}
	if toks[0].val != "a\nb" {
		t.Fatalf("escape: got %q", toks[0].val)
	}
	if toks[1].val != "c'd" {
		t.Fatalf("escape: got %q", toks[1].val)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	l := newLexer([]byte("'never closed"))
	_, err := l.nextTokenInside(tokVarEnd)
	if err == nil {
		t.Fatalf("want lex error for unterminated string")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("want *LexError, got %T: %v", err, err)
	}
}

func TestLexUnexpectedCharacter(t *testing.T) {
	l := newLexer([]byte("a @ b"))
	if _, err := l.nextTokenInside(tokVarEnd); err != nil {
		t.Fatalf("name: %v", err)
	}
	if _, err := l.nextTokenInside(tokVarEnd); err == nil {
		t.Fatalf("want lex error for '@'")
	}
}
