package jinja2

import (
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"
)

func render(t *testing.T, tpl string, ctx Context) string {
	t.Helper()
	out, err := RenderString(tpl, ctx)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	return out
}

func TestRenderHelloWorld(t *testing.T) {
	out := render(t, "Hello {{ name }}!", Context{"name": StringValue("World")})
	if out != "Hello World!" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderUndefinedLenient(t *testing.T) {
	out := render(t, "[{{ missing }}]", Context{})
	if out != "[]" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderStrictUndefined(t *testing.T) {
	e := NewEnvironment()
	e.Strict = true
	if err := e.Register("t", "{{ missing }}"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := e.Render("t", Context{})
	if err == nil {
		t.Fatalf("want error for undefined variable in strict mode")
	}
	if !strings.Contains(err.Error(), "undefined variable") {
		t.Fatalf("got %v", err)
	}
}

func TestRenderIfElifElse(t *testing.T) {
	tpl := "{% if a %}A{% elif b %}B{% else %}C{% endif %}"
	if out := render(t, tpl, Context{"a": BoolValue(true)}); out != "A" {
		t.Fatalf("a=true got %q", out)
	}
	if out := render(t, tpl, Context{"b": BoolValue(true)}); out != "B" {
		t.Fatalf("b=true got %q", out)
	}
	if out := render(t, tpl, Context{}); out != "C" {
		t.Fatalf("else got %q", out)
	}
}

func TestRenderForElse(t *testing.T) {
	tpl := "{% for x in items %}-{{ x }}{% else %}empty{% endfor %}"
	ctx := Context{"items": ListValue{IntValue(1), IntValue(2)}}
	if out := render(t, tpl, ctx); out != "-1-2" {
		t.Fatalf("got %q", out)
	}
	if out := render(t, tpl, Context{"items": ListValue{}}); out != "empty" {
		t.Fatalf("empty got %q", out)
	}
	// An undefined iterable behaves like an empty one.
	if out := render(t, tpl, Context{}); out != "empty" {
		t.Fatalf("undefined got %q", out)
	}
}

func TestRenderLoopObject(t *testing.T) {
	tpl := "{% for x in xs %}{{ loop.index }}:{{ x }}{% if not loop.last %},{% endif %}{% endfor %}"
	ctx := Context{"xs": ListValue{StringValue("a"), StringValue("b"), StringValue("c")}}
	if out := render(t, tpl, ctx); out != "1:a,2:b,3:c" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderLoopRevindex(t *testing.T) {
	tpl := "{% for x in xs %}{{ loop.revindex }}{{ loop.revindex0 }}{% endfor %}"
	ctx := Context{"xs": ListValue{IntValue(0), IntValue(0), IntValue(0)}}
	if out := render(t, tpl, ctx); out != "322110" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderNestedLoops(t *testing.T) {
	// Each inner loop gets its own loop object; 3x3 yields 9 cells.
	tpl := heredoc.Doc(`
		{%- for row in grid -%}
		{%- for cell in row -%}
		[{{ loop.index }}:{{ cell }}]
		{%- endfor -%}
		|
		{%- endfor -%}
	`)
	row := ListValue{StringValue("x"), StringValue("y"), StringValue("z")}
	ctx := Context{"grid": ListValue{row, row, row}}
	want := strings.Repeat("[1:x][2:y][3:z]|", 3)
	if out := render(t, tpl, ctx); out != want {
		t.Fatalf("got %q want %q", out, want)
	}
}

func TestRenderDictIterationSorted(t *testing.T) {
	tpl := "{% for k, v in d %}{{ k }}={{ v }};{% endfor %}"
	ctx := Context{"d": DictValue{"b": IntValue(2), "a": IntValue(1), "c": IntValue(3)}}
	if out := render(t, tpl, ctx); out != "a=1;b=2;c=3;" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderPairUnpacking(t *testing.T) {
	tpl := "{% for a, b in pairs %}{{ a }}>{{ b }} {% endfor %}"
	ctx := Context{"pairs": ListValue{
		ListValue{IntValue(1), IntValue(2)},
		ListValue{IntValue(3), IntValue(4)},
	}}
	if out := render(t, tpl, ctx); out != "1>2 3>4 " {
		t.Fatalf("got %q", out)
	}
}

func TestRenderSetInline(t *testing.T) {
	out := render(t, "{% set greeting = 'hi ' ~ name %}{{ greeting }}", Context{"name": StringValue("bob")})
	if out != "hi bob" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderSetBlock(t *testing.T) {
	tpl := "{% set banner %}== {{ title | upper }} =={% endset %}{{ banner }}/{{ banner }}"
	out := render(t, tpl, Context{"title": StringValue("hi")})
	if out != "== HI ==/== HI ==" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderSetInsideIfVisibleAfter(t *testing.T) {
	tpl := "{% if cond %}{% set v = 'x' %}{% endif %}{{ v }}"
	out := render(t, tpl, Context{"cond": BoolValue(true)})
	if out != "x" {
		t.Fatalf("set inside if not visible after: %q", out)
	}
}

func TestRenderLoopScopeDoesNotLeak(t *testing.T) {
	tpl := "{% for x in xs %}{% set inner = x %}{% endfor %}[{{ inner }}]"
	out := render(t, tpl, Context{"xs": ListValue{IntValue(1)}})
	if out != "[]" {
		t.Fatalf("loop-local binding leaked: %q", out)
	}
}

func TestRenderWhitespaceControl(t *testing.T) {
	tpl := "a\n  {{- x }}  \n{%- if true %}b{% endif %}"
	out := render(t, tpl, Context{"x": StringValue("X")})
	if out != "aXb" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderRawAndComments(t *testing.T) {
	tpl := "A{# dropped #}B{% raw %}{{ not_parsed }}{% endraw %}C"
	out := render(t, tpl, Context{})
	if out != "AB{{ not_parsed }}C" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderInlineConditional(t *testing.T) {
	tpl := "{{ 'yes' if ok else 'no' }}"
	if out := render(t, tpl, Context{"ok": BoolValue(true)}); out != "yes" {
		t.Fatalf("got %q", out)
	}
	if out := render(t, tpl, Context{}); out != "no" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderArithmetic(t *testing.T) {
	cases := []struct {
		tpl  string
		want string
	}{
		{"{{ 1 + 2 * 3 }}", "7"},
		{"{{ (1 + 2) * 3 }}", "9"},
		{"{{ 7 // 2 }}", "3"},
		{"{{ -7 // 2 }}", "-4"},
		{"{{ 7 % 3 }}", "1"},
		{"{{ 7 / 2 }}", "3.5"},
		{"{{ 1.5 + 1 }}", "2.5"},
		{"{{ -x }}", "-3"},
		{"{{ 'a' ~ 1 ~ 'b' }}", "a1b"},
		{"{{ 'ab' + 'cd' }}", "abcd"},
	}
	for _, tc := range cases {
		out := render(t, tc.tpl, Context{"x": IntValue(3)})
		if out != tc.want {
			t.Fatalf("%s: got %q want %q", tc.tpl, out, tc.want)
		}
	}
}

func TestRenderDivisionByZero(t *testing.T) {
	_, err := RenderString("{{ 1 / 0 }}", Context{})
	if err == nil || !strings.Contains(err.Error(), "division by zero") {
		t.Fatalf("got %v", err)
	}
}

func TestRenderComparisonsAndLogic(t *testing.T) {
	cases := []struct {
		tpl  string
		want string
	}{
		{"{{ 1 < 2 }}", "true"},
		{"{{ 2 <= 1 }}", "false"},
		{"{{ 'a' < 'b' }}", "true"},
		{"{{ 1 == 1.0 }}", "true"},
		{"{{ 1 != 2 and 'x' }}", "x"},
		{"{{ false or 'y' }}", "y"},
		{"{{ not '' }}", "true"},
		{"{{ 2 in [1, 2, 3] }}", "true"},
		{"{{ 'k' in d }}", "true"},
		{"{{ 'q' not in 'abc' }}", "true"},
	}
	ctx := Context{"d": DictValue{"k": IntValue(1)}}
	for _, tc := range cases {
		if out := render(t, tc.tpl, ctx); out != tc.want {
			t.Fatalf("%s: got %q want %q", tc.tpl, out, tc.want)
		}
	}
}

func TestRenderAttrAndIndex(t *testing.T) {
	ctx := Context{
		"user": DictValue{
			"name": StringValue("ada"),
			"tags": ListValue{StringValue("a"), StringValue("b")},
		},
	}
	cases := []struct {
		tpl  string
		want string
	}{
		{"{{ user.name }}", "ada"},
		{"{{ user['name'] }}", "ada"},
		{"{{ user.tags[1] }}", "b"},
		{"{{ user.tags[-1] }}", "b"},
		{"{{ user.name.upper() }}", "ADA"},
		{"{{ user.missing }}", ""},
		{"{{ 'one two'.split() | join('+') }}", "one+two"},
	}
	for _, tc := range cases {
		if out := render(t, tc.tpl, ctx); out != tc.want {
			t.Fatalf("%s: got %q want %q", tc.tpl, out, tc.want)
		}
	}
}

func TestRenderMacro(t *testing.T) {
	tpl := heredoc.Doc(`
		{%- macro field(name, type='text') -%}
		<input name="{{ name }}" type="{{ type }}">
		{%- endmacro -%}
		{{ field('user') }}|{{ field('pass', type='password') }}
	`)
	out := render(t, tpl, Context{})
	want := `<input name="user" type="text">|<input name="pass" type="password">`
	if out != want {
		t.Fatalf("got %q want %q", out, want)
	}
}

func TestRenderMacroErrors(t *testing.T) {
	tpl := "{% macro m(a) %}{{ a }}{% endmacro %}"
	cases := []struct {
		call string
		want string
	}{
		{"{{ m(1, 2) }}", "at most 1 arguments"},
		{"{{ m(b=1) }}", "no parameter"},
		{"{{ m(1, a=2) }}", "multiple values"},
	}
	for _, tc := range cases {
		_, err := RenderString(tpl+tc.call, Context{})
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: got %v", tc.call, err)
		}
	}
}

func TestRenderCallUndefined(t *testing.T) {
	_, err := RenderString("{{ nothing() }}", Context{})
	if err == nil || !strings.Contains(err.Error(), "not callable") {
		t.Fatalf("got %v", err)
	}
}

func TestRenderHostCallable(t *testing.T) {
	ctx := Context{
		"shout": CallableValue{Fn: func(args []Value, _ map[string]Value) (Value, error) {
			return StringValue(strings.ToUpper(args[0].String()) + "!"), nil
		}},
	}
	if out := render(t, "{{ shout('hey') }}", ctx); out != "HEY!" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderFromGoContext(t *testing.T) {
	e := NewEnvironment()
	if err := e.Register("t", "{{ user.name }} has {{ user.items | length }} items"); err != nil {
		t.Fatalf("register: %v", err)
	}
	out, err := e.RenderMap("t", map[string]any{
		"user": map[string]any{
			"name":  "kim",
			"items": []int{1, 2, 3},
		},
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if out != "kim has 3 items" {
		t.Fatalf("got %q", out)
	}
}
