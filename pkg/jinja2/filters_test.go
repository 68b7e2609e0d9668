package jinja2

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilterTable(t *testing.T) {
	ctx := Context{
		"fruits":  ListValue{StringValue("apple"), StringValue("banana"), StringValue("cherry")},
		"nums":    ListValue{IntValue(3), IntValue(1), IntValue(2)},
		"name":    StringValue("ada lovelace"),
		"padded":  StringValue("  x  "),
		"missing": UndefinedValue{},
	}
	cases := []struct {
		tpl  string
		want string
	}{
		{"{{ fruits | join(', ') }}", "apple, banana, cherry"},
		{"{{ fruits | length }}", "3"},
		{"{{ fruits | first }}", "apple"},
		{"{{ fruits | last }}", "cherry"},
		{"{{ fruits | reverse | join('') }}", "cherrybananaapple"},
		{"{{ nums | sort | join(',') }}", "1,2,3"},
		{"{{ name | upper }}", "ADA LOVELACE"},
		{"{{ name | title }}", "Ada Lovelace"},
		{"{{ name | capitalize }}", "Ada lovelace"},
		{"{{ padded | trim }}", "x"},
		{"{{ name | replace('ada', 'grace') }}", "grace lovelace"},
		{"{{ '42' | int + 1 }}", "43"},
		{"{{ 'nope' | int(9) }}", "9"},
		{"{{ '2.5' | float + 0.5 }}", "3"},
		{"{{ 7 | string ~ '!' }}", "7!"},
		{"{{ 'abc' | list | join('-') }}", "a-b-c"},
		{"{{ missing | default('fallback') }}", "fallback"},
		{"{{ none | default('fallback') }}", "fallback"},
		{"{{ '' | default('fallback') }}", ""},
		{"{{ 0 | default(1) }}", "0"},
		{"{{ 1048576 | filesizeformat }}", "1.0 MB"},
		{"{{ 1234567 | intcomma }}", "1,234,567"},
	}
	for _, tc := range cases {
		out, err := RenderString(tc.tpl, ctx)
		if err != nil {
			t.Fatalf("%s: render error: %v", tc.tpl, err)
		}
		if out != tc.want {
			t.Fatalf("%s: got %q want %q", tc.tpl, out, tc.want)
		}
	}
}

func TestFilterChaining(t *testing.T) {
	// Filters apply left to right.
	ctx := Context{"s": StringValue("  hello world  ")}
	out, err := RenderString("{{ s | trim | title | replace(' ', '_') }}", ctx)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if out != "Hello_World" {
		t.Fatalf("got %q", out)
	}
}

func TestFilterListResult(t *testing.T) {
	ctx := Context{"s": StringValue("a,b,c")}
	e := NewEnvironment()
	if err := e.Register("t", "{{ s.split(',') | reverse | join('|') }}"); err != nil {
		t.Fatalf("register: %v", err)
	}
	out, err := e.Render("t", ctx)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if out != "c|b|a" {
		t.Fatalf("got %q", out)
	}
}

func TestFilterSortCopiesInput(t *testing.T) {
	in := ListValue{IntValue(2), IntValue(1)}
	out, err := filterSort(in, nil)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if diff := cmp.Diff(ListValue{IntValue(1), IntValue(2)}, out); diff != "" {
		t.Fatalf("sorted output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ListValue{IntValue(2), IntValue(1)}, in); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestFilterErrors(t *testing.T) {
	cases := []struct {
		tpl  string
		want string
	}{
		{"{{ x | nosuchfilter }}", "unknown filter"},
		{"{{ 5 | join(',') }}", "expected a list"},
		{"{{ x | default }}", "expected one argument"},
		{"{{ 'x' | filesizeformat }}", "non-negative number"},
		{"{{ 'x' | intcomma }}", "expected a number"},
	}
	for _, tc := range cases {
		_, err := RenderString(tc.tpl, Context{"x": StringValue("v")})
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: got %v", tc.tpl, err)
		}
	}
}
