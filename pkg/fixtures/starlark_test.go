package fixtures

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jinjet/jinjet/pkg/jinja2"
)

func TestExecContextScriptTypes(t *testing.T) {
	script := `
s = "text"
i = 40 + 2
f = 1.5
b = True
l = [1, "two"]
d = {"k": [True, None]}
n = None
_private = "hidden"

def helper():
    return 1
`
	got, err := ExecContextScript("types", script, jinja2.Context{})
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	want := jinja2.Context{
		"s": jinja2.StringValue("text"),
		"i": jinja2.IntValue(42),
		"f": jinja2.FloatValue(1.5),
		"b": jinja2.BoolValue(true),
		"l": jinja2.ListValue{jinja2.IntValue(1), jinja2.StringValue("two")},
		"d": jinja2.DictValue{"k": jinja2.ListValue{jinja2.BoolValue(true), jinja2.NoneValue{}}},
		"n": jinja2.NoneValue{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("globals mismatch (-want +got):\n%s", diff)
	}
}

func TestExecContextScriptReadsBaseContext(t *testing.T) {
	base := jinja2.Context{
		"items": jinja2.ListValue{jinja2.StringValue("a"), jinja2.StringValue("b")},
	}
	got, err := ExecContextScript("derive", `count = len(context["items"])`, base)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if diff := cmp.Diff(jinja2.Context{"count": jinja2.IntValue(2)}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestExecContextScriptSyntaxError(t *testing.T) {
	if _, err := ExecContextScript("bad", "x = (", jinja2.Context{}); err == nil {
		t.Fatalf("want syntax error")
	}
}
