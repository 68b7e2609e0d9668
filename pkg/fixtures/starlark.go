package fixtures

import (
	"go.starlark.net/starlark"

	"github.com/jinjet/jinjet/pkg/jinja2"
)

// ExecContextScript runs a Starlark script and returns its exported globals
// as template context values. The script sees the YAML-built context as a
// predeclared dict named `context`, so fixtures can derive values from it:
//
//	count = len(context["items"])
//	label = context["name"].upper()
//
// Globals starting with an underscore are treated as script-private.
func ExecContextScript(name, script string, base jinja2.Context) (jinja2.Context, error) {
	thread := &starlark.Thread{Name: "fixture:" + name}
	predeclared := starlark.StringDict{
		"context": contextToStarlark(base),
	}
	globals, err := starlark.ExecFile(thread, name+".star", script, predeclared)
	if err != nil {
		return nil, err
	}
	out := jinja2.Context{}
	for key, val := range globals {
		if key == "" || key[0] == '_' {
			continue
		}
		// Helper functions defined by the script are not context values.
		switch val.(type) {
		case *starlark.Function, *starlark.Builtin:
			continue
		}
		out[key] = fromStarlark(val)
	}
	return out, nil
}

func contextToStarlark(ctx jinja2.Context) *starlark.Dict {
	dict := starlark.NewDict(len(ctx))
	for k, v := range ctx {
		dict.SetKey(starlark.String(k), toStarlark(v))
	}
	return dict
}

func toStarlark(val jinja2.Value) starlark.Value {
	switch v := val.(type) {
	case nil, jinja2.NoneValue, jinja2.UndefinedValue:
		return starlark.None
	case jinja2.StringValue:
		return starlark.String(string(v))
	case jinja2.IntValue:
		return starlark.MakeInt64(int64(v))
	case jinja2.FloatValue:
		return starlark.Float(float64(v))
	case jinja2.BoolValue:
		return starlark.Bool(bool(v))
	case jinja2.ListValue:
		items := make([]starlark.Value, len(v))
		for i, item := range v {
			items[i] = toStarlark(item)
		}
		return starlark.NewList(items)
	case jinja2.DictValue:
		dict := starlark.NewDict(len(v))
		for key, value := range v {
			dict.SetKey(starlark.String(key), toStarlark(value))
		}
		return dict
	}
	return starlark.String(val.String())
}

func fromStarlark(val starlark.Value) jinja2.Value {
	switch v := val.(type) {
	case nil, starlark.NoneType:
		return jinja2.NoneValue{}
	case starlark.String:
		return jinja2.StringValue(string(v))
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return jinja2.IntValue(i)
		}
		return jinja2.StringValue(v.String())
	case starlark.Float:
		return jinja2.FloatValue(float64(v))
	case starlark.Bool:
		return jinja2.BoolValue(bool(v))
	case starlark.Tuple:
		items := make(jinja2.ListValue, len(v))
		for i, item := range v {
			items[i] = fromStarlark(item)
		}
		return items
	case *starlark.List:
		items := make(jinja2.ListValue, v.Len())
		for i := 0; i < v.Len(); i++ {
			items[i] = fromStarlark(v.Index(i))
		}
		return items
	case *starlark.Dict:
		dict := make(jinja2.DictValue, v.Len())
		for _, item := range v.Items() {
			key, value := item[0], item[1]
			if keyStr, ok := key.(starlark.String); ok {
				dict[string(keyStr)] = fromStarlark(value)
			} else {
				dict[key.String()] = fromStarlark(value)
			}
		}
		return dict
	}
	return jinja2.StringValue(val.String())
}
