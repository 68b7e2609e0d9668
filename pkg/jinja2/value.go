package jinja2

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"unicode/utf8"
)

// Value is an abstract value used by the evaluator. It defines string
// conversion and truthiness semantics.
type Value interface {
	String() string
	Truth() bool
}

// NoneValue represents an explicit null.
type NoneValue struct{}

func (NoneValue) String() string { return "" }
func (NoneValue) Truth() bool    { return false }

// UndefinedValue marks an absent variable or attribute. It is distinct from
// None: it remembers the name that was missing so strict operations can
// report it. It renders as the empty string.
type UndefinedValue struct {
	Name string
}

func (UndefinedValue) String() string { return "" }
func (UndefinedValue) Truth() bool    { return false }

// BoolValue wraps a boolean.
type BoolValue bool

func (b BoolValue) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b BoolValue) Truth() bool { return bool(b) }

// IntValue wraps a 64-bit integer.
type IntValue int64

func (i IntValue) String() string { return strconv.FormatInt(int64(i), 10) }
func (i IntValue) Truth() bool    { return int64(i) != 0 }

// FloatValue wraps a 64-bit float.
type FloatValue float64

func (f FloatValue) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (f FloatValue) Truth() bool    { return float64(f) != 0 }

// StringValue wraps a string.
type StringValue string

func (s StringValue) String() string { return string(s) }
func (s StringValue) Truth() bool    { return len(string(s)) > 0 }

// ListValue wraps an ordered list of values.
type ListValue []Value

func (l ListValue) String() string {
	out := "["
	for i, v := range l {
		if i > 0 {
			out += ", "
		}
		out += quoteIfString(v)
	}
	return out + "]"
}
func (l ListValue) Truth() bool { return len(l) > 0 }

// DictValue wraps a string-keyed mapping of values.
type DictValue map[string]Value

func (d DictValue) String() string {
	out := "{"
	for i, k := range sortedKeys(d) {
		if i > 0 {
			out += ", "
		}
		out += "'" + k + "': " + quoteIfString(d[k])
	}
	return out + "}"
}
func (d DictValue) Truth() bool { return len(d) > 0 }

func quoteIfString(v Value) string {
	if s, ok := v.(StringValue); ok {
		return "'" + string(s) + "'"
	}
	return v.String()
}

// CallableValue wraps a host function that can be invoked from templates.
type CallableValue struct {
	Fn func(args []Value, kwargs map[string]Value) (Value, error)
}

func (CallableValue) String() string { return "<function>" }
func (CallableValue) Truth() bool    { return true }

// MacroValue is a macro bound as a first-class value. It is plain data: the
// parameter list, the body nodes, and the scope the macro was defined in. The
// renderer that defined it performs the call.
type MacroValue struct {
	Name   string
	Params []MacroParam
	Body   []Node

	defScope *scope
	r        *Renderer
}

func (m *MacroValue) String() string { return "<macro " + m.Name + ">" }
func (m *MacroValue) Truth() bool    { return true }

// Context maps top-level variable names to values.
type Context map[string]Value

// NewContextFromAny converts a map[string]any into a Value-based Context,
// recursively converting nested maps and slices.
func NewContextFromAny(m map[string]any) Context {
	ctx := Context{}
	for k, v := range m {
		ctx[k] = FromGo(v)
	}
	return ctx
}

// FromGo converts a Go value to a Value. Passed-in data is copied into the
// value tree, never mutated.
func FromGo(v any) Value {
	if v == nil {
		return NoneValue{}
	}
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case float32:
		return FloatValue(float64(t))
	case float64:
		return FloatValue(t)
	case []byte:
		return StringValue(string(t))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		out := make(ListValue, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, FromGo(rv.Index(i).Interface()))
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := DictValue{}
			it := rv.MapRange()
			for it.Next() {
				out[it.Key().String()] = FromGo(it.Value().Interface())
			}
			return out
		}
		// Non-string keys are stringified.
		out := DictValue{}
		it := rv.MapRange()
		for it.Next() {
			out[fmt.Sprintf("%v", it.Key().Interface())] = FromGo(it.Value().Interface())
		}
		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NoneValue{}
		}
		return FromGo(rv.Elem().Interface())
	}
	return StringValue(fmt.Sprintf("%v", v))
}

func sortedKeys(d DictValue) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// iterItem is one step of a for-loop: dict iteration yields key and value,
// everything else only the value.
type iterItem struct {
	key Value
	val Value
}

// iterate converts a value into the sequence a for-loop walks. Strings yield
// their runes, lists their elements in order, dicts their entries by sorted
// key so template output is deterministic.
func iterate(v Value) ([]iterItem, error) {
	switch t := v.(type) {
	case ListValue:
		out := make([]iterItem, len(t))
		for i, it := range t {
			out[i] = iterItem{key: IntValue(int64(i)), val: it}
		}
		return out, nil
	case DictValue:
		keys := sortedKeys(t)
		out := make([]iterItem, 0, len(t))
		for _, k := range keys {
			out = append(out, iterItem{key: StringValue(k), val: t[k]})
		}
		return out, nil
	case StringValue:
		s := string(t)
		var out []iterItem
		i := 0
		for len(s) > 0 {
			r, size := utf8.DecodeRuneInString(s)
			s = s[size:]
			out = append(out, iterItem{key: IntValue(int64(i)), val: StringValue(string(r))})
			i++
		}
		return out, nil
	}
	return nil, fmt.Errorf("value of type %T is not iterable", v)
}

func truthy(v Value) bool {
	if v == nil {
		return false
	}
	return v.Truth()
}
