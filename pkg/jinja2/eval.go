package jinja2

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// eval evaluates an expression against a scope. Undefined names and missing
// attributes yield UndefinedValue in lenient mode and an EvalError in strict
// mode; calling or filtering through an unknown name is an error in both.
func (r *Renderer) eval(e Expr, s *scope) (Value, error) {
	switch t := e.(type) {
	case *LiteralExpr:
		return t.Val, nil
	case *NameExpr:
		if v, ok := s.lookup(t.Name); ok {
			return v, nil
		}
		return r.undefined(t.Name, t.OffPos)
	case *ListExpr:
		out := make(ListValue, 0, len(t.Items))
		for _, item := range t.Items {
			v, err := r.eval(item, s)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case *TupleExpr:
		out := make(ListValue, 0, len(t.Items))
		for _, item := range t.Items {
			v, err := r.eval(item, s)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case *DictExpr:
		out := DictValue{}
		for i, ke := range t.Keys {
			kv, err := r.eval(ke, s)
			if err != nil {
				return nil, err
			}
			ks, ok := kv.(StringValue)
			if !ok {
				return nil, &EvalError{Pos: ke.Pos(), Msg: fmt.Sprintf("dict key must be a string, got %T", kv)}
			}
			vv, err := r.eval(t.Values[i], s)
			if err != nil {
				return nil, err
			}
			out[string(ks)] = vv
		}
		return out, nil
	case *AttrExpr:
		x, err := r.eval(t.X, s)
		if err != nil {
			return nil, err
		}
		return r.attr(x, t.Name, t.OffPos)
	case *IndexExpr:
		x, err := r.eval(t.X, s)
		if err != nil {
			return nil, err
		}
		idx, err := r.eval(t.Index, s)
		if err != nil {
			return nil, err
		}
		return r.index(x, idx, t.OffPos)
	case *CallExpr:
		return r.evalCall(t, s)
	case *FilterExpr:
		x, err := r.eval(t.X, s)
		if err != nil {
			return nil, err
		}
		fn, ok := r.env.filters[t.Name]
		if !ok {
			return nil, &EvalError{Pos: t.OffPos, Msg: fmt.Sprintf("unknown filter %q", t.Name)}
		}
		args := make([]Value, 0, len(t.Args))
		for _, ae := range t.Args {
			av, err := r.eval(ae, s)
			if err != nil {
				return nil, err
			}
			args = append(args, av)
		}
		out, err := fn(x, args)
		if err != nil {
			return nil, &EvalError{Pos: t.OffPos, Msg: fmt.Sprintf("filter %q: %v", t.Name, err)}
		}
		return out, nil
	case *UnaryExpr:
		x, err := r.eval(t.X, s)
		if err != nil {
			return nil, err
		}
		switch t.Op {
		case "not":
			return BoolValue(!truthy(x)), nil
		case "-":
			switch n := x.(type) {
			case IntValue:
				return IntValue(-int64(n)), nil
			case FloatValue:
				return FloatValue(-float64(n)), nil
			}
			return nil, &EvalError{Pos: t.OffPos, Msg: fmt.Sprintf("cannot negate %T", x)}
		}
		return nil, &EvalError{Pos: t.OffPos, Msg: "unknown unary operator " + t.Op}
	case *BinaryExpr:
		return r.evalBinary(t, s)
	case *CondExpr:
		cond, err := r.eval(t.Cond, s)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return r.eval(t.Then, s)
		}
		return r.eval(t.Else, s)
	}
	return nil, &EvalError{Pos: e.Pos(), Msg: fmt.Sprintf("unhandled expression %T", e)}
}

func (r *Renderer) undefined(name string, pos int) (Value, error) {
	if r.env.Strict {
		return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("undefined variable %q", name)}
	}
	return UndefinedValue{Name: name}, nil
}

// attr resolves dotted access. Dicts resolve by key; strings expose a small
// set of methods as callables.
func (r *Renderer) attr(x Value, name string, pos int) (Value, error) {
	switch t := x.(type) {
	case DictValue:
		if v, ok := t[name]; ok {
			return v, nil
		}
		return r.undefined(name, pos)
	case StringValue:
		if m := stringMethod(string(t), name); m != nil {
			return m, nil
		}
	case UndefinedValue:
		if r.env.Strict {
			return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("attribute %q of undefined variable %q", name, t.Name)}
		}
		return UndefinedValue{Name: name}, nil
	}
	return r.undefined(name, pos)
}

func (r *Renderer) index(x, idx Value, pos int) (Value, error) {
	switch t := x.(type) {
	case ListValue:
		i, ok := idx.(IntValue)
		if !ok {
			return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("list index must be an integer, got %T", idx)}
		}
		n := int64(len(t))
		j := int64(i)
		if j < 0 {
			j += n
		}
		if j < 0 || j >= n {
			if r.env.Strict {
				return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("list index %d out of range (length %d)", int64(i), n)}
			}
			return UndefinedValue{}, nil
		}
		return t[j], nil
	case DictValue:
		k, ok := idx.(StringValue)
		if !ok {
			return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("dict key must be a string, got %T", idx)}
		}
		if v, ok := t[string(k)]; ok {
			return v, nil
		}
		return r.undefined(string(k), pos)
	case StringValue:
		i, ok := idx.(IntValue)
		if !ok {
			return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("string index must be an integer, got %T", idx)}
		}
		runes := []rune(string(t))
		n := int64(len(runes))
		j := int64(i)
		if j < 0 {
			j += n
		}
		if j < 0 || j >= n {
			if r.env.Strict {
				return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("string index %d out of range (length %d)", int64(i), n)}
			}
			return UndefinedValue{}, nil
		}
		return StringValue(string(runes[j])), nil
	}
	return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("value of type %T is not subscriptable", x)}
}

func (r *Renderer) evalCall(e *CallExpr, s *scope) (Value, error) {
	fn, err := r.eval(e.Fn, s)
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(e.Args))
	for _, ae := range e.Args {
		av, err := r.eval(ae, s)
		if err != nil {
			return nil, err
		}
		args = append(args, av)
	}
	var kwargs map[string]Value
	if len(e.Kwargs) > 0 {
		kwargs = make(map[string]Value, len(e.Kwargs))
		for _, kw := range e.Kwargs {
			v, err := r.eval(kw.Value, s)
			if err != nil {
				return nil, err
			}
			kwargs[kw.Name] = v
		}
	}
	switch t := fn.(type) {
	case CallableValue:
		out, err := t.Fn(args, kwargs)
		if err != nil {
			return nil, &EvalError{Pos: e.OffPos, Msg: err.Error()}
		}
		return out, nil
	case *MacroValue:
		out, err := r.callMacro(t, args, kwargs)
		if err != nil {
			return nil, err
		}
		return out, nil
	case UndefinedValue:
		return nil, &EvalError{Pos: e.OffPos, Msg: fmt.Sprintf("%q is undefined and not callable", t.Name)}
	}
	return nil, &EvalError{Pos: e.OffPos, Msg: fmt.Sprintf("value of type %T is not callable", fn)}
}

func (r *Renderer) evalBinary(e *BinaryExpr, s *scope) (Value, error) {
	// and/or short-circuit and yield the deciding operand.
	if e.Op == "and" || e.Op == "or" {
		l, err := r.eval(e.L, s)
		if err != nil {
			return nil, err
		}
		if e.Op == "and" && !truthy(l) {
			return l, nil
		}
		if e.Op == "or" && truthy(l) {
			return l, nil
		}
		return r.eval(e.R, s)
	}

	l, err := r.eval(e.L, s)
	if err != nil {
		return nil, err
	}
	rv, err := r.eval(e.R, s)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "==":
		return BoolValue(valuesEqual(l, rv)), nil
	case "!=":
		return BoolValue(!valuesEqual(l, rv)), nil
	case "<", "<=", ">", ">=":
		c, err := compareValues(l, rv)
		if err != nil {
			return nil, &EvalError{Pos: e.OffPos, Msg: err.Error()}
		}
		switch e.Op {
		case "<":
			return BoolValue(c < 0), nil
		case "<=":
			return BoolValue(c <= 0), nil
		case ">":
			return BoolValue(c > 0), nil
		default:
			return BoolValue(c >= 0), nil
		}
	case "in", "not in":
		ok, err := contains(rv, l)
		if err != nil {
			return nil, &EvalError{Pos: e.OffPos, Msg: err.Error()}
		}
		if e.Op == "not in" {
			ok = !ok
		}
		return BoolValue(ok), nil
	case "~":
		return StringValue(l.String() + rv.String()), nil
	case "+":
		if ls, ok := l.(StringValue); ok {
			if rs, ok := rv.(StringValue); ok {
				return StringValue(string(ls) + string(rs)), nil
			}
		}
		if ll, ok := l.(ListValue); ok {
			if rl, ok := rv.(ListValue); ok {
				out := make(ListValue, 0, len(ll)+len(rl))
				out = append(out, ll...)
				return append(out, rl...), nil
			}
		}
		return arith(l, rv, e.Op, e.OffPos)
	case "-", "*", "/", "//", "%":
		return arith(l, rv, e.Op, e.OffPos)
	}
	return nil, &EvalError{Pos: e.OffPos, Msg: "unknown operator " + e.Op}
}

// arith performs numeric arithmetic with int-to-float promotion. '/' always
// produces a float; '//' floors and keeps ints integral.
func arith(l, r Value, op string, pos int) (Value, error) {
	li, lIsInt := l.(IntValue)
	ri, rIsInt := r.(IntValue)
	if lIsInt && rIsInt {
		a, b := int64(li), int64(ri)
		switch op {
		case "+":
			return IntValue(a + b), nil
		case "-":
			return IntValue(a - b), nil
		case "*":
			return IntValue(a * b), nil
		case "/":
			if b == 0 {
				return nil, &EvalError{Pos: pos, Msg: "division by zero"}
			}
			return FloatValue(float64(a) / float64(b)), nil
		case "//":
			if b == 0 {
				return nil, &EvalError{Pos: pos, Msg: "division by zero"}
			}
			q := a / b
			if (a%b != 0) && ((a < 0) != (b < 0)) {
				q--
			}
			return IntValue(q), nil
		case "%":
			if b == 0 {
				return nil, &EvalError{Pos: pos, Msg: "division by zero"}
			}
			m := a % b
			if m != 0 && ((a < 0) != (b < 0)) {
				m += b
			}
			return IntValue(m), nil
		}
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("unsupported operand types for %s: %T and %T", op, l, r)}
	}
	switch op {
	case "+":
		return FloatValue(lf + rf), nil
	case "-":
		return FloatValue(lf - rf), nil
	case "*":
		return FloatValue(lf * rf), nil
	case "/":
		if rf == 0 {
			return nil, &EvalError{Pos: pos, Msg: "division by zero"}
		}
		return FloatValue(lf / rf), nil
	case "//":
		if rf == 0 {
			return nil, &EvalError{Pos: pos, Msg: "division by zero"}
		}
		q := lf / rf
		return FloatValue(float64(int64(q)) - boolToFloat(q < 0 && q != float64(int64(q)))), nil
	case "%":
		if rf == 0 {
			return nil, &EvalError{Pos: pos, Msg: "division by zero"}
		}
		m := lf - rf*float64(int64(lf/rf))
		if m != 0 && (m < 0) != (rf < 0) {
			m += rf
		}
		return FloatValue(m), nil
	}
	return nil, &EvalError{Pos: pos, Msg: "unknown operator " + op}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func toFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case IntValue:
		return float64(t), true
	case FloatValue:
		return float64(t), true
	}
	return 0, false
}

// valuesEqual compares two values for equality. Ints and floats compare
// numerically; lists and dicts compare element-wise.
func valuesEqual(a, b Value) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	switch at := a.(type) {
	case StringValue:
		bt, ok := b.(StringValue)
		return ok && at == bt
	case BoolValue:
		bt, ok := b.(BoolValue)
		return ok && at == bt
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case UndefinedValue:
		_, ok := b.(UndefinedValue)
		return ok
	case ListValue:
		bt, ok := b.(ListValue)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !valuesEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	case DictValue:
		bt, ok := b.(DictValue)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, v := range at {
			bv, ok := bt[k]
			if !ok || !valuesEqual(v, bv) {
				return false
			}
		}
		return true
	}
	return false
}

func compareValues(a, b Value) (int, error) {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			}
			return 0, nil
		}
	}
	if as, ok := a.(StringValue); ok {
		if bs, ok := b.(StringValue); ok {
			return strings.Compare(string(as), string(bs)), nil
		}
	}
	return 0, fmt.Errorf("cannot order %T and %T", a, b)
}

// contains implements 'x in y': substring for strings, element equality for
// lists, key presence for dicts.
func contains(container, item Value) (bool, error) {
	switch t := container.(type) {
	case StringValue:
		return strings.Contains(string(t), item.String()), nil
	case ListValue:
		for _, v := range t {
			if valuesEqual(v, item) {
				return true, nil
			}
		}
		return false, nil
	case DictValue:
		k, ok := item.(StringValue)
		if !ok {
			return false, nil
		}
		_, present := t[string(k)]
		return present, nil
	}
	return false, fmt.Errorf("value of type %T does not support membership tests", container)
}

// stringMethod exposes a few common string methods as callables so templates
// can write things like name.upper() or line.split(',').
func stringMethod(s, name string) Value {
	switch name {
	case "upper":
		return CallableValue{Fn: func(args []Value, _ map[string]Value) (Value, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("upper takes no arguments")
			}
			return StringValue(strings.ToUpper(s)), nil
		}}
	case "lower":
		return CallableValue{Fn: func(args []Value, _ map[string]Value) (Value, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("lower takes no arguments")
			}
			return StringValue(strings.ToLower(s)), nil
		}}
	case "strip":
		return CallableValue{Fn: func(args []Value, _ map[string]Value) (Value, error) {
			cutset := " \t\r\n"
			if len(args) == 1 {
				cutset = args[0].String()
			} else if len(args) > 1 {
				return nil, fmt.Errorf("strip takes at most one argument")
			}
			return StringValue(strings.Trim(s, cutset)), nil
		}}
	case "split":
		return CallableValue{Fn: func(args []Value, _ map[string]Value) (Value, error) {
			var parts []string
			switch len(args) {
			case 0:
				parts = strings.Fields(s)
			case 1:
				parts = strings.Split(s, args[0].String())
			default:
				return nil, fmt.Errorf("split takes at most one argument")
			}
			out := make(ListValue, 0, len(parts))
			for _, p := range parts {
				out = append(out, StringValue(p))
			}
			return out, nil
		}}
	case "replace":
		return CallableValue{Fn: func(args []Value, _ map[string]Value) (Value, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("replace takes two arguments")
			}
			return StringValue(strings.ReplaceAll(s, args[0].String(), args[1].String())), nil
		}}
	case "startswith":
		return CallableValue{Fn: func(args []Value, _ map[string]Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("startswith takes one argument")
			}
			return BoolValue(strings.HasPrefix(s, args[0].String())), nil
		}}
	case "endswith":
		return CallableValue{Fn: func(args []Value, _ map[string]Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("endswith takes one argument")
			}
			return BoolValue(strings.HasSuffix(s, args[0].String())), nil
		}}
	}
	return nil
}

// length returns the element count of a value, for the length filter and the
// loop.length field. Strings count runes.
func length(v Value) (int, bool) {
	switch t := v.(type) {
	case StringValue:
		return utf8.RuneCountInString(string(t)), true
	case ListValue:
		return len(t), true
	case DictValue:
		return len(t), true
	}
	return 0, false
}
