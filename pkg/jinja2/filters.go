package jinja2

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FilterFunc transforms a value. args are the filter's own arguments,
// e.g. the separator in {{ xs | join(', ') }}.
type FilterFunc func(in Value, args []Value) (Value, error)

// Filters maps filter names to implementations.
type Filters map[string]FilterFunc

// DefaultFilters returns the built-in filter set every new Environment
// starts with.
func DefaultFilters() Filters {
	return Filters{
		"default":        filterDefault,
		"d":              filterDefault,
		"upper":          filterUpper,
		"lower":          filterLower,
		"title":          filterTitle,
		"capitalize":     filterCapitalize,
		"trim":           filterTrim,
		"join":           filterJoin,
		"length":         filterLength,
		"count":          filterLength,
		"first":          filterFirst,
		"last":           filterLast,
		"reverse":        filterReverse,
		"sort":           filterSort,
		"replace":        filterReplace,
		"int":            filterInt,
		"float":          filterFloat,
		"string":         filterString,
		"list":           filterList,
		"filesizeformat": filterFilesizeformat,
		"intcomma":       filterIntcomma,
	}
}

// filterDefault substitutes the fallback when the input is undefined or none.
// Other falsy values pass through unchanged.
func filterDefault(in Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one argument, got %d", len(args))
	}
	switch in.(type) {
	case UndefinedValue, NoneValue, nil:
		return args[0], nil
	}
	return in, nil
}

func filterUpper(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	return StringValue(strings.ToUpper(in.String())), nil
}

func filterLower(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	return StringValue(strings.ToLower(in.String())), nil
}

func filterTitle(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	words := strings.Fields(in.String())
	for i, w := range words {
		words[i] = capitalizeWord(w)
	}
	return StringValue(strings.Join(words, " ")), nil
}

func filterCapitalize(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	return StringValue(capitalizeWord(strings.ToLower(in.String()))), nil
}

func capitalizeWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

func filterTrim(in Value, args []Value) (Value, error) {
	cutset := " \t\r\n"
	if len(args) == 1 {
		cutset = args[0].String()
	} else if len(args) > 1 {
		return nil, fmt.Errorf("takes at most one argument")
	}
	return StringValue(strings.Trim(in.String(), cutset)), nil
}

func filterJoin(in Value, args []Value) (Value, error) {
	sep := ""
	if len(args) == 1 {
		sep = args[0].String()
	} else if len(args) > 1 {
		return nil, fmt.Errorf("takes at most one argument")
	}
	list, ok := in.(ListValue)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", in)
	}
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = v.String()
	}
	return StringValue(strings.Join(parts, sep)), nil
}

func filterLength(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	n, ok := length(in)
	if !ok {
		return nil, fmt.Errorf("value of type %T has no length", in)
	}
	return IntValue(int64(n)), nil
}

func filterFirst(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	items, err := iterate(in)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return UndefinedValue{}, nil
	}
	return items[0].val, nil
}

func filterLast(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	items, err := iterate(in)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return UndefinedValue{}, nil
	}
	return items[len(items)-1].val, nil
}

func filterReverse(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	items, err := iterate(in)
	if err != nil {
		return nil, err
	}
	out := make(ListValue, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i].val)
	}
	if _, ok := in.(StringValue); ok {
		var sb strings.Builder
		for _, v := range out {
			sb.WriteString(v.String())
		}
		return StringValue(sb.String()), nil
	}
	return out, nil
}

func filterSort(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	list, ok := in.(ListValue)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", in)
	}
	out := make(ListValue, len(list))
	copy(out, list)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		c, err := compareValues(out[i], out[j])
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

func filterReplace(in Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expected two arguments, got %d", len(args))
	}
	return StringValue(strings.ReplaceAll(in.String(), args[0].String(), args[1].String())), nil
}

func filterInt(in Value, args []Value) (Value, error) {
	fallback := IntValue(0)
	if len(args) == 1 {
		f, ok := args[0].(IntValue)
		if !ok {
			return nil, fmt.Errorf("fallback must be an integer")
		}
		fallback = f
	} else if len(args) > 1 {
		return nil, fmt.Errorf("takes at most one argument")
	}
	switch t := in.(type) {
	case IntValue:
		return t, nil
	case FloatValue:
		return IntValue(int64(t)), nil
	case BoolValue:
		if t {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	case StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
		if err != nil {
			return fallback, nil
		}
		return IntValue(n), nil
	}
	return fallback, nil
}

func filterFloat(in Value, args []Value) (Value, error) {
	fallback := FloatValue(0)
	if len(args) == 1 {
		f, ok := toFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("fallback must be a number")
		}
		fallback = FloatValue(f)
	} else if len(args) > 1 {
		return nil, fmt.Errorf("takes at most one argument")
	}
	switch t := in.(type) {
	case FloatValue:
		return t, nil
	case IntValue:
		return FloatValue(float64(t)), nil
	case StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		if err != nil {
			return fallback, nil
		}
		return FloatValue(f), nil
	}
	return fallback, nil
}

func filterString(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	return StringValue(in.String()), nil
}

func filterList(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	if l, ok := in.(ListValue); ok {
		return l, nil
	}
	items, err := iterate(in)
	if err != nil {
		return nil, err
	}
	out := make(ListValue, 0, len(items))
	for _, it := range items {
		out = append(out, it.val)
	}
	return out, nil
}

// filterFilesizeformat renders a byte count as a human-readable size,
// e.g. 1048576 -> "1.0 MB".
func filterFilesizeformat(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	f, ok := toFloat(in)
	if !ok || f < 0 {
		return nil, fmt.Errorf("expected a non-negative number, got %v", in)
	}
	return StringValue(humanize.Bytes(uint64(f))), nil
}

// filterIntcomma groups thousands with commas, e.g. 1234567 -> "1,234,567".
func filterIntcomma(in Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	switch t := in.(type) {
	case IntValue:
		return StringValue(humanize.Comma(int64(t))), nil
	case FloatValue:
		return StringValue(humanize.Commaf(float64(t))), nil
	}
	return nil, fmt.Errorf("expected a number, got %T", in)
}
