package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ghostrap"
)

// natives are the method bodies a scenario can name with {function: name}.
var natives = map[string]ghostrap.Native{
	"add": func(_ *ghostrap.Object, args []any) (any, error) {
		sum := 0
		for i, a := range args {
			n, ok := a.(int)
			if !ok {
				return nil, fmt.Errorf("add: argument %d is %T, want int", i, a)
			}
			sum += n
		}
		return sum, nil
	},
	"mul": func(_ *ghostrap.Object, args []any) (any, error) {
		product := 1
		for i, a := range args {
			n, ok := a.(int)
			if !ok {
				return nil, fmt.Errorf("mul: argument %d is %T, want int", i, a)
			}
			product *= n
		}
		return product, nil
	},
	"concat": func(_ *ghostrap.Object, args []any) (any, error) {
		var b strings.Builder
		for _, a := range args {
			fmt.Fprint(&b, a)
		}
		return b.String(), nil
	},
	"identity": func(_ *ghostrap.Object, args []any) (any, error) {
		if len(args) == 0 {
			return nil, nil
		}
		return args[0], nil
	},
}

// nativeNames returns the known native names, sorted.
func nativeNames() []string {
	names := make([]string, 0, len(natives))
	for name := range natives {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newNative(name string) (*ghostrap.Function, error) {
	fn, ok := natives[name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q (known: %s)", name, strings.Join(nativeNames(), ", "))
	}
	return ghostrap.NewFunction(name, fn), nil
}

// convertValue turns a decoded YAML value into an object property value.
// {function: name} becomes a method; any other mapping becomes a nested
// object.
func convertValue(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if name, ok := val["function"].(string); ok && len(val) == 1 {
			return newNative(name)
		}
		props := make(map[string]any, len(val))
		for k, elem := range val {
			c, err := convertValue(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			props[k] = c
		}
		return ghostrap.FromMap(props), nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			c, err := convertValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	default:
		return v, nil
	}
}

// newTransform returns the callback body for t. A nil transform passes the
// value through.
func newTransform(t *Transform) (func(value any) (any, error), error) {
	if t == nil {
		return func(value any) (any, error) { return value, nil }, nil
	}
	switch t.Op {
	case "identity":
		return func(value any) (any, error) { return value, nil }, nil
	case "add", "mul":
		n, ok := t.Arg.(int)
		if !ok {
			return nil, fmt.Errorf("transform %s: arg must be an int, got %T", t.Op, t.Arg)
		}
		op := t.Op
		return func(value any) (any, error) {
			v, ok := value.(int)
			if !ok {
				return nil, fmt.Errorf("transform %s: value is %T, want int", op, value)
			}
			if op == "add" {
				return v + n, nil
			}
			return v * n, nil
		}, nil
	case "append":
		suffix, ok := t.Arg.(string)
		if !ok {
			return nil, fmt.Errorf("transform append: arg must be a string, got %T", t.Arg)
		}
		return func(value any) (any, error) {
			return fmt.Sprint(value) + suffix, nil
		}, nil
	case "function":
		name, ok := t.Arg.(string)
		if !ok {
			return nil, fmt.Errorf("transform function: arg must be a native name, got %T", t.Arg)
		}
		fn, err := newNative(name)
		if err != nil {
			return nil, fmt.Errorf("transform function: %w", err)
		}
		return func(any) (any, error) { return fn, nil }, nil
	default:
		return nil, fmt.Errorf("unknown transform %q", t.Op)
	}
}
