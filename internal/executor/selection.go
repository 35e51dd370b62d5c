package executor

import (
	"fmt"
	"sort"
	"strconv"

	language "github.com/hanpama/bookgraph/internal/language"
)

// Selection is a field request built in Go rather than parsed from a query
// document. Fields nest to any depth; the executor's depth limit still
// applies.
type Selection struct {
	Name      string
	Alias     string
	Arguments map[string]any
	Fields    []Selection
}

// Field is a shorthand for a selection with subfields and no arguments.
func Field(name string, fields ...Selection) Selection {
	return Selection{Name: name, Fields: fields}
}

// Fields turns plain names into leaf selections.
func Fields(names ...string) []Selection {
	out := make([]Selection, len(names))
	for i, n := range names {
		out[i] = Selection{Name: n}
	}
	return out
}

func (s Selection) toAST() *language.Field {
	f := &language.Field{Alias: s.Alias, Name: s.Name}
	if f.Alias == "" {
		f.Alias = s.Name
	}

	names := make([]string, 0, len(s.Arguments))
	for name := range s.Arguments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Arguments = append(f.Arguments, &language.Argument{Name: name, Value: valueToAST(s.Arguments[name])})
	}

	for _, sub := range s.Fields {
		f.SelectionSet = append(f.SelectionSet, sub.toAST())
	}
	return f
}

// valueToAST is the inverse of valueFromAST for the Go types that arrive from
// decoded JSON or hand-built argument maps.
func valueToAST(v any) *language.Value {
	switch x := v.(type) {
	case nil:
		return &language.Value{Kind: language.NullValue, Raw: "null"}
	case string:
		return &language.Value{Kind: language.StringValue, Raw: x}
	case bool:
		return &language.Value{Kind: language.BooleanValue, Raw: strconv.FormatBool(x)}
	case int:
		return &language.Value{Kind: language.IntValue, Raw: strconv.Itoa(x)}
	case int32:
		return &language.Value{Kind: language.IntValue, Raw: strconv.FormatInt(int64(x), 10)}
	case int64:
		return &language.Value{Kind: language.IntValue, Raw: strconv.FormatInt(x, 10)}
	case float64:
		return &language.Value{Kind: language.FloatValue, Raw: strconv.FormatFloat(x, 'g', -1, 64)}
	case []any:
		out := &language.Value{Kind: language.ListValue}
		for _, item := range x {
			out.Children = append(out.Children, &language.ChildValue{Value: valueToAST(item)})
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := &language.Value{Kind: language.ObjectValue}
		for _, k := range keys {
			out.Children = append(out.Children, &language.ChildValue{Name: k, Value: valueToAST(x[k])})
		}
		return out
	default:
		return &language.Value{Kind: language.StringValue, Raw: fmt.Sprint(x)}
	}
}
