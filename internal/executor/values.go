package executor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

// coerceVariableValues checks the supplied variables against the
// operation's definitions. Names may be given with or without the $.
func coerceVariableValues(
	schema *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, def := range operation.VariableDefinitions {
		name := def.Variable
		val, ok := lookupVariable(variableValues, name)
		if !ok {
			switch {
			case def.DefaultValue != nil:
				val = valueFromAST(def.DefaultValue, nil)
			case def.Type.NonNull:
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, def.Type)
			default:
				continue
			}
		}
		if val == nil && def.Type.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, def.Type)
		}
		cv, err := coerceValue(val, typeRefFromAST(def.Type))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, def.Type, err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

func lookupVariable(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	v, ok := vars[strings.TrimPrefix(name, "$")]
	return v, ok
}

// coerceArgumentValues validates the supplied arguments against the field
// definition. The first unknown, missing or uncoercible argument fails the
// whole field so its resolver never runs with partial input.
func coerceArgumentValues(
	fieldDef *schema.Field,
	arguments language.ArgumentList,
	variableValues map[string]any,
) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, arg := range arguments {
		def := fieldDef.Argument(arg.Name)
		if def == nil {
			return nil, fmt.Errorf("unknown argument '%s' on field '%s'", arg.Name, fieldDef.Name)
		}
		cv, err := coerceValue(valueFromAST(arg.Value, variableValues), def.Type)
		if err != nil {
			return nil, fmt.Errorf("argument '%s' cannot be coerced: %v", arg.Name, err)
		}
		coerced[arg.Name] = cv
	}
	for _, def := range fieldDef.Arguments {
		if _, ok := coerced[def.Name]; ok {
			continue
		}
		switch {
		case def.DefaultValue != nil:
			cv, err := coerceValue(def.DefaultValue, def.Type)
			if err != nil {
				return nil, fmt.Errorf("default of argument '%s' cannot be coerced: %v", def.Name, err)
			}
			coerced[def.Name] = cv
		case schema.IsNonNull(def.Type):
			return nil, fmt.Errorf("argument '%s' of required type %s was not provided", def.Name, typeRefString(def.Type))
		}
	}
	return coerced, nil
}

func typeRefString(t *schema.TypeRef) string {
	switch {
	case t == nil:
		return ""
	case t.Kind == schema.TypeRefKindNonNull:
		return typeRefString(t.OfType) + "!"
	case t.Kind == schema.TypeRefKindList:
		return "[" + typeRefString(t.OfType) + "]"
	}
	return t.Named
}

// valueFromAST converts a literal to a Go value. Variables are looked up in
// vars; with nil vars they read as null.
func valueFromAST(value *language.Value, vars map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		v, _ := lookupVariable(vars, value.Raw)
		return v
	case language.IntValue:
		if n, err := strconv.Atoi(value.Raw); err == nil {
			return n
		}
		// out of range for int; coercion reports it
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.FloatValue:
		f, _ := strconv.ParseFloat(value.Raw, 64)
		return f
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(c.Value, vars)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			out[c.Name] = valueFromAST(c.Value, vars)
		}
		return out
	}
	return nil
}

// scalarCoercers hold the input coercion of the built-in scalars. Other
// named types pass through unchanged.
var scalarCoercers = map[string]func(any) (any, bool){
	"Int":     coerceInt,
	"Float":   coerceFloat,
	"String":  coerceString,
	"Boolean": coerceBoolean,
	"ID":      coerceID,
}

func coerceValue(value any, t *schema.TypeRef) (any, error) {
	if schema.IsNonNull(t) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(value, schema.Unwrap(t))
	}
	if value == nil {
		return nil, nil
	}
	if schema.IsList(t) {
		return coerceList(value, schema.Unwrap(t))
	}

	name := schema.GetNamedType(t)
	coerce, ok := scalarCoercers[name]
	if !ok {
		return value, nil
	}
	if out, ok := coerce(value); ok {
		return out, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to %s", value, value, name)
}

// coerceList coerces each item; a single value becomes a list of one.
func coerceList(value any, item *schema.TypeRef) (any, error) {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	out := make([]any, len(items))
	for i, v := range items {
		cv, err := coerceValue(v, item)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

// wholeNumber reports v as an int64 when it is an integral number.
func wholeNumber(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float32:
		return wholeNumber(float64(n))
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1<<63 {
			return int64(n), true
		}
	}
	return 0, false
}

func coerceInt(v any) (any, bool) {
	n, ok := wholeNumber(v)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return nil, false
	}
	return int(n), true
}

func coerceFloat(v any) (any, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return nil, false
}

func coerceString(v any) (any, bool) {
	s, ok := v.(string)
	return s, ok
}

func coerceBoolean(v any) (any, bool) {
	b, ok := v.(bool)
	return b, ok
}

// coerceID accepts strings and integral numbers; ids always come out as
// strings.
func coerceID(v any) (any, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if n, ok := wholeNumber(v); ok {
		return strconv.FormatInt(n, 10), true
	}
	return nil, false
}
