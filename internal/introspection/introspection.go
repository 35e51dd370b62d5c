// Package introspection answers __schema and __type queries on top of any
// executor.Runtime.
package introspection

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	executor "github.com/hanpama/bookgraph/internal/executor"
	schema "github.com/hanpama/bookgraph/internal/schema"
	"github.com/samber/lo"
)

// Wrapped is a runtime paired with the schema it must be executed against.
type Wrapped struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap extends sch with the introspection meta types and returns a runtime
// that resolves them. Every other field is passed to base.
func Wrap(base executor.Runtime, sch *schema.Schema) Wrapped {
	ext := extend(sch)
	return Wrapped{
		Runtime: &runtime{base: base, schema: ext},
		Schema:  ext,
	}
}

type runtime struct {
	base   executor.Runtime
	schema *schema.Schema
}

var _ executor.Runtime = (*runtime)(nil)

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	switch objectType {
	case r.schema.QueryType:
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			return r.schema.Types[name], nil
		}
	case "__Schema":
		return r.schemaField(source.(*schema.Schema), field)
	case "__Type":
		return r.typeField(source, field, args)
	case "__Field":
		return fieldField(source.(*schema.Field), field, args)
	case "__InputValue":
		return r.inputValueField(source.(*schema.InputValue), field)
	case "__EnumValue":
		return enumValueField(source.(*schema.EnumValue), field)
	case "__Directive":
		return directiveField(source.(*schema.Directive), field, args)
	}
	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	return r.base.SerializeLeafValue(ctx, typeName, value)
}

func (r *runtime) schemaField(sch *schema.Schema, field string) (any, error) {
	switch field {
	case "description":
		return optional(sch.Description), nil
	case "types":
		types := lo.Values(sch.Types)
		slices.SortFunc(types, func(a, b *schema.Type) int { return strings.Compare(a.Name, b.Name) })
		return types, nil
	case "queryType":
		return sch.GetQueryType(), nil
	case "mutationType":
		return sch.GetMutationType(), nil
	case "subscriptionType":
		return sch.GetSubscriptionType(), nil
	case "directives":
		dirs := lo.Values(sch.Directives)
		slices.SortFunc(dirs, func(a, b *schema.Directive) int { return strings.Compare(a.Name, b.Name) })
		return dirs, nil
	}
	return nil, unknown("__Schema", field)
}

// typeField resolves __Type for both named definitions and the list and
// non-null wrappers around them.
func (r *runtime) typeField(source any, field string, args map[string]any) (any, error) {
	var t *schema.Type
	switch v := source.(type) {
	case *schema.Type:
		t = v
	case *schema.TypeRef:
		if v.Kind != schema.TypeRefKindNamed {
			switch field {
			case "kind":
				return string(v.Kind), nil
			case "ofType":
				return v.OfType, nil
			}
			return nil, nil
		}
		t = r.schema.Types[v.Named]
		if t == nil {
			return nil, fmt.Errorf("unknown type %q", v.Named)
		}
	default:
		return nil, fmt.Errorf("unexpected __Type source %T", source)
	}

	all := boolArg(args, "includeDeprecated")
	hasFields := t.Kind == schema.TypeKindObject || t.Kind == schema.TypeKindInterface
	switch field {
	case "kind":
		return string(t.Kind), nil
	case "name":
		return t.Name, nil
	case "description":
		return optional(t.Description), nil
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return nil, nil
		}
		return *t.SpecifiedByURL, nil
	case "fields":
		if !hasFields {
			return nil, nil
		}
		return lo.Filter(t.Fields, func(f *schema.Field, _ int) bool {
			return !strings.HasPrefix(f.Name, "__") && (all || !f.IsDeprecated)
		}), nil
	case "interfaces":
		if !hasFields {
			return nil, nil
		}
		return r.named(t.Interfaces), nil
	case "possibleTypes":
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return nil, nil
		}
		return r.named(t.PossibleTypes), nil
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, nil
		}
		return lo.Filter(t.EnumValues, func(v *schema.EnumValue, _ int) bool { return all || !v.IsDeprecated }), nil
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return lo.Filter(t.InputFields, func(v *schema.InputValue, _ int) bool { return all || !v.IsDeprecated }), nil
	case "ofType":
		return nil, nil
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return t.OneOf, nil
	}
	return nil, unknown("__Type", field)
}

func (r *runtime) named(names []string) []*schema.Type {
	return lo.FilterMap(names, func(name string, _ int) (*schema.Type, bool) {
		t, ok := r.schema.Types[name]
		return t, ok
	})
}

func fieldField(f *schema.Field, field string, args map[string]any) (any, error) {
	switch field {
	case "name":
		return f.Name, nil
	case "description":
		return optional(f.Description), nil
	case "args":
		return inputValues(f.Arguments, args), nil
	case "type":
		return f.Type, nil
	case "isDeprecated":
		return f.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), nil
	}
	return nil, unknown("__Field", field)
}

func (r *runtime) inputValueField(v *schema.InputValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optional(v.Description), nil
	case "type":
		return v.Type, nil
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil, nil
		}
		return r.literal(v.Type, v.DefaultValue), nil
	case "isDeprecated":
		return v.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), nil
	}
	return nil, unknown("__InputValue", field)
}

func enumValueField(v *schema.EnumValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optional(v.Description), nil
	case "isDeprecated":
		return v.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), nil
	}
	return nil, unknown("__EnumValue", field)
}

func directiveField(d *schema.Directive, field string, args map[string]any) (any, error) {
	switch field {
	case "name":
		return d.Name, nil
	case "description":
		return optional(d.Description), nil
	case "isRepeatable":
		return d.IsRepeatable, nil
	case "locations":
		return d.Locations, nil
	case "args":
		return inputValues(d.Arguments, args), nil
	}
	return nil, unknown("__Directive", field)
}

func inputValues(values []*schema.InputValue, args map[string]any) []*schema.InputValue {
	all := boolArg(args, "includeDeprecated")
	return lo.Filter(values, func(v *schema.InputValue, _ int) bool { return all || !v.IsDeprecated })
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

// optional maps the empty string to null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// literal renders a default value the way it would be written in a query.
// Enum values stay bare.
func (r *runtime) literal(typ *schema.TypeRef, v any) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	if t := r.schema.Types[typ.GetNamedType()]; t != nil && t.Kind == schema.TypeKindEnum {
		return s
	}
	return strconv.Quote(s)
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}

func unknown(typeName, field string) error {
	return fmt.Errorf("no introspection resolver for %s.%s", typeName, field)
}
