package schema

import (
	"fmt"
	"strings"

	language "github.com/hanpama/bookgraph/internal/language"
	"github.com/vektah/gqlparser/v2/ast"
)

// preludeDirectives are the built-in directives the executor evaluates.
var preludeDirectives = []string{"include", "skip"}

// BuildFromSDL parses and validates SDL and returns the corresponding Schema.
// Prelude definitions and introspection types are left out; the built-in
// scalars and the @include/@skip directives are always present.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	doc, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return BuildFromAST(doc)
}

// BuildFromAST converts a validated gqlparser schema.
func BuildFromAST(doc *language.Schema) (*Schema, error) {
	if doc.Query == nil {
		return nil, fmt.Errorf("schema has no query type")
	}
	s := NewSchema(doc.Description)
	s.SetQueryType(doc.Query.Name)
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}
	for _, name := range preludeDirectives {
		if dir := doc.Directives[name]; dir != nil {
			s.AddDirective(buildDirective(dir))
		}
	}

	for name, def := range doc.Types {
		if strings.HasPrefix(name, "__") {
			continue
		}
		// the prelude contributes its scalars only
		if isPrelude(def.Position) && def.Kind != language.Scalar {
			continue
		}
		t, err := buildDefinition(def)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for _, dir := range doc.Directives {
		if isPrelude(dir.Position) {
			continue
		}
		s.AddDirective(buildDirective(dir))
	}
	return s, nil
}

func isPrelude(pos *ast.Position) bool {
	return pos != nil && pos.Src != nil && pos.Src.BuiltIn
}

func buildDefinition(def *language.Definition) (*Type, error) {
	switch def.Kind {
	case language.Object, language.Interface:
		kind := TypeKindObject
		if def.Kind == language.Interface {
			kind = TypeKindInterface
		}
		t := NewType(def.Name, kind, def.Description)
		for _, iface := range def.Interfaces {
			t.AddInterface(iface)
		}
		for _, fd := range def.Fields {
			if strings.HasPrefix(fd.Name, "__") {
				continue
			}
			t.AddField(buildField(fd))
		}
		return t, nil
	case language.Union:
		t := NewType(def.Name, TypeKindUnion, def.Description)
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
		return t, nil
	case language.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, v := range def.EnumValues {
			ev := NewEnumValue(v.Name, v.Description)
			if reason, ok := deprecation(v.Directives); ok {
				ev.Deprecate(reason)
			}
			t.AddEnumValue(ev)
		}
		return t, nil
	case language.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description).
			SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, fd := range def.Fields {
			in := NewInputValue(fd.Name, fd.Description, buildTypeRef(fd.Type)).
				SetDefault(defaultValue(fd.DefaultValue))
			if reason, ok := deprecation(fd.Directives); ok {
				in.Deprecate(reason)
			}
			t.AddInputField(in)
		}
		return t, nil
	case language.Scalar:
		t := NewType(def.Name, TypeKindScalar, def.Description)
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				t.SetSpecifiedByURL(arg.Value.Raw)
			}
		}
		return t, nil
	}
	return nil, fmt.Errorf("type %s: unsupported kind %s", def.Name, def.Kind)
}

func buildField(fd *language.FieldDefinition) *Field {
	f := NewField(fd.Name, fd.Description, buildTypeRef(fd.Type))
	if reason, ok := deprecation(fd.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range fd.Arguments {
		f.AddArgument(buildArgument(arg))
	}
	return f
}

func buildArgument(a *language.ArgumentDefinition) *InputValue {
	in := NewInputValue(a.Name, a.Description, buildTypeRef(a.Type)).
		SetDefault(defaultValue(a.DefaultValue))
	if reason, ok := deprecation(a.Directives); ok {
		in.Deprecate(reason)
	}
	return in
}

func buildDirective(dir *language.DirectiveDefinition) *Directive {
	d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.IsRepeatable)
	for _, loc := range dir.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dir.Arguments {
		d.AddArgument(buildArgument(arg))
	}
	return d
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return NonNullType(buildTypeRef(&inner))
	}
	if t.Elem != nil {
		return ListType(buildTypeRef(t.Elem))
	}
	return NamedType(t.NamedType)
}

func deprecation(dirs language.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

func defaultValue(v *language.Value) any {
	if v == nil {
		return nil
	}
	out, err := v.Value(nil)
	if err != nil {
		return nil
	}
	return out
}
