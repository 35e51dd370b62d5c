package introspection

import (
	schema "github.com/hanpama/bookgraph/internal/schema"
)

var (
	str     = schema.NamedType("String")
	boolean = schema.NamedType("Boolean")
)

func nonNull(t *schema.TypeRef) *schema.TypeRef { return schema.NonNullType(t) }

// listOf is [name!].
func listOf(name string) *schema.TypeRef {
	return schema.ListType(nonNull(schema.NamedType(name)))
}

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", boolean).SetDefault(false)
}

// extend returns a copy of sch whose query type also carries __schema and
// __type and which knows the meta types those fields return. sch itself is
// left untouched.
func extend(sch *schema.Schema) *schema.Schema {
	out := schema.NewSchema(sch.Description)
	out.QueryType = sch.QueryType
	out.MutationType = sch.MutationType
	out.SubscriptionType = sch.SubscriptionType
	for _, t := range sch.Types {
		out.AddType(t)
	}
	for _, d := range sch.Directives {
		out.AddDirective(d)
	}
	for _, t := range metaTypes() {
		out.AddType(t)
	}

	if q := sch.GetQueryType(); q != nil {
		root := *q
		root.Fields = append(append([]*schema.Field{}, q.Fields...),
			schema.NewField("__schema", "Access the current type schema of this server.", nonNull(schema.NamedType("__Schema"))),
			schema.NewField("__type", "Request the type information of a single type.", schema.NamedType("__Type")).
				AddArgument(schema.NewInputValue("name", "", nonNull(str))),
		)
		out.AddType(&root)
	}
	return out
}

func metaTypes() []*schema.Type {
	typeRef := schema.NamedType("__Type")

	schemaType := schema.NewType("__Schema", schema.TypeKindObject, "A GraphQL Schema defines the capabilities of a GraphQL server.").
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("types", "A list of all types supported by this server.", nonNull(listOf("__Type")))).
		AddField(schema.NewField("queryType", "The type that query operations will be rooted at.", nonNull(typeRef))).
		AddField(schema.NewField("mutationType", "", typeRef)).
		AddField(schema.NewField("subscriptionType", "", typeRef)).
		AddField(schema.NewField("directives", "", nonNull(listOf("__Directive"))))

	typeType := schema.NewType("__Type", schema.TypeKindObject, "").
		AddField(schema.NewField("kind", "", nonNull(schema.NamedType("__TypeKind")))).
		AddField(schema.NewField("name", "", str)).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("specifiedByURL", "", str)).
		AddField(schema.NewField("fields", "", listOf("__Field")).AddArgument(includeDeprecated())).
		AddField(schema.NewField("interfaces", "", listOf("__Type"))).
		AddField(schema.NewField("possibleTypes", "", listOf("__Type"))).
		AddField(schema.NewField("enumValues", "", listOf("__EnumValue")).AddArgument(includeDeprecated())).
		AddField(schema.NewField("inputFields", "", listOf("__InputValue")).AddArgument(includeDeprecated())).
		AddField(schema.NewField("ofType", "", typeRef)).
		AddField(schema.NewField("isOneOf", "", boolean))

	fieldType := schema.NewType("__Field", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", nonNull(str))).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("args", "", nonNull(listOf("__InputValue"))).AddArgument(includeDeprecated())).
		AddField(schema.NewField("type", "", nonNull(typeRef))).
		AddField(schema.NewField("isDeprecated", "", nonNull(boolean))).
		AddField(schema.NewField("deprecationReason", "", str))

	inputValueType := schema.NewType("__InputValue", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", nonNull(str))).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("type", "", nonNull(typeRef))).
		AddField(schema.NewField("defaultValue", "", str)).
		AddField(schema.NewField("isDeprecated", "", nonNull(boolean))).
		AddField(schema.NewField("deprecationReason", "", str))

	enumValueType := schema.NewType("__EnumValue", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", nonNull(str))).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("isDeprecated", "", nonNull(boolean))).
		AddField(schema.NewField("deprecationReason", "", str))

	directiveType := schema.NewType("__Directive", schema.TypeKindObject, "").
		AddField(schema.NewField("name", "", nonNull(str))).
		AddField(schema.NewField("description", "", str)).
		AddField(schema.NewField("isRepeatable", "", nonNull(boolean))).
		AddField(schema.NewField("locations", "", nonNull(listOf("__DirectiveLocation")))).
		AddField(schema.NewField("args", "", nonNull(listOf("__InputValue"))).AddArgument(includeDeprecated()))

	return []*schema.Type{
		schemaType,
		typeType,
		fieldType,
		inputValueType,
		enumValueType,
		directiveType,
		enumType("__TypeKind", "SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"),
		enumType("__DirectiveLocation",
			"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
			"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
			"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
			"INPUT_FIELD_DEFINITION"),
	}
}

func enumType(name string, values ...string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, "")
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}
