package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func newObjectType(name string, fields ...*schema.Field) *schema.Type {
	t := schema.NewType(name, schema.TypeKindObject, "")
	for _, field := range fields {
		t.AddField(field)
	}
	return t
}

// newShelfSchema declares authors and books with the relationship fields
// marked async, mirroring how the library registry binds them.
func newShelfSchema() *schema.Schema {
	sch := schema.NewSchema("")
	sch.SetQueryType("Query").SetMutationType("Mutation")
	sch.AddType(newObjectType("Query",
		schema.NewField("hello", "", schema.NamedType("String")),
		schema.NewField("authors", "", schema.ListType(schema.NamedType("Author"))),
		schema.NewField("author", "", schema.NamedType("Author")).
			AddArgument(schema.NewInputValue("id", "", schema.NonNullType(schema.NamedType("ID")))),
	))
	sch.AddType(newObjectType("Mutation",
		schema.NewField("create", "", schema.NamedType("Author")).
			AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String")))).
			AddArgument(schema.NewInputValue("age", "", schema.NamedType("Int"))),
		schema.NewField("m1", "", schema.NamedType("String")),
		schema.NewField("m2", "", schema.NamedType("String")),
		schema.NewField("m3", "", schema.NamedType("String")),
	))
	sch.AddType(newObjectType("Author",
		schema.NewField("id", "", schema.NonNullType(schema.NamedType("ID"))),
		schema.NewField("name", "", schema.NamedType("String")),
		schema.NewField("books", "", schema.ListType(schema.NamedType("Book"))).SetAsync(true),
	))
	sch.AddType(newObjectType("Book",
		schema.NewField("id", "", schema.NonNullType(schema.NamedType("ID"))),
		schema.NewField("title", "", schema.NamedType("String")),
		schema.NewField("author", "", schema.NamedType("Author")).SetAsync(true),
	))
	for _, name := range []string{"String", "ID", "Int", "Boolean"} {
		sch.AddType(schema.NewType(name, schema.TypeKindScalar, ""))
	}
	return sch
}

var (
	ada = map[string]any{"id": "1", "name": "Ada"}
	bob = map[string]any{"id": "2", "name": "Bob"}
)

func shelfRuntime() *MockRuntime {
	return NewMockRuntime(map[string]MockResolver{
		"Query.hello":   NewMockValueResolver("world"),
		"Query.authors": NewMockValueResolver([]any{ada, bob}),
		"Author.books": func(ctx context.Context, src any, args map[string]any) (any, error) {
			if src.(map[string]any)["id"] == "1" {
				return []any{map[string]any{"id": "10", "title": "Notes"}}, nil
			}
			return []any{}, nil
		},
		"Book.author": NewMockValueResolver(ada),
	})
}

var equateEmpty = cmpopts.EquateEmpty()

func asyncCalls(calls []Call) []Call {
	var out []Call
	for _, c := range calls {
		if c.Kind == CallKindAsync {
			out = append(out, Call{Kind: c.Kind, ObjectType: c.ObjectType, Field: c.Field, BatchID: c.BatchID})
		}
	}
	return out
}

func TestRoot_Query_IsAsync_Depth0Batch_Calls(t *testing.T) {
	sch := schema.NewSchema("")
	sch.SetQueryType("Query")
	sch.AddType(newObjectType("Query", schema.NewField("a", "", schema.NamedType("String")).SetAsync(true)))
	sch.AddType(schema.NewType("String", schema.TypeKindScalar, ""))
	rt := NewMockRuntime(map[string]MockResolver{"Query.a": NewMockValueResolver("A")})
	exec := NewExecutor(rt, sch)

	gotRes := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ a }"), "", nil, nil)

	wantRes := &ExecutionResult{Data: map[string]any{"a": "A"}}
	if diff := cmp.Diff(wantRes, gotRes, equateEmpty); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
	wantCalls := []Call{{Kind: "async", ObjectType: "Query", Field: "a", Source: nil, Args: map[string]any{}, BatchID: 1}}
	if diff := cmp.Diff(wantCalls, rt.GetCalls()); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRelationships_BatchedPerDepth(t *testing.T) {
	rt := shelfRuntime()
	exec := NewExecutor(rt, newShelfSchema())
	doc := mustParseQuery(t, "{ authors { name books { title author { name } } } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantData := map[string]any{
		"authors": []any{
			map[string]any{
				"name": "Ada",
				"books": []any{
					map[string]any{"title": "Notes", "author": map[string]any{"name": "Ada"}},
				},
			},
			map[string]any{"name": "Bob", "books": []any{}},
		},
	}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}

	// two authors share one batch; the single book's author is the next batch
	wantCalls := []Call{
		{Kind: CallKindAsync, ObjectType: "Author", Field: "books", BatchID: 1},
		{Kind: CallKindAsync, ObjectType: "Author", Field: "books", BatchID: 1},
		{Kind: CallKindAsync, ObjectType: "Book", Field: "author", BatchID: 2},
	}
	if diff := cmp.Diff(wantCalls, asyncCalls(rt.GetCalls())); diff != "" {
		t.Fatalf("async calls mismatch (-want +got):\n%s", diff)
	}
}

func TestMutation_Serial_Evaluation_Order_Result(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Mutation.m1": NewMockValueResolver("1"),
		"Mutation.m2": NewMockErrorResolver(fmt.Errorf("boom")),
		"Mutation.m3": NewMockValueResolver("3"),
	})
	exec := NewExecutor(rt, newShelfSchema())

	gotRes := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "mutation { m1 m2 m3 }"), "", nil, nil)

	wantRes := &ExecutionResult{
		Data:   map[string]any{"m1": "1", "m2": nil, "m3": "3"},
		Errors: []GraphQLError{{Message: "boom", Path: Path{"m2"}}},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
	wantCalls := []Call{
		{Kind: "sync", ObjectType: "Mutation", Field: "m1", Args: map[string]any{}},
		{Kind: "sync", ObjectType: "Mutation", Field: "m2", Args: map[string]any{}},
		{Kind: "sync", ObjectType: "Mutation", Field: "m3", Args: map[string]any{}},
	}
	if diff := cmp.Diff(wantCalls, rt.GetCalls()); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownField(t *testing.T) {
	exec := NewExecutor(shelfRuntime(), newShelfSchema())

	gotRes := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ hello nope }"), "", nil, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{"hello": "world"},
		Errors: []GraphQLError{{
			Message:    `Cannot query field "nope" on type "Query"`,
			Path:       Path{"nope"},
			Extensions: map[string]any{"code": CodeUnknownField},
		}},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidArgument_ResolverNotCalled(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"missing required", "mutation { create { id } }"},
		{"uncoercible", `mutation { create(name: "Ada", age: "old") { id } }`},
		{"non integral", `mutation { create(name: "Ada", age: 30.5) { id } }`},
		{"unknown argument", `mutation { create(name: "Ada", nickname: "A") { id } }`},
		{"null for non-null", `mutation { create(name: null) { id } }`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			rt := NewMockRuntime(map[string]MockResolver{
				"Mutation.create": func(ctx context.Context, src any, args map[string]any) (any, error) {
					called = true
					return ada, nil
				},
			})
			exec := NewExecutor(rt, newShelfSchema())

			gotRes := exec.ExecuteRequest(context.Background(), mustParseQuery(t, tc.query), "", nil, nil)

			if called {
				t.Fatalf("resolver ran despite invalid arguments")
			}
			if diff := cmp.Diff(map[string]any{"create": nil}, gotRes.Data); diff != "" {
				t.Fatalf("data mismatch (-want +got):\n%s", diff)
			}
			if len(gotRes.Errors) != 1 || gotRes.Errors[0].Code() != CodeInvalidArgument {
				t.Fatalf("expected one %s error, got %+v", CodeInvalidArgument, gotRes.Errors)
			}
		})
	}
}

func TestArguments_Coerced(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Mutation.create": func(ctx context.Context, src any, args map[string]any) (any, error) {
			return map[string]any{"id": "5", "name": args["name"]}, nil
		},
	})
	exec := NewExecutor(rt, newShelfSchema())
	doc := mustParseQuery(t, `mutation($age: Int) { create(name: "Ada", age: $age) { id name } }`)

	// JSON numbers arrive as float64
	gotRes := exec.ExecuteRequest(context.Background(), doc, "", map[string]any{"age": float64(30)}, nil)

	if diff := cmp.Diff(map[string]any{"create": map[string]any{"id": "5", "name": "Ada"}}, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	calls := rt.GetCalls()
	if diff := cmp.Diff(map[string]any{"name": "Ada", "age": 30}, calls[0].Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestVariables_MissingRequired(t *testing.T) {
	exec := NewExecutor(shelfRuntime(), newShelfSchema())
	doc := mustParseQuery(t, `query($id: ID!) { author(id: $id) { id } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	if gotRes.Data != nil {
		t.Fatalf("expected no data, got %v", gotRes.Data)
	}
	if len(gotRes.Errors) != 1 || gotRes.Errors[0].Code() != CodeInvalidArgument {
		t.Fatalf("expected one %s error, got %+v", CodeInvalidArgument, gotRes.Errors)
	}
}

func TestDepthLimit(t *testing.T) {
	exec := NewExecutor(shelfRuntime(), newShelfSchema(), WithMaxDepth(1))

	gotRes := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ authors { name } }"), "", nil, nil)

	wantData := map[string]any{"authors": []any{
		map[string]any{"name": nil},
		map[string]any{"name": nil},
	}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(gotRes.Errors) != 2 {
		t.Fatalf("expected an error per item, got %+v", gotRes.Errors)
	}
	want := GraphQLError{
		Message:    "field authors[0].name exceeds the maximum selection depth of 1",
		Path:       Path{"authors", 0, "name"},
		Extensions: map[string]any{"code": CodeDepthLimitExceeded},
	}
	if diff := cmp.Diff(want, gotRes.Errors[0]); diff != "" {
		t.Fatalf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestDepthLimit_MetaFieldsExempt(t *testing.T) {
	sch := newShelfSchema()
	sch.Types["Query"].AddField(schema.NewField("__meta", "", schema.NamedType("Author")))
	rt := shelfRuntime()
	rt.SetResolver("Query", "__meta", NewMockValueResolver(ada))
	exec := NewExecutor(rt, sch, WithMaxDepth(1))

	gotRes := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ __meta { name } }"), "", nil, nil)
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", gotRes.Errors)
	}
	if diff := cmp.Diff(map[string]any{"__meta": map[string]any{"name": "Ada"}}, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	// an alias does not lift the limit from an ordinary field
	gotRes = exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ __x: authors { name } }"), "", nil, nil)
	if len(gotRes.Errors) != 2 || gotRes.Errors[0].Code() != CodeDepthLimitExceeded {
		t.Fatalf("expected depth errors, got %+v", gotRes.Errors)
	}
}

type codedErr struct{ code string }

func (e codedErr) Error() string     { return "rejected" }
func (e codedErr) ErrorCode() string { return e.code }

func TestResolverErrorCode_Propagated(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Mutation.create": NewMockErrorResolver(fmt.Errorf("create: %w", codedErr{code: "REFERENTIAL_VIOLATION"})),
	})
	exec := NewExecutor(rt, newShelfSchema())

	gotRes := exec.ExecuteRequest(context.Background(), mustParseQuery(t, `mutation { create(name: "x") { id } }`), "", nil, nil)

	want := []GraphQLError{{
		Message:    "create: rejected",
		Path:       Path{"create"},
		Extensions: map[string]any{"code": "REFERENTIAL_VIOLATION"},
	}}
	if diff := cmp.Diff(want, gotRes.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestNonNullViolation_NullsParent(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.author": NewMockValueResolver(map[string]any{"name": "nameless"}),
	})
	exec := NewExecutor(rt, newShelfSchema())

	gotRes := exec.ExecuteRequest(context.Background(), mustParseQuery(t, `{ author(id: 1) { id name } }`), "", nil, nil)

	wantRes := &ExecutionResult{
		Data:   map[string]any{"author": nil},
		Errors: []GraphQLError{{Message: "Cannot return null for non-nullable field author.id", Path: Path{"author", "id"}}},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestFragmentsAndDirectives(t *testing.T) {
	exec := NewExecutor(shelfRuntime(), newShelfSchema())
	doc := mustParseQuery(t, `
		query($skip: Boolean!) { authors { ...F name @skip(if: $skip) alias: name @include(if: true) } }
		fragment F on Author { id }
	`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", map[string]any{"skip": true}, nil)

	wantData := map[string]any{"authors": []any{
		map[string]any{"id": "1", "alias": "Ada"},
		map[string]any{"id": "2", "alias": "Bob"},
	}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteSelection(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.author": func(ctx context.Context, src any, args map[string]any) (any, error) {
			return map[string]any{"id": args["id"], "name": "Ada"}, nil
		},
		"Author.books": NewMockValueResolver([]any{map[string]any{"id": "10", "title": "Notes"}}),
	})
	exec := NewExecutor(rt, newShelfSchema())

	sel := Selection{
		Name:      "author",
		Arguments: map[string]any{"id": 7},
		Fields:    append(Fields("id", "name"), Field("books", Fields("title")...)),
	}
	gotRes := exec.ExecuteSelection(context.Background(), language.Query, sel)

	wantData := map[string]any{"author": map[string]any{
		"id":    "7",
		"name":  "Ada",
		"books": []any{map[string]any{"title": "Notes"}},
	}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"id": "7"}, rt.GetCalls()[0].Args); diff != "" {
		t.Fatalf("ID argument not coerced to string (-want +got):\n%s", diff)
	}
}

func TestExecuteSelection_WrongOperationKind(t *testing.T) {
	exec := NewExecutor(shelfRuntime(), newShelfSchema())

	gotRes := exec.ExecuteSelection(context.Background(), language.Mutation, Selection{Name: "hello"})

	if len(gotRes.Errors) != 1 || gotRes.Errors[0].Code() != CodeUnknownField {
		t.Fatalf("expected %s, got %+v", CodeUnknownField, gotRes.Errors)
	}
}

func TestCanceledContext_FailsPendingBatch(t *testing.T) {
	rt := shelfRuntime()
	exec := NewExecutor(rt, newShelfSchema())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gotRes := exec.ExecuteRequest(ctx, mustParseQuery(t, "{ authors { books { title } } }"), "", nil, nil)

	wantData := map[string]any{"authors": []any{
		map[string]any{"books": nil},
		map[string]any{"books": nil},
	}}
	if diff := cmp.Diff(wantData, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(gotRes.Errors) != 2 || gotRes.Errors[0].Message != context.Canceled.Error() {
		t.Fatalf("expected cancellation errors, got %+v", gotRes.Errors)
	}
	if calls := asyncCalls(rt.GetCalls()); len(calls) != 0 {
		t.Fatalf("runtime batch should not run after cancellation: %+v", calls)
	}
}
