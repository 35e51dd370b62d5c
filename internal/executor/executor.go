package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
	"github.com/samber/lo"
)

type Executor struct {
	runtime  Runtime
	schema   *schema.Schema
	maxDepth int
}

type Option func(*Executor)

// WithMaxDepth bounds how many fields deep a selection may nest. Root fields
// are at depth 1. Zero disables the limit.
func WithMaxDepth(n int) Option { return func(e *Executor) { e.maxDepth = n } }

func NewExecutor(runtime Runtime, schema *schema.Schema, opts ...Option) *Executor {
	e := &Executor{runtime: runtime, schema: schema}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Schema returns the schema the executor resolves against.
func (e *Executor) Schema() *schema.Schema { return e.schema }

// executionState is the per-request state. Sync fields complete in place;
// async fields wait in pending until the current depth is flushed as one
// batch.
type executionState struct {
	ctx            context.Context
	runtime        Runtime
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	maxDepth       int

	data    map[string]any
	pending []asyncTask
	nulled  tombstones
	errors  []GraphQLError

	// response names of root fields that select __schema or __type
	metaRoots map[string]bool
}

// asyncTask is an async field waiting for its batch.
type asyncTask struct {
	Task   AsyncResolveTask
	Path   Path
	Type   *schema.TypeRef
	Fields []*language.Field
}

// asyncPending marks a response slot an async field will fill in.
type asyncPending struct{}

func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := selectOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	vars, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{
			Message:    err.Error(),
			Extensions: map[string]any{"code": CodeInvalidArgument},
		}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	case language.Subscription:
		rootType = e.schema.GetSubscriptionType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	s := &executionState{
		ctx:            ctx,
		runtime:        e.runtime,
		schema:         e.schema,
		document:       document,
		variableValues: vars,
		maxDepth:       e.maxDepth,
		nulled:         tombstones{},
		metaRoots:      map[string]bool{},
		errors:         []GraphQLError{},
	}

	s.data = s.executeSelectionSet(rootType, operation.SelectionSet, initialValue, Path{})
	for len(s.pending) > 0 {
		tasks, results := s.flush()
		for i := range tasks {
			s.completeAsync(tasks[i], results[i])
		}
	}
	return &ExecutionResult{Data: s.data, Errors: s.errors}
}

// ExecuteSelection runs a single root field described programmatically rather
// than by a parsed document. The result data is keyed by the selection's
// response name.
func (e *Executor) ExecuteSelection(ctx context.Context, operation language.Operation, sel Selection) *ExecutionResult {
	doc := &language.QueryDocument{
		Operations: language.OperationList{{
			Operation:    operation,
			SelectionSet: language.SelectionSet{sel.toAST()},
		}},
	}
	return e.ExecuteRequest(ctx, doc, "", nil, nil)
}

// executeSelectionSet completes the sync fields of selectionSet and queues
// the async ones. A null in a non-null field nulls the whole object, except
// at the root where only that field is null.
func (s *executionState) executeSelectionSet(objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	out := make(map[string]any)
	for _, group := range collectFields(s, objectType, selectionSet) {
		name := group.ResponseName
		if len(path) == 0 && strings.HasPrefix(group.Fields[0].Name, "__") {
			s.metaRoots[name] = true
		}
		value := s.executeField(objectType, objectValue, group.Fields, path.with(name))

		if group.Fields[0].Name == "__typename" {
			out[name] = value
			continue
		}
		def := objectType.Field(group.Fields[0].Name)
		if def == nil {
			continue
		}
		if isNullish(value) {
			if schema.IsNonNull(def.Type) && len(path) > 0 {
				return nil
			}
			value = nil
		}
		out[name] = value
	}
	return out
}

func (s *executionState) executeField(objectType *schema.Type, objectValue any, fields []*language.Field, path Path) any {
	field := fields[0]
	if field.Name == "__typename" {
		return objectType.Name
	}

	def := objectType.Field(field.Name)
	if def == nil {
		s.addCodedError(CodeUnknownField, fmt.Sprintf("Cannot query field %q on type %q", field.Name, objectType.Name), path)
		return nil
	}
	if s.maxDepth > 0 && !s.underMetaField(path) && path.depth() > s.maxDepth {
		s.addCodedError(CodeDepthLimitExceeded, fmt.Sprintf("field %s exceeds the maximum selection depth of %d", path, s.maxDepth), path)
		return nil
	}
	args, err := coerceArgumentValues(def, field.Arguments, s.variableValues)
	if err != nil {
		s.addCodedError(CodeInvalidArgument, err.Error(), path)
		return nil
	}

	if !def.Async {
		value, err := s.runtime.ResolveSync(s.ctx, objectType.Name, field.Name, objectValue, args)
		if err != nil {
			s.errors = append(s.errors, newGraphQLError(err, path))
			value = nil
		}
		return s.completeValue(def.Type, fields, value, path)
	}

	s.pending = append(s.pending, asyncTask{
		Task: AsyncResolveTask{
			ObjectType: objectType.Name,
			Field:      field.Name,
			Source:     objectValue,
			Args:       args,
		},
		Path:   path,
		Type:   def.Type,
		Fields: fields,
	})
	return asyncPending{}
}

// flush resolves every pending task not under a nulled path in one
// runtime batch.
func (s *executionState) flush() ([]asyncTask, []AsyncResolveResult) {
	tasks := lo.Filter(s.pending, func(t asyncTask, _ int) bool { return !s.nulled.covers(t.Path) })
	s.pending = nil
	if len(tasks) == 0 {
		return nil, nil
	}

	failAll := func(err error) []AsyncResolveResult {
		return lo.Map(tasks, func(asyncTask, int) AsyncResolveResult { return AsyncResolveResult{Error: err} })
	}
	if err := s.ctx.Err(); err != nil {
		return tasks, failAll(err)
	}

	results := s.runtime.BatchResolveAsync(s.ctx, lo.Map(tasks, func(t asyncTask, _ int) AsyncResolveTask { return t.Task }))
	if len(results) != len(tasks) {
		return tasks, failAll(fmt.Errorf("runtime returned %d results for %d tasks", len(results), len(tasks)))
	}
	return tasks, results
}

// completeAsync writes one batch result into the response. A failed
// non-null field nulls the top-level field it lives under.
func (s *executionState) completeAsync(t asyncTask, res AsyncResolveResult) {
	if s.nulled.covers(t.Path) {
		return
	}

	var value any
	if res.Error != nil {
		s.errors = append(s.errors, newGraphQLError(res.Error, t.Path))
	} else {
		value = s.completeValue(t.Type, t.Fields, res.Value, t.Path)
	}

	if isNullish(value) {
		if schema.IsNonNull(t.Type) {
			top := t.Path.root()
			top.assign(s.data, nil)
			s.nulled.mark(top)
			return
		}
		value = nil
	}
	t.Path.assign(s.data, value)
}

func (s *executionState) completeValue(fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !s.hasErrorAt(path) {
				s.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", path), path)
			}
			return nil
		}
		v := s.completeValue(schema.Unwrap(fieldType), fields, result, path)
		if isNullish(v) {
			return nil
		}
		return v
	}
	if isNullish(result) {
		return nil
	}
	if schema.IsList(fieldType) {
		return s.completeList(fieldType, fields, result, path)
	}

	name := schema.GetNamedType(fieldType)
	typ := s.schema.Types[name]
	if typ == nil {
		s.addError(fmt.Sprintf("Unknown type: %s", name), path)
		return nil
	}
	switch typ.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		v, err := s.runtime.SerializeLeafValue(s.ctx, name, result)
		if err != nil {
			s.errors = append(s.errors, newGraphQLError(err, path))
			return nil
		}
		return v
	case schema.TypeKindObject:
		sub := lo.FlatMap(fields, func(f *language.Field, _ int) []language.Selection { return f.SelectionSet })
		return s.executeSelectionSet(typ, sub, result, path)
	default:
		s.addError(fmt.Sprintf("Cannot complete value of type %s (%s)", name, typ.Kind), path)
		return nil
	}
}

func (s *executionState) completeList(listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	items, ok := result.([]any)
	if !ok {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice {
			s.addError(fmt.Sprintf("Expected list value, got %T", result), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	out := make([]any, len(items))
	for i, item := range items {
		v := s.completeValue(inner, fields, item, path.with(i))
		if schema.IsNonNull(inner) && isNullish(v) {
			return nil
		}
		out[i] = v
	}
	return out
}

// underMetaField reports whether path lies under a root __schema or __type
// field. Those subtrees are not depth limited.
func (s *executionState) underMetaField(path Path) bool {
	name, _ := path[0].(string)
	return s.metaRoots[name]
}

func (s *executionState) addError(message string, path Path) {
	s.errors = append(s.errors, GraphQLError{Message: message, Path: path})
}

func (s *executionState) addCodedError(code, message string, path Path) {
	s.errors = append(s.errors, GraphQLError{Message: message, Path: path, Extensions: map[string]any{"code": code}})
}

func (s *executionState) hasErrorAt(path Path) bool {
	return lo.ContainsBy(s.errors, func(e GraphQLError) bool { return reflect.DeepEqual(e.Path, path) })
}

func selectOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		return document.Operations[0]
	}
	return document.Operations.ForName(operationName)
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	switch {
	case t == nil:
		return nil
	case t.NonNull:
		return schema.NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	case t.NamedType != "":
		return schema.NamedType(t.NamedType)
	case t.Elem != nil:
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

// isNullish is true for nil and for typed nil maps, slices and pointers.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
