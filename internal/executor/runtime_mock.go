package executor

import (
	"context"
	"sync"
)

// MockResolver resolves one field value for a test runtime.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

const (
	CallKindSync  = "sync"
	CallKindAsync = "async"
)

// NewMockValueResolver always returns val.
func NewMockValueResolver(val any) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return val, nil }
}

// NewMockErrorResolver always fails with err.
func NewMockErrorResolver(err error) MockResolver {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

// Call records one resolved field. Fields resolved in the same
// BatchResolveAsync call share a BatchID; sync calls have BatchID 0.
type Call struct {
	Kind       string
	ObjectType string
	Field      string
	Source     any
	Args       map[string]any
	BatchID    int
}

var _ Runtime = (*MockRuntime)(nil)

// MockRuntime is a Runtime driven by per-field resolvers keyed
// "ObjectType.Field". Fields without a resolver read the same-named key of
// a map source, or resolve to null.
type MockRuntime struct {
	mu        sync.Mutex
	resolvers map[string]MockResolver
	calls     []Call
	batches   int
}

func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{resolvers: make(map[string]MockResolver, len(resolvers))}
	for k, r := range resolvers {
		m.resolvers[k] = r
	}
	return m
}

// SetResolver registers or replaces the resolver of objectType.field.
func (m *MockRuntime) SetResolver(objectType, field string, r MockResolver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvers[objectType+"."+field] = r
}

func (m *MockRuntime) resolve(ctx context.Context, call Call) (any, error) {
	m.mu.Lock()
	r := m.resolvers[call.ObjectType+"."+call.Field]
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	if r != nil {
		return r(ctx, call.Source, call.Args)
	}
	if src, ok := call.Source.(map[string]any); ok {
		return src[call.Field], nil
	}
	return nil, nil
}

func (m *MockRuntime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	return m.resolve(ctx, Call{Kind: CallKindSync, ObjectType: objectType, Field: field, Source: source, Args: args})
}

// BatchResolveAsync resolves tasks one by one, in order, under a fresh
// batch id.
func (m *MockRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	if len(tasks) == 0 {
		return nil
	}
	m.mu.Lock()
	m.batches++
	id := m.batches
	m.mu.Unlock()

	results := make([]AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		v, err := m.resolve(ctx, Call{
			Kind:       CallKindAsync,
			ObjectType: t.ObjectType,
			Field:      t.Field,
			Source:     t.Source,
			Args:       t.Args,
			BatchID:    id,
		})
		results[i] = AsyncResolveResult{Value: v, Error: err}
	}
	return results
}

// SerializeLeafValue passes values through unchanged.
func (m *MockRuntime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	return value, nil
}

// GetCalls returns the recorded calls in order.
func (m *MockRuntime) GetCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
