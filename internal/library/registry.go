package library

import (
	"context"
	"errors"
	"fmt"
	"sort"

	schema "github.com/hanpama/bookgraph/internal/schema"
	"github.com/samber/lo"
)

// Resolver is one of the resolution strategies below. The set is closed;
// the runtime switches over it exhaustively.
type Resolver interface {
	isResolver()
}

// Constant resolves to Value regardless of source or arguments.
type Constant struct {
	Value any
}

// EntityList resolves to a whole collection.
type EntityList struct {
	List func() any
}

// EntityLookup resolves the entity named by the id argument. A miss is a
// null result, not an error.
type EntityLookup struct {
	Find func(id int) (any, bool)
}

// Create validates its arguments and stores a new entity.
type Create struct {
	Create func(ctx context.Context, args map[string]any) (any, error)
}

// Relationship resolves related entities for a batch of parents at once.
// The result has one entry per source, in order.
type Relationship struct {
	Batch func(ctx context.Context, sources []any) ([]any, error)
}

// Projection reads an attribute off the parent entity.
type Projection struct {
	Get func(source any) any
}

func (Constant) isResolver()     {}
func (EntityList) isResolver()   {}
func (EntityLookup) isResolver() {}
func (Create) isResolver()       {}
func (Relationship) isResolver() {}
func (Projection) isResolver()   {}

// FieldKey names a field on an object type.
type FieldKey struct {
	Type  string
	Field string
}

func (k FieldKey) String() string { return k.Type + "." + k.Field }

// Registry maps schema fields to resolvers.
type Registry struct {
	resolvers map[FieldKey]Resolver
}

func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[FieldKey]Resolver)}
}

// Register sets the resolver for typeName.field, replacing any earlier one.
func (r *Registry) Register(typeName, field string, res Resolver) *Registry {
	r.resolvers[FieldKey{Type: typeName, Field: field}] = res
	return r
}

func (r *Registry) Lookup(typeName, field string) (Resolver, bool) {
	res, ok := r.resolvers[FieldKey{Type: typeName, Field: field}]
	return res, ok
}

// Bind checks the registry against sch and marks relationship fields async.
// Every field of every object type must have a resolver and every resolver
// must name a declared field; all mismatches are reported together.
func (r *Registry) Bind(sch *schema.Schema) error {
	var errs []error
	declared := make(map[FieldKey]*schema.Field)
	for _, t := range sch.Types {
		if t.Kind != schema.TypeKindObject {
			continue
		}
		for _, f := range t.Fields {
			declared[FieldKey{Type: t.Name, Field: f.Name}] = f
		}
	}

	for _, key := range sortedKeys(declared) {
		if _, ok := r.resolvers[key]; !ok {
			errs = append(errs, fmt.Errorf("field %s has no resolver", key))
		}
	}
	for _, key := range sortedKeys(r.resolvers) {
		if _, ok := declared[key]; !ok {
			errs = append(errs, errorf(KindUnknownField, "resolver registered for undeclared field %s", key))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for key, f := range declared {
		_, async := r.resolvers[key].(Relationship)
		f.SetAsync(async)
	}
	return nil
}

func sortedKeys[V any](m map[FieldKey]V) []FieldKey {
	keys := lo.Keys(m)
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
