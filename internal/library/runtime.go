package library

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/hanpama/bookgraph/internal/executor"
	"github.com/hanpama/bookgraph/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Runtime implements executor.Runtime by dispatching on the resolver
// variant registered for each field.
//   - Relationship fields only arrive through BatchResolveAsync; every other
//     variant only through ResolveSync.
//   - BatchResolveAsync groups tasks by (type, field) and runs the groups
//     concurrently. A failing group fails only its own tasks and is logged.
//   - Results preserve task order.
type Runtime struct {
	reg *Registry
}

var _ executor.Runtime = (*Runtime)(nil)

func NewRuntime(reg *Registry) *Runtime { return &Runtime{reg: reg} }

func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	res, ok := r.reg.Lookup(objectType, field)
	if !ok {
		return nil, errorf(KindUnknownField, "no resolver for %s.%s", objectType, field)
	}
	switch v := res.(type) {
	case Constant:
		return v.Value, nil
	case EntityList:
		return v.List(), nil
	case EntityLookup:
		a, err := decodeIDArgs(args)
		if err != nil {
			return nil, err
		}
		entity, found := v.Find(a.ID)
		if !found {
			return nil, nil
		}
		return entity, nil
	case Create:
		return v.Create(ctx, args)
	case Projection:
		return v.Get(source), nil
	case Relationship:
		return nil, fmt.Errorf("%s.%s resolves in batches", objectType, field)
	default:
		panic(fmt.Sprintf("ResolveSync: unhandled resolver %T for %s.%s", res, objectType, field))
	}
}

func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	type group struct {
		key  FieldKey
		idxs []int
	}
	groups := []group{}
	idxByKey := map[FieldKey]int{}
	for i, t := range tasks {
		k := FieldKey{Type: t.ObjectType, Field: t.Field}
		if gi, ok := idxByKey[k]; ok {
			groups[gi].idxs = append(groups[gi].idxs, i)
		} else {
			idxByKey[k] = len(groups)
			groups = append(groups, group{key: k, idxs: []int{i}})
		}
	}

	// A plain Group: a failed group must not cancel its siblings. Its error
	// is already in its tasks' results; Wait only surfaces it for the log.
	var eg errgroup.Group
	for _, g := range groups {
		eg.Go(func() error {
			return r.runGroup(ctx, g.key, tasks, g.idxs, results)
		})
	}
	if err := eg.Wait(); err != nil {
		logging.FromContext(ctx).Warn("relationship batch failed", "error", err)
	}
	return results
}

// runGroup resolves the tasks at idxs, which all share key, and writes
// results in place. A returned error has been written to every task of the
// group.
func (r *Runtime) runGroup(ctx context.Context, key FieldKey, tasks []executor.AsyncResolveTask, idxs []int, results []executor.AsyncResolveResult) error {
	fail := func(err error) error {
		err = fmt.Errorf("%s: %w", key, err)
		for _, i := range idxs {
			results[i] = executor.AsyncResolveResult{Error: err}
		}
		return err
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	res, _ := r.reg.Lookup(key.Type, key.Field)
	rel, ok := res.(Relationship)
	if !ok {
		return fail(errors.New("not a relationship"))
	}

	sources := make([]any, len(idxs))
	for j, i := range idxs {
		sources[j] = tasks[i].Source
	}
	values, err := rel.Batch(ctx, sources)
	if err != nil {
		return fail(err)
	}
	if len(values) != len(sources) {
		return fail(fmt.Errorf("returned %d values for %d sources", len(values), len(sources)))
	}
	for j, i := range idxs {
		results[i] = executor.AsyncResolveResult{Value: values[j]}
	}
	return nil
}

// SerializeLeafValue renders ids as decimal strings and passes the other
// built-in scalars through.
func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int:
		if scalarOrEnumTypeName == "ID" {
			return strconv.Itoa(v), nil
		}
		return v, nil
	case string, bool, float64:
		return v, nil
	default:
		return nil, fmt.Errorf("cannot serialize %T as %s", value, scalarOrEnumTypeName)
	}
}
