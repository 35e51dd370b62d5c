package executor

import (
	"context"
)

// Runtime is the host side of field resolution used by the Executor.
//
// The Executor runs breadth-first. At each depth it drains synchronous fields
// through ResolveSync, then calls BatchResolveAsync once with every async
// field collected at that depth. The next depth starts only after the batch
// returns and its values are completed.
//
//   - ResolveSync is never invoked for fields marked async, and
//     BatchResolveAsync is only invoked with at least one task.
//   - Errors returned from either method become located GraphQL errors. An
//     error implementing CodedError contributes its code to the error
//     extensions.
//   - Implementations must be safe for concurrent use; one Runtime serves
//     every request.
//   - Implementations must not mutate source or args values.
//
// objectType is the GraphQL type name that owns field ("Query" or "Mutation"
// for root fields), source is the parent value (nil at the root) and args are
// the already-coerced argument values.
type Runtime interface {
	// ResolveSync resolves a synchronous field value immediately. Return
	// (nil, nil) to produce null for a nullable field.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one depth of async field tasks.
	//
	// len(results) must equal len(tasks) and results[i] answers tasks[i].
	// Failures are reported per element; one failing task must not fail the
	// others.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// SerializeLeafValue converts a resolved scalar or enum value into a
	// JSON-safe Go value (string for ID and String, int for Int, and so on).
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

type AsyncResolveTask struct {
	// ObjectType is the parent GraphQL object type name for the field.
	ObjectType string
	// Field is the GraphQL field name to resolve.
	Field string
	// Source is the parent object value (nil for root fields).
	Source any
	// Args are the field arguments, coerced to Go values per the schema.
	Args map[string]any
}

type AsyncResolveResult struct {
	// Value is the resolved raw value prior to completion, or nil on error.
	Value any
	// Error contains a failure specific to this element; other elements in the
	// same batch are unaffected.
	Error error
}
