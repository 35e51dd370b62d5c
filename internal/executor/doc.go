// Package executor resolves GraphQL operations against a schema.Schema through
// a host-supplied Runtime.
//
// # Execution model
//
// Execution is breadth-first. Each field is classified by schema.Field.Async:
//
//   - Sync fields (scalar projections, store lookups, mutations) are resolved
//     immediately through Runtime.ResolveSync and completed in place. Descending
//     through sync fields does not add batch depth.
//   - Async fields (relationships) are queued while the current depth is
//     expanded and then resolved together with one Runtime.BatchResolveAsync
//     call. Their subfields are expanded in the next round.
//
// For a request whose async nesting is d, BatchResolveAsync is called exactly
// d times regardless of how many entities appear at each level.
//
// # Arguments
//
// Arguments are coerced against the field definition before the resolver is
// invoked. An unknown argument, a missing required argument or a value that
// cannot be coerced fails the field with code INVALID_ARGUMENT and the
// resolver is not called, so a mutation never runs on partial input.
//
// # Errors
//
// Errors are collected as located GraphQLErrors and execution continues for
// unrelated fields. Selecting a field the type does not declare yields
// UNKNOWN_FIELD; nesting past WithMaxDepth yields DEPTH_LIMIT_EXCEEDED.
// Resolver errors that implement CodedError keep their code. A null in a
// Non-Null position propagates to the nearest nullable ancestor, and queued
// async work under a nulled path is dropped.
//
// # Entry points
//
// ExecuteRequest runs a parsed document. ExecuteSelection runs a single root
// field described by a Selection tree, for callers that do not speak the query
// language.
package executor
