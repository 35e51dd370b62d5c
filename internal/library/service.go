// Package library serves the authors and books API: an in-memory entity
// store, its relationships, the resolver registry bound to the GraphQL
// schema and the runtime the executor calls into.
package library

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/hanpama/bookgraph/internal/eventbus"
	"github.com/hanpama/bookgraph/internal/events"
	"github.com/hanpama/bookgraph/internal/executor"
	"github.com/hanpama/bookgraph/internal/introspection"
	language "github.com/hanpama/bookgraph/internal/language"
	"github.com/hanpama/bookgraph/internal/logging"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

//go:embed schema.graphql
var schemaSDL string

// SDL returns the source of the schema every Service serves.
func SDL() string { return schemaSDL }

// DefaultMaxDepth bounds selection nesting unless WithMaxDepth overrides it.
const DefaultMaxDepth = 10

// maxIDAttempts bounds how often a create draws a new id after a collision.
const maxIDAttempts = 8

type Option func(*Service)

// WithIDGenerator replaces the default Sequence generator.
func WithIDGenerator(g IDGenerator) Option { return func(s *Service) { s.ids = g } }

// WithMaxDepth sets the selection depth limit. Zero disables it.
func WithMaxDepth(n int) Option { return func(s *Service) { s.maxDepth = n } }

// WithIntrospection controls whether __schema and __type are answered. It
// is on by default.
func WithIntrospection(enable bool) Option { return func(s *Service) { s.introspection = enable } }

// Service owns one store and everything needed to query it.
type Service struct {
	store    *Store
	ids      IDGenerator
	maxDepth int
	registry *Registry

	introspection bool
	schema        *schema.Schema
	exec          *executor.Executor
}

// New builds a service with an empty store. It fails only if the schema and
// the resolver registry disagree.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		store:    NewStore(),
		ids:      NewSequence(),
		maxDepth: DefaultMaxDepth,

		introspection: true,
	}
	for _, o := range opts {
		o(s)
	}

	sch, err := schema.BuildFromSDL("schema.graphql", schemaSDL)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	s.registry = s.newRegistry()
	if err := s.registry.Bind(sch); err != nil {
		return nil, fmt.Errorf("bind resolvers: %w", err)
	}
	s.schema = sch

	var rt executor.Runtime = NewRuntime(s.registry)
	if s.introspection {
		w := introspection.Wrap(rt, sch)
		rt, sch = w.Runtime, w.Schema
	}
	s.exec = executor.NewExecutor(rt, sch, executor.WithMaxDepth(s.maxDepth))
	return s, nil
}

func (s *Service) Store() *Store                { return s.store }
func (s *Service) Schema() *schema.Schema       { return s.schema }
func (s *Service) Executor() *executor.Executor { return s.exec }

// ExecuteRequest runs one root field. args holds raw argument values (ids
// may be numbers or numeric strings) and subfields describe the requested
// shape below the root field.
func (s *Service) ExecuteRequest(ctx context.Context, fieldName string, isMutation bool, args map[string]any, subfields ...executor.Selection) *executor.ExecutionResult {
	op := language.Query
	if isMutation {
		op = language.Mutation
	}
	return s.exec.ExecuteSelection(ctx, op, executor.Selection{
		Name:      fieldName,
		Arguments: args,
		Fields:    subfields,
	})
}

// CreateAuthor stores a new author under a fresh id.
func (s *Service) CreateAuthor(ctx context.Context, name *string, age *int) (Author, error) {
	a := Author{Name: name, Age: age}
	id, err := s.insertWithFreshID(func(id int) error {
		a.ID = id
		return s.store.InsertAuthor(a)
	})
	if err != nil {
		return Author{}, err
	}
	s.created(ctx, "Author", id)
	return a.clone(), nil
}

// CreateBook stores a new book under a fresh id. authorID must name a
// stored author.
func (s *Service) CreateBook(ctx context.Context, title, genre *string, authorID int) (Book, error) {
	b := Book{Title: title, Genre: genre, AuthorID: authorID}
	id, err := s.insertWithFreshID(func(id int) error {
		b.ID = id
		return s.store.InsertBook(b)
	})
	if err != nil {
		return Book{}, err
	}
	s.created(ctx, "Book", id)
	return b.clone(), nil
}

func (s *Service) insertWithFreshID(insert func(id int) error) (int, error) {
	var err error
	for range maxIDAttempts {
		id := s.ids.NextID()
		if err = insert(id); err == nil {
			return id, nil
		}
		if !IsKind(err, KindDuplicateID) {
			return 0, err
		}
	}
	return 0, fmt.Errorf("no free id after %d attempts: %w", maxIDAttempts, err)
}

func (s *Service) created(ctx context.Context, kind string, id int) {
	logging.FromContext(ctx).Debug("entity created", "kind", kind, "id", id)
	eventbus.Publish(ctx, events.EntityCreated{Kind: kind, ID: id})
}
