package library

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

func (s *Service) newRegistry() *Registry {
	return NewRegistry().
		Register("Query", "hello", Constant{Value: "world"}).
		Register("Query", "books", EntityList{List: func() any { return s.store.ListBooks() }}).
		Register("Query", "authors", EntityList{List: func() any { return s.store.ListAuthors() }}).
		Register("Query", "book", EntityLookup{Find: func(id int) (any, bool) { return s.store.FindBookByID(id) }}).
		Register("Query", "author", EntityLookup{Find: func(id int) (any, bool) { return s.store.FindAuthorByID(id) }}).
		Register("Mutation", "createAuthor", Create{Create: s.createAuthor}).
		Register("Mutation", "createBook", Create{Create: s.createBook}).
		Register("Author", "id", Projection{Get: func(src any) any { return authorSource(src).ID }}).
		Register("Author", "name", Projection{Get: func(src any) any { return deref(authorSource(src).Name) }}).
		Register("Author", "age", Projection{Get: func(src any) any { return deref(authorSource(src).Age) }}).
		Register("Author", "books", Relationship{Batch: s.booksOf}).
		Register("Book", "id", Projection{Get: func(src any) any { return bookSource(src).ID }}).
		Register("Book", "title", Projection{Get: func(src any) any { return deref(bookSource(src).Title) }}).
		Register("Book", "genre", Projection{Get: func(src any) any { return deref(bookSource(src).Genre) }}).
		Register("Book", "author", Relationship{Batch: s.authorsOf})
}

func (s *Service) createAuthor(ctx context.Context, args map[string]any) (any, error) {
	in, err := decodeCreateAuthorArgs(args)
	if err != nil {
		return nil, err
	}
	return s.CreateAuthor(ctx, in.Name, in.Age)
}

func (s *Service) createBook(ctx context.Context, args map[string]any) (any, error) {
	in, err := decodeCreateBookArgs(args)
	if err != nil {
		return nil, err
	}
	return s.CreateBook(ctx, in.Title, in.Genre, in.AuthorID)
}

func (s *Service) booksOf(ctx context.Context, sources []any) ([]any, error) {
	authors := lo.Map(sources, func(src any, _ int) Author { return authorSource(src) })
	return lo.Map(resolveBooksOfMany(s.store, authors), func(books []Book, _ int) any { return books }), nil
}

func (s *Service) authorsOf(ctx context.Context, sources []any) ([]any, error) {
	books := lo.Map(sources, func(src any, _ int) Book { return bookSource(src) })
	return lo.Map(resolveAuthorsOf(s.store, books), func(a *Author, _ int) any {
		if a == nil {
			return nil
		}
		return *a
	}), nil
}

// The executor feeds back whatever a resolver returned for a parent object,
// so sources are always the entity values produced above.

func authorSource(src any) Author {
	a, ok := src.(Author)
	if !ok {
		panic(fmt.Sprintf("Author source must be library.Author, got %T", src))
	}
	return a
}

func bookSource(src any) Book {
	b, ok := src.(Book)
	if !ok {
		panic(fmt.Sprintf("Book source must be library.Book, got %T", src))
	}
	return b
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
