package library

import "github.com/samber/lo"

// ResolveAuthorOf returns the author a book points at.
func ResolveAuthorOf(s *Store, b Book) (Author, bool) {
	return s.FindAuthorByID(b.AuthorID)
}

// ResolveBooksOf returns the books written by a, in insertion order. The
// result is empty, never nil, when a has no books.
func ResolveBooksOf(s *Store, a Author) []Book {
	books := s.BooksByAuthor([]int{a.ID})[a.ID]
	if books == nil {
		return []Book{}
	}
	return books
}

// resolveAuthorsOf answers ResolveAuthorOf for many books with one store
// pass. Missing authors are nil entries.
func resolveAuthorsOf(s *Store, books []Book) []*Author {
	ids := lo.Uniq(lo.Map(books, func(b Book, _ int) int { return b.AuthorID }))
	found := s.AuthorsByID(ids)
	return lo.Map(books, func(b Book, _ int) *Author {
		a, ok := found[b.AuthorID]
		if !ok {
			return nil
		}
		return &a
	})
}

// resolveBooksOfMany answers ResolveBooksOf for many authors with one store
// pass.
func resolveBooksOfMany(s *Store, authors []Author) [][]Book {
	grouped := s.BooksByAuthor(lo.Map(authors, func(a Author, _ int) int { return a.ID }))
	return lo.Map(authors, func(a Author, _ int) []Book {
		if books, ok := grouped[a.ID]; ok {
			return books
		}
		return []Book{}
	})
}
