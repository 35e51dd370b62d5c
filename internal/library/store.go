package library

import (
	"sync"

	"github.com/samber/lo"
)

// Author is a stored author. Optional attributes are nil when unset.
type Author struct {
	ID   int
	Name *string
	Age  *int
}

// Book is a stored book. AuthorID always names a stored Author.
type Book struct {
	ID       int
	Title    *string
	Genre    *string
	AuthorID int
}

func (a Author) clone() Author {
	a.Name = clonePtr(a.Name)
	a.Age = clonePtr(a.Age)
	return a
}

func (b Book) clone() Book {
	b.Title = clonePtr(b.Title)
	b.Genre = clonePtr(b.Genre)
	return b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Store holds authors and books in insertion order. It is safe for
// concurrent use; every value handed out is a copy.
type Store struct {
	mu        sync.RWMutex
	authors   []Author
	books     []Book
	authorPos map[int]int
	bookPos   map[int]int
}

func NewStore() *Store {
	return &Store{
		authors:   []Author{},
		books:     []Book{},
		authorPos: make(map[int]int),
		bookPos:   make(map[int]int),
	}
}

// ListAuthors returns every author in insertion order. The result is never nil.
func (s *Store) ListAuthors() []Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.authors, func(a Author, _ int) Author { return a.clone() })
}

// ListBooks returns every book in insertion order. The result is never nil.
func (s *Store) ListBooks() []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.books, func(b Book, _ int) Book { return b.clone() })
}

func (s *Store) FindAuthorByID(id int) (Author, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.authorPos[id]
	if !ok {
		return Author{}, false
	}
	return s.authors[pos].clone(), true
}

func (s *Store) FindBookByID(id int) (Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.bookPos[id]
	if !ok {
		return Book{}, false
	}
	return s.books[pos].clone(), true
}

// InsertAuthor stores a. An id already in use is rejected with KindDuplicateID.
func (s *Store) InsertAuthor(a Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.authorPos[a.ID]; exists {
		return errorf(KindDuplicateID, "author id %d already exists", a.ID)
	}
	s.authorPos[a.ID] = len(s.authors)
	s.authors = append(s.authors, a.clone())
	return nil
}

// InsertBook stores b. The referenced author must exist at the time of the
// insert; both checks and the append happen under one write lock.
func (s *Store) InsertBook(b Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bookPos[b.ID]; exists {
		return errorf(KindDuplicateID, "book id %d already exists", b.ID)
	}
	if _, exists := s.authorPos[b.AuthorID]; !exists {
		return errorf(KindReferentialViolation, "author %d does not exist", b.AuthorID)
	}
	s.bookPos[b.ID] = len(s.books)
	s.books = append(s.books, b.clone())
	return nil
}

// AuthorsByID looks up many authors under one read lock. Unknown ids are
// absent from the result.
func (s *Store) AuthorsByID(ids []int) map[int]Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]Author, len(ids))
	for _, id := range ids {
		if pos, ok := s.authorPos[id]; ok {
			out[id] = s.authors[pos].clone()
		}
	}
	return out
}

// BooksByAuthor groups the books of the given authors under one read lock.
// Each group keeps insertion order.
func (s *Store) BooksByAuthor(authorIDs []int) map[int][]Book {
	wanted := lo.SliceToMap(authorIDs, func(id int) (int, struct{}) { return id, struct{}{} })

	s.mu.RLock()
	defer s.mu.RUnlock()
	matching := lo.Filter(s.books, func(b Book, _ int) bool {
		_, ok := wanted[b.AuthorID]
		return ok
	})
	return lo.GroupBy(lo.Map(matching, func(b Book, _ int) Book { return b.clone() }), func(b Book) int {
		return b.AuthorID
	})
}
