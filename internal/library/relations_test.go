package library

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestResolveBooksOf_ExactSet(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d books", n), func(t *testing.T) {
			s := NewStore()
			require.NoError(t, s.InsertAuthor(Author{ID: 1}))
			require.NoError(t, s.InsertAuthor(Author{ID: 2}))
			var want []Book
			for i := range n {
				mine := Book{ID: 100 + i, AuthorID: 1}
				require.NoError(t, s.InsertBook(mine))
				require.NoError(t, s.InsertBook(Book{ID: 200 + i, AuthorID: 2}))
				want = append(want, mine)
			}
			if want == nil {
				want = []Book{}
			}

			got := ResolveBooksOf(s, Author{ID: 1})
			require.NotNil(t, got)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("books mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveAuthorOf(t *testing.T) {
	s := NewStore()
	ada := Author{ID: 1, Name: ptr("Ada")}
	require.NoError(t, s.InsertAuthor(ada))
	book := Book{ID: 2, AuthorID: 1}
	require.NoError(t, s.InsertBook(book))

	got, ok := ResolveAuthorOf(s, book)
	require.True(t, ok)
	if diff := cmp.Diff(ada, got); diff != "" {
		t.Fatalf("author mismatch (-want +got):\n%s", diff)
	}

	_, ok = ResolveAuthorOf(s, Book{ID: 3, AuthorID: 99})
	require.False(t, ok)
}

func TestBatchedRelations(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.InsertAuthor(Author{ID: 1}))
	require.NoError(t, s.InsertAuthor(Author{ID: 2}))
	require.NoError(t, s.InsertBook(Book{ID: 10, AuthorID: 2}))
	require.NoError(t, s.InsertBook(Book{ID: 11, AuthorID: 1}))

	books := resolveBooksOfMany(s, []Author{{ID: 1}, {ID: 2}, {ID: 3}})
	want := [][]Book{{{ID: 11, AuthorID: 1}}, {{ID: 10, AuthorID: 2}}, {}}
	if diff := cmp.Diff(want, books); diff != "" {
		t.Fatalf("books mismatch (-want +got):\n%s", diff)
	}

	authors := resolveAuthorsOf(s, []Book{{ID: 10, AuthorID: 2}, {ID: 11, AuthorID: 1}, {ID: 12, AuthorID: 9}})
	require.Len(t, authors, 3)
	require.Equal(t, 2, authors[0].ID)
	require.Equal(t, 1, authors[1].ID)
	require.Nil(t, authors[2])
}
