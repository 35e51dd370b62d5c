// Package language re-exports the parts of gqlparser the rest of the server
// works with, so that callers never import the parser directly.
package language

import (
	"io"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Error is a located GraphQL error as produced by the parser.
type Error = gqlerror.Error

// Location is a line and column in a query document.
type Location = gqlerror.Location

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses SDL, merges it with the GraphQL prelude and validates the
// result.
func LoadSchema(name, source string) (*Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FormatSchema writes s to w as SDL. Prelude definitions are left out.
func FormatSchema(w io.Writer, s *Schema) {
	formatter.NewFormatter(w).FormatSchema(s)
}
