package library

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hanpama/bookgraph/internal/logging"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// SeedData is the initial content of a store. Seed files are HCL:
//
//	author {
//	  id   = 1
//	  name = "Ursula K. Le Guin"
//	  age  = 88
//	}
//
//	book {
//	  id        = 1
//	  title     = "The Dispossessed"
//	  genre     = "Science Fiction"
//	  author_id = 1
//	}
//
// or, with a .yaml or .yml extension, YAML with top-level "authors" and
// "books" lists using the same attribute names.
type SeedData struct {
	Authors []SeedAuthor `hcl:"author,block" yaml:"authors"`
	Books   []SeedBook   `hcl:"book,block" yaml:"books"`
}

type SeedAuthor struct {
	ID   int     `hcl:"id" yaml:"id"`
	Name *string `hcl:"name,optional" yaml:"name"`
	Age  *int    `hcl:"age,optional" yaml:"age"`
}

type SeedBook struct {
	ID       int     `hcl:"id" yaml:"id"`
	Title    *string `hcl:"title,optional" yaml:"title"`
	Genre    *string `hcl:"genre,optional" yaml:"genre"`
	AuthorID int     `hcl:"author_id" yaml:"author_id"`
}

// ParseSeed decodes seed data from src. filename is used in diagnostics only.
func ParseSeed(src []byte, filename string) (*SeedData, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", filename, diags)
	}
	return decodeSeed(file, filename)
}

// ParseSeedYAML decodes YAML seed data from src. Unknown keys are errors.
func ParseSeedYAML(src []byte, filename string) (*SeedData, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	var data SeedData
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", filename, err)
	}
	return &data, nil
}

// LoadSeed reads and decodes the seed file at path. The format follows the
// extension: .yaml and .yml are YAML, anything else HCL.
func LoadSeed(path string) (*SeedData, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseSeedYAML(src, path)
	}
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, diags)
	}
	return decodeSeed(file, path)
}

func decodeSeed(file *hcl.File, filename string) (*SeedData, error) {
	var data SeedData
	if diags := gohcl.DecodeBody(file.Body, nil, &data); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", filename, diags)
	}
	return &data, nil
}

// Seed inserts data into the store: authors first, then books, each in file
// order. Seeded ids are reported to the id generator. The first failing
// insert stops seeding; entities inserted before it remain.
func (s *Service) Seed(ctx context.Context, data *SeedData) error {
	for _, sa := range data.Authors {
		if err := s.store.InsertAuthor(Author{ID: sa.ID, Name: sa.Name, Age: sa.Age}); err != nil {
			return fmt.Errorf("seed author %d: %w", sa.ID, err)
		}
		s.ids.Observe(sa.ID)
	}
	for _, sb := range data.Books {
		if err := s.store.InsertBook(Book{ID: sb.ID, Title: sb.Title, Genre: sb.Genre, AuthorID: sb.AuthorID}); err != nil {
			return fmt.Errorf("seed book %d: %w", sb.ID, err)
		}
		s.ids.Observe(sb.ID)
	}
	logging.FromContext(ctx).Info("store seeded", "authors", len(data.Authors), "books", len(data.Books))
	return nil
}
