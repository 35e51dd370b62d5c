package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header that carries the request ID in and out.
const Header = "X-Request-Id"

// maxLen caps caller-supplied IDs.
const maxLen = 128

// key is the context key for the request ID.
type key struct{}

// NewContext returns a copy of parent carrying id. An empty or oversized id
// is replaced by a fresh random one. The stored ID is returned.
func NewContext(parent context.Context, id string) (context.Context, string) {
	if id == "" || len(id) > maxLen {
		id = New()
	}
	return context.WithValue(parent, key{}, id), id
}

// New returns a random UUID.
func New() string { return uuid.NewString() }

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok
}
