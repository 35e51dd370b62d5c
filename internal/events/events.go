// Package events declares the payloads published on the event bus while a
// request is served. Handlers receive the request context alongside them.
package events

import (
	"net/http"
	"time"
)

// RequestStart is published when the HTTP handler accepts a request.
type RequestStart struct {
	Request *http.Request
}

// RequestFinish is published once the response has been written.
type RequestFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// OperationStart is published before a GraphQL operation runs.
type OperationStart struct {
	Query         string
	OperationName string
	OperationType string
}

// OperationFinish is published after a GraphQL operation ran.
type OperationFinish struct {
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// EntityCreated is published after a mutation stores a new entity.
type EntityCreated struct {
	Kind string // "Author" or "Book"
	ID   int
}
