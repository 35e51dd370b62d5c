package server

import (
	"net/http"

	executor "github.com/hanpama/bookgraph/internal/executor"
	language "github.com/hanpama/bookgraph/internal/language"
	"github.com/samber/lo"
)

type location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type responseError struct {
	Message    string         `json:"message"`
	Locations  []location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// response is the JSON body of one operation. Data stays present, possibly
// partial, next to errors.
type response struct {
	Data   any             `json:"data"`
	Errors []responseError `json:"errors,omitempty"`
}

// errorResponse reports a request-level failure such as a syntax error.
func errorResponse(data any, err *language.Error) response {
	return response{Data: data, Errors: []responseError{{
		Message:    err.Message,
		Extensions: err.Extensions,
		Locations: lo.Map(err.Locations, func(l language.Location, _ int) location {
			return location{Line: l.Line, Column: l.Column}
		}),
	}}}
}

func newResponse(res *executor.ExecutionResult) response {
	out := response{Data: res.Data}
	for _, e := range res.Errors {
		re := responseError{Message: e.Message, Extensions: e.Extensions}
		if len(e.Path) > 0 {
			re.Path = lo.Map(e.Path, func(pe executor.PathElement, _ int) any { return pe })
		}
		out.Errors = append(out.Errors, re)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
