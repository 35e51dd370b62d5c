package server

import (
	_ "embed"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

//go:embed graphiql.html
var graphiqlPage []byte

// wantsGraphiQL reports whether r is a browser navigation to the endpoint
// rather than a GraphQL request.
func wantsGraphiQL(r *http.Request) bool {
	if r.Method != http.MethodGet || r.URL.Query().Get("query") != "" {
		return false
	}
	return lo.SomeBy(strings.Split(r.Header.Get("Accept"), ","), func(part string) bool {
		return strings.HasPrefix(strings.TrimSpace(part), "text/html")
	})
}

func writeGraphiQL(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(graphiqlPage)
}
