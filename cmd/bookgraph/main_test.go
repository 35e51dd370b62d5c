package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hanpama/bookgraph/internal/logging"
	"github.com/stretchr/testify/require"
)

func runCapture(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(ctx, args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestHelp(t *testing.T) {
	out, _, err := runCapture(t, context.Background(), "help")
	require.NoError(t, err)
	require.Contains(t, out, "COMMANDS:")

	out, _, err = runCapture(t, context.Background(), "help", "serve")
	require.NoError(t, err)
	require.Contains(t, out, "serve FLAGS")
	require.Contains(t, out, "-seed <file>")

	_, _, err = runCapture(t, context.Background(), "help", "nope")
	require.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	_, errOut, err := runCapture(t, context.Background(), "frobnicate")
	require.ErrorContains(t, err, `unknown command "frobnicate"`)
	require.Contains(t, errOut, "USAGE:")

	_, _, err = runCapture(t, context.Background())
	require.ErrorContains(t, err, "missing command")
}

func TestPrintSchema(t *testing.T) {
	out, _, err := runCapture(t, context.Background(), "print-schema")
	require.NoError(t, err)
	require.Contains(t, out, "type Query")
	require.Contains(t, out, "createBook(")

	path := filepath.Join(t.TempDir(), "schema.graphql")
	_, _, err = runCapture(t, context.Background(), "print-schema", "-out", path)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, out, string(b))
}

func TestServe_BadFlags(t *testing.T) {
	_, errOut, err := runCapture(t, context.Background(), "serve", "-no-such-flag")
	require.Error(t, err)
	require.Contains(t, errOut, "serve FLAGS")

	_, _, err = runCapture(t, context.Background(), "serve", "-ids", "uuid")
	require.ErrorContains(t, err, "uuid")

	_, _, err = runCapture(t, context.Background(), "serve", "-seed", filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)

	_, errOut, err = runCapture(t, context.Background(), "serve", "-log.level", "loud")
	require.EqualError(t, err, `unknown log level "loud" (want debug, info, warn or error)`)
	require.Contains(t, errOut, "serve FLAGS")

	_, _, err = runCapture(t, context.Background(), "serve", "-log.format", "xml")
	require.EqualError(t, err, `unknown log format "xml" (want text or json)`)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errOut, err := runCapture(t, ctx, "serve", "-server.addr", "127.0.0.1:0", "-log.format", "json")
	require.NoError(t, err)
	require.Contains(t, errOut, `"msg":"GraphQL server listening"`)
	require.Contains(t, errOut, `"msg":"shutting down"`)
}

func TestParseServeFlags(t *testing.T) {
	cfg, err := parseServeFlags(nil)
	require.NoError(t, err)
	require.Equal(t, ":4000", cfg.addr)
	require.Equal(t, stringListFlag{"*"}, cfg.cors)

	cfg, err = parseServeFlags([]string{"-server.cors", "http://a.test", "-server.cors", "http://b.test", "-graphql.max-depth", "3"})
	require.NoError(t, err)
	require.Equal(t, stringListFlag{"http://a.test", "http://b.test"}, cfg.cors)
	require.Equal(t, 3, cfg.maxDepth)
	require.True(t, cfg.introspect)
	require.True(t, cfg.graphiql)

	cfg, err = parseServeFlags([]string{"-graphql.introspection=false", "-server.graphiql=false", "-log.level", "debug", "-log.format", "json"})
	require.NoError(t, err)
	require.False(t, cfg.introspect)
	require.False(t, cfg.graphiql)
	require.Equal(t, "debug", cfg.logLevel)
}

func TestMux_IntrospectionAndGraphiQL(t *testing.T) {
	introspect := func(t *testing.T, h http.Handler) string {
		t.Helper()
		req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ __schema { queryType { name } } }"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Body.String()
	}
	browse := func(h http.Handler) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/graphql", nil)
		req.Header.Set("Accept", "text/html")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}
	logger := logging.New("error", "text", io.Discard)

	cfg, err := parseServeFlags(nil)
	require.NoError(t, err)
	svc, err := newService(context.Background(), cfg)
	require.NoError(t, err)
	mux := newMux(svc, logger, cfg)
	require.JSONEq(t, `{"data":{"__schema":{"queryType":{"name":"Query"}}}}`, introspect(t, mux))
	w := browse(mux)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")

	cfg, err = parseServeFlags([]string{"-graphql.introspection=false", "-server.graphiql=false"})
	require.NoError(t, err)
	svc, err = newService(context.Background(), cfg)
	require.NoError(t, err)
	mux = newMux(svc, logger, cfg)
	require.Contains(t, introspect(t, mux), `"UNKNOWN_FIELD"`)
	require.Equal(t, http.StatusBadRequest, browse(mux).Code)
}

func TestMux_SeededGraphQLAndHealth(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.hcl")
	require.NoError(t, os.WriteFile(seed, []byte(`
author {
  id   = 1
  name = "Ada"
}
book {
  id        = 2
  title     = "Notes"
  author_id = 1
}
`), 0o644))

	cfg, err := parseServeFlags([]string{"-seed", seed})
	require.NoError(t, err)
	logger := logging.New("error", "text", io.Discard)
	svc, err := newService(logging.WithLogger(context.Background(), logger), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(newMux(svc, logger, cfg))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/graphql", "application/json",
		strings.NewReader(`{"query":"{ books { title author { name } } }"}`))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"data":{"books":[{"title":"Notes","author":{"name":"Ada"}}]}}`, string(body))

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
