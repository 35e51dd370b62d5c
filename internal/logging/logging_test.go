package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hanpama/bookgraph/internal/eventbus"
	"github.com/hanpama/bookgraph/internal/events"
	"github.com/hanpama/bookgraph/internal/reqid"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	require.Same(t, slog.Default(), FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	require.Same(t, logger, FromContext(WithLogger(context.Background(), logger)))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "n", 1)

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"msg":"shown"`)
	require.Contains(t, out, `"n":1`)

	buf.Reset()
	New("debug", "text", &buf).Debug("plain")
	require.Contains(t, buf.String(), "msg=plain")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"loud", "", "INFO"} {
		_, err := ParseLevel(in)
		require.ErrorContains(t, err, "unknown log level", in)
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"text", "json"} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, in, got)
	}
	_, err := ParseFormat("xml")
	require.EqualError(t, err, `unknown log format "xml" (want text or json)`)
}

func TestSubscribe(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var buf bytes.Buffer
	unsubscribe := Subscribe(New("debug", "json", &buf))

	ctx, _ := reqid.NewContext(context.Background(), "req-1")
	eventbus.Publish(ctx, events.EntityCreated{Kind: "Author", ID: 4})
	eventbus.Publish(ctx, events.OperationFinish{OperationType: "query", Errors: []error{errors.New("boom")}})
	eventbus.Publish(ctx, events.RequestFinish{Request: httptest.NewRequest("POST", "/graphql", nil), Status: 200, Duration: time.Millisecond})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], `"msg":"entity created"`)
	require.Contains(t, lines[0], `"kind":"Author"`)
	require.Contains(t, lines[0], `"request_id":"req-1"`)
	require.Contains(t, lines[1], `"level":"WARN"`)
	require.Contains(t, lines[1], `"errors":1`)
	require.Contains(t, lines[2], `"status":200`)
	require.Contains(t, lines[2], `"path":"/graphql"`)

	unsubscribe()
	buf.Reset()
	eventbus.Publish(ctx, events.EntityCreated{Kind: "Book", ID: 5})
	require.Empty(t, buf.String())
}
