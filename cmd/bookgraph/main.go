package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanpama/bookgraph/internal/eventbus"
	"github.com/hanpama/bookgraph/internal/language"
	"github.com/hanpama/bookgraph/internal/library"
	"github.com/hanpama/bookgraph/internal/logging"
	"github.com/hanpama/bookgraph/internal/otel"
	"github.com/hanpama/bookgraph/internal/server"
)

const rootUsage = `bookgraph — authors and books over GraphQL

USAGE:
  bookgraph <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL server backed by the in-memory store
  print-schema     Print the GraphQL schema as SDL
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -server.addr <addr>          HTTP listen address (default: :4000)
  -server.pretty               Pretty-print JSON responses
  -server.timeout <duration>   Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>     Request body limit (default: 10485760)
  -server.cors <origin>        Allowed CORS origin. Repeatable (default: *)
  -graphql.max-depth <n>       Maximum selection depth, 0 for none (default: 10)
  -graphql.introspection       Answer __schema and __type queries (default: true)
  -server.graphiql             Serve the GraphiQL IDE to browsers on GET /graphql (default: true)
  -seed <file>                 Load initial authors and books (HCL, or YAML by extension)
  -ids <policy>                Id policy: sequence or random (default: sequence)
  -log.level <level>           debug, info, warn or error (default: info)
  -log.format <format>         text or json (default: text)
  -otel.endpoint <addr>        OTLP collector endpoint
  -otel.service <name>         OpenTelemetry service name (default: bookgraph)
`

const printSchemaUsage = `print-schema FLAGS:
  -out <file>   Write SDL to file (default: stdout)
`

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("bookgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(ctx, cmdArgs, stderr)
	case "print-schema":
		return cmdPrintSchema(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "print-schema":
		fmt.Fprint(stdout, printSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type serveConfig struct {
	addr         string
	pretty       bool
	timeout      time.Duration
	maxBody      int64
	cors         stringListFlag
	maxDepth     int
	introspect   bool
	graphiql     bool
	seed         string
	ids          string
	logLevel     string
	logFormat    string
	otelEndpoint string
	otelService  string
}

func parseServeFlags(args []string) (serveConfig, error) {
	cfg := serveConfig{
		addr:        ":4000",
		timeout:     10 * time.Second,
		maxBody:     server.DefaultMaxBodyBytes,
		maxDepth:    library.DefaultMaxDepth,
		introspect:  true,
		graphiql:    true,
		ids:         "sequence",
		logLevel:    "info",
		logFormat:   "text",
		otelService: "bookgraph",
	}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&cfg.addr, "server.addr", cfg.addr, "HTTP listen address")
	fs.BoolVar(&cfg.pretty, "server.pretty", cfg.pretty, "Pretty-print JSON responses")
	fs.DurationVar(&cfg.timeout, "server.timeout", cfg.timeout, "Per-request timeout")
	fs.Int64Var(&cfg.maxBody, "server.max-body", cfg.maxBody, "Request body limit in bytes")
	fs.Var(&cfg.cors, "server.cors", "Allowed CORS origin")
	fs.IntVar(&cfg.maxDepth, "graphql.max-depth", cfg.maxDepth, "Maximum selection depth")
	fs.BoolVar(&cfg.introspect, "graphql.introspection", cfg.introspect, "Enable GraphQL introspection")
	fs.BoolVar(&cfg.graphiql, "server.graphiql", cfg.graphiql, "Serve the GraphiQL IDE")
	fs.StringVar(&cfg.seed, "seed", cfg.seed, "Seed file")
	fs.StringVar(&cfg.ids, "ids", cfg.ids, "Id policy")
	fs.StringVar(&cfg.logLevel, "log.level", cfg.logLevel, "Log level")
	fs.StringVar(&cfg.logFormat, "log.format", cfg.logFormat, "Log format")
	fs.StringVar(&cfg.otelEndpoint, "otel.endpoint", cfg.otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&cfg.otelService, "otel.service", cfg.otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		return serveConfig{}, err
	}
	if len(cfg.cors) == 0 {
		cfg.cors = stringListFlag{"*"}
	}
	if _, err := logging.ParseLevel(cfg.logLevel); err != nil {
		return serveConfig{}, err
	}
	if _, err := logging.ParseFormat(cfg.logFormat); err != nil {
		return serveConfig{}, err
	}
	return cfg, nil
}

// newService builds the library service and loads the seed file, if any.
func newService(ctx context.Context, cfg serveConfig) (*library.Service, error) {
	ids, err := library.NewIDGenerator(cfg.ids)
	if err != nil {
		return nil, err
	}
	svc, err := library.New(
		library.WithIDGenerator(ids),
		library.WithMaxDepth(cfg.maxDepth),
		library.WithIntrospection(cfg.introspect),
	)
	if err != nil {
		return nil, err
	}
	if cfg.seed != "" {
		data, err := library.LoadSeed(cfg.seed)
		if err != nil {
			return nil, err
		}
		if err := svc.Seed(ctx, data); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

func newMux(svc *library.Service, logger *slog.Logger, cfg serveConfig) http.Handler {
	sopts := []server.Option{
		server.WithMaxBodyBytes(cfg.maxBody),
		server.WithCORS(cfg.cors...),
		server.WithGraphiQL(cfg.graphiql),
	}
	if cfg.pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if cfg.timeout > 0 {
		sopts = append(sopts, server.WithTimeout(cfg.timeout))
	}
	h := server.New(svc.Executor(), sopts...)

	mux := http.NewServeMux()
	mux.Handle("/graphql", withLogger(h, logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	return mux
}

func withLogger(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), logger)))
	})
}

func cmdServe(ctx context.Context, args []string, stderr io.Writer) error {
	cfg, err := parseServeFlags(args)
	if err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}

	logger := logging.New(cfg.logLevel, cfg.logFormat, stderr)
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)
	defer logging.Subscribe(logger)()

	shutdownOtel, err := otel.Setup(ctx, cfg.otelEndpoint, cfg.otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdownOtel(context.Background()) }()

	svc, err := newService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           newMux(svc, logger, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logger.Info("GraphQL server listening", "addr", ln.Addr().String(), "path", "/graphql")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cmdPrintSchema(args []string, stdout, stderr io.Writer) error {
	outFile := ""
	fs := flag.NewFlagSet("print-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, printSchemaUsage)
		return err
	}

	doc, err := language.LoadSchema("schema.graphql", library.SDL())
	if err != nil {
		return err
	}
	if outFile == "" {
		language.FormatSchema(stdout, doc)
		return nil
	}
	var buf bytes.Buffer
	language.FormatSchema(&buf, doc)
	return os.WriteFile(outFile, buf.Bytes(), 0644)
}
