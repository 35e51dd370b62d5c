package server

import (
	"context"
	"net/http"
	"time"

	eventbus "github.com/hanpama/bookgraph/internal/eventbus"
	events "github.com/hanpama/bookgraph/internal/events"
	executor "github.com/hanpama/bookgraph/internal/executor"
	language "github.com/hanpama/bookgraph/internal/language"
	"github.com/hanpama/bookgraph/internal/logging"
	reqid "github.com/hanpama/bookgraph/internal/reqid"
	"github.com/samber/lo"
)

// Handler serves GraphQL over HTTP: GET with query parameters, POST with a
// single JSON request or a batch array.
type Handler struct {
	exec *executor.Executor
	opt  Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// GraphiQL serves the in-browser IDE to GET requests that accept HTML
	// and carry no query.
	GraphiQL bool
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

func WithGraphiQL(enable bool) Option { return func(o *Options) { o.GraphiQL = enable } }

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// DefaultMaxBodyBytes is the request body limit applied unless
// WithMaxBodyBytes overrides it.
const DefaultMaxBodyBytes = 10 << 20

// New creates a GraphQL HTTP handler serving exec.
func New(exec *executor.Executor, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second, MaxBodyBytes: DefaultMaxBodyBytes}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{exec: exec, opt: op}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, rid := reqid.NewContext(ctx, r.Header.Get(reqid.Header))
	w.Header().Set(reqid.Header, rid)
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("request_id", rid))

	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.RequestStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.RequestFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResponse(nil, &language.Error{Message: "method not allowed"}), h.opt.Pretty)
		return
	}

	if h.opt.GraphiQL && wantsGraphiQL(r) {
		writeGraphiQL(w)
		return
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != nil {
		status = http.StatusBadRequest
		if berr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(nil, berr), h.opt.Pretty)
		return
	}

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if batch != nil {
		out := make([]response, len(batch))
		for i := range batch {
			out[i], _ = h.executeOne(ctx, r.Method, batch[i])
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	resp, status := h.executeOne(ctx, r.Method, req)
	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", "POST")
	}
	writeJSON(w, status, resp, h.opt.Pretty)
}

// executeOne runs req and returns its response with the HTTP status to send.
// Mutations are refused over GET.
func (h *Handler) executeOne(ctx context.Context, method string, req Request) (response, int) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		if ge, ok := err.(*language.Error); ok {
			return errorResponse(nil, ge), http.StatusOK
		}
		return errorResponse(nil, &language.Error{Message: err.Error()}), http.StatusOK
	}

	opType := ""
	if op := doc.Operations.ForName(req.OperationName); op != nil {
		if method == http.MethodGet && op.Operation == language.Mutation {
			return errorResponse(nil, &language.Error{Message: "mutations are not allowed over GET"}), http.StatusMethodNotAllowed
		}
		opType = string(op.Operation)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.OperationStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	result := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, nil)
	errs := lo.Map(result.Errors, func(e executor.GraphQLError, _ int) error { return e })
	eventbus.Publish(ctx, events.OperationFinish{
		OperationName: req.OperationName,
		OperationType: opType,
		Errors:        errs,
		Duration:      time.Since(start),
	})
	return newResponse(result), http.StatusOK
}

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	wildcard := lo.Contains(opts.AllowedOrigins, "*")
	if !wildcard && !lo.Contains(opts.AllowedOrigins, origin) {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Expose-Headers", reqid.Header)
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}
