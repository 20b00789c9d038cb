package mock

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dsaferreira/doppelganger-go/internal/config"
	"github.com/dsaferreira/doppelganger-go/internal/expr"
	"github.com/dsaferreira/doppelganger-go/internal/metrics"
)

// Dispatcher serves one configured Endpoint: it builds the fetcher bundle
// for each request, walks the mappings in declaration order, and emits the
// first match's response.
type Dispatcher struct {
	logger   *slog.Logger
	recorder metrics.Recorder
	verbose  bool
	endpoint config.Endpoint
}

// NewDispatcher wires an Endpoint's compiled mappings to the HTTP surface.
func NewDispatcher(endpoint config.Endpoint, logger *slog.Logger, recorder metrics.Recorder, verbose bool) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:   logger.With(slog.String("agent", "dispatcher"), slog.String("endpoint", endpoint.Verb+" "+endpoint.Path)),
		recorder: recorder,
		verbose:  verbose,
		endpoint: endpoint,
	}
}

// ServeHTTP dispatches a single request bound to this endpoint. pathParams
// holds the adapter-extracted :name captures.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	start := time.Now()
	rawBody := readBody(r)

	if d.verbose && len(rawBody) > 0 {
		d.logger.Info("request body", slog.String("body", decodeUTF8(rawBody)))
	}

	bundle := newRequestBundle(r, rawBody, pathParams)

	for _, mapping := range d.endpoint.Mappings {
		if !allMatch(bundle, mapping.Params) {
			continue
		}
		status := writeResponse(w, mapping)
		d.observe(status, time.Since(start))
		return
	}

	writeNoMatch(w)
	d.observe(http.StatusNotFound, time.Since(start))
}

func (d *Dispatcher) observe(status int, duration time.Duration) {
	if d.recorder == nil {
		return
	}
	d.recorder.ObserveDispatch(d.endpoint.Verb, d.endpoint.Path, status, duration)
}

// allMatch evaluates every param expression, short-circuiting on the first
// falsy result. An evaluation error (malformed runtime state, not a config
// error) is treated as non-matching rather than aborting the whole request.
func allMatch(bundle *requestBundle, params []expr.Expression) bool {
	for _, param := range params {
		v, err := param.Evaluate(bundle)
		if err != nil || !v.Bool() {
			return false
		}
	}
	return true
}

func decodeUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), string([]byte{0xEF, 0xBF, 0xBD}))
}
