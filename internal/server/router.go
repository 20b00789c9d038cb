// Package server binds each Configuration to its own TCP port and translates
// the core's routing-agnostic endpoint model onto an HTTP mux.
package server

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/dsaferreira/doppelganger-go/internal/config"
	"github.com/dsaferreira/doppelganger-go/internal/metrics"
	"github.com/dsaferreira/doppelganger-go/internal/mock"
)

var pathParamPattern = regexp.MustCompile(`:(\w+)`)

// translatePath converts the core's ":name" path placeholders into chi's
// "{name}" routing syntax.
func translatePath(path string) string {
	return pathParamPattern.ReplaceAllString(path, "{$1}")
}

// NewRouter builds the HTTP handler serving every endpoint declared in cfg,
// wiring each one to its own Dispatcher.
func NewRouter(cfg config.Configuration, logger *slog.Logger, recorder metrics.Recorder, verbose bool) http.Handler {
	r := chi.NewRouter()
	for _, endpoint := range cfg.Endpoints {
		dispatcher := mock.NewDispatcher(endpoint, logger, recorder, verbose)
		route := translatePath(endpoint.Path)
		r.Method(endpoint.Verb, route, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			dispatcher.ServeHTTP(w, req, chiPathParams(req))
		}))
	}
	return r
}

func chiPathParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return map[string]string{}
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if i < len(rctx.URLParams.Values) {
			params[key] = rctx.URLParams.Values[i]
		}
	}
	return params
}
