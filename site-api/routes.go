package main

import (
	"log/slog"
	"net/http"

	"github.com/folio-labs/folio-go/internal/platform/apispec"
	"github.com/folio-labs/folio-go/internal/platform/httpserver"
)

const serviceName = "site-api"

type handlerDeps struct {
	API         *siteAPI
	Admin       func(http.HandlerFunc) http.Handler
	Validator   *apispec.Validator
	CORSOrigins []string
	Checks      []httpserver.ReadinessCheck
	// Extra registers routes that live outside siteAPI, such as the OIDC login flow.
	Extra func(mux *http.ServeMux)
}

// newHandler assembles the full middleware chain around the route table.
func newHandler(logger *slog.Logger, deps handlerDeps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz(serviceName))
	mux.HandleFunc("/readyz", httpserver.ReadyzWithChecks(serviceName, deps.Checks...))

	deps.API.register(mux, deps.Admin)
	if deps.Extra != nil {
		deps.Extra(mux)
	}

	var handler http.Handler = mux
	if deps.Validator != nil {
		mux.HandleFunc("GET /openapi.json", deps.Validator.Handler())
		handler = deps.Validator.Middleware(handler)
	}
	handler = httpserver.CORS(deps.CORSOrigins, handler)
	return httpserver.Wrap(logger, serviceName, handler)
}
