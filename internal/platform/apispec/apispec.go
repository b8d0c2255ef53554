package apispec

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/folio-labs/folio-go/internal/platform/httpserver"
)

//go:embed openapi.yaml
var document []byte

// Load parses and validates the embedded OpenAPI document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi: %w", err)
	}
	return doc, nil
}

// Validator checks request parameters and bodies of documented operations.
// Requests that match no documented operation pass through untouched.
// maxBodyBytes bounds the documented request bodies, all of which are small JSON objects.
const maxBodyBytes = 1 << 20

type Validator struct {
	logger *slog.Logger
	doc    *openapi3.T
	router routers.Router
}

func NewValidator(logger *slog.Logger, doc *openapi3.T) (*Validator, error) {
	if doc == nil {
		return nil, errors.New("openapi document is required")
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &Validator{logger: logger, doc: doc, router: router}, nil
}

func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			field := fieldFromError(err)
			if v.logger != nil {
				v.logger.Info("request rejected by schema",
					"request_id", r.Header.Get("X-Request-Id"),
					"operation", route.Operation.OperationID,
					"field", field,
					"error", err.Error(),
				)
			}
			body := map[string]any{"error": "invalid_request"}
			if field != "" {
				body["field"] = field
			}
			if id, ok := httpserver.RequestIDFromContext(r.Context()); ok {
				body["request_id"] = id
			}
			writeJSON(w, http.StatusBadRequest, body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler serves the document as JSON.
func (v *Validator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, v.doc)
	}
}

func fieldFromError(err error) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			return strings.Join(pointer, ".")
		}
	}
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) && reqErr.Parameter != nil {
		return reqErr.Parameter.Name
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
