package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/folio-labs/folio-go/internal/chatbot"
	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/platform/auth"
	"github.com/folio-labs/folio-go/internal/platform/objectstore"
	"github.com/folio-labs/folio-go/internal/repo"
	"github.com/folio-labs/folio-go/internal/service/analytics"
	"github.com/folio-labs/folio-go/internal/service/posts"
)

const maxJSONBytes = 1 << 20

// mediaStore is the part of objectstore.MediaStore the handlers use.
type mediaStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, objectstore.Object, error)
	List(ctx context.Context, prefix string, limit int) ([]objectstore.Object, error)
	Remove(ctx context.Context, key string) error
}

type siteAPI struct {
	logger     *slog.Logger
	tx         repo.Transactor
	posts      *posts.Service
	analytics  *analytics.Service
	bot        *chatbot.Bot
	media      mediaStore
	tokens     *auth.TokenService
	trustProxy bool
	maxUpload  int64

	now   func() time.Time
	newID func() string
}

type siteAPIOptions struct {
	Media      mediaStore
	Tokens     *auth.TokenService
	TrustProxy bool
	MaxUpload  int64
	PublicHost string
}

func newSiteAPI(logger *slog.Logger, tx repo.Transactor, bot *chatbot.Bot, opts siteAPIOptions) (*siteAPI, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if bot == nil {
		return nil, errors.New("chatbot is required")
	}
	postService, err := posts.NewService(tx)
	if err != nil {
		return nil, err
	}
	analyticsService, err := analytics.NewService(tx, opts.PublicHost)
	if err != nil {
		return nil, err
	}
	maxUpload := opts.MaxUpload
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &siteAPI{
		logger:     logger,
		tx:         tx,
		posts:      postService,
		analytics:  analyticsService,
		bot:        bot,
		media:      opts.Media,
		tokens:     opts.Tokens,
		trustProxy: opts.TrustProxy,
		maxUpload:  maxUpload,
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

// register mounts every route. admin wraps the handlers that need an admin identity.
func (api *siteAPI) register(mux *http.ServeMux, admin func(http.HandlerFunc) http.Handler) {
	if api.tokens != nil {
		mux.HandleFunc("POST /api/auth/login", api.handleLogin)
	}
	mux.Handle("GET /api/auth/session", admin(api.handleSession))
	mux.Handle("GET /api/admin/dashboard", admin(api.handleDashboard))

	mux.HandleFunc("GET /api/projects", api.handleListProjects)
	mux.HandleFunc("GET /api/projects/{ref}", api.handleGetProject)
	mux.Handle("POST /api/projects", admin(api.handleCreateProject))
	mux.Handle("PUT /api/projects/{id}", admin(api.handleUpdateProject))
	mux.Handle("DELETE /api/projects/{id}", admin(api.handleDeleteProject))

	mux.HandleFunc("GET /api/posts", api.handleListPublishedPosts)
	mux.HandleFunc("GET /api/posts/{slug}", api.handleReadPost)
	mux.Handle("GET /api/admin/posts", admin(api.handleListAllPosts))
	mux.Handle("GET /api/admin/posts/{id}", admin(api.handleGetPost))
	mux.Handle("POST /api/posts", admin(api.handleCreatePost))
	mux.Handle("PUT /api/posts/{id}", admin(api.handleUpdatePost))
	mux.Handle("DELETE /api/posts/{id}", admin(api.handleDeletePost))

	mux.HandleFunc("GET /api/testimonials", api.handleListApprovedTestimonials)
	mux.HandleFunc("POST /api/testimonials", api.handleSubmitTestimonial)
	mux.Handle("GET /api/admin/testimonials", admin(api.handleListAllTestimonials))
	mux.Handle("PUT /api/testimonials/{id}", admin(api.handleUpdateTestimonial))
	mux.Handle("DELETE /api/testimonials/{id}", admin(api.handleDeleteTestimonial))

	mux.HandleFunc("GET /api/skills", api.handleListSkills)
	mux.Handle("POST /api/skills", admin(api.handleCreateSkill))
	mux.Handle("PUT /api/skills/{id}", admin(api.handleUpdateSkill))
	mux.Handle("DELETE /api/skills/{id}", admin(api.handleDeleteSkill))

	mux.HandleFunc("GET /api/experience", api.handleListExperience)
	mux.Handle("POST /api/experience", admin(api.handleCreateExperience))
	mux.Handle("PUT /api/experience/{id}", admin(api.handleUpdateExperience))
	mux.Handle("DELETE /api/experience/{id}", admin(api.handleDeleteExperience))

	mux.HandleFunc("POST /api/contact", api.handleSubmitContact)
	mux.Handle("GET /api/contact", admin(api.handleListContact))
	mux.Handle("GET /api/contact/{id}", admin(api.handleGetContact))
	mux.Handle("PATCH /api/contact/{id}", admin(api.handleUpdateContactStatus))
	mux.Handle("DELETE /api/contact/{id}", admin(api.handleDeleteContact))

	mux.HandleFunc("POST /api/analytics/visits", api.handleRecordVisit)
	mux.Handle("GET /api/analytics", admin(api.handleAnalyticsSummary))

	mux.HandleFunc("POST /api/chatbot/messages", api.handleChatbotMessage)

	if api.media != nil {
		mux.HandleFunc("GET /api/media/{key...}", api.handleGetMedia)
		mux.Handle("GET /api/media", admin(api.handleListMedia))
		mux.Handle("POST /api/media", admin(api.handleUploadMedia))
		mux.Handle("DELETE /api/media/{key...}", admin(api.handleDeleteMedia))
	}
}

// auditEvent builds the audit row for an admin write from the request.
func (api *siteAPI) auditEvent(r *http.Request, action, resourceType, resourceID string, payload any) auditlog.Event {
	event := auditlog.FromRequest(r, api.trustProxy, action, resourceType, resourceID, payload)
	event.OccurredAt = api.now().UTC()
	return event
}

func (api *siteAPI) appendAudit(ctx context.Context, stores repo.Stores, event auditlog.Event) error {
	if stores.Audit == nil {
		return nil
	}
	_, err := stores.Audit.Append(ctx, event)
	return err
}

func (api *siteAPI) listParams(r *http.Request, cfg repo.OrderConfig) (repo.ListParams, error) {
	q := r.URL.Query()
	return repo.ParseListParams(q.Get("limit"), q.Get("offset"), q.Get("order_by"), cfg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("multiple JSON values")
	}
	return nil
}

func (api *siteAPI) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}

func (api *siteAPI) writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	api.writeFieldError(w, r, status, code, "")
}

func (api *siteAPI) writeFieldError(w http.ResponseWriter, r *http.Request, status int, code, field string) {
	body := map[string]any{
		"error":      code,
		"request_id": r.Header.Get("X-Request-Id"),
	}
	if field != "" {
		body["field"] = field
	}
	api.writeJSON(w, status, body)
}

// writeDecodeError reports a request body that could not be decoded.
func (api *siteAPI) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		api.writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large")
		return
	}
	api.writeError(w, r, http.StatusBadRequest, "invalid_json")
}

// writeServiceError maps domain, repository and object store errors to responses.
func (api *siteAPI) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := domain.AsValidationError(err); ok {
		api.writeFieldError(w, r, http.StatusBadRequest, ve.Code, ve.Field)
		return
	}
	switch {
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, objectstore.ErrObjectNotFound):
		api.writeError(w, r, http.StatusNotFound, "not_found")
	case errors.Is(err, repo.ErrConflict):
		api.writeError(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, context.Canceled):
		api.writeError(w, r, http.StatusServiceUnavailable, "request_canceled")
	default:
		api.logger.Error("request failed",
			"request_id", r.Header.Get("X-Request-Id"),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		api.writeError(w, r, http.StatusInternalServerError, "internal_error")
	}
}

func pathID(r *http.Request, name string) (string, error) {
	id := strings.TrimSpace(r.PathValue(name))
	if id == "" {
		return "", &domain.ValidationError{Field: name, Code: domain.CodeRequired}
	}
	return id, nil
}

// boolQuery parses an optional true/false query value.
func boolQuery(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &domain.ValidationError{Field: key, Code: domain.CodeInvalid}
	}
	return &v, nil
}

func boolPtr(v bool) *bool {
	return &v
}
