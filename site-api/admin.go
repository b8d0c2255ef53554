package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/platform/auth"
	"github.com/folio-labs/folio-go/internal/repo"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionResponse struct {
	Subject string   `json:"subject"`
	Email   string   `json:"email,omitempty"`
	Roles   []string `json:"roles"`
}

func (api *siteAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	identity, err := api.tokens.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.logger.Warn("admin login rejected", "request_id", r.Header.Get("X-Request-Id"))
			api.writeError(w, r, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		api.writeServiceError(w, r, err)
		return
	}
	token, expires, err := api.tokens.Issue(identity)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}

	event := api.auditEvent(r, auditlog.ActionLogin, "session", identity.Subject, map[string]any{"expires_at": expires})
	event.Actor = identity.Subject
	err = api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		return api.appendAudit(r.Context(), stores, event)
	})
	if err != nil {
		api.logger.Error("login audit failed", "request_id", r.Header.Get("X-Request-Id"), "error", err)
		api.writeError(w, r, http.StatusInternalServerError, "audit_failed")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	api.writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expires,
	})
}

func (api *siteAPI) handleSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		identity = auth.Identity{Subject: "anonymous", Roles: []string{auth.RoleAdmin}}
	}
	roles := identity.Roles
	if roles == nil {
		roles = []string{}
	}
	api.writeJSON(w, http.StatusOK, sessionResponse{
		Subject: identity.Subject,
		Email:   identity.Email,
		Roles:   roles,
	})
}

func (api *siteAPI) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := api.tx.Stores().Stats.Dashboard(r.Context(), domain.NewDate(api.now()))
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, stats)
}
