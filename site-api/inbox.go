package main

import (
	"net/http"
	"strings"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/platform/httpserver"
	"github.com/folio-labs/folio-go/internal/repo"
	"github.com/folio-labs/folio-go/internal/service/analytics"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type contactStatusRequest struct {
	Status string `json:"status"`
}

type chatbotRequest struct {
	Message string `json:"message"`
}

const maxUserAgentLen = 512

func (api *siteAPI) handleSubmitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	now := api.now().UTC()
	msg := domain.ContactMessage{
		ID:        api.newID(),
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		UserAgent: truncate(r.UserAgent(), maxUserAgentLen),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ip := httpserver.ClientIP(r, api.trustProxy); ip != nil {
		msg.IP = ip.String()
	}
	msg.Normalize()
	if err := msg.Validate(); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	if err := api.tx.Stores().Contact.Create(r.Context(), msg); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.logger.Info("contact message received", "request_id", r.Header.Get("X-Request-Id"), "contact_id", msg.ID)
	api.writeJSON(w, http.StatusCreated, map[string]any{
		"id":     msg.ID,
		"status": msg.Status,
	})
}

func (api *siteAPI) handleListContact(w http.ResponseWriter, r *http.Request) {
	params, err := api.listParams(r, repo.ContactOrder)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	filter := repo.ContactFilter{ListParams: params}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		filter.Status = domain.ContactStatus(strings.ToLower(raw))
		if !filter.Status.Valid() {
			api.writeFieldError(w, r, http.StatusBadRequest, domain.CodeNotAllowed, "status")
			return
		}
	}
	out, err := api.tx.Stores().Contact.List(r.Context(), filter)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

func (api *siteAPI) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	msg, err := api.tx.Stores().Contact.Get(r.Context(), id)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, msg)
}

func (api *siteAPI) handleUpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	var req contactStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	status := domain.ContactStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status == "" {
		api.writeFieldError(w, r, http.StatusBadRequest, domain.CodeRequired, "status")
		return
	}
	if !status.Valid() {
		api.writeFieldError(w, r, http.StatusBadRequest, domain.CodeNotAllowed, "status")
		return
	}

	var updated domain.ContactMessage
	err = api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		msg, err := stores.Contact.UpdateStatus(r.Context(), id, status)
		if err != nil {
			return err
		}
		updated = msg
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionUpdate, "contact_message", id, map[string]any{"status": status}))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, updated)
}

func (api *siteAPI) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	api.deleteByID(w, r, "contact_message", func(stores repo.Stores, id string) error {
		return stores.Contact.Delete(r.Context(), id)
	})
}

// handleRecordVisit always answers 202; bot traffic comes back with recorded=false.
func (api *siteAPI) handleRecordVisit(w http.ResponseWriter, r *http.Request) {
	var in analytics.VisitInput
	if err := decodeJSON(w, r, &in); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	res, err := api.analytics.Record(r.Context(), in, r.UserAgent())
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusAccepted, res)
}

func (api *siteAPI) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	from, err := dateQuery(r, "from")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	to, err := dateQuery(r, "to")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	summary, err := api.analytics.Summarize(r.Context(), from, to)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, summary)
}

func (api *siteAPI) handleChatbotMessage(w http.ResponseWriter, r *http.Request) {
	var req chatbotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	reply, err := api.bot.Ask(req.Message)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, reply)
}

func dateQuery(r *http.Request, key string) (domain.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return domain.Date{}, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, &domain.ValidationError{Field: key, Code: domain.CodeInvalid}
	}
	return d, nil
}

func truncate(s string, max int) string {
	if r := []rune(s); len(r) > max {
		return string(r[:max])
	}
	return s
}
