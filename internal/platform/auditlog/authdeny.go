package auditlog

import (
	"context"
	"net"
	"strings"

	"github.com/folio-labs/folio-go/internal/platform/auth"
)

// Appender persists one audit event and returns its sequence number.
type Appender interface {
	Append(ctx context.Context, event Event) (int64, error)
}

// AuthDenyFunc adapts the auth middleware's deny hook to an audit appender.
func AuthDenyFunc(appender Appender, service string) auth.AuditFunc {
	return func(ctx context.Context, event auth.DenyEvent) error {
		_, err := appender.Append(ctx, authDenyEvent(service, event))
		return err
	}
}

func authDenyEvent(service string, event auth.DenyEvent) Event {
	actor := "anonymous"
	if strings.TrimSpace(event.Subject) != "" {
		actor = strings.TrimSpace(event.Subject)
	}

	var ip net.IP
	if host, _, err := net.SplitHostPort(event.RemoteAddr); err == nil {
		ip = net.ParseIP(host)
	}

	return Event{
		OccurredAt:   event.Time,
		Actor:        actor,
		Action:       "auth." + strings.TrimSpace(event.Reason),
		ResourceType: "http",
		ResourceID:   event.Method + " " + event.Path,
		RequestID:    event.RequestID,
		IP:           ip,
		UserAgent:    event.UserAgent,
		Payload: map[string]any{
			"service": service,
			"status":  event.Status,
			"reason":  event.Reason,
			"error":   event.Error,
			"roles":   event.Roles,
		},
	}
}
