package domain

import (
	"slices"
	"strings"
	"time"
)

type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

var ContactStatuses = []ContactStatus{ContactNew, ContactRead, ContactReplied, ContactArchived}

func (s ContactStatus) Valid() bool {
	return slices.Contains(ContactStatuses, s)
}

// ContactMessage is a visitor's contact-form submission.
type ContactMessage struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject,omitempty"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	IP        string        `json:"ip,omitempty"`
	UserAgent string        `json:"user_agent,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (m *ContactMessage) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	if m.Status == "" {
		m.Status = ContactNew
	}
}

func (m ContactMessage) Validate() error {
	if err := requireText("name", m.Name, 120); err != nil {
		return err
	}
	if strings.TrimSpace(m.Email) == "" {
		return invalid("email", CodeRequired)
	}
	if !validEmail(m.Email) {
		return invalid("email", CodeInvalid)
	}
	if err := maxLen("subject", m.Subject, 200); err != nil {
		return err
	}
	if err := requireText("message", m.Message, 5000); err != nil {
		return err
	}
	if !m.Status.Valid() {
		return invalid("status", CodeNotAllowed)
	}
	return nil
}
