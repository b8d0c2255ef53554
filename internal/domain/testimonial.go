package domain

import (
	"strings"
	"time"
)

type Testimonial struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"author_name"`
	AuthorRole string    `json:"author_role,omitempty"`
	Company    string    `json:"company,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	Approved   bool      `json:"approved"`
	Featured   bool      `json:"featured"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (t *Testimonial) Normalize() {
	t.AuthorName = strings.TrimSpace(t.AuthorName)
	t.AuthorRole = strings.TrimSpace(t.AuthorRole)
	t.Company = strings.TrimSpace(t.Company)
	t.AvatarURL = strings.TrimSpace(t.AvatarURL)
	t.Content = strings.TrimSpace(t.Content)
	if t.Rating == 0 {
		t.Rating = 5
	}
}

func (t Testimonial) Validate() error {
	if err := requireText("author_name", t.AuthorName, 120); err != nil {
		return err
	}
	if err := requireText("content", t.Content, 2000); err != nil {
		return err
	}
	if t.Rating < 1 || t.Rating > 5 {
		return invalid("rating", CodeOutOfRange)
	}
	if err := maxLen("author_role", t.AuthorRole, 120); err != nil {
		return err
	}
	if err := maxLen("company", t.Company, 120); err != nil {
		return err
	}
	return optionalURL("avatar_url", t.AvatarURL)
}

// AsSubmission strips the moderation flags a visitor may not set.
func (t Testimonial) AsSubmission() Testimonial {
	t.Approved = false
	t.Featured = false
	return t
}
