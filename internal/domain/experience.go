package domain

import (
	"slices"
	"strings"
	"time"
)

type ExperienceKind string

const (
	ExperienceWork      ExperienceKind = "work"
	ExperienceEducation ExperienceKind = "education"
	ExperienceVolunteer ExperienceKind = "volunteer"
)

func (k ExperienceKind) Valid() bool {
	return slices.Contains([]ExperienceKind{ExperienceWork, ExperienceEducation, ExperienceVolunteer}, k)
}

// Experience is one entry of the resume timeline.
type Experience struct {
	ID           string         `json:"id"`
	Kind         ExperienceKind `json:"kind"`
	Title        string         `json:"title"`
	Organization string         `json:"organization"`
	Location     string         `json:"location,omitempty"`
	StartDate    Date           `json:"start_date"`
	EndDate      Date           `json:"end_date"`
	Current      bool           `json:"current"`
	Description  string         `json:"description,omitempty"`
	Highlights   []string       `json:"highlights"`
	Technologies []string       `json:"technologies"`
	DisplayOrder int            `json:"display_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (e *Experience) Normalize() {
	e.Kind = ExperienceKind(strings.ToLower(strings.TrimSpace(string(e.Kind))))
	if e.Kind == "" {
		e.Kind = ExperienceWork
	}
	e.Title = strings.TrimSpace(e.Title)
	e.Organization = strings.TrimSpace(e.Organization)
	e.Location = strings.TrimSpace(e.Location)
	e.Description = strings.TrimSpace(e.Description)
	e.Highlights = NormalizeList(e.Highlights)
	e.Technologies = NormalizeList(e.Technologies)
}

func (e Experience) Validate() error {
	if !e.Kind.Valid() {
		return invalid("kind", CodeNotAllowed)
	}
	if err := requireText("title", e.Title, 200); err != nil {
		return err
	}
	if err := requireText("organization", e.Organization, 200); err != nil {
		return err
	}
	if e.StartDate.IsZero() {
		return invalid("start_date", CodeRequired)
	}
	if e.Current && !e.EndDate.IsZero() {
		return invalid("end_date", CodeNotAllowed)
	}
	if !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate.Time) {
		return invalid("end_date", CodeOutOfRange)
	}
	return nil
}
