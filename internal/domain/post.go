package domain

import (
	"strings"
	"time"
)

// Post is a blog article. Slug, ReadTimeMinutes and PublishedAt are derived by the posts service.
type Post struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         string     `json:"excerpt"`
	Content         string     `json:"content"`
	CoverImageURL   string     `json:"cover_image_url,omitempty"`
	Tags            []string   `json:"tags"`
	Published       bool       `json:"published"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	ReadTimeMinutes int        `json:"read_time_minutes"`
	Views           int64      `json:"views"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (p *Post) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
	p.CoverImageURL = strings.TrimSpace(p.CoverImageURL)
	tags := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		tags = append(tags, strings.ToLower(tag))
	}
	p.Tags = NormalizeList(tags)
}

func (p Post) Validate() error {
	if err := requireText("title", p.Title, 200); err != nil {
		return err
	}
	if strings.TrimSpace(p.Content) == "" {
		return invalid("content", CodeRequired)
	}
	if err := maxLen("content", p.Content, 200_000); err != nil {
		return err
	}
	if p.Slug != "" && !ValidSlug(p.Slug) {
		return invalid("slug", CodeInvalid)
	}
	if err := maxLen("excerpt", p.Excerpt, 500); err != nil {
		return err
	}
	if len(p.Tags) > 20 {
		return invalid("tags", CodeTooLong)
	}
	return optionalURL("cover_image_url", p.CoverImageURL)
}

// DeriveExcerpt returns the first sentence-ish chunk of content when no excerpt was given.
func DeriveExcerpt(content string, max int) string {
	text := strings.Join(strings.Fields(htmlTag.ReplaceAllString(content, " ")), " ")
	text = strings.TrimLeft(text, "# ")
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	cut := string(r[:max])
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
