package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"Crème Brûlée 2024", "creme-brulee-2024"},
		{"  --Go!!  ", "go"},
		{"already-a-slug", "already-a-slug"},
		{"日本語", "untitled"},
		{"", "untitled"},
		{strings.Repeat("a", 100), strings.Repeat("a", 80)},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestSlugify_TrimsDashAtCut(t *testing.T) {
	in := strings.Repeat("a", 79) + " bcd"
	got := Slugify(in)
	require.Equal(t, strings.Repeat("a", 79), got)
}

func TestValidSlug(t *testing.T) {
	require.True(t, ValidSlug("my-post-2"))
	require.False(t, ValidSlug("My Post"))
	require.False(t, ValidSlug("trailing-"))
	require.False(t, ValidSlug(""))
}

func TestSlugWithSuffix(t *testing.T) {
	require.Equal(t, "hello", SlugWithSuffix("hello", 1))
	require.Equal(t, "hello-2", SlugWithSuffix("hello", 2))
	long := strings.Repeat("b", 80)
	got := SlugWithSuffix(long, 12)
	require.Len(t, got, 80)
	require.True(t, strings.HasSuffix(got, "-12"))
}

func TestReadTimeMinutes(t *testing.T) {
	words := func(n int) string { return strings.TrimSpace(strings.Repeat("word ", n)) }
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 1},
		{"exactly one minute", words(200), 1},
		{"just over", words(201), 2},
		{"markup ignored", "# Title\n\n---\n* item", 1},
		{"html tags stripped", "<p>" + words(400) + "</p><hr/>", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ReadTimeMinutes(tc.in))
		})
	}
}

func TestProjectNormalizeAndValidate(t *testing.T) {
	p := Project{
		Title:        "  Folio Engine ",
		Technologies: []string{"Go", " go ", "", "Postgres"},
		RepoURL:      "https://github.com/example/folio",
	}
	p.Normalize()
	require.Equal(t, "folio-engine", p.Slug)
	require.Equal(t, ProjectCategoryOther, p.Category)
	if diff := cmp.Diff([]string{"Go", "Postgres"}, p.Technologies); diff != "" {
		t.Fatalf("technologies mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, p.Validate())

	p.LiveURL = "ftp://example.com"
	err := p.Validate()
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, "live_url", ve.Field)
	require.Equal(t, CodeInvalid, ve.Code)
}

func TestProjectValidate_Category(t *testing.T) {
	p := Project{Title: "x", Slug: "x", Category: "games"}
	ve, ok := AsValidationError(p.Validate())
	require.True(t, ok)
	require.Equal(t, "category", ve.Field)
}

func TestPostValidate(t *testing.T) {
	p := Post{Title: "Hello"}
	ve, ok := AsValidationError(p.Validate())
	require.True(t, ok)
	require.Equal(t, &ValidationError{Field: "content", Code: CodeRequired}, ve)

	p.Content = "body"
	p.Tags = []string{"Go", "go", "Web"}
	p.Normalize()
	require.Equal(t, []string{"go", "web"}, p.Tags)
	require.NoError(t, p.Validate())
}

func TestDeriveExcerpt(t *testing.T) {
	require.Equal(t, "Hello world", DeriveExcerpt("# Hello   world", 100))
	got := DeriveExcerpt(strings.Repeat("alpha beta ", 50), 40)
	require.True(t, strings.HasSuffix(got, "…"))
	require.LessOrEqual(t, len([]rune(got)), 41)
}

func TestTestimonial(t *testing.T) {
	tm := Testimonial{AuthorName: "Bo", Content: "great", Approved: true, Featured: true}
	tm.Normalize()
	require.Equal(t, 5, tm.Rating)
	sub := tm.AsSubmission()
	require.False(t, sub.Approved)
	require.False(t, sub.Featured)

	tm.Rating = 6
	ve, ok := AsValidationError(tm.Validate())
	require.True(t, ok)
	require.Equal(t, "rating", ve.Field)
}

func TestSkillValidate(t *testing.T) {
	s := Skill{Name: "Go", Category: "Backend", Proficiency: 90}
	s.Normalize()
	require.NoError(t, s.Validate())
	s.Proficiency = 101
	ve, ok := AsValidationError(s.Validate())
	require.True(t, ok)
	require.Equal(t, CodeOutOfRange, ve.Code)
}

func TestExperienceValidate(t *testing.T) {
	start, err := ParseDate("2020-01-01")
	require.NoError(t, err)
	end, err := ParseDate("2019-06-01")
	require.NoError(t, err)

	e := Experience{Title: "Engineer", Organization: "Acme", StartDate: start}
	e.Normalize()
	require.Equal(t, ExperienceWork, e.Kind)
	require.NoError(t, e.Validate())

	e.EndDate = end
	ve, ok := AsValidationError(e.Validate())
	require.True(t, ok)
	require.Equal(t, &ValidationError{Field: "end_date", Code: CodeOutOfRange}, ve)

	e.EndDate = NewDate(time.Date(2022, 1, 1, 15, 0, 0, 0, time.UTC))
	e.Current = true
	ve, ok = AsValidationError(e.Validate())
	require.True(t, ok)
	require.Equal(t, "end_date", ve.Field)
	require.Equal(t, CodeNotAllowed, ve.Code)
}

func TestDateJSON(t *testing.T) {
	var e struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2021-03-04","end":null}`), &e))
	require.Equal(t, "2021-03-04", e.Start.String())
	require.True(t, e.End.IsZero())

	out, err := json.Marshal(e)
	require.NoError(t, err)
	require.JSONEq(t, `{"start":"2021-03-04","end":null}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"start":"04/03/2021"}`), &e))
}

func TestContactMessageValidate(t *testing.T) {
	m := ContactMessage{Name: "Ada", Email: " Ada@Example.com ", Message: "hi"}
	m.Normalize()
	require.Equal(t, "ada@example.com", m.Email)
	require.Equal(t, ContactNew, m.Status)
	require.NoError(t, m.Validate())

	for _, email := range []string{"Ada <ada@example.com>", "ada@localhost", "not-an-email"} {
		m.Email = email
		ve, ok := AsValidationError(m.Validate())
		require.True(t, ok, email)
		require.Equal(t, "email", ve.Field, email)
	}
}

func TestDailyVisitsApply(t *testing.T) {
	day := NewDate(time.Date(2026, 5, 2, 23, 59, 0, 0, time.UTC))
	d := NewDailyVisits(day)
	d.Apply(Visit{Path: "/", Referrer: "direct", Device: DeviceDesktop, NewVisitor: true})
	d.Apply(Visit{Path: "/blog", Referrer: "google.com", Device: DeviceMobile})
	d.Apply(Visit{Path: "/", Referrer: "direct", Device: DeviceDesktop})

	want := DailyVisits{
		Day:            day,
		Visits:         3,
		UniqueVisitors: 1,
		Pages:          map[string]int64{"/": 2, "/blog": 1},
		Devices:        map[string]int64{"desktop": 2, "mobile": 1},
		Referrers:      map[string]int64{"direct": 2, "google.com": 1},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Fatalf("bucket mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyVisitsApply_CapsDistinctKeys(t *testing.T) {
	d := NewDailyVisits(NewDate(time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)))
	for i := 0; i < MaxBucketKeys+50; i++ {
		d.Apply(Visit{
			Path:     fmt.Sprintf("/p/%d", i),
			Referrer: fmt.Sprintf("site%d.example", i),
			Device:   DeviceDesktop,
		})
	}
	d.Apply(Visit{Path: "/p/0", Referrer: "site0.example", Device: DeviceDesktop})

	require.EqualValues(t, MaxBucketKeys+51, d.Visits)
	require.Len(t, d.Pages, MaxBucketKeys+1)
	require.Len(t, d.Referrers, MaxBucketKeys+1)
	require.EqualValues(t, 50, d.Pages[OtherBucketKey])
	require.EqualValues(t, 50, d.Referrers[OtherBucketKey])
	require.EqualValues(t, 2, d.Pages["/p/0"])
}

func TestImageContentType(t *testing.T) {
	got, ok := ImageContentType("image/PNG; charset=binary")
	require.True(t, ok)
	require.Equal(t, "image/png", got)
	require.Equal(t, ".png", ImageExtension(got))

	_, ok = ImageContentType("application/pdf")
	require.False(t, ok)
	_, ok = ImageContentType("image/svg+xml")
	require.False(t, ok)
}
