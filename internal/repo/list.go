package repo

import (
	"strconv"
	"strings"

	"go.einride.tech/aip/ordering"

	"github.com/folio-labs/folio-go/internal/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// OrderConfig is the per-resource order_by allow-list and its default.
type OrderConfig struct {
	Default string
	Allowed []string
}

// ListParams is the common paging and ordering part of every list filter.
type ListParams struct {
	Limit   int
	Offset  int
	OrderBy ordering.OrderBy
}

// ClampLimit applies the default and the upper bound to a requested page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ParseListParams reads the raw limit, offset and order_by query values.
// Failures are reported as *domain.ValidationError naming the parameter.
func ParseListParams(limitRaw, offsetRaw, orderByRaw string, cfg OrderConfig) (ListParams, error) {
	var params ListParams

	if s := strings.TrimSpace(limitRaw); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return ListParams{}, &domain.ValidationError{Field: "limit", Code: domain.CodeInvalid}
		}
		params.Limit = n
	}
	params.Limit = ClampLimit(params.Limit)

	if s := strings.TrimSpace(offsetRaw); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return ListParams{}, &domain.ValidationError{Field: "offset", Code: domain.CodeInvalid}
		}
		params.Offset = n
	}

	orderBy, err := ParseOrder(orderByRaw, cfg)
	if err != nil {
		return ListParams{}, err
	}
	params.OrderBy = orderBy
	return params, nil
}

// ParseOrder parses an AIP-132 order_by string and checks it against cfg.Allowed.
func ParseOrder(raw string, cfg OrderConfig) (ordering.OrderBy, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = cfg.Default
	}
	var orderBy ordering.OrderBy
	if raw == "" {
		return orderBy, nil
	}
	if err := orderBy.UnmarshalString(raw); err != nil {
		return ordering.OrderBy{}, &domain.ValidationError{Field: "order_by", Code: domain.CodeInvalid}
	}
	if err := orderBy.ValidateForPaths(cfg.Allowed...); err != nil {
		return ordering.OrderBy{}, &domain.ValidationError{Field: "order_by", Code: domain.CodeNotAllowed}
	}
	return orderBy, nil
}

var (
	ProjectOrder = OrderConfig{
		Default: "display_order, created_at desc",
		Allowed: []string{"display_order", "created_at", "updated_at", "title"},
	}
	PostOrder = OrderConfig{
		Default: "published_at desc, created_at desc",
		Allowed: []string{"published_at", "created_at", "updated_at", "title", "views"},
	}
	TestimonialOrder = OrderConfig{
		Default: "created_at desc",
		Allowed: []string{"created_at", "rating", "author_name"},
	}
	SkillOrder = OrderConfig{
		Default: "category, display_order, name",
		Allowed: []string{"category", "display_order", "name", "proficiency"},
	}
	ExperienceOrder = OrderConfig{
		Default: "display_order, start_date desc",
		Allowed: []string{"display_order", "start_date", "end_date", "title"},
	}
	ContactOrder = OrderConfig{
		Default: "created_at desc",
		Allowed: []string{"created_at", "status", "name"},
	}
)
