package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.einride.tech/aip/ordering"

	"github.com/folio-labs/folio-go/internal/domain"
)

func TestClampLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, ClampLimit(0))
	require.Equal(t, DefaultLimit, ClampLimit(-4))
	require.Equal(t, 7, ClampLimit(7))
	require.Equal(t, MaxLimit, ClampLimit(10_000))
}

func TestParseListParams_Defaults(t *testing.T) {
	params, err := ParseListParams("", "", "", ProjectOrder)
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, params.Limit)
	require.Equal(t, 0, params.Offset)
	require.Equal(t, []ordering.Field{
		{Path: "display_order"},
		{Path: "created_at", Desc: true},
	}, params.OrderBy.Fields)
}

func TestParseListParams_Explicit(t *testing.T) {
	params, err := ParseListParams("20", "40", "title desc", ProjectOrder)
	require.NoError(t, err)
	require.Equal(t, 20, params.Limit)
	require.Equal(t, 40, params.Offset)
	require.Equal(t, []ordering.Field{{Path: "title", Desc: true}}, params.OrderBy.Fields)
}

func TestParseListParams_Errors(t *testing.T) {
	cases := []struct {
		name                 string
		limit, offset, order string
		field, code          string
	}{
		{"bad limit", "ten", "", "", "limit", domain.CodeInvalid},
		{"negative offset", "", "-1", "", "offset", domain.CodeInvalid},
		{"unknown field", "", "", "password desc", "order_by", domain.CodeNotAllowed},
		{"bad syntax", "", "", "title sideways", "order_by", domain.CodeInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseListParams(tc.limit, tc.offset, tc.order, ProjectOrder)
			ve, ok := domain.AsValidationError(err)
			require.True(t, ok, "err=%v", err)
			require.Equal(t, tc.field, ve.Field)
			require.Equal(t, tc.code, ve.Code)
		})
	}
}
