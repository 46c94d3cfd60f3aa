package utils

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	apperrors "makerspace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeParam(t *testing.T) {
	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := ParseTimeParam("", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	got, err = ParseTimeParam("2024-03-05", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTimeParam("2024-03-05T10:00:00+02:00", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), got)

	_, err = ParseTimeParam("yesterday", fallback)
	var inputErr *apperrors.InvalidInputError
	assert.True(t, errors.As(err, &inputErr))
}

func TestEndOfDay(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 5, 23, 59, 59, 999999999, time.UTC), EndOfDay("2024-03-05", day))
	assert.Equal(t, day, EndOfDay("2024-03-05T00:00:00Z", day))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperrors.ErrNotFound, http.StatusNotFound},
		{errors.Join(errors.New("reservation 4"), apperrors.ErrInvalidState), http.StatusUnprocessableEntity},
		{apperrors.ErrConflict, http.StatusConflict},
		{apperrors.ErrForbidden, http.StatusForbidden},
		{apperrors.ErrTokenExpired, http.StatusUnauthorized},
		{apperrors.NewInvalidInputError("bad"), http.StatusBadRequest},
		{apperrors.NewHttpError(http.StatusTeapot, "teapot", nil, nil), http.StatusTeapot},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, _ := StatusFor(tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		name   string
		query  url.Values
		limit  uint64
		offset uint64
	}{
		{"defaults", url.Values{}, DefaultLimit, 0},
		{"third page", url.Values{"limit": {"10"}, "page": {"3"}}, 10, 20},
		{"clamped", url.Values{"limit": {"5000"}}, MaxLimit, 0},
		{"garbage", url.Values{"limit": {"x"}, "page": {"-1"}}, DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset, _ := ParsePaginationParams(tt.query)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}
