package utils

import (
	"strconv"
	"time"

	apperrors "makerspace/pkg/errors"

	"github.com/labstack/echo/v4"
)

// ParseIDParam reads a positive numeric path parameter.
func ParseIDParam(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewInvalidInputError("invalid %s", name)
	}
	return id, nil
}

// ParseTimeParam accepts RFC3339 timestamps or plain dates (YYYY-MM-DD) and
// returns the instant in UTC. An empty value yields the fallback.
func ParseTimeParam(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperrors.NewInvalidInputError("invalid date %q", value)
}

// EndOfDay widens a date-only bound to the last instant of that day.
func EndOfDay(value string, t time.Time) time.Time {
	if _, err := time.Parse(time.DateOnly, value); err == nil {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}
