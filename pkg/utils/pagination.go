package utils

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParsePaginationParams reads ?limit= and ?page= (1-based). Malformed values
// fall back to the defaults; limit is clamped to MaxLimit.
func ParsePaginationParams(values url.Values) (limit uint64, offset uint64, page uint64) {
	limit = DefaultLimit
	page = 1

	if raw := values.Get("limit"); raw != "" {
		if l, err := strconv.ParseUint(raw, 10, 64); err == nil && l > 0 {
			limit = min(l, MaxLimit)
		}
	}
	if raw := values.Get("page"); raw != "" {
		if p, err := strconv.ParseUint(raw, 10, 64); err == nil && p > 0 {
			page = p
		}
	}

	offset = (page - 1) * limit
	return
}
