// Package pagination parses list query parameters and shapes list responses.
package pagination

import (
	"net/http"
	"strconv"

	"github.com/mkarev/kulinaria/internal/config"
)

type Params struct {
	Limit  int32
	Offset int32
}

// Page is the envelope returned by every list endpoint.
type Page[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

func NewPage[T any](count int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	return Page[T]{Count: count, Results: results}
}

func parsePositive(r *http.Request, key string, def int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 1 {
		return def
	}
	return int32(v)
}

func parseNonNegative(r *http.Request, key string, def int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return def
	}
	return int32(v)
}

// Parse reads the pagination parameters for the configured style. Malformed
// or out-of-range values fall back to the defaults rather than erroring.
func Parse(r *http.Request, conf config.Pagination) Params {
	switch conf.Style {
	case config.PaginationLimitOffset:
		return Params{
			Limit:  parsePositive(r, "limit", conf.Limit),
			Offset: parseNonNegative(r, "offset", 0),
		}
	default:
		limit := parsePositive(r, "limit", conf.PageSize)
		page := parsePositive(r, "page", 1)
		return Params{
			Limit:  limit,
			Offset: (page - 1) * limit,
		}
	}
}
