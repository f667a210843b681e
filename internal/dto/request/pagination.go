package request

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type PageQuery struct {
	Skip  int
	Limit int
}

// ParsePageQuery reads skip and limit. Missing or invalid values fall back
// to the defaults; limit is clamped to MaxLimit.
func ParsePageQuery(r *http.Request) PageQuery {
	q := PageQuery{Skip: 0, Limit: DefaultLimit}

	if v, err := strconv.Atoi(r.URL.Query().Get("skip")); err == nil && v >= 0 {
		q.Skip = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		q.Limit = v
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	return q
}
