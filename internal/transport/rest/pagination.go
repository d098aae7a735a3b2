package rest

import (
	"net/url"
	"strconv"
	"strings"
)

// parsePage reads from/size query params with the defaults used across
// all list endpoints.
func parsePage(q url.Values) (from, size int) {
	from, size = 0, 10
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			from = n
		}
	}
	if v := strings.TrimSpace(q.Get("size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = n
		}
	}
	if size > 100 {
		size = 100
	}
	return from, size
}

// parseIDList parses a comma separated list of int64 ids, skipping blanks.
func parseIDList(raw string) ([]int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n <= 0 {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
