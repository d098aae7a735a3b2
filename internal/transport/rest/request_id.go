package rest

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	appCtx "github.com/avolkov/eventory/internal/pkg/context"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 64
)

// RequestID threads a request id through the context and echoes it on the
// response. A caller-supplied id is kept (truncated past 64 bytes); absent
// one, a fresh uuid is minted.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
		switch {
		case rid == "":
			rid = uuid.NewString()
		case len(rid) > maxRequestIDLen:
			rid = rid[:maxRequestIDLen]
		}
		w.Header().Set(requestIDHeader, rid)

		ctx := appCtx.WithRequestID(r.Context(), rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
