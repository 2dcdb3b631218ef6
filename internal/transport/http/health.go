package http

import (
	"context"
	"net/http"
	"time"
)

const healthPingTimeout = 2 * time.Second

// PingFunc checks that the store answers.
type PingFunc func(ctx context.Context) error

// HandleHealth reports liveness. With a non-nil ping it also reports 503 when
// the store does not answer.
func HandleHealth(ping PingFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("store unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
