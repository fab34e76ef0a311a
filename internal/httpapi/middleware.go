package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"workshop-booking/internal/auth"
	"workshop-booking/pkg/logging"
)

type ctxKey int

const requestIDKey ctxKey = iota

// requestIDMiddleware tags every request with an id, honoring an inbound
// X-Request-ID from a trusted proxy.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration("duration", time.Since(start)),
			logging.RequestID(requestIDFrom(r.Context())))
	})
}

// callerFrom builds the caller identity from request headers. X-API-Key is
// resolved to a role by the authorizer downstream; X-Guardian-ID identifies
// a guardian acting on their own bookings.
func callerFrom(r *http.Request) auth.Caller {
	caller := auth.Caller{Key: r.Header.Get("X-API-Key")}
	if raw := r.Header.Get("X-Guardian-ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			caller.GuardianID = &id
		}
	}
	return caller
}
