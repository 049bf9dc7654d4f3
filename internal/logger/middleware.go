package logger

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// UserIDFunc extracts the authenticated user id from a request, if any.
type UserIDFunc func(r *http.Request) string

// Middleware logs one line per request and turns panics into a 500 JSON body.
func Middleware(log zerolog.Logger, userID UserIDFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if p := recover(); p != nil {
					log.Error().
						Str("request_id", middleware.GetReqID(r.Context())).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Interface("panic", p).
						Bytes("stack", debug.Stack()).
						Msg("panic while serving request")

					rec.Header().Set("Content-Type", "application/json")
					rec.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(rec).Encode(map[string]string{
						"status":  "error",
						"message": "internal server error",
					})
				}

				evt := log.Info()
				if rec.status >= http.StatusInternalServerError {
					evt = log.Error()
				} else if rec.status >= http.StatusBadRequest {
					evt = log.Warn()
				}
				if userID != nil {
					evt = evt.Str("user_id", userID(r))
				}
				evt.Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", rec.status).
					Dur("duration", time.Since(start)).
					Msg("request completed")
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
