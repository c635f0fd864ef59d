package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// requestID prefers the id set by chi's RequestID middleware.
func requestID(r *http.Request) string {
	if id := chiMiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

// WithRequestLogging logs method, path, status, size and duration of every
// request. Credentials are never logged; the authenticated username is added
// when present.
func WithRequestLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			var user string
			next.ServeHTTP(ww, r.WithContext(withUserSlot(r.Context(), &user)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			fields = append(fields, zap.String("request_id", requestID(r)))
			if user != "" {
				fields = append(fields, zap.String("user", user))
			}
			logger.Info("request", fields...)
		})
	}
}
