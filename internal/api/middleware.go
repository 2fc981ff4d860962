package api

import (
	"net/http"
	"time"

	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/lucaCambi77/valr/pkg/util"
)

const (
	headerRequestID = "X-Request-Id"
	headerUserID    = "X-User-Id"
)

// withRequestContext stores the request id, the caller's user id and client ip
// in the request context and echoes the request id back.
func withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := util.WithRequestID(r.Context(), r.Header.Get(headerRequestID))
		if id := r.Header.Get(headerUserID); id != "" {
			ctx = util.WithUserID(ctx, id)
		}
		if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
			ctx = util.WithClientIP(ctx, ip)
		} else {
			ctx = util.WithClientIP(ctx, r.RemoteAddr)
		}

		w.Header().Set(headerRequestID, util.GetRequestID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func withAccessLog(log logger.Interface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.InfoContext(r.Context(), "HTTP request",
			logger.Field{Key: "method", Value: r.Method},
			logger.Field{Key: "path", Value: r.URL.Path},
			logger.Field{Key: "status", Value: rec.status},
			logger.Field{Key: "duration", Value: time.Since(start).String()},
		)
	})
}
