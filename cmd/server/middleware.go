package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/liamcoop/salarypredict/internal/logger"
)

// requestLogger logs each request through the process logger and keeps the
// 4xx/5xx and slow-request counters current.
func requestLogger(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", elapsed.Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			}

			switch {
			case status >= 500:
				logger.ErrorHttp5xx()
				logger.Logger.Error("request failed", args...)
			case status >= 400:
				logger.WarnHttp4xx(status)
				logger.Info("request rejected", args...)
			default:
				logger.Info("request", args...)
			}

			if slow > 0 && elapsed > slow {
				logger.WarnSlowRequest()
				logger.Logger.Warn("slow request", args...)
			}
		})
	}
}
