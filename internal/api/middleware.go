package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/ratelimit"
)

// requestLogger logs one line per request with slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				level := slog.LevelInfo
				switch {
				case status >= http.StatusInternalServerError:
					level = slog.LevelError
				case status >= http.StatusBadRequest:
					level = slog.LevelWarn
				}

				logger.LogAttrs(r.Context(), level, "http request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", status),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("duration", time.Since(start)),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("remote", r.RemoteAddr),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// humaMiddleware adapts a net/http middleware to a huma operation middleware.
// The wrapped middleware must not replace the request or response writer.
func humaMiddleware(mw func(http.Handler) http.Handler) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)
		mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			next(ctx)
		})).ServeHTTP(w, r)
	}
}

// importRateLimit limits checklist imports per client IP.
func (s *Server) importRateLimit() func(huma.Context, func(huma.Context)) {
	return humaMiddleware(ratelimit.Middleware(s.importLimiter, ratelimit.ClientIP,
		func(w http.ResponseWriter, r *http.Request) {
			s.logger.Warn("import rate limit exceeded",
				"ip", ratelimit.ClientIP(r),
				"path", r.URL.Path,
			)
			writeError(w, http.StatusTooManyRequests, domainerrors.RateLimited("too many imports, try again later"))
		}))
}

// writeError writes an error envelope outside of a huma handler.
func writeError(w http.ResponseWriter, status int, err *domainerrors.Error) {
	body := APIEnvelope{
		Version: EnvelopeVersion,
		Success: false,
		Error:   err.Message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
