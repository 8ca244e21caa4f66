package chi

import (
	"net/http"
	"strconv"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/concierge/internal/logger"
)

// Recoverer answers a handler panic with the JSON 500 body every other error uses.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
// Mount it after chi's RequestID so the panic log carries the request id.
func Recoverer(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				switch rvr {
				case nil:
					return
				case http.ErrAbortHandler: //nolint:errorlint // recover() value, not a wrapped error
					panic(rvr)
				}
				log.Error("panic recovered",
					zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stacktrace"),
				)
				writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WideEvent writes a single "http_request" line per request with a
// request-scoped logger available to handlers via logger.From.
// chi's RequestID middleware must run first for the id to be set.
func WideEvent(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := chiMiddleware.GetReqID(r.Context())
			if id != "" {
				w.Header().Set("X-Request-ID", id)
			}

			reqLog := log.With(zap.String("request_id", id))
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.Into(r.Context(), reqLog)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := append([]zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}, usageFields(ww.Header())...)

			if ce := reqLog.Check(levelFor(status), "http_request"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}

// levelFor keeps 4xx noise at Warn and reserves Error for server faults.
func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// usageFields lifts the usage headers set by the search handler into log fields.
func usageFields(h http.Header) []zap.Field {
	var out []zap.Field
	for _, u := range [...]struct{ header, key string }{
		{headerEmbeddingTokens, "embedding_tokens"},
		{headerCollectionSearches, "collection_searches"},
	} {
		if n, err := strconv.Atoi(h.Get(u.header)); err == nil {
			out = append(out, zap.Int(u.key, n))
		}
	}
	return out
}
