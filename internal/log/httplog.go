package log

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// HTTPMiddleware logs one entry per request: info for successes, warn for
// 4xx and error for 5xx responses.
func HTTPMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, req)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			fields := []interface{}{
				"method", req.Method,
				"path", req.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"size", rec.size,
				"remote_addr", req.RemoteAddr,
			}

			switch {
			case rec.status >= 500:
				logger.Errorw("http request", fields...)
			case rec.status >= 400:
				logger.Warnw("http request", fields...)
			default:
				logger.Infow("http request", fields...)
			}
		})
	}
}
