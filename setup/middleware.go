package setup

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"portfolio-server/notify"
	"portfolio-server/types"

	"go.uber.org/zap"
)

type Middleware func(http.Handler) http.Handler

// Chain applies mws so the first one is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func RequestLogger(clientIp func(*http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int("bytes", rec.bytes),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("ip", clientIp(r)),
			}

			switch {
			case rec.status >= 500:
				zap.L().Error("request", fields...)
			case r.URL.Path == "/health":
				zap.L().Debug("request", fields...)
			default:
				zap.L().Info("request", fields...)
			}
		})
	}
}

// Recoverer turns a handler panic into a 500 and reports it.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := debug.Stack()
				zap.L().Error("panic in handler", zap.String("path", r.URL.Path), zap.Any("panic", rec), zap.ByteString("stack", stack))
				go notify.NotifyErr(notify.SeverityError, fmt.Errorf("panic in %s %s: %v", r.Method, r.URL.Path, rec), string(stack))

				body, _ := json.Marshal(types.ApiError{Type: types.ApiErrorTypeOther, Status: http.StatusInternalServerError, Msg: "Internal server error"})
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write(body)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
