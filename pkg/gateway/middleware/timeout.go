package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// timeoutWriter serializes access to the underlying ResponseWriter
// between the handler goroutine and the middleware. The handler gets a
// private header map, merged into the real response on first flush, so
// header mutations never race with the timeout response. Once the
// middleware has written the timeout response, handler writes are
// dropped instead of racing on the connection.
type timeoutWriter struct {
	w http.ResponseWriter
	h http.Header

	mu          sync.Mutex
	timedOut    bool
	wroteHeader bool
}

func newTimeoutWriter(w http.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{w: w, h: make(http.Header)}
}

// Header returns the private map. Only the handler goroutine touches
// it; flushHeader copies it out from that same goroutine.
func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) WriteHeader(statusCode int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.flushHeader(statusCode)
}

func (tw *timeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return len(p), nil
	}
	tw.flushHeader(http.StatusOK)
	return tw.w.Write(p)
}

// flushHeader commits the status line and private headers once. Caller
// must hold the lock.
func (tw *timeoutWriter) flushHeader(statusCode int) {
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	dst := tw.w.Header()
	for key, values := range tw.h {
		dst[key] = values
	}
	tw.w.WriteHeader(statusCode)
}

// writeTimeout claims the writer and emits the 504 envelope. The lock
// is held across the write so the handler goroutine cannot touch the
// connection while the timeout response goes out. If the handler
// already committed a response the envelope is skipped, but further
// writes are still dropped: the underlying writer is not safe to use
// after the middleware returns.
func (tw *timeoutWriter) writeTimeout() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return
	}
	committed := tw.wroteHeader
	tw.timedOut = true
	if committed {
		return
	}

	tw.w.Header().Set("Content-Type", "application/json")
	tw.w.WriteHeader(http.StatusGatewayTimeout)

	_ = json.NewEncoder(tw.w).Encode(map[string]string{
		"error":   "Gateway timeout",
		"message": "The request took too long to complete",
	})
}

// TimeoutMiddleware enforces a per-request timeout using
// context.WithTimeout. If the timeout is exceeded, the request context
// is cancelled and a 504 Gateway Timeout error is returned; any output
// the handler produces after that is discarded.
//
// The timeout covers the entire pipeline including upstream calls.
// Handlers should check context.Done() to detect cancellation.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := newTimeoutWriter(w)
			done := make(chan struct{})

			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return

			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					tw.writeTimeout()
				}
			}
		})
	}
}
