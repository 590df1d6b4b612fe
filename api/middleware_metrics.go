package api

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// slowRequest is the latency above which a request is logged as slow
const slowRequest = time.Second

// MetricsMiddleware tags each request with an id, records its latency and logs slow or failed requests
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/metrics" || path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		requestsInFlight.Inc()
		next.ServeHTTP(wrapped, r)
		requestsInFlight.Dec()

		elapsed := time.Since(start)
		route := routeLabel(r)
		requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		requestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			zap.S().Errorw("request failed", "requestId", requestID, "method", r.Method, "path", path,
				"status", wrapped.statusCode, "duration", elapsed)
		case elapsed > slowRequest:
			zap.S().Warnw("slow request detected", "requestId", requestID, "method", r.Method, "path", path,
				"status", wrapped.statusCode, "duration", elapsed)
		default:
			zap.S().Debugw("request", "requestId", requestID, "method", r.Method, "path", path,
				"status", wrapped.statusCode, "duration", elapsed)
		}
	})
}

// responseWriter captures the status code. It implements http.Hijacker for websocket upgrades.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}
