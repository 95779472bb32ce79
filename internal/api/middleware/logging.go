// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package middleware provides HTTP middleware for the control API.
package middleware

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code and size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Hijack implements http.Hijacker for WebSocket support.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Logging logs each HTTP request with status, size, and duration, under the
// same "package:" prefix the rest of the daemon logs with.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		// RequestURI keeps the query string, which carries the argument for
		// calls like arrange?count=n.
		log.Printf("api: %s %s %d %dB %s",
			r.Method,
			r.URL.RequestURI(),
			wrapped.status,
			wrapped.size,
			time.Since(start),
		)
	})
}
