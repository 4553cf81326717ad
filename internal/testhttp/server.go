// Package testhttp starts local HTTP servers for download tests.
package testhttp

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gorilla/mux"
)

// Server wraps an httptest.Server with a mux router.
type Server struct {
	URLOrigin string

	server *httptest.Server
	router *mux.Router
	logger *slog.Logger
}

// New starts a server whose routes are registered by setup.
func New(setup func(router *mux.Router)) *Server {
	router := mux.NewRouter()
	s := &Server{
		router: router,
		logger: slog.Default().WithGroup("testhttp"),
	}
	router.Use(s.loggingMiddleware)
	setup(router)
	s.server = httptest.NewServer(router)
	s.URLOrigin = s.server.URL
	return s
}

// NewStatic starts a server answering every GET with body and the given headers.
func NewStatic(body []byte, headers http.Header) *Server {
	return New(func(router *mux.Router) {
		router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, values := range headers {
				for _, v := range values {
					w.Header().Add(k, v)
				}
			}
			w.Write(body)
		}).Methods(http.MethodGet)
	})
}

// NewFunc starts a server that hands every request to handler.
func NewFunc(handler http.HandlerFunc) *Server {
	return New(func(router *mux.Router) {
		router.PathPrefix("/").HandlerFunc(handler)
	})
}

func (s *Server) URL(path string) string {
	return s.URLOrigin + path
}

func (s *Server) Client() *http.Client {
	return s.server.Client()
}

func (s *Server) Close() {
	s.server.Close()
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// AttachmentHeaders returns headers that present the body as a downloadable file.
func AttachmentHeaders(mediaType, filename string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", fmt.Sprintf("%s; charset=utf-8", mediaType))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	return h
}

// DeterministicBytes returns n bytes of a repeating, non-trivial pattern.
func DeterministicBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte((i*31 + i/256) % 251)
	}
	return b
}
