package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/geziefer/docchat/internal/logger"
)

// loggingMiddleware logs request details and latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("%s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// NewRouter creates and configures the HTTP router.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/documents/upload", h.HandleUpload).Methods(http.MethodPost)
	r.HandleFunc("/documents", h.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}", h.HandleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/chat", h.HandleChat).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.HandleHealth).Methods(http.MethodGet)

	return r
}
