package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/kladd/internal/config"
	log "github.com/sirupsen/logrus"
)

// statusRecorder keeps the status code a handler wrote so it can be logged.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Log every request with its status and duration
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)
			log.Debugf("%s %s %d (%s)", req.Method, req.URL.Path, rec.status, time.Since(start))
		})
	})
}
