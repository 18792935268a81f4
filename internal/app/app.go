package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/kladd/internal/config"
	"github.com/klokku/kladd/pkg/vdir"
)

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg     config.Application
	router  *mux.Router
	srv     *http.Server
	sweeper *cron.Cron
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	locale, err := cfg.TimerangeLocale()
	if err != nil {
		return nil, err
	}

	// Calendar storage
	store, err := vdir.NewStore(cfg.Calendar.Dir, locale.DefaultTimezone)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps, err := BuildDependencies(store, locale, cfg)
	if err != nil {
		return nil, err
	}

	// Middleware chain
	SetupMiddleware(r, deps, cfg)

	// Routes
	RegisterRoutes(r, deps, cfg)

	// Expired draft sessions are evicted on a schedule.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Sessions.Sweep, func() {
		deps.DraftService.SweepExpired(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid sessions sweep spec %q: %w", cfg.Sessions.Sweep, err)
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv, sweeper: sweeper}, nil
}

// Run starts the session sweeper and the HTTP server, and blocks.
func (a *Application) Run() error {
	a.sweeper.Start()
	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
