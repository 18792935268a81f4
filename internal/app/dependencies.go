package app

import (
	"context"

	"github.com/klokku/kladd/internal/config"
	"github.com/klokku/kladd/internal/event_bus"
	"github.com/klokku/kladd/internal/utils"
	"github.com/klokku/kladd/pkg/calendar"
	"github.com/klokku/kladd/pkg/draft"
	"github.com/klokku/kladd/pkg/google"
	"github.com/klokku/kladd/pkg/recurrence"
	"github.com/klokku/kladd/pkg/timerange"
	"github.com/klokku/kladd/pkg/timezone"
	"github.com/klokku/kladd/pkg/vdir"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Locale timerange.Locale

	EventBus *event_bus.EventBus

	DraftSessions *draft.SessionStore
	DraftService  draft.Service
	DraftHandler  *draft.Handler

	CalendarService *calendar.Service
	CalendarHandler *calendar.Handler

	TimezoneHandler   *timezone.Handler
	RecurrenceHandler *recurrence.Handler

	GoogleSink *google.Sink

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(store *vdir.Store, locale timerange.Locale, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Locale = locale
	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.DraftSessions = draft.NewSessionStore(deps.Clock, cfg.Sessions.TTL)
	deps.DraftService = draft.NewService(deps.DraftSessions, store, locale, deps.EventBus, deps.Clock)
	deps.DraftHandler = draft.NewHandler(deps.DraftService)

	deps.CalendarService = calendar.NewService(store, store, deps.EventBus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.TimezoneHandler = timezone.NewHandler()
	deps.RecurrenceHandler = recurrence.NewHandler()

	if cfg.Google.Enabled {
		sink, err := google.NewSink(context.Background(), cfg.Google, store, deps.EventBus)
		if err != nil {
			return nil, err
		}
		deps.GoogleSink = sink
	}

	return deps, nil
}
