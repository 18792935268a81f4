package app

import (
	"github.com/gorilla/mux"
	"github.com/klokku/kladd/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Draft sessions
	r.HandleFunc("/api/draft", deps.DraftHandler.CreateDraft).Methods("POST")
	r.HandleFunc("/api/draft/{draftId}", deps.DraftHandler.GetDraft).Methods("GET")
	r.HandleFunc("/api/draft/{draftId}", deps.DraftHandler.DiscardDraft).Methods("DELETE")
	r.HandleFunc("/api/draft/{draftId}/field/{field}", deps.DraftHandler.ValidateField).Methods("PUT")
	r.HandleFunc("/api/draft/{draftId}/allday", deps.DraftHandler.SetAllDay).Methods("PUT")
	r.HandleFunc("/api/draft/{draftId}/timezone", deps.DraftHandler.SetTimezone).Methods("PUT")
	r.HandleFunc("/api/draft/{draftId}/details", deps.DraftHandler.UpdateDetails).Methods("PUT")
	r.HandleFunc("/api/draft/{draftId}/recurrence", deps.DraftHandler.SetRecurrence).Methods("PUT")
	r.HandleFunc("/api/draft/{draftId}/alarms", deps.DraftHandler.SetAlarms).Methods("PUT")
	r.HandleFunc("/api/draft/{draftId}/save", deps.DraftHandler.SaveDraft).Methods("POST")

	// Calendar
	r.HandleFunc("/api/calendar/event", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.CalendarHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/calendar/event/{eventUid}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/calendar/export", deps.CalendarHandler.ExportCalendar).Methods("POST")

	// Timezones
	r.HandleFunc("/api/timezones", deps.TimezoneHandler.ListTimezones).Methods("GET")

	// Recurrence
	r.HandleFunc("/api/recurrence/preview", deps.RecurrenceHandler.PreviewRule).Methods("GET")
}
