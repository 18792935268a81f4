package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/kladd/internal/rest"
	"github.com/klokku/kladd/pkg/event"
	"github.com/klokku/kladd/pkg/ics"
)

type Handler struct {
	calendar *Service
}

type EventDTO struct {
	UID          string     `json:"uid"`
	Summary      string     `json:"summary"`
	Description  string     `json:"description,omitempty"`
	Location     string     `json:"location,omitempty"`
	Categories   []string   `json:"categories,omitempty"`
	URL          string     `json:"url,omitempty"`
	AllDay       bool       `json:"allDay"`
	Start        string     `json:"start"`
	End          string     `json:"end"`
	Timezone     string     `json:"timezone,omitempty"`
	RRule        string     `json:"rrule,omitempty"`
	Alarms       []AlarmDTO `json:"alarms,omitempty"`
	LastModified string     `json:"lastModified,omitempty"`
}

type AlarmDTO struct {
	Trigger     string `json:"trigger"`
	Description string `json:"description,omitempty"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	var err error

	if fromString := r.URL.Query().Get("from"); fromString != "" {
		from, err = time.Parse(time.RFC3339, fromString)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid from (date) format",
				Details: "'from' must be in RFC3339 format",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
	}
	if toString := r.URL.Query().Get("to"); toString != "" {
		to, err = time.Parse(time.RFC3339, toString)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid to (date) format",
				Details: "'to' must be in RFC3339 format",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
	}

	events, err := h.calendar.GetEvents(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var dtos = make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventUid := mux.Vars(r)["eventUid"]

	e, err := h.calendar.GetEvent(r.Context(), eventUid)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/calendar") {
		data, err := ics.Encode(e)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(data)); err != nil {
			log.Errorf("failed to write ics response for %s: %v", eventUid, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(e)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	eventUid := mux.Vars(r)["eventUid"]
	err := h.calendar.DeleteEvent(r.Context(), eventUid)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		Target string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Target == "" {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid request body format",
			Details: "'target' must be a directory or .zip path",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	exported, err := h.calendar.Export(r.Context(), request.Target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := struct {
		Exported int `json:"exported"`
	}{Exported: exported}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func eventToDTO(e event.Event) EventDTO {
	alarms := make([]AlarmDTO, 0, len(e.Alarms))
	for _, a := range e.Alarms {
		alarms = append(alarms, AlarmDTO{
			Trigger:     ics.FormatTrigger(a.Trigger),
			Description: a.Description,
		})
	}

	dto := EventDTO{
		UID:         e.UID,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Categories:  e.Categories,
		URL:         e.URL,
		AllDay:      e.AllDay,
		Timezone:    e.Timezone,
		RRule:       e.RRule,
		Alarms:      alarms,
	}
	if e.AllDay {
		dto.Start = e.Start.Format(time.DateOnly)
		dto.End = e.End.Format(time.DateOnly)
	} else {
		dto.Start = e.Start.Format(time.RFC3339)
		dto.End = e.End.Format(time.RFC3339)
	}
	if !e.LastModified.IsZero() {
		dto.LastModified = e.LastModified.UTC().Format(time.RFC3339)
	}
	return dto
}
