package draft

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/klokku/kladd/internal/rest"
	"github.com/klokku/kladd/pkg/event"
	"github.com/klokku/kladd/pkg/ics"
	"github.com/klokku/kladd/pkg/recurrence"
	"github.com/klokku/kladd/pkg/timerange"
	"github.com/klokku/kladd/pkg/timezone"
)

type DraftDTO struct {
	ID              string     `json:"id"`
	EventUID        string     `json:"eventUid"`
	IsNew           bool       `json:"isNew"`
	Summary         string     `json:"summary"`
	Description     string     `json:"description,omitempty"`
	Location        string     `json:"location,omitempty"`
	Categories      []string   `json:"categories,omitempty"`
	URL             string     `json:"url,omitempty"`
	RRule           string     `json:"rrule,omitempty"`
	Alarms          []AlarmDTO `json:"alarms,omitempty"`
	AllDay          bool       `json:"allDay"`
	TimezoneVisible bool       `json:"timezoneVisible"`
	Timezone        string     `json:"timezone"`
	StartDate       string     `json:"startDate"`
	StartTime       string     `json:"startTime"`
	EndDate         string     `json:"endDate"`
	EndTime         string     `json:"endTime"`
	Changed         bool       `json:"changed"`
	Valid           bool       `json:"valid"`
}

// AlarmDTO carries a reminder with its trigger as an ISO 8601 duration,
// negative when it fires before the event starts.
type AlarmDTO struct {
	Trigger     string `json:"trigger"`
	Description string `json:"description,omitempty"`
}

type SavedEventDTO struct {
	UID      string `json:"uid"`
	Summary  string `json:"summary"`
	AllDay   bool   `json:"allDay"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		EventUID string `json:"eventUid"`
		AllDay   bool   `json:"allDay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	var d *Draft
	var err error
	if request.EventUID != "" {
		d, err = h.service.Open(r.Context(), request.EventUID)
	} else {
		d, err = h.service.OpenNew(r.Context(), request.AllDay)
	}
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(draftToDTO(d)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	draftID := mux.Vars(r)["draftId"]

	d, err := h.service.Get(r.Context(), draftID)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(draftToDTO(d)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) ValidateField(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	field, err := ParseField(vars["field"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Unknown field",
			Details: err.Error(),
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	var request struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	d, err := h.service.ValidateField(r.Context(), vars["draftId"], field, request.Text)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, timerange.ErrInvalidFormat) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Text does not match the expected format",
				Details: err.Error(),
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(draftToDTO(d)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) SetAllDay(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		AllDay bool `json:"allDay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	d, err := h.service.SetAllDay(r.Context(), mux.Vars(r)["draftId"], request.AllDay)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(draftToDTO(d)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) SetTimezone(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		Visible  bool   `json:"visible"`
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	d, err := h.service.SetTimezone(r.Context(), mux.Vars(r)["draftId"], request.Visible, request.Timezone)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, timezone.ErrUnknownZone) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Unknown timezone",
				Details: err.Error(),
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(draftToDTO(d)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		Summary     string   `json:"summary"`
		Description string   `json:"description"`
		Location    string   `json:"location"`
		Categories  []string `json:"categories"`
		URL         string   `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	d, err := h.service.UpdateDetails(r.Context(), mux.Vars(r)["draftId"], Details{
		Summary:     request.Summary,
		Description: request.Description,
		Location:    request.Location,
		Categories:  request.Categories,
		URL:         request.URL,
	})
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(draftToDTO(d)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) SetRecurrence(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		RRule string `json:"rrule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	d, err := h.service.SetRecurrence(r.Context(), mux.Vars(r)["draftId"], request.RRule)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, recurrence.ErrInvalidRule) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid recurrence rule",
				Details: err.Error(),
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(draftToDTO(d)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) SetAlarms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var request struct {
		Alarms []AlarmDTO `json:"alarms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Invalid request body format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	alarms, err := alarmsFromDTO(request.Alarms)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid alarm trigger",
			Details: err.Error(),
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	d, err := h.service.SetAlarms(r.Context(), mux.Vars(r)["draftId"], alarms)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(draftToDTO(d)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	draftID := mux.Vars(r)["draftId"]
	log.Debugf("saving draft %s", draftID)

	saved, err := h.service.Save(r.Context(), draftID)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrInvalidRange) || errors.Is(err, recurrence.ErrInvalidRule) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Draft cannot be saved",
				Details: err.Error(),
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(savedEventToDTO(saved)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	if err := h.service.Discard(r.Context(), draftID); err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func draftToDTO(d *Draft) DraftDTO {
	alarms := make([]AlarmDTO, 0, len(d.Alarms))
	for _, a := range d.Alarms {
		alarms = append(alarms, AlarmDTO{
			Trigger:     ics.FormatTrigger(a.Trigger),
			Description: a.Description,
		})
	}

	return DraftDTO{
		ID:              d.ID,
		EventUID:        d.EventUID,
		IsNew:           d.IsNew,
		Summary:         d.Summary,
		Description:     d.Description,
		Location:        d.Location,
		Categories:      d.Categories,
		URL:             d.URL,
		RRule:           d.RRule,
		Alarms:          alarms,
		AllDay:          d.Range.AllDay(),
		TimezoneVisible: d.Range.TimezoneVisible(),
		Timezone:        d.Range.Timezone().String(),
		StartDate:       d.Range.FormatStartDate(),
		StartTime:       d.Range.FormatStartTime(),
		EndDate:         d.Range.FormatEndDate(),
		EndTime:         d.Range.FormatEndTime(),
		Changed:         d.Changed(),
		Valid:           d.Valid(),
	}
}

func alarmsFromDTO(dtos []AlarmDTO) ([]event.Alarm, error) {
	alarms := make([]event.Alarm, 0, len(dtos))
	for _, dto := range dtos {
		trigger, err := ics.ParseTrigger(dto.Trigger)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, event.Alarm{
			Trigger:     trigger,
			Description: dto.Description,
		})
	}
	return alarms, nil
}

func savedEventToDTO(e event.Event) SavedEventDTO {
	dto := SavedEventDTO{
		UID:      e.UID,
		Summary:  e.Summary,
		AllDay:   e.AllDay,
		Timezone: e.Timezone,
	}
	if e.AllDay {
		dto.Start = e.Start.Format(time.DateOnly)
		dto.End = e.End.Format(time.DateOnly)
	} else {
		dto.Start = e.Start.Format(time.RFC3339)
		dto.End = e.End.Format(time.RFC3339)
	}
	return dto
}
