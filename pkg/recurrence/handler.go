package recurrence

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/klokku/kladd/internal/rest"
)

const defaultPreviewCount = 5

type Handler struct {
}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) PreviewRule(w http.ResponseWriter, r *http.Request) {
	rule := r.URL.Query().Get("rule")
	startString := r.URL.Query().Get("start")
	start, err := time.Parse(time.RFC3339, startString)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid start date format",
			Details: "'start' must be in RFC3339 format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	count := defaultPreviewCount
	if countString := r.URL.Query().Get("count"); countString != "" {
		count, err = strconv.Atoi(countString)
		if err != nil || count < 1 || count > 100 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid count",
				Details: "'count' must be a number between 1 and 100",
			})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
				return
			}
			return
		}
	}

	occurrences, err := Preview(rule, start, count)
	if err != nil {
		if errors.Is(err, ErrInvalidRule) {
			w.Header().Set("Content-Type", "application/json")
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

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(occurrences); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
