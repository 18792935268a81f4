package timezone

import (
	"encoding/json"
	"net/http"
)

type Handler struct {
}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) ListTimezones(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	zones := Search(query)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(zones); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
