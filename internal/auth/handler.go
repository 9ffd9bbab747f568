package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// RoomChecker reports whether a room can be joined; it returns an error
// for unknown rooms.
type RoomChecker func(ctx context.Context, room string) error

type Handler struct {
	service *Service
	check   RoomChecker
}

func NewHandler(service *Service, check RoomChecker) *Handler {
	return &Handler{service: service, check: check}
}

// IssueToken handles POST /rooms/{id}/token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["id"]
	if room == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "room is required"})
		return
	}
	if h.check != nil {
		if err := h.check(r.Context(), room); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown room"})
			return
		}
	}

	result, err := h.service.Issue(room)
	if err != nil {
		slog.Error("issue token failed", "room", room, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
