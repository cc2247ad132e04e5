package handlers

import (
	"encoding/json"
	"net/http"
)

// Relay hands every queued staff message to the game server and clears the
// queue. The game's HTTP API parses the body itself, so it is served as plain
// text; an empty queue yields an empty body.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	messages := h.relay.Drain()
	if len(messages) == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := json.Marshal(messages)
	if err != nil {
		h.logger.Errorw("Failed to encode relay messages", "error", err, "count", len(messages))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to encode messages")
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
	h.logger.Debugw("Relayed staff messages", "count", len(messages))
}
