package server

import (
	"encoding/json"
	"io"
	"net/http"
)

const maxSubscriptionBytes = 16 << 10

// handleSaveSubscription stores the browser's push subscription for the
// signed-in user. Responds with JSON: 403 when anonymous or from an
// untrusted origin, 400 on malformed JSON.
func (s *Server) handleSaveSubscription(w http.ResponseWriter, r *http.Request) {
	writeJSON := func(status int, body map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	user := currentUser(r)
	if user == nil {
		writeJSON(http.StatusForbidden, map[string]any{"success": false, "error": "User not authenticated"})
		return
	}

	if len(s.cfg.TrustedOrigins) > 0 {
		origin := r.Header.Get("Origin")
		trusted := false
		for _, o := range s.cfg.TrustedOrigins {
			if o == origin {
				trusted = true
				break
			}
		}
		if !trusted {
			writeJSON(http.StatusForbidden, map[string]any{"success": false, "error": "Invalid origin"})
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSubscriptionBytes))
	if err != nil {
		writeJSON(http.StatusBadRequest, map[string]any{"success": false, "error": "Unreadable body"})
		return
	}

	// The blob is stored opaquely, but it has to at least be a JSON
	// object.
	var probe map[string]any
	if err := json.Unmarshal(body, &probe); err != nil {
		writeJSON(http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid JSON"})
		return
	}

	if err := s.pushRepo.Upsert(r.Context(), user.ID, string(body)); err != nil {
		s.logger.Error("save subscription", "err", err)
		writeJSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Internal server error"})
		return
	}
	writeJSON(http.StatusOK, map[string]any{"success": true})
}

// handleServiceWorker serves the push service-worker script.
func (s *Server) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write(serviceWorkerJS)
}
