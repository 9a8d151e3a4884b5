package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/headshaker/internal/store"
)

// DefaultRecent is the number of sessions listed when no limit is given.
const DefaultRecent = 10

// ScoresHandler serves the high score and the recent game history.
type ScoresHandler struct {
	store *store.Store
}

// NewScoresHandler creates a new ScoresHandler with the given store.
func NewScoresHandler(s *store.Store) *ScoresHandler {
	return &ScoresHandler{store: s}
}

type scoresResponse struct {
	HighScore int              `json:"high_score"`
	Played    int              `json:"played"`
	Sessions  []*store.Session `json:"sessions"`
}

// ServeHTTP handles GET /api/scores?limit=N.
func (h *ScoresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := DefaultRecent
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	high, err := h.store.Settings().HighScore()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read high score")
		return
	}

	played, err := h.store.Sessions().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count sessions")
		return
	}

	sessions, err := h.store.Sessions().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}

	writeJSON(w, http.StatusOK, scoresResponse{
		HighScore: high,
		Played:    played,
		Sessions:  sessions,
	})
}
