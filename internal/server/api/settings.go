package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/headshaker/internal/store"
)

// Settings is the user-editable settings document.
type Settings struct {
	MusicMuted bool `json:"music_muted"`
}

// SettingsHandler reads and updates the persisted settings.
type SettingsHandler struct {
	store    *store.Store
	onChange func(Settings)
}

// NewSettingsHandler creates a new SettingsHandler. onChange, when not nil, is
// called after every successful update.
func NewSettingsHandler(s *store.Store, onChange func(Settings)) *SettingsHandler {
	return &SettingsHandler{store: s, onChange: onChange}
}

type updateSettingsRequest struct {
	MusicMuted *bool `json:"music_muted"`
}

// ServeHTTP handles GET and PUT /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) load() (Settings, error) {
	muted, err := h.store.Settings().Muted()
	if err != nil {
		return Settings{}, err
	}
	return Settings{MusicMuted: muted}, nil
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.MusicMuted != nil {
		if err := h.store.Settings().SetMuted(*req.MusicMuted); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update settings")
			return
		}
	}

	settings, err := h.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read settings")
		return
	}
	if h.onChange != nil {
		h.onChange(settings)
	}

	writeJSON(w, http.StatusOK, settings)
}
