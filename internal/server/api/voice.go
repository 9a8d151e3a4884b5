package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayusman/headshaker/internal/voice"
)

// VoiceHandler accepts speech transcripts from the renderer, which runs the
// speech recognizer, and applies them to the menu.
type VoiceHandler struct {
	hear func(text string) voice.Command
}

// NewVoiceHandler creates a VoiceHandler that passes transcripts to hear.
func NewVoiceHandler(hear func(text string) voice.Command) *VoiceHandler {
	return &VoiceHandler{hear: hear}
}

type voiceRequest struct {
	Text string `json:"text"`
}

type voiceResponse struct {
	Command    string `json:"command"`
	Direction  int    `json:"direction,omitempty"`
	Option     string `json:"option,omitempty"`
	Understood bool   `json:"understood"`
}

// ServeHTTP handles POST /api/voice.
func (h *VoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	cmd := h.hear(req.Text)
	writeJSON(w, http.StatusOK, voiceResponse{
		Command:    cmd.Kind.String(),
		Direction:  cmd.Direction,
		Option:     cmd.Name,
		Understood: cmd.Kind != voice.CommandUnknown,
	})
}
