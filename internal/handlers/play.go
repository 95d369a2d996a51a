package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/maplewoodlane/engine/internal/storage"
	"github.com/maplewoodlane/engine/pkg/dialogue"
	"github.com/maplewoodlane/engine/pkg/ending"
	"github.com/maplewoodlane/engine/pkg/event"
	"github.com/maplewoodlane/engine/pkg/game"
	"github.com/maplewoodlane/engine/pkg/state"
)

// ActionRequest is one player action against a session.
type ActionRequest struct {
	Action string `json:"action"`

	Minutes   int    `json:"minutes,omitempty"`
	Location  string `json:"location,omitempty"`
	Character string `json:"character,omitempty"`
	Node      string `json:"node,omitempty"`
	Choice    *int   `json:"choice,omitempty"`
	PhotoType string `json:"photo_type,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Text      string `json:"text,omitempty"`
	Clue      string `json:"clue,omitempty"`
}

// ActionResponse reports the result of an action plus a state summary.
type ActionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Day       int       `json:"day"`
	Minute    int       `json:"minute"`
	TimeOfDay string    `json:"time_of_day"`

	Prompt *dialogue.Prompt  `json:"prompt,omitempty"`
	Events []event.Triggered `json:"events,omitempty"`
	Photo  *state.Photo      `json:"photo,omitempty"`
	Ending *ending.Result    `json:"ending,omitempty"`

	Trust map[string]int `json:"trust"`
	Clues []string       `json:"clues,omitempty"`
}

var (
	errSessionLoad     = errors.New("failed to load session")
	errSessionNotFound = errors.New("session not found")
	errPackLoad        = errors.New("failed to load content pack")
)

// PlayHandler applies player actions to saved sessions.
// Route: POST /v1/session/{id}/action
type PlayHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewPlayHandler(storage storage.Storage, logger *slog.Logger) *PlayHandler {
	return &PlayHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *PlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for action endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	sessionID, tail, err := parseSessionID(r.URL.Path, "/v1/session")
	if err != nil || sessionID == uuid.Nil || tail != "action" {
		h.logger.Warn("Invalid action path", "path", r.URL.Path)
		writeError(w, h.logger, http.StatusBadRequest, "Expected /v1/session/{id}/action")
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	g, status, err := h.loadGame(r.Context(), sessionID)
	if err != nil {
		writeError(w, h.logger, status, err.Error())
		return
	}

	resp := &ActionResponse{SessionID: sessionID}
	if !h.apply(g, &req, resp, w) {
		return
	}

	if err := h.storage.SaveSession(r.Context(), g.Snapshot()); err != nil {
		h.logger.Error("Failed to save session after action", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	resp.Day = g.Day()
	resp.Minute = g.Minute()
	resp.TimeOfDay = string(g.TimeOfDay())
	resp.Trust = map[string]int{}
	for _, ch := range g.Characters() {
		resp.Trust[ch.ID] = g.Trust(ch.ID)
	}
	resp.Clues = g.ClueLog()

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode action response", "error", err)
	}
}

// loadGame rebuilds a live game from the saved session and its pack.
func (h *PlayHandler) loadGame(ctx context.Context, sessionID uuid.UUID) (*game.Game, int, error) {
	session, err := h.storage.LoadSession(ctx, sessionID)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "id", sessionID.String())
		return nil, http.StatusInternalServerError, errSessionLoad
	}
	if session == nil {
		h.logger.Warn("Session not found", "id", sessionID.String())
		return nil, http.StatusNotFound, errSessionNotFound
	}

	packs, err := h.storage.ListPacks(ctx)
	if err != nil {
		h.logger.Error("Failed to list packs", "error", err)
		return nil, http.StatusInternalServerError, errPackLoad
	}
	filename, ok := packs[session.PackName]
	if !ok {
		h.logger.Error("Pack for session is missing", "pack", session.PackName)
		return nil, http.StatusInternalServerError, errPackLoad
	}
	pack, err := h.storage.GetPack(ctx, filename)
	if err != nil {
		h.logger.Error("Failed to load pack", "pack", filename, "error", err)
		return nil, http.StatusInternalServerError, errPackLoad
	}

	g, err := game.New(pack, nil, h.logger)
	if err != nil {
		return nil, http.StatusInternalServerError, errPackLoad
	}
	if _, err := g.Restore(session); err != nil {
		h.logger.Error("Failed to restore session", "error", err, "id", sessionID.String())
		return nil, http.StatusInternalServerError, errSessionLoad
	}
	return g, http.StatusOK, nil
}

// apply runs one action. Returns false if a response was already written.
func (h *PlayHandler) apply(g *game.Game, req *ActionRequest, resp *ActionResponse, w http.ResponseWriter) bool {
	switch req.Action {
	case "advance":
		if req.Minutes <= 0 {
			writeError(w, h.logger, http.StatusBadRequest, "minutes must be positive")
			return false
		}
		resp.Events = g.Advance(req.Minutes)

	case "move":
		g.MoveTo(req.Location)

	case "start_dialogue":
		if req.Node != "" {
			resp.Prompt = g.StartDialogueAt(req.Character, req.Node)
		} else {
			resp.Prompt = g.StartDialogue(req.Character)
		}
		if resp.Prompt == nil {
			writeError(w, h.logger, http.StatusBadRequest, "No dialogue available for character")
			return false
		}

	case "choose":
		if req.Choice == nil {
			writeError(w, h.logger, http.StatusBadRequest, "choice field is required")
			return false
		}
		prompt, err := g.Choose(*req.Choice)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return false
		}
		resp.Prompt = prompt

	case "end_dialogue":
		resp.Prompt = g.EndDialogue()

	case "take_photo":
		p, err := g.TakePhoto(req.PhotoType, req.Subject, req.Caption)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return false
		}
		resp.Photo = &p

	case "add_note":
		if err := g.AddNote(req.Character, req.Text); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return false
		}

	case "set_theory":
		g.SetTheory(req.Text)

	case "accuse":
		if _, ok := g.Pack().Character(req.Character); !ok {
			writeError(w, h.logger, http.StatusBadRequest, "unknown character")
			return false
		}
		g.Accuse(req.Character)

	case "show_evidence":
		g.ShowEvidence(req.Character, req.Clue)

	case "resolve_ending":
		res := g.ResolveEnding()
		resp.Ending = &res

	default:
		h.logger.Warn("Unknown action", "action", req.Action)
		writeError(w, h.logger, http.StatusBadRequest, "Unknown action: "+req.Action)
		return false
	}
	return true
}
