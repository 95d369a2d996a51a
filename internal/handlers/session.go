package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/maplewoodlane/engine/internal/storage"
	"github.com/maplewoodlane/engine/pkg/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError sends a JSON error body with the given status.
func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

// parseSessionID extracts the session id from a path below prefix.
// Returns uuid.Nil when no id segment is present.
func parseSessionID(path, prefix string) (uuid.UUID, string, error) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return uuid.Nil, "", nil
	}
	parts := strings.SplitN(rest, "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, "", err
	}
	tail := ""
	if len(parts) == 2 {
		tail = parts[1]
	}
	return id, tail, nil
}

type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSessionHandler(storage storage.Storage, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

// CreateSessionRequest defines the request body for creating a new session
type CreateSessionRequest struct {
	Pack string `json:"pack"` // Required: content pack filename
}

// ServeHTTP handles HTTP requests for session operations
// Routes:
// POST /v1/session         - Create new session
// GET /v1/session/{id}     - Read saved session by ID
// DELETE /v1/session/{id}  - Delete session by ID
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	sessionID, _, err := parseSessionID(r.URL.Path, "/v1/session")
	if err != nil {
		h.logger.Warn("Invalid session ID", "path", r.URL.Path, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if sessionID == uuid.Nil {
			h.logger.Warn("GET request without session ID")
			writeError(w, h.logger, http.StatusBadRequest, "Session ID is required for GET requests")
			return
		}
		h.handleRead(w, r, sessionID)

	case http.MethodDelete:
		if sessionID == uuid.Nil {
			h.logger.Warn("DELETE request without session ID")
			writeError(w, h.logger, http.StatusBadRequest, "Session ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, sessionID)

	default:
		h.logger.Warn("Method not allowed for session endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed,
			"Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	if req.Pack == "" {
		h.logger.Warn("Missing required field: pack")
		writeError(w, h.logger, http.StatusBadRequest, "pack field is required")
		return
	}
	if !strings.HasSuffix(req.Pack, ".json") {
		req.Pack += ".json"
	}

	pack, err := h.storage.GetPack(r.Context(), req.Pack)
	if err != nil {
		h.logger.Warn("Failed to load content pack", "pack", req.Pack, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Failed to load content pack: "+err.Error())
		return
	}

	g, err := game.New(pack, nil, h.logger)
	if err != nil {
		h.logger.Error("Failed to start session", "pack", req.Pack, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Failed to start session: "+err.Error())
		return
	}

	session := g.Snapshot()
	if err := h.storage.SaveSession(r.Context(), session); err != nil {
		h.logger.Error("Failed to save new session", "error", err, "id", session.ID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Debug("Session created successfully", "id", session.ID.String(), "pack", pack.Name)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(session); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	session, err := h.storage.LoadSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}

	if session == nil {
		h.logger.Warn("Session not found", "id", sessionID.String())
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(session); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.logger.Debug("Session deleted successfully", "id", sessionID.String())
	w.WriteHeader(http.StatusNoContent)
}
