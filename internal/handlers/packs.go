package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/maplewoodlane/engine/internal/storage"
)

// PacksHandler lists the available content packs.
// Route: GET /v1/packs
type PacksHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewPacksHandler(storage storage.Storage, logger *slog.Logger) *PacksHandler {
	return &PacksHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *PacksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for packs endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	packs, err := h.storage.ListPacks(r.Context())
	if err != nil {
		h.logger.Error("Failed to list packs", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list content packs")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(packs); err != nil {
		h.logger.Error("Failed to encode packs response", "error", err)
	}
}
