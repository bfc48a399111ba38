package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/shieldphish/internal/types"
)

// maxHistoryLimit caps a single history page
const maxHistoryLimit = 500

// HistoryResponse lists a user's past analyses, newest first
type HistoryResponse struct {
	Success bool                  `json:"success"`
	History []types.HistoryRecord `json:"history"`
}

// handleHistory returns the caller's analysis history
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, msgAnalyzerOff)
		return
	}

	userID := h.userID(r)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, errCodeUnauthorized, msgIdentityRequired)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errCodeValidation, msgInvalidLimit)
		return
	}

	records, err := h.analyzer.History(r.Context(), userID, limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("history lookup failed")
		respondError(w, http.StatusInternalServerError, errCodeInternal, msgHistoryUnavailable)

		return
	}

	if records == nil {
		records = []types.HistoryRecord{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		Success: true,
		History: records,
	})
}

// parseLimit reads the optional limit query parameter; zero selects the store default
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, ErrInvalidLimit
	}

	return min(n, maxHistoryLimit), nil
}
