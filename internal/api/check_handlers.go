package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/shieldphish/internal/cloudflare"
	"github.com/theopenlane/shieldphish/internal/domain"
)

// CheckResponse carries a quick AI verdict for a URL
type CheckResponse struct {
	Success bool                `json:"success"`
	Result  *cloudflare.Verdict `json:"result"`
}

// handleCheck asks the model to classify a URL as Safe or Phishing without fetching it
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	if h.classifier == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, msgClassifierOff)
		return
	}

	h.limitBody(w, r)

	target, status, code, msg := decodeURLRequest(r)
	if status != 0 {
		respondError(w, status, code, msg)
		return
	}

	u, err := domain.ParseTarget(target)
	if err != nil {
		respondError(w, http.StatusBadRequest, errCodeValidation, msgInvalidURL)
		return
	}

	verdict, err := h.classifier.Classify(r.Context(), domain.Normalize(u))
	if err != nil {
		log.Warn().Err(err).Str("url", target).Msg("url classification failed")
		respondError(w, http.StatusBadGateway, errCodeUpstream, msgUpstreamFailure)

		return
	}

	writeJSON(w, http.StatusOK, CheckResponse{
		Success: true,
		Result:  &verdict,
	})
}
