package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/theopenlane/shieldphish/internal/analyzer"
	"github.com/theopenlane/shieldphish/internal/scoring"
	"github.com/theopenlane/shieldphish/internal/types"
)

// AnalyzeRequest is the body of an analysis request
type AnalyzeRequest struct {
	// URL is the absolute http or https URL to analyze
	URL string `json:"url"`
}

// AnalysisView is an analysis result decorated with derived presentation fields
type AnalysisView struct {
	*types.AnalysisResult
	// Explanation lists human readable reasons for the score
	Explanation []string `json:"explanation"`
	// RiskLevel buckets the score into low, medium or high
	RiskLevel scoring.RiskLevel `json:"riskLevel"`
}

// AnalyzeResponse is the success body of an analysis request
type AnalyzeResponse struct {
	Success bool          `json:"success"`
	Result  *AnalysisView `json:"result"`
}

// handleAnalyze runs the analysis pipeline for the submitted URL
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		respondError(w, http.StatusServiceUnavailable, errCodeUnavailable, msgAnalyzerOff)
		return
	}

	h.limitBody(w, r)

	target, status, code, msg := decodeURLRequest(r)
	if status != 0 {
		respondError(w, status, code, msg)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), target, h.userID(r))
	if err != nil {
		status, code := analysisStatus(err)

		log.Warn().Err(err).Str("url", target).Str("code", code).Msg("analysis failed")

		respondError(w, status, code, analyzer.UserMessage(err))

		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Success: true,
		Result:  NewAnalysisView(result),
	})
}

// NewAnalysisView derives the explanation and risk level of result
func NewAnalysisView(result *types.AnalysisResult) *AnalysisView {
	return &AnalysisView{
		AnalysisResult: result,
		Explanation:    scoring.Explain(result),
		RiskLevel:      scoring.Level(result.RiskScore),
	}
}

// decodeURLRequest reads a {url} body. A non-zero status means the request must be rejected
func decodeURLRequest(r *http.Request) (target string, status int, code, msg string) {
	var req AnalyzeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "url" {
			return "", http.StatusBadRequest, errCodeValidation, msgURLRequired
		}

		return "", http.StatusBadRequest, errCodeInvalidRequest, msgInvalidBody
	}

	if req.URL == "" {
		return "", http.StatusBadRequest, errCodeValidation, msgURLRequired
	}

	return req.URL, 0, "", ""
}

// analysisStatus maps a failed analysis onto an HTTP status and error code
func analysisStatus(err error) (int, string) {
	var aerr *analyzer.Error
	if !errors.As(err, &aerr) {
		return http.StatusInternalServerError, errCodeInternal
	}

	switch aerr.Kind {
	case analyzer.KindUpstream:
		return http.StatusBadGateway, string(aerr.Kind)
	case analyzer.KindUnexpected:
		return http.StatusInternalServerError, string(aerr.Kind)
	default:
		return http.StatusBadRequest, string(aerr.Kind)
	}
}
